package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/caloriesnap/internal/apperror"
	"github.com/sakif/caloriesnap/internal/model"
)

func newTestProfileService(t *testing.T) (*ProfileService, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	return NewProfileService(store, store, model.DefaultGoals(), testLogger()), store
}

func TestProfileGet_CreatesOnFirstAccess(t *testing.T) {
	svc, store := newTestProfileService(t)
	ctx := context.Background()

	u := &model.User{Email: "first@example.com"}
	store.CreateUser(ctx, u)

	p, err := svc.Get(ctx, u.ID, u.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if p.ID != u.ID || p.DailyCalorieGoal != 2000 {
		t.Errorf("Get() = %+v, want a default profile for %s", p, u.ID)
	}
	if p.Email == nil || *p.Email != "first@example.com" {
		t.Errorf("Email = %v, want the account email", p.Email)
	}

	// Second access returns the stored row, not a fresh default.
	daily := 1500
	store.UpdateProfile(ctx, u.ID, model.ProfileUpdate{DailyCalorieGoal: &daily})
	p, _ = svc.Get(ctx, u.ID, u.ID)
	if p.DailyCalorieGoal != 1500 {
		t.Errorf("DailyCalorieGoal = %d, want 1500", p.DailyCalorieGoal)
	}
}

func TestProfileGet_OtherUserIsForbidden(t *testing.T) {
	svc, _ := newTestProfileService(t)

	_, err := svc.Get(context.Background(), "me", "someone-else")
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("Get() error = %v, want ErrForbidden", err)
	}
}

func TestProfileUpdate(t *testing.T) {
	svc, store := newTestProfileService(t)
	ctx := context.Background()

	p := model.NewProfile("u1", "", model.DefaultGoals())
	store.CreateProfile(ctx, &p)

	lunch := 650
	got, err := svc.Update(ctx, "u1", "u1", model.ProfileUpdate{LunchGoal: &lunch})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if *got.LunchGoal != 650 || *got.DinnerGoal != 600 {
		t.Errorf("Update() = lunch %d dinner %d, want 650 and untouched 600", *got.LunchGoal, *got.DinnerGoal)
	}
}

func TestProfileUpdate_Errors(t *testing.T) {
	svc, _ := newTestProfileService(t)
	ctx := context.Background()

	neg := -1
	if _, err := svc.Update(ctx, "u1", "u1", model.ProfileUpdate{ProteinGoal: &neg}); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("negative goal: error = %v, want ErrValidation", err)
	}

	daily := 1800
	if _, err := svc.Update(ctx, "u1", "u2", model.ProfileUpdate{DailyCalorieGoal: &daily}); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("other user: error = %v, want ErrForbidden", err)
	}
	if _, err := svc.Update(ctx, "u1", "u1", model.ProfileUpdate{DailyCalorieGoal: &daily}); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("missing profile: error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Update(ctx, "u1", "u1", model.ProfileUpdate{}); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("empty update: error = %v, want ErrValidation", err)
	}
}
