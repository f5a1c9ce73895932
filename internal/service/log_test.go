package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sakif/caloriesnap/internal/apperror"
	"github.com/sakif/caloriesnap/internal/model"
)

const (
	alice = "00000000-0000-4000-8000-00000000000a"
	bob   = "00000000-0000-4000-8000-00000000000b"
)

func newTestLogService(t *testing.T) (*LogService, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	return NewLogService(store, testLogger()), store
}

func validLog(userID string, calories float64, at time.Time) model.Log {
	return model.Log{
		ID:        uuid.NewString(),
		UserID:    userID,
		FoodName:  "Oatmeal",
		Calories:  calories,
		Protein:   10,
		MealType:  model.MealBreakfast,
		CreatedAt: at,
	}
}

func TestLogCreate(t *testing.T) {
	svc, store := newTestLogService(t)

	l := validLog(alice, 350, time.Now())
	got, err := svc.Create(context.Background(), alice, l)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if got.ID != l.ID {
		t.Errorf("Create() changed the client ID: %q -> %q", l.ID, got.ID)
	}
	if len(store.logs) != 1 {
		t.Fatalf("store has %d logs, want 1", len(store.logs))
	}

	if _, err := svc.Create(context.Background(), alice, l); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("duplicate Create() error = %v, want ErrConflict", err)
	}
}

func TestLogCreate_FillsOwnerAndRejectsOthers(t *testing.T) {
	svc, _ := newTestLogService(t)

	l := validLog("", 100, time.Now())
	got, err := svc.Create(context.Background(), alice, l)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if got.UserID != alice {
		t.Errorf("UserID = %q, want caller %q", got.UserID, alice)
	}

	_, err = svc.Create(context.Background(), alice, validLog(bob, 100, time.Now()))
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Create() for another user error = %v, want ErrForbidden", err)
	}
}

func TestLogCreate_Validation(t *testing.T) {
	svc, store := newTestLogService(t)

	l := validLog(alice, -5, time.Now())
	_, err := svc.Create(context.Background(), alice, l)

	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Message != "Calories cannot be negative" {
		t.Fatalf("Create() error = %v, want the calories rule", err)
	}
	if len(store.logs) != 0 {
		t.Error("invalid log was stored")
	}
}

func TestLogList_ScopedToCaller(t *testing.T) {
	svc, _ := newTestLogService(t)
	ctx := context.Background()
	now := time.Now()

	svc.Create(ctx, alice, validLog(alice, 100, now.Add(-time.Hour)))
	svc.Create(ctx, alice, validLog(alice, 200, now))
	svc.Create(ctx, bob, validLog(bob, 999, now))

	logs, err := svc.List(ctx, alice, model.LogQuery{UserID: bob})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(logs) != 2 || logs[0].Calories != 200 {
		t.Errorf("List() = %+v, want alice's two logs newest first", logs)
	}

	_, err = svc.List(ctx, alice, model.LogQuery{From: now, To: now.Add(-time.Hour)})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("inverted range error = %v, want ErrValidation", err)
	}
}

func TestLogDelete(t *testing.T) {
	svc, store := newTestLogService(t)
	ctx := context.Background()

	l, _ := svc.Create(ctx, alice, validLog(alice, 100, time.Now()))

	if err := svc.Delete(ctx, bob, l.ID); err != nil {
		t.Fatalf("Delete() by another user error = %v", err)
	}
	if len(store.logs) != 1 {
		t.Fatal("another user's delete removed the log")
	}

	if err := svc.Delete(ctx, alice, l.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := svc.Delete(ctx, alice, l.ID); err != nil {
		t.Fatalf("Delete() of an absent log error = %v, want nil", err)
	}
	if err := svc.Delete(ctx, alice, " "); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Delete(blank) error = %v, want ErrValidation", err)
	}
}

func TestLogMonthlySummary(t *testing.T) {
	svc, _ := newTestLogService(t)
	ctx := context.Background()

	svc.Create(ctx, alice, validLog(alice, 1200, time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)))
	svc.Create(ctx, alice, validLog(alice, 1300, time.Date(2024, 6, 1, 19, 0, 0, 0, time.UTC)))
	svc.Create(ctx, alice, validLog(alice, 1800, time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC)))

	rows, err := svc.MonthlySummary(ctx, alice,
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 30, 23, 59, 59, 0, time.UTC))
	if err != nil {
		t.Fatalf("MonthlySummary() error = %v", err)
	}
	if len(rows) != 2 || rows[0].TotalCalories != 2500 || rows[1].TotalCalories != 1800 {
		t.Errorf("MonthlySummary() = %+v", rows)
	}

	_, err = svc.MonthlySummary(ctx, alice, time.Time{}, time.Now())
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("missing start error = %v, want ErrValidation", err)
	}
}
