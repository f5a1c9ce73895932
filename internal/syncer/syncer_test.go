package syncer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sakif/caloriesnap/internal/apperror"
	"github.com/sakif/caloriesnap/internal/model"
	"github.com/sakif/caloriesnap/internal/remote"
	"github.com/sakif/caloriesnap/internal/store"
)

var _ Remote = (*remote.Client)(nil)

const userID = "6f1c2a7e-0b7d-4c55-9f3e-2a1d5e8b9c01"

// fakeRemote records calls and fails the ones named in failOn.
type fakeRemote struct {
	user    model.User
	profile model.Profile
	logs    []model.Log

	failOn map[string]error
	calls  []string
	update model.ProfileUpdate
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		user:    model.User{ID: userID, Email: "me@example.com"},
		profile: model.NewProfile(userID, "me@example.com", model.DefaultGoals()),
		failOn:  map[string]error{},
	}
}

func (f *fakeRemote) call(name string) error {
	f.calls = append(f.calls, name)
	return f.failOn[name]
}

func (f *fakeRemote) CurrentUser(ctx context.Context) (*model.User, error) {
	if err := f.call("CurrentUser"); err != nil {
		return nil, err
	}
	u := f.user
	return &u, nil
}

func (f *fakeRemote) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	if err := f.call("GetProfile"); err != nil {
		return nil, err
	}
	p := f.profile
	return &p, nil
}

func (f *fakeRemote) UpdateProfile(ctx context.Context, id string, u model.ProfileUpdate) error {
	if err := f.call("UpdateProfile"); err != nil {
		return err
	}
	f.update = u
	return nil
}

func (f *fakeRemote) ListLogs(ctx context.Context, q model.LogQuery) ([]model.Log, error) {
	if err := f.call("ListLogs"); err != nil {
		return nil, err
	}
	return f.logs, nil
}

func (f *fakeRemote) InsertLog(ctx context.Context, l model.Log) error {
	if err := f.call("InsertLog"); err != nil {
		return err
	}
	f.logs = append([]model.Log{l}, f.logs...)
	return nil
}

func (f *fakeRemote) DeleteLog(ctx context.Context, id string) error {
	return f.call("DeleteLog")
}

func newTestSyncer(t *testing.T) (*Syncer, *fakeRemote, *store.Store) {
	t.Helper()
	r := newFakeRemote()
	st := store.New()
	return New(r, st, slog.New(slog.NewTextHandler(io.Discard, nil))), r, st
}

func validLog() model.Log {
	return model.Log{
		ID:        uuid.NewString(),
		UserID:    userID,
		FoodName:  "Oatmeal",
		Calories:  300,
		Protein:   10,
		Carbs:     54,
		Fats:      5,
		MealType:  model.MealBreakfast,
		CreatedAt: time.Now().UTC(),
	}
}

func TestAddUserLog(t *testing.T) {
	s, r, st := newTestSyncer(t)
	st.AddLog(validLog())

	l := validLog()
	if err := s.AddUserLog(context.Background(), l); err != nil {
		t.Fatalf("AddUserLog() error = %v", err)
	}

	logs := st.Logs()
	if len(logs) != 2 || logs[0].ID != l.ID {
		t.Fatalf("new log not prepended: %+v", logs)
	}
	if len(r.calls) != 1 || r.calls[0] != "InsertLog" {
		t.Fatalf("calls = %v, want [InsertLog]", r.calls)
	}
}

func TestAddUserLog_ValidationFailsBeforeRemote(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*model.Log)
		message string
	}{
		{"negative calories", func(l *model.Log) { l.Calories = -1 }, "Calories cannot be negative"},
		{"short name", func(l *model.Log) { l.FoodName = "x" }, "Food name is required"},
		{"bad meal", func(l *model.Log) { l.MealType = "brunch" }, "Meal type must be one of breakfast, lunch, dinner, snack"},
		{"bad id", func(l *model.Log) { l.ID = "nope" }, "Log id must be a valid UUID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, r, st := newTestSyncer(t)
			l := validLog()
			tt.mutate(&l)

			err := s.AddUserLog(context.Background(), l)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("AddUserLog() error = %v, want validation error", err)
			}
			if err.Error() != tt.message {
				t.Fatalf("message = %q, want %q", err.Error(), tt.message)
			}
			if len(r.calls) != 0 {
				t.Fatalf("remote was called: %v", r.calls)
			}
			if len(st.Logs()) != 0 {
				t.Fatal("store mutated on validation failure")
			}
		})
	}
}

func TestAddUserLog_RemoteFailureLeavesStore(t *testing.T) {
	s, r, st := newTestSyncer(t)
	existing := validLog()
	st.AddLog(existing)
	r.failOn["InsertLog"] = apperror.Remote(409, "duplicate key value violates unique constraint")

	err := s.AddUserLog(context.Background(), validLog())
	if !errors.Is(err, apperror.ErrRemote) {
		t.Fatalf("AddUserLog() error = %v, want remote error", err)
	}
	if err.Error() != "duplicate key value violates unique constraint" {
		t.Fatalf("message not kept verbatim: %q", err.Error())
	}
	if logs := st.Logs(); len(logs) != 1 || logs[0].ID != existing.ID {
		t.Fatalf("store changed: %+v", logs)
	}
}

func TestAddUserLog_PlainErrorBecomesRemote(t *testing.T) {
	s, r, _ := newTestSyncer(t)
	r.failOn["InsertLog"] = errors.New("connection reset")

	err := s.AddUserLog(context.Background(), validLog())
	if !errors.Is(err, apperror.ErrRemote) {
		t.Fatalf("AddUserLog() error = %v, want remote error", err)
	}
}

func TestDeleteUserLog(t *testing.T) {
	s, _, st := newTestSyncer(t)
	a, b := validLog(), validLog()
	st.SetLogs([]model.Log{a, b})

	if err := s.DeleteUserLog(context.Background(), a.ID); err != nil {
		t.Fatalf("DeleteUserLog() error = %v", err)
	}
	if logs := st.Logs(); len(logs) != 1 || logs[0].ID != b.ID {
		t.Fatalf("logs = %+v, want only b", logs)
	}

	// Absent id: remote success, local no-op.
	if err := s.DeleteUserLog(context.Background(), uuid.NewString()); err != nil {
		t.Fatalf("DeleteUserLog(absent) error = %v", err)
	}
	if len(st.Logs()) != 1 {
		t.Fatal("absent delete changed the store")
	}
}

func TestDeleteUserLog_RemoteFailure(t *testing.T) {
	s, r, st := newTestSyncer(t)
	l := validLog()
	st.AddLog(l)
	r.failOn["DeleteLog"] = apperror.Remote(500, "boom")

	if err := s.DeleteUserLog(context.Background(), l.ID); !errors.Is(err, apperror.ErrRemote) {
		t.Fatalf("DeleteUserLog() error = %v, want remote error", err)
	}
	if len(st.Logs()) != 1 {
		t.Fatal("store changed on failed delete")
	}
}

func TestUpdateUserProfile_MergesOnSuccess(t *testing.T) {
	s, r, st := newTestSyncer(t)
	st.SetProfile(r.profile)

	goal := 1800
	if err := s.UpdateUserProfile(context.Background(), userID, model.ProfileUpdate{DailyCalorieGoal: &goal}); err != nil {
		t.Fatalf("UpdateUserProfile() error = %v", err)
	}

	p, _ := st.Profile()
	if p.DailyCalorieGoal != 1800 {
		t.Fatalf("DailyCalorieGoal = %d, want 1800", p.DailyCalorieGoal)
	}
	if p.ProteinGoal != r.profile.ProteinGoal {
		t.Fatalf("absent field changed: ProteinGoal = %d", p.ProteinGoal)
	}
}

func TestUpdateUserProfile_RemoteFailureLeavesProfile(t *testing.T) {
	s, r, st := newTestSyncer(t)
	st.SetProfile(r.profile)
	r.failOn["UpdateProfile"] = apperror.Remote(400, "new row violates check constraint")

	goal := 1
	err := s.UpdateUserProfile(context.Background(), userID, model.ProfileUpdate{DailyCalorieGoal: &goal})
	if !errors.Is(err, apperror.ErrRemote) {
		t.Fatalf("UpdateUserProfile() error = %v, want remote error", err)
	}
	if p, _ := st.Profile(); p.DailyCalorieGoal != r.profile.DailyCalorieGoal {
		t.Fatal("profile changed on failed update")
	}
}

func TestUpdateUserProfile_NoProfileLoaded(t *testing.T) {
	s, r, st := newTestSyncer(t)

	goal := 1500
	if err := s.UpdateUserProfile(context.Background(), userID, model.ProfileUpdate{DailyCalorieGoal: &goal}); err != nil {
		t.Fatalf("UpdateUserProfile() error = %v", err)
	}
	if r.update.DailyCalorieGoal == nil {
		t.Fatal("remote write was not sent")
	}
	if _, ok := st.Profile(); ok {
		t.Fatal("a profile appeared without a sync")
	}
}

func TestSync(t *testing.T) {
	s, r, st := newTestSyncer(t)
	r.logs = []model.Log{validLog(), validLog()}

	if err := s.Sync(context.Background()); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	p, ok := st.Profile()
	if !ok || p.ID != userID {
		t.Fatalf("Profile() = %+v, %v", p, ok)
	}
	if len(st.Logs()) != 2 {
		t.Fatalf("len(Logs()) = %d, want 2", len(st.Logs()))
	}
}

func TestSync_HalvesAreIndependent(t *testing.T) {
	s, r, st := newTestSyncer(t)
	r.logs = []model.Log{validLog()}
	r.failOn["GetProfile"] = apperror.Remote(500, "profiles unavailable")

	err := s.Sync(context.Background())
	if !errors.Is(err, apperror.ErrRemote) {
		t.Fatalf("Sync() error = %v, want remote error", err)
	}
	if _, ok := st.Profile(); ok {
		t.Fatal("profile set despite failure")
	}
	if len(st.Logs()) != 1 {
		t.Fatal("logs half was not applied")
	}
}

func TestSync_NoSession(t *testing.T) {
	s, r, _ := newTestSyncer(t)
	r.failOn["CurrentUser"] = apperror.Unauthorized("valid authentication required")

	if err := s.Sync(context.Background()); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("Sync() error = %v, want unauthorized", err)
	}
	if len(r.calls) != 1 {
		t.Fatalf("calls after failed user lookup: %v", r.calls)
	}
}

func TestLogFood(t *testing.T) {
	s, r, st := newTestSyncer(t)

	if _, err := s.LogFood(context.Background(), model.FoodItem{FoodName: "Apple", Calories: 95}, model.MealSnack, time.Now()); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("LogFood() without profile error = %v", err)
	}

	st.SetProfile(r.profile)
	protein := 0.5
	l, err := s.LogFood(context.Background(), model.FoodItem{FoodName: "Apple", Calories: 95, Protein: &protein}, model.MealSnack, time.Now())
	if err != nil {
		t.Fatalf("LogFood() error = %v", err)
	}
	if l.UserID != userID || l.Protein != 0.5 || l.Carbs != 0 {
		t.Fatalf("unexpected log: %+v", l)
	}
	if logs := st.Logs(); len(logs) != 1 || logs[0].ID != l.ID {
		t.Fatalf("store logs = %+v", logs)
	}
}

func TestSaveGoals(t *testing.T) {
	s, r, st := newTestSyncer(t)
	st.SetProfile(r.profile)

	bad := model.Goals{DailyCalories: 2000, Breakfast: 500, Lunch: 700, Dinner: 600, Snack: 100}
	err := s.SaveGoals(context.Background(), bad)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("SaveGoals() error = %v, want validation", err)
	}
	if want := "Meal goals sum to 1900, but daily total is 2000. Please adjust."; err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
	if len(r.calls) != 0 {
		t.Fatalf("remote called on invalid goals: %v", r.calls)
	}

	b, l, d, sn := model.AutoDistribute(1800)
	good := model.Goals{DailyCalories: 1800, Protein: 120, Carbs: 200, Fats: 60, Breakfast: b, Lunch: l, Dinner: d, Snack: sn}
	if err := s.SaveGoals(context.Background(), good); err != nil {
		t.Fatalf("SaveGoals() error = %v", err)
	}

	p, _ := st.Profile()
	if got := p.Goals(model.DefaultGoals()); got != good {
		t.Fatalf("stored goals = %+v, want %+v", got, good)
	}
}

// newRejectingSyncer talks to a real client whose server rejects the session.
func newRejectingSyncer(t *testing.T) (*Syncer, *store.Store) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"unauthorized","message":"token is expired"}`))
	}))
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := remote.New(srv.URL, "stale-token", logger)
	if err != nil {
		t.Fatalf("remote.New() error = %v", err)
	}
	st := store.New()
	st.SetProfile(model.NewProfile(userID, "me@example.com", model.DefaultGoals()))
	return New(client, st, logger), st
}

func assertRejectedSession(t *testing.T, op string, err error) {
	t.Helper()
	if !errors.Is(err, apperror.ErrRemote) {
		t.Errorf("%s error = %v, want ErrRemote", op, err)
	}
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("%s error = %v, want ErrUnauthorized", op, err)
	}
	if err != nil && err.Error() != "token is expired" {
		t.Errorf("%s message = %q, want the backend's", op, err.Error())
	}
}

func TestRejectedSession_IsRemoteError(t *testing.T) {
	ctx := context.Background()

	s, st := newRejectingSyncer(t)
	assertRejectedSession(t, "AddUserLog", s.AddUserLog(ctx, validLog()))
	if n := len(st.Logs()); n != 0 {
		t.Fatalf("store has %d logs after rejected insert", n)
	}

	s, st = newRejectingSyncer(t)
	kept := validLog()
	st.AddLog(kept)
	assertRejectedSession(t, "DeleteUserLog", s.DeleteUserLog(ctx, kept.ID))
	if logs := st.Logs(); len(logs) != 1 || logs[0].ID != kept.ID {
		t.Fatalf("store changed after rejected delete: %+v", logs)
	}

	s, st = newRejectingSyncer(t)
	daily := 1500
	assertRejectedSession(t, "UpdateUserProfile",
		s.UpdateUserProfile(ctx, userID, model.ProfileUpdate{DailyCalorieGoal: &daily}))
	if p, _ := st.Profile(); p.DailyCalorieGoal != model.DefaultGoals().DailyCalories {
		t.Fatalf("profile changed after rejected update: %+v", p)
	}
}
