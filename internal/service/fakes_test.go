package service

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/sakif/caloriesnap/internal/apperror"
	"github.com/sakif/caloriesnap/internal/model"
)

// fakeStore is an in-memory repository.Store. A fake (not a mock framework)
// keeps the tests readable: the behaviour is right here.
type fakeStore struct {
	mu       sync.Mutex
	users    map[string]*model.User
	profiles map[string]model.Profile
	logs     []model.Log
	nextID   int

	// set to simulate database failures
	failWith error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[string]*model.User),
		profiles: make(map[string]model.Profile),
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func (f *fakeStore) newID() string {
	f.nextID++
	// Valid UUID shape so validation.Log accepts it as a user_id.
	return "00000000-0000-4000-8000-" + leftPad(strconv.Itoa(f.nextID), 12)
}

func leftPad(s string, n int) string {
	for len(s) < n {
		s = "0" + s
	}
	return s
}

func (f *fakeStore) CreateUser(ctx context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	for _, existing := range f.users {
		if existing.Email != "" && existing.Email == u.Email {
			return apperror.Conflict("user", u.Email)
		}
	}
	u.ID = f.newID()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	copied := *u
	f.users[u.ID] = &copied
	return nil
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeStore) UpsertGitHub(ctx context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	for _, existing := range f.users {
		if existing.GitHubID == u.GitHubID {
			existing.Login = u.Login
			existing.AvatarURL = u.AvatarURL
			*u = *existing
			return nil
		}
	}
	u.ID = f.newID()
	copied := *u
	f.users[u.ID] = &copied
	return nil
}

func (f *fakeStore) CreateProfile(ctx context.Context, p *model.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	if _, ok := f.profiles[p.ID]; !ok {
		f.profiles[p.ID] = *p
	}
	return nil
}

func (f *fakeStore) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, apperror.NotFound("profile", id)
	}
	return &p, nil
}

func (f *fakeStore) UpdateProfile(ctx context.Context, id string, u model.ProfileUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	p, ok := f.profiles[id]
	if !ok {
		return apperror.NotFound("profile", id)
	}
	f.profiles[id] = u.Apply(p)
	return nil
}

func (f *fakeStore) InsertLog(ctx context.Context, l *model.Log) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	for _, existing := range f.logs {
		if existing.ID == l.ID {
			return apperror.Conflict("log", l.ID)
		}
	}
	f.logs = append(f.logs, *l)
	return nil
}

func (f *fakeStore) ListLogs(ctx context.Context, q model.LogQuery) ([]model.Log, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]model.Log, 0)
	for _, l := range f.logs {
		if l.UserID != q.UserID {
			continue
		}
		if !q.From.IsZero() && l.CreatedAt.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && l.CreatedAt.After(q.To) {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if q.Ascending {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeStore) DeleteLog(ctx context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	kept := f.logs[:0]
	for _, l := range f.logs {
		if l.ID == id && l.UserID == userID {
			continue
		}
		kept = append(kept, l)
	}
	f.logs = kept
	return nil
}

func (f *fakeStore) MonthlySummary(ctx context.Context, userID string, start, end time.Time) ([]model.DailySummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	byDay := make(map[string]*model.DailySummary)
	var days []string
	for _, l := range f.logs {
		if l.UserID != userID || l.CreatedAt.Before(start) || l.CreatedAt.After(end) {
			continue
		}
		d := l.CreatedAt.UTC().Format("2006-01-02")
		row, ok := byDay[d]
		if !ok {
			row = &model.DailySummary{DateLog: d}
			byDay[d] = row
			days = append(days, d)
		}
		row.TotalCalories += l.Calories
		row.LogCount++
	}
	sort.Strings(days)
	out := make([]model.DailySummary, 0, len(days))
	for _, d := range days {
		out = append(out, *byDay[d])
	}
	return out, nil
}

func (f *fakeStore) Close() error { return nil }
