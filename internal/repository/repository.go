// Package repository declares the storage contracts of the server.
//
// There are three logical resources: users (the auth provider's accounts),
// profiles (one per user, keyed by user ID) and logs (keyed by log ID, owned by
// a user), plus the monthly aggregation procedure. Two implementations exist:
// repository/sqlite (default, embedded) and repository/postgres (gorm).
package repository

import (
	"context"
	"time"

	"github.com/sakif/caloriesnap/internal/model"
)

type UserRepository interface {
	// CreateUser inserts an email/password account. A duplicate email is
	// reported as apperror.ErrConflict.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	// UpsertGitHub creates or refreshes the account linked to user.GitHubID.
	UpsertGitHub(ctx context.Context, user *model.User) error
}

type ProfileRepository interface {
	// CreateProfile inserts p unless a profile with p.ID already exists, in
	// which case it does nothing.
	CreateProfile(ctx context.Context, p *model.Profile) error
	GetProfile(ctx context.Context, id string) (*model.Profile, error)
	// UpdateProfile applies the present fields of u. Missing profile →
	// apperror.ErrNotFound.
	UpdateProfile(ctx context.Context, id string, u model.ProfileUpdate) error
}

type LogRepository interface {
	// InsertLog stores l as given; the caller supplies the ID. A duplicate ID
	// is reported as apperror.ErrConflict.
	InsertLog(ctx context.Context, l *model.Log) error
	ListLogs(ctx context.Context, q model.LogQuery) ([]model.Log, error)
	// DeleteLog removes the log with id owned by userID. Deleting something
	// that is not there is not an error.
	DeleteLog(ctx context.Context, userID, id string) error
	// MonthlySummary aggregates a user's logs per calendar date within the
	// inclusive [start, end] range, ordered by date. Dates are taken in
	// start's UTC offset.
	MonthlySummary(ctx context.Context, userID string, start, end time.Time) ([]model.DailySummary, error)
}

// Store groups every repository; both backends implement it.
type Store interface {
	UserRepository
	ProfileRepository
	LogRepository
	Close() error
}
