// Package syncer is the only writer of the client store.
//
// WRITE-THEN-REFLECT:
// Every action validates locally, sends the write to the server and mutates
// the store only after the server said yes. A failed write leaves the store
// exactly as it was, so the local state never shows something the server
// does not have. There is no optimistic update, no rollback and no retry.
//
// Errors come back as values:
//
//	apperror.ErrValidation  rejected locally, nothing was sent
//	apperror.ErrRemote      the server refused or could not be reached
//	apperror.ErrUnauthorized no session
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/caloriesnap/internal/apperror"
	"github.com/sakif/caloriesnap/internal/model"
	"github.com/sakif/caloriesnap/internal/store"
	"github.com/sakif/caloriesnap/internal/validation"
)

// Remote is the part of the server API the syncer writes through.
// *remote.Client implements it.
type Remote interface {
	CurrentUser(ctx context.Context) (*model.User, error)
	GetProfile(ctx context.Context, id string) (*model.Profile, error)
	UpdateProfile(ctx context.Context, id string, u model.ProfileUpdate) error
	ListLogs(ctx context.Context, q model.LogQuery) ([]model.Log, error)
	InsertLog(ctx context.Context, l model.Log) error
	DeleteLog(ctx context.Context, id string) error
}

type Syncer struct {
	remote Remote
	store  *store.Store
	logger *slog.Logger
}

func New(remote Remote, st *store.Store, logger *slog.Logger) *Syncer {
	return &Syncer{remote: remote, store: st, logger: logger}
}

// AddUserLog validates l, inserts it remotely and prepends it locally.
func (s *Syncer) AddUserLog(ctx context.Context, l model.Log) error {
	if err := validation.Log(l); err != nil {
		return err
	}

	if err := s.remote.InsertLog(ctx, l); err != nil {
		s.logger.Warn("insert log failed",
			slog.String("id", l.ID),
			slog.String("error", err.Error()),
		)
		return asRemote(err)
	}

	s.store.AddLog(l)
	s.logger.Info("log added", slog.String("id", l.ID), slog.String("meal", string(l.MealType)))
	return nil
}

// DeleteUserLog deletes remotely, then locally. An ID the server does not
// know is still a success and a local no-op.
func (s *Syncer) DeleteUserLog(ctx context.Context, id string) error {
	if err := s.remote.DeleteLog(ctx, id); err != nil {
		s.logger.Warn("delete log failed",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return asRemote(err)
	}

	s.store.RemoveLog(id)
	s.logger.Info("log deleted", slog.String("id", id))
	return nil
}

// UpdateUserProfile sends a partial update and merges it into the loaded
// profile. With no profile loaded the remote write still stands and nothing
// is merged.
func (s *Syncer) UpdateUserProfile(ctx context.Context, id string, u model.ProfileUpdate) error {
	if err := s.remote.UpdateProfile(ctx, id, u); err != nil {
		s.logger.Warn("update profile failed",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return asRemote(err)
	}

	if current, ok := s.store.Profile(); ok {
		s.store.SetProfile(u.Apply(current))
	}
	s.logger.Info("profile updated", slog.String("id", id))
	return nil
}

// Sync is the initial load of a session: who am I, my profile, my logs
// (newest first). The profile and log halves are independent; a failing half
// is logged and reported while the other is still applied.
func (s *Syncer) Sync(ctx context.Context) error {
	user, err := s.remote.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("syncer: resolving current user: %w", err)
	}

	var errs []error

	profile, err := s.remote.GetProfile(ctx, user.ID)
	if err != nil {
		s.logger.Error("profile sync failed", slog.String("error", err.Error()))
		errs = append(errs, fmt.Errorf("syncer: fetching profile: %w", err))
	} else {
		s.store.SetProfile(*profile)
	}

	logs, err := s.remote.ListLogs(ctx, model.LogQuery{UserID: user.ID})
	if err != nil {
		s.logger.Error("log sync failed", slog.String("error", err.Error()))
		errs = append(errs, fmt.Errorf("syncer: fetching logs: %w", err))
	} else {
		s.store.SetLogs(logs)
	}

	return errors.Join(errs...)
}

// LogFood turns a food estimate into a log for the signed-in user and adds it.
func (s *Syncer) LogFood(ctx context.Context, item model.FoodItem, meal model.MealType, now time.Time) (model.Log, error) {
	p, ok := s.store.Profile()
	if !ok {
		return model.Log{}, apperror.Unauthorized("You must be logged in to add food")
	}

	l := model.NewLogFromFood(p.ID, item, meal, now)
	if err := s.AddUserLog(ctx, l); err != nil {
		return model.Log{}, err
	}
	return l, nil
}

// SaveGoals is the settings form: the meal goals must add up to the daily
// goal before anything is sent.
func (s *Syncer) SaveGoals(ctx context.Context, goals model.Goals) error {
	if err := validation.MealGoals(goals); err != nil {
		return err
	}

	p, ok := s.store.Profile()
	if !ok {
		return apperror.Unauthorized("You must be logged in to save goals")
	}
	return s.UpdateUserProfile(ctx, p.ID, goals.Update())
}

// asRemote keeps apperror kinds from the remote adapter and classifies
// anything else as a remote failure.
func asRemote(err error) error {
	if errors.Is(err, apperror.ErrRemote) || errors.Is(err, apperror.ErrUnauthorized) {
		return err
	}
	return apperror.Remote(0, err.Error())
}
