package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/caloriesnap/internal/apperror"
	"github.com/sakif/caloriesnap/internal/model"
	"github.com/sakif/caloriesnap/internal/repository"
	"github.com/sakif/caloriesnap/internal/validation"
)

// ProfileService reads and patches a user's goal profile.
type ProfileService struct {
	profiles repository.ProfileRepository
	users    repository.UserRepository
	defaults model.GoalDefaults
	logger   *slog.Logger
}

func NewProfileService(
	profiles repository.ProfileRepository,
	users repository.UserRepository,
	defaults model.GoalDefaults,
	logger *slog.Logger,
) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		users:    users,
		defaults: defaults,
		logger:   logger,
	}
}

// Get returns the caller's profile, creating it with the default goals on
// first access. Asking for another user's profile is Forbidden.
func (s *ProfileService) Get(ctx context.Context, callerID, id string) (*model.Profile, error) {
	if err := s.owns(callerID, id); err != nil {
		return nil, err
	}

	p, err := s.profiles.GetProfile(ctx, id)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/profile: getting %s: %w", id, err)
	}

	var email string
	if u, err := s.users.GetUserByID(ctx, id); err == nil {
		email = u.Email
	}
	created := model.NewProfile(id, email, s.defaults)
	if err := s.profiles.CreateProfile(ctx, &created); err != nil {
		s.logger.Error("failed to create profile",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/profile: creating %s: %w", id, err)
	}
	s.logger.Info("profile created", slog.String("id", id))

	// Re-read: a concurrent first request may have won the insert.
	return s.profiles.GetProfile(ctx, id)
}

// Update applies a partial update and returns the stored result.
func (s *ProfileService) Update(ctx context.Context, callerID, id string, u model.ProfileUpdate) (*model.Profile, error) {
	if err := s.owns(callerID, id); err != nil {
		return nil, err
	}
	if u.IsEmpty() {
		return nil, apperror.ValidationFailed("profile", "No profile fields to update")
	}
	if err := validation.ProfileUpdate(u); err != nil {
		return nil, err
	}

	if err := s.profiles.UpdateProfile(ctx, id, u); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("failed to update profile",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/profile: updating %s: %w", id, err)
	}

	s.logger.Info("profile updated", slog.String("id", id))
	return s.profiles.GetProfile(ctx, id)
}

func (s *ProfileService) owns(callerID, id string) error {
	if id == "" {
		return apperror.ValidationFailed("id", "profile ID is required")
	}
	if callerID != id {
		return apperror.Forbidden("you can only access your own profile")
	}
	return nil
}
