package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sakif/caloriesnap/internal/apperror"
	"github.com/sakif/caloriesnap/internal/model"
)

// CreateUser inserts an email/password account with a fresh UUID.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now

	row := userRow{
		ID:           user.ID,
		Email:        optionalString(user.Email),
		PasswordHash: user.PasswordHash,
		Login:        user.Login,
		AvatarURL:    user.AvatarURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.withContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Conflict("user", user.Email)
		}
		return fmt.Errorf("postgres: inserting user %s: %w", user.Email, err)
	}
	return nil
}

// UpsertGitHub inserts or refreshes the account linked to a GitHub ID,
// keeping the internal ID stable across logins.
func (db *DB) UpsertGitHub(ctx context.Context, user *model.User) error {
	return db.withContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		var existing userRow
		err := tx.Where("github_id = ?", user.GitHubID).Take(&existing).Error
		switch {
		case err == nil:
			user.ID = existing.ID
			user.CreatedAt = existing.CreatedAt.UTC()
			user.UpdatedAt = now
			if err := tx.Model(&userRow{}).Where("id = ?", existing.ID).Updates(map[string]any{
				"login":      user.Login,
				"avatar_url": user.AvatarURL,
				"updated_at": now,
			}).Error; err != nil {
				return fmt.Errorf("postgres: updating user %s: %w", user.ID, err)
			}
			return nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("postgres: looking up user by github_id %d: %w", user.GitHubID, err)
		}

		user.ID = uuid.NewString()
		user.CreatedAt = now
		user.UpdatedAt = now
		githubID := user.GitHubID
		row := userRow{
			ID:        user.ID,
			Email:     optionalString(user.Email),
			GitHubID:  &githubID,
			Login:     user.Login,
			AvatarURL: user.AvatarURL,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.Conflict("user", user.Email)
			}
			return fmt.Errorf("postgres: inserting user (githubID=%d): %w", user.GitHubID, err)
		}
		return nil
	})
}

// GetUserByID returns apperror.ErrNotFound when no user has that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.findUser(ctx, "id = ?", id)
}

// GetUserByEmail is the login lookup.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.findUser(ctx, "email = ?", email)
}

func (db *DB) findUser(ctx context.Context, cond string, key string) (*model.User, error) {
	var row userRow
	if err := db.withContext(ctx).Where(cond, key).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user", key)
		}
		return nil, fmt.Errorf("postgres: getting user %s: %w", key, err)
	}
	return row.toModel(), nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
