package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sakif/caloriesnap/internal/apperror"
	"github.com/sakif/caloriesnap/internal/model"
)

// CreateProfile inserts p, or does nothing when the user already has one.
func (db *DB) CreateProfile(ctx context.Context, p *model.Profile) error {
	row := newProfileRow(p)
	err := db.withContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("postgres: creating profile %s: %w", p.ID, err)
	}
	return nil
}

// GetProfile returns the profile keyed by the user ID.
func (db *DB) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	var row profileRow
	if err := db.withContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("profile", id)
		}
		return nil, fmt.Errorf("postgres: getting profile %s: %w", id, err)
	}
	return row.toModel(), nil
}

// UpdateProfile writes only the fields present in u. A map is used rather than
// a struct so that gorm does not skip explicit zero values.
func (db *DB) UpdateProfile(ctx context.Context, id string, u model.ProfileUpdate) error {
	values := profileValues(u)
	if len(values) == 0 {
		_, err := db.GetProfile(ctx, id)
		return err
	}

	result := db.withContext(ctx).Model(&profileRow{}).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return fmt.Errorf("postgres: updating profile %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("profile", id)
	}
	return nil
}

func profileValues(u model.ProfileUpdate) map[string]any {
	values := make(map[string]any)
	if u.Email != nil {
		values["email"] = *u.Email
	}
	for column, v := range map[string]*int{
		"daily_calorie_goal": u.DailyCalorieGoal,
		"protein_goal":       u.ProteinGoal,
		"carbs_goal":         u.CarbsGoal,
		"fats_goal":          u.FatsGoal,
		"breakfast_goal":     u.BreakfastGoal,
		"lunch_goal":         u.LunchGoal,
		"dinner_goal":        u.DinnerGoal,
		"snack_goal":         u.SnackGoal,
	} {
		if v != nil {
			values[column] = *v
		}
	}
	return values
}
