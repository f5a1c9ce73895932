package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sakif/caloriesnap/internal/apperror"
	"github.com/sakif/caloriesnap/internal/model"
)

// CreateProfile inserts p, or does nothing when the user already has a profile.
// This is how the implicit first-session profile is created without racing a
// concurrent first request.
func (db *DB) CreateProfile(ctx context.Context, p *model.Profile) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO profiles (id, email, daily_calorie_goal, protein_goal, carbs_goal, fats_goal,
		                       breakfast_goal, lunch_goal, dinner_goal, snack_goal)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		p.ID,
		p.Email,
		p.DailyCalorieGoal,
		p.ProteinGoal,
		p.CarbsGoal,
		p.FatsGoal,
		p.BreakfastGoal,
		p.LunchGoal,
		p.DinnerGoal,
		p.SnackGoal,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating profile %s: %w", p.ID, err)
	}
	return nil
}

// GetProfile returns the profile keyed by the user ID.
func (db *DB) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	var (
		p                               model.Profile
		email                           sql.NullString
		breakfast, lunch, dinner, snack sql.NullInt64
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, email, daily_calorie_goal, protein_goal, carbs_goal, fats_goal,
		        breakfast_goal, lunch_goal, dinner_goal, snack_goal
		 FROM profiles WHERE id = ?`,
		id,
	).Scan(
		&p.ID,
		&email,
		&p.DailyCalorieGoal,
		&p.ProteinGoal,
		&p.CarbsGoal,
		&p.FatsGoal,
		&breakfast,
		&lunch,
		&dinner,
		&snack,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("profile", id)
		}
		return nil, fmt.Errorf("sqlite: getting profile %s: %w", id, err)
	}

	if email.Valid {
		p.Email = &email.String
	}
	p.BreakfastGoal = nullableInt(breakfast)
	p.LunchGoal = nullableInt(lunch)
	p.DinnerGoal = nullableInt(dinner)
	p.SnackGoal = nullableInt(snack)

	return &p, nil
}

// UpdateProfile writes only the fields present in u.
//
// The SET clause is assembled from a fixed list of column names; only the values
// are user-supplied and they go through placeholders.
func (db *DB) UpdateProfile(ctx context.Context, id string, u model.ProfileUpdate) error {
	sets, args := profileAssignments(u)
	if len(sets) == 0 {
		// Nothing to write, but the caller still expects NotFound for a missing profile.
		_, err := db.GetProfile(ctx, id)
		return err
	}

	args = append(args, id)
	result, err := db.conn.ExecContext(ctx,
		`UPDATE profiles SET `+strings.Join(sets, ", ")+` WHERE id = ?`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating profile %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("profile", id)
	}
	return nil
}

func profileAssignments(u model.ProfileUpdate) ([]string, []any) {
	var (
		sets []string
		args []any
	)
	add := func(column string, v any) {
		sets = append(sets, column+" = ?")
		args = append(args, v)
	}
	if u.Email != nil {
		add("email", *u.Email)
	}
	for _, f := range []struct {
		column string
		v      *int
	}{
		{"daily_calorie_goal", u.DailyCalorieGoal},
		{"protein_goal", u.ProteinGoal},
		{"carbs_goal", u.CarbsGoal},
		{"fats_goal", u.FatsGoal},
		{"breakfast_goal", u.BreakfastGoal},
		{"lunch_goal", u.LunchGoal},
		{"dinner_goal", u.DinnerGoal},
		{"snack_goal", u.SnackGoal},
	} {
		if f.v != nil {
			add(f.column, *f.v)
		}
	}
	return sets, args
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
