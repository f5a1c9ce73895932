package postgres

import (
	"time"

	"github.com/sakif/caloriesnap/internal/model"
)

// userRow mirrors the users table. Email and GitHubID are nullable so that a
// password account has no github_id and a GitHub account may have no email;
// both carry a unique index that ignores NULLs.
type userRow struct {
	ID           string  `gorm:"primaryKey;type:varchar(36)"`
	Email        *string `gorm:"uniqueIndex"`
	PasswordHash string  `gorm:"not null"`
	GitHubID     *int64  `gorm:"column:github_id;uniqueIndex"`
	Login        string  `gorm:"not null"`
	AvatarURL    string  `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

func (r userRow) toModel() *model.User {
	u := &model.User{
		ID:           r.ID,
		PasswordHash: r.PasswordHash,
		Login:        r.Login,
		AvatarURL:    r.AvatarURL,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
	if r.Email != nil {
		u.Email = *r.Email
	}
	if r.GitHubID != nil {
		u.GitHubID = *r.GitHubID
	}
	return u
}

type profileRow struct {
	ID               string `gorm:"primaryKey;type:varchar(36)"`
	Email            *string
	DailyCalorieGoal int `gorm:"not null"`
	ProteinGoal      int `gorm:"not null"`
	CarbsGoal        int `gorm:"not null"`
	FatsGoal         int `gorm:"not null"`
	BreakfastGoal    *int
	LunchGoal        *int
	DinnerGoal       *int
	SnackGoal        *int
}

func (profileRow) TableName() string { return "profiles" }

func newProfileRow(p *model.Profile) profileRow {
	return profileRow{
		ID:               p.ID,
		Email:            p.Email,
		DailyCalorieGoal: p.DailyCalorieGoal,
		ProteinGoal:      p.ProteinGoal,
		CarbsGoal:        p.CarbsGoal,
		FatsGoal:         p.FatsGoal,
		BreakfastGoal:    p.BreakfastGoal,
		LunchGoal:        p.LunchGoal,
		DinnerGoal:       p.DinnerGoal,
		SnackGoal:        p.SnackGoal,
	}
}

func (r profileRow) toModel() *model.Profile {
	return &model.Profile{
		ID:               r.ID,
		Email:            r.Email,
		DailyCalorieGoal: r.DailyCalorieGoal,
		ProteinGoal:      r.ProteinGoal,
		CarbsGoal:        r.CarbsGoal,
		FatsGoal:         r.FatsGoal,
		BreakfastGoal:    r.BreakfastGoal,
		LunchGoal:        r.LunchGoal,
		DinnerGoal:       r.DinnerGoal,
		SnackGoal:        r.SnackGoal,
	}
}

type logRow struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `gorm:"not null;type:varchar(36);index:idx_logs_user_created,priority:1"`
	FoodName  string    `gorm:"not null"`
	Calories  float64   `gorm:"not null;check:chk_logs_calories,calories >= 0"`
	Protein   float64   `gorm:"not null"`
	Carbs     float64   `gorm:"not null"`
	Fats      float64   `gorm:"not null"`
	MealType  string    `gorm:"not null;check:chk_logs_meal_type,meal_type IN ('breakfast','lunch','dinner','snack')"`
	CreatedAt time.Time `gorm:"not null;index:idx_logs_user_created,priority:2"`
}

func (logRow) TableName() string { return "logs" }

func newLogRow(l *model.Log) logRow {
	return logRow{
		ID:        l.ID,
		UserID:    l.UserID,
		FoodName:  l.FoodName,
		Calories:  l.Calories,
		Protein:   l.Protein,
		Carbs:     l.Carbs,
		Fats:      l.Fats,
		MealType:  string(l.MealType),
		CreatedAt: l.CreatedAt.UTC(),
	}
}

func (r logRow) toModel() model.Log {
	return model.Log{
		ID:        r.ID,
		UserID:    r.UserID,
		FoodName:  r.FoodName,
		Calories:  r.Calories,
		Protein:   r.Protein,
		Carbs:     r.Carbs,
		Fats:      r.Fats,
		MealType:  model.MealType(r.MealType),
		CreatedAt: r.CreatedAt.UTC(),
	}
}
