package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MealType is one of the four fixed meal slots a Log is tagged with.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// MealTypes lists the slots in display order.
var MealTypes = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack}

// Valid reports whether m is one of the four known slots.
func (m MealType) Valid() bool {
	switch m {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return true
	}
	return false
}

// ParseMealType accepts the slot name case-insensitively plus the plural
// "snacks" some users type.
func ParseMealType(s string) (MealType, bool) {
	switch m := MealType(strings.ToLower(strings.TrimSpace(s))); m {
	case "snacks":
		return MealSnack, true
	default:
		return m, m.Valid()
	}
}

// Log is one food-logging event. Logs are immutable: correcting an entry is
// delete + re-create, so there is no UpdatedAt.
//
// The ID is generated by the client (UUID v4) before the insert is sent. A
// second insert with the same ID is rejected by the server as a conflict.
type Log struct {
	ID        string    `json:"id"         db:"id"`
	UserID    string    `json:"user_id"    db:"user_id"`
	FoodName  string    `json:"food_name"  db:"food_name"`
	Calories  float64   `json:"calories"   db:"calories"`
	Protein   float64   `json:"protein"    db:"protein"`
	Carbs     float64   `json:"carbs"      db:"carbs"`
	Fats      float64   `json:"fats"       db:"fats"`
	MealType  MealType  `json:"meal_type"  db:"meal_type"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewLogFromFood turns a FoodItem template into a Log owned by userID.
// Absent macros become 0 and the timestamp is normalised to UTC.
func NewLogFromFood(userID string, item FoodItem, meal MealType, now time.Time) Log {
	return Log{
		ID:        uuid.NewString(),
		UserID:    userID,
		FoodName:  item.FoodName,
		Calories:  item.Calories,
		Protein:   deref(item.Protein),
		Carbs:     deref(item.Carbs),
		Fats:      deref(item.Fats),
		MealType:  meal,
		CreatedAt: now.UTC(),
	}
}

// LogQuery selects a user's logs. Zero From/To means unbounded on that side;
// both bounds are inclusive.
type LogQuery struct {
	UserID    string
	From      time.Time
	To        time.Time
	Ascending bool
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
