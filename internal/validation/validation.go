// Package validation holds the schema contract for logs, credentials and the
// goal settings form.
//
// Each check runs in field order and stops at the first violated rule; the
// returned *apperror.AppError carries that rule's message so the caller can
// show it inline. The same rules run on the client before a log is sent and
// on the server before it is stored.
package validation

import (
	"fmt"
	"math"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/sakif/caloriesnap/internal/apperror"
	"github.com/sakif/caloriesnap/internal/model"
)

// Log constraints.
const (
	MinFoodNameLength = 2
	MaxFoodNameLength = 100
	MaxCalories       = 5000
	MaxMacroGrams     = 1000
	MinPasswordLength = 6
)

// checker records the first failure and ignores the rest.
type checker struct {
	err *apperror.AppError
}

func (c *checker) check(ok bool, field, message string) {
	if c.err == nil && !ok {
		c.err = apperror.ValidationFailed(field, message)
	}
}

func (c *checker) result() error {
	if c.err == nil {
		return nil
	}
	return c.err
}

// Log validates a log against the stored-record constraints.
func Log(l model.Log) error {
	var c checker

	c.check(isUUID(l.ID), "id", "Log id must be a valid UUID")
	c.check(isUUID(l.UserID), "user_id", "User id must be a valid UUID")

	nameLen := utf8.RuneCountInString(l.FoodName)
	c.check(nameLen >= MinFoodNameLength, "food_name", "Food name is required")
	c.check(nameLen <= MaxFoodNameLength, "food_name",
		fmt.Sprintf("Food name must be %d characters or less", MaxFoodNameLength))

	c.check(!math.IsNaN(l.Calories) && l.Calories >= 0, "calories", "Calories cannot be negative")
	c.check(l.Calories <= MaxCalories, "calories",
		fmt.Sprintf("Calories must be %d or less", MaxCalories))

	macro(&c, "protein", "Protein", l.Protein)
	macro(&c, "carbs", "Carbs", l.Carbs)
	macro(&c, "fats", "Fats", l.Fats)

	c.check(l.MealType.Valid(), "meal_type", "Meal type must be one of breakfast, lunch, dinner, snack")
	c.check(!l.CreatedAt.IsZero(), "created_at", "Created at must be a valid timestamp")

	return c.result()
}

func macro(c *checker, field, label string, v float64) {
	c.check(!math.IsNaN(v) && v >= 0 && v <= MaxMacroGrams, field,
		fmt.Sprintf("%s must be between 0 and %d", label, MaxMacroGrams))
}

// Credentials validates an email/password pair for sign-up and login.
func Credentials(email, password string) error {
	var c checker
	c.check(isEmail(email), "email", "Invalid email address")
	c.check(len(password) >= MinPasswordLength, "password",
		fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	return c.result()
}

// MealGoals checks the settings form: no negative goal, and the four meal
// slots must add up to the daily calorie goal.
func MealGoals(g model.Goals) error {
	var c checker
	c.check(g.DailyCalories >= 0, "daily_calorie_goal", "Daily calorie goal cannot be negative")
	c.check(g.Protein >= 0 && g.Carbs >= 0 && g.Fats >= 0, "macro_goals", "Macro goals cannot be negative")
	c.check(g.Breakfast >= 0 && g.Lunch >= 0 && g.Dinner >= 0 && g.Snack >= 0, "meal_goals",
		"Meal goals cannot be negative")

	sum := g.MealSum()
	c.check(sum == g.DailyCalories, "meal_goals",
		fmt.Sprintf("Meal goals sum to %d, but daily total is %d. Please adjust.", sum, g.DailyCalories))
	return c.result()
}

// ProfileUpdate rejects negative goals in a partial update. Absent fields are
// not checked, and the meal-sum rule is left to MealGoals.
func ProfileUpdate(u model.ProfileUpdate) error {
	var c checker
	for _, f := range []struct {
		name string
		v    *int
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
		c.check(f.v == nil || *f.v >= 0, f.name, fmt.Sprintf("%s cannot be negative", f.name))
	}
	return c.result()
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// isEmail accepts a bare address only; "Name <a@b.c>" forms are rejected.
func isEmail(s string) bool {
	s = strings.TrimSpace(s)
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@")+1:], ".")
}
