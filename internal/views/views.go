// Package views derives the dashboard numbers from a store snapshot. Every
// function is pure and recomputed on read; nothing here is cached.
package views

import (
	"math"

	"github.com/sakif/caloriesnap/internal/model"
)

// Macros are gram totals.
type Macros struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fats    float64 `json:"fats"`
}

// TotalCalories sums the calories of logs. Empty input is 0.
func TotalCalories(logs []model.Log) float64 {
	var total float64
	for _, l := range logs {
		total += l.Calories
	}
	return total
}

func MacroTotals(logs []model.Log) Macros {
	var m Macros
	for _, l := range logs {
		m.Protein += l.Protein
		m.Carbs += l.Carbs
		m.Fats += l.Fats
	}
	return m
}

// LogsForMeal keeps the logs of one slot in their original order.
func LogsForMeal(logs []model.Log, meal model.MealType) []model.Log {
	out := make([]model.Log, 0)
	for _, l := range logs {
		if l.MealType == meal {
			out = append(out, l)
		}
	}
	return out
}

func MealCalories(logs []model.Log, meal model.MealType) float64 {
	return TotalCalories(LogsForMeal(logs, meal))
}

// Remaining is goal minus consumed, never below zero.
func Remaining(goal, consumed float64) float64 {
	return math.Max(0, goal-consumed)
}

// Progress is consumed as a percentage of goal, clamped to [0, 100]. A goal
// of zero or less counts as 1 so the bar fills instead of dividing by zero.
func Progress(consumed, goal float64) float64 {
	if goal <= 0 {
		goal = 1
	}
	return math.Min(100, math.Max(0, consumed/goal*100))
}

// Meal is one slot of the dashboard.
type Meal struct {
	Type     model.MealType
	Logs     []model.Log
	Calories float64
	Goal     int
	Progress float64
}

// Dashboard is everything the "today" screen shows.
type Dashboard struct {
	Goals     model.Goals
	Consumed  float64
	Remaining float64
	Progress  float64
	Macros    Macros
	Meals     []Meal // in model.MealTypes order
}

// BuildDashboard combines the aggregates for logs against the profile's
// goals. Without a profile the defaults are used.
func BuildDashboard(p *model.Profile, logs []model.Log, d model.GoalDefaults) Dashboard {
	var goals model.Goals
	if p != nil {
		goals = p.Goals(d)
	} else {
		goals = model.NewProfile("", "", d).Goals(d)
	}

	consumed := TotalCalories(logs)
	dash := Dashboard{
		Goals:     goals,
		Consumed:  consumed,
		Remaining: Remaining(float64(goals.DailyCalories), consumed),
		Progress:  Progress(consumed, float64(goals.DailyCalories)),
		Macros:    MacroTotals(logs),
		Meals:     make([]Meal, 0, len(model.MealTypes)),
	}

	for _, mt := range model.MealTypes {
		mealLogs := LogsForMeal(logs, mt)
		cal := TotalCalories(mealLogs)
		goal := goals.Meal(mt)
		dash.Meals = append(dash.Meals, Meal{
			Type:     mt,
			Logs:     mealLogs,
			Calories: cal,
			Goal:     goal,
			Progress: Progress(cal, float64(goal)),
		})
	}
	return dash
}
