// Package history backs the calendar view: the date ranges it asks the
// server for, the per-date lookup table built from the monthly summary and
// the over/under classification of each day.
//
// Both queries are delegated to the server. The only local work is turning
// rows into a map and comparing totals with the daily goal.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/caloriesnap/internal/model"
)

// Status of one calendar day.
type Status int

const (
	StatusNone  Status = iota // no entry for the date
	StatusUnder               // total ≤ goal
	StatusOver                // total > goal
)

func (s Status) String() string {
	switch s {
	case StatusUnder:
		return "under"
	case StatusOver:
		return "over"
	default:
		return "none"
	}
}

// MonthRange returns local midnight of the month's first day and the last
// millisecond of its last day. Both bounds are inclusive.
func MonthRange(month time.Time) (start, end time.Time) {
	y, m, _ := month.Date()
	loc := month.Location()
	start = time.Date(y, m, 1, 0, 0, 0, 0, loc)
	end = start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return start, end
}

// DayRange returns local 00:00:00.000 and 23:59:59.999 of day.
func DayRange(day time.Time) (start, end time.Time) {
	y, m, d := day.Date()
	loc := day.Location()
	start = time.Date(y, m, d, 0, 0, 0, 0, loc)
	end = time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc)
	return start, end
}

// Calendar maps YYYY-MM-DD to the day's calorie total.
type Calendar map[string]float64

// NewCalendar merges summary rows into a lookup table. Rows for the same
// date are added together.
func NewCalendar(rows []model.DailySummary) Calendar {
	c := make(Calendar, len(rows))
	for _, r := range rows {
		c[r.DateLog] += r.TotalCalories
	}
	return c
}

// Total returns the day's calories and whether the date has an entry.
func (c Calendar) Total(date time.Time) (float64, bool) {
	v, ok := c[date.Format(time.DateOnly)]
	return v, ok
}

// Classify compares the day's total with goal.
func (c Calendar) Classify(date time.Time, goal int) Status {
	total, ok := c.Total(date)
	switch {
	case !ok:
		return StatusNone
	case total > float64(goal):
		return StatusOver
	default:
		return StatusUnder
	}
}

// GoalFor is the daily goal days are classified against: the profile's, or
// the default when no profile is loaded.
func GoalFor(p model.Profile, ok bool) int {
	if !ok {
		return model.DefaultGoals().DailyCalories
	}
	return p.DailyCalorieGoal
}

// Remote is what the history screens read from. *remote.Client implements it.
type Remote interface {
	MonthlySummary(ctx context.Context, start, end time.Time) ([]model.DailySummary, error)
	ListLogs(ctx context.Context, q model.LogQuery) ([]model.Log, error)
}

// Service runs the two history queries.
type Service struct {
	remote Remote
}

func NewService(remote Remote) *Service {
	return &Service{remote: remote}
}

// Month fetches the summary for the month containing month.
func (s *Service) Month(ctx context.Context, month time.Time) (Calendar, error) {
	start, end := MonthRange(month)
	rows, err := s.remote.MonthlySummary(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("history: fetching %s: %w", start.Format("2006-01"), err)
	}
	return NewCalendar(rows), nil
}

// Day lists one day's logs, oldest first.
func (s *Service) Day(ctx context.Context, day time.Time) ([]model.Log, error) {
	start, end := DayRange(day)
	logs, err := s.remote.ListLogs(ctx, model.LogQuery{From: start, To: end, Ascending: true})
	if err != nil {
		return nil, fmt.Errorf("history: fetching %s: %w", start.Format(time.DateOnly), err)
	}
	return logs, nil
}
