package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/caloriesnap/internal/apperror"
	"github.com/sakif/caloriesnap/internal/model"
)

// InsertLog stores a log exactly as the client built it, ID included.
func (db *DB) InsertLog(ctx context.Context, l *model.Log) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO logs (id, user_id, food_name, calories, protein, carbs, fats, meal_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID,
		l.UserID,
		l.FoodName,
		l.Calories,
		l.Protein,
		l.Carbs,
		l.Fats,
		string(l.MealType),
		formatTime(l.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("log", l.ID)
		}
		return fmt.Errorf("sqlite: inserting log %s: %w", l.ID, err)
	}
	return nil
}

// ListLogs returns a user's logs, optionally bounded by an inclusive
// created_at range. Newest first unless q.Ascending.
func (db *DB) ListLogs(ctx context.Context, q model.LogQuery) ([]model.Log, error) {
	var (
		where = []string{"user_id = ?"}
		args  = []any{q.UserID}
	)
	if !q.From.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, formatTime(q.From))
	}
	if !q.To.IsZero() {
		where = append(where, "created_at <= ?")
		args = append(args, formatTime(q.To))
	}
	order := "DESC"
	if q.Ascending {
		order = "ASC"
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, food_name, calories, protein, carbs, fats, meal_type, created_at
		 FROM logs
		 WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY created_at `+order+`, id `+order,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing logs: %w", err)
	}
	defer rows.Close()

	logs := make([]model.Log, 0)
	for rows.Next() {
		var (
			l       model.Log
			meal    string
			created string
		)
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.FoodName,
			&l.Calories, &l.Protein, &l.Carbs, &l.Fats,
			&meal, &created,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning log row: %w", err)
		}
		l.MealType = model.MealType(meal)
		if l.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("sqlite: parsing created_at of log %s: %w", l.ID, err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating logs: %w", err)
	}

	return logs, nil
}

// DeleteLog removes one of the user's logs. The user_id filter plays the role
// of row-level security: another user's log ID simply matches nothing. Zero
// affected rows is success.
func (db *DB) DeleteLog(ctx context.Context, userID, id string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM logs WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting log %s: %w", id, err)
	}
	return nil
}

// MonthlySummary groups the user's logs in [start, end] by calendar date in
// start's UTC offset. created_at is stored in UTC, so the date is taken after
// shifting it by that offset.
func (db *DB) MonthlySummary(ctx context.Context, userID string, start, end time.Time) ([]model.DailySummary, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT date(created_at, ?) AS date_log, SUM(calories), COUNT(*)
		 FROM logs
		 WHERE user_id = ? AND created_at >= ? AND created_at <= ?
		 GROUP BY date_log
		 ORDER BY date_log`,
		offsetModifier(start), userID, formatTime(start), formatTime(end),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: summarising logs: %w", err)
	}
	defer rows.Close()

	summary := make([]model.DailySummary, 0)
	for rows.Next() {
		var d model.DailySummary
		if err := rows.Scan(&d.DateLog, &d.TotalCalories, &d.LogCount); err != nil {
			return nil, fmt.Errorf("sqlite: scanning summary row: %w", err)
		}
		summary = append(summary, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating summary: %w", err)
	}

	return summary, nil
}

// offsetModifier renders t's UTC offset as an SQLite date modifier, e.g.
// "+330 minutes".
func offsetModifier(t time.Time) string {
	_, offset := t.Zone()
	return fmt.Sprintf("%+d minutes", offset/60)
}
