package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sakif/caloriesnap/internal/apperror"
	"github.com/sakif/caloriesnap/internal/model"
)

// InsertLog stores a client-built log, ID included.
func (db *DB) InsertLog(ctx context.Context, l *model.Log) error {
	row := newLogRow(l)
	if err := db.withContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Conflict("log", l.ID)
		}
		return fmt.Errorf("postgres: inserting log %s: %w", l.ID, err)
	}
	return nil
}

// ListLogs returns a user's logs within an optional inclusive range.
func (db *DB) ListLogs(ctx context.Context, q model.LogQuery) ([]model.Log, error) {
	tx := db.withContext(ctx).Where("user_id = ?", q.UserID)
	if !q.From.IsZero() {
		tx = tx.Where("created_at >= ?", q.From.UTC())
	}
	if !q.To.IsZero() {
		tx = tx.Where("created_at <= ?", q.To.UTC())
	}
	order := "created_at DESC, id DESC"
	if q.Ascending {
		order = "created_at ASC, id ASC"
	}

	var rows []logRow
	if err := tx.Order(order).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("postgres: listing logs: %w", err)
	}

	logs := make([]model.Log, 0, len(rows))
	for _, r := range rows {
		logs = append(logs, r.toModel())
	}
	return logs, nil
}

// DeleteLog removes one of the user's logs; absence is success.
func (db *DB) DeleteLog(ctx context.Context, userID, id string) error {
	err := db.withContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&logRow{}).Error
	if err != nil {
		return fmt.Errorf("postgres: deleting log %s: %w", id, err)
	}
	return nil
}

// MonthlySummary groups the user's logs in [start, end] by calendar date in
// start's UTC offset.
func (db *DB) MonthlySummary(ctx context.Context, userID string, start, end time.Time) ([]model.DailySummary, error) {
	_, offset := start.Zone()
	summary := make([]model.DailySummary, 0)
	err := db.withContext(ctx).
		Model(&logRow{}).
		Select(db.dateExpr()+" AS date_log, SUM(calories) AS total_calories, COUNT(*) AS log_count", offset/60).
		Where("user_id = ? AND created_at >= ? AND created_at <= ?", userID, start.UTC(), end.UTC()).
		Group("date_log").
		Order("date_log").
		Scan(&summary).Error
	if err != nil {
		return nil, fmt.Errorf("postgres: summarising logs: %w", err)
	}
	return summary, nil
}
