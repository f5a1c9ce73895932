package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/caloriesnap/internal/apperror"
	"github.com/sakif/caloriesnap/internal/model"
	"github.com/sakif/caloriesnap/internal/repository"
	"github.com/sakif/caloriesnap/internal/validation"
)

// LogService stores and queries food logs and runs the monthly summary.
type LogService struct {
	logs   repository.LogRepository
	logger *slog.Logger
}

func NewLogService(logs repository.LogRepository, logger *slog.Logger) *LogService {
	return &LogService{logs: logs, logger: logger}
}

// Create stores a client-built log. The ID and timestamp come from the client;
// the owner must be the caller. An empty user_id is filled in with the caller.
func (s *LogService) Create(ctx context.Context, callerID string, l model.Log) (*model.Log, error) {
	if l.UserID == "" {
		l.UserID = callerID
	}
	if l.UserID != callerID {
		return nil, apperror.Forbidden("logs can only be created for yourself")
	}
	l.FoodName = strings.TrimSpace(l.FoodName)
	l.CreatedAt = l.CreatedAt.UTC()

	if err := validation.Log(l); err != nil {
		return nil, err
	}

	if err := s.logs.InsertLog(ctx, &l); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to insert log",
			slog.String("id", l.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/log: inserting %s: %w", l.ID, err)
	}

	s.logger.Info("log created",
		slog.String("id", l.ID),
		slog.String("meal", string(l.MealType)),
	)
	return &l, nil
}

// List returns the caller's logs; q.UserID is overwritten with the caller.
func (s *LogService) List(ctx context.Context, callerID string, q model.LogQuery) ([]model.Log, error) {
	q.UserID = callerID
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return nil, apperror.ValidationFailed("to", "range end is before range start")
	}

	logs, err := s.logs.ListLogs(ctx, q)
	if err != nil {
		s.logger.Error("failed to list logs", slog.String("error", err.Error()))
		return nil, fmt.Errorf("service/log: listing: %w", err)
	}
	return logs, nil
}

// Delete removes one of the caller's logs. Deleting an absent log succeeds.
func (s *LogService) Delete(ctx context.Context, callerID, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "log ID is required")
	}

	if err := s.logs.DeleteLog(ctx, callerID, id); err != nil {
		s.logger.Error("failed to delete log",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("service/log: deleting %s: %w", id, err)
	}

	s.logger.Info("log deleted", slog.String("id", id))
	return nil
}

// MonthlySummary aggregates the caller's logs per day within [start, end].
func (s *LogService) MonthlySummary(ctx context.Context, callerID string, start, end time.Time) ([]model.DailySummary, error) {
	if start.IsZero() || end.IsZero() {
		return nil, apperror.ValidationFailed("start_date", "start_date and end_date are required")
	}
	if end.Before(start) {
		return nil, apperror.ValidationFailed("end_date", "end_date is before start_date")
	}

	rows, err := s.logs.MonthlySummary(ctx, callerID, start, end)
	if err != nil {
		s.logger.Error("failed to summarise logs", slog.String("error", err.Error()))
		return nil, fmt.Errorf("service/log: summarising: %w", err)
	}
	return rows, nil
}
