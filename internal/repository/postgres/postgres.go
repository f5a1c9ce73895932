// Package postgres implements the repository interfaces on top of gorm, for
// deployments that keep their data in PostgreSQL.
//
// The schema matches the sqlite backend column for column. Row structs live in
// this package so the domain types in model stay free of ORM tags.
//
// Tests run the same code against gorm's SQLite dialect; the only dialect
// specific SQL is the calendar-date expression used by MonthlySummary.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sakif/caloriesnap/internal/repository"
)

var _ repository.Store = (*DB)(nil)

// DB wraps a gorm handle.
type DB struct {
	gorm *gorm.DB
}

// Open connects to PostgreSQL using a URL or key=value DSN and migrates the schema.
func Open(dsn string, logger *slog.Logger) (*DB, error) {
	dsn = NormalizeDSN(dsn)
	if dsn == "" {
		return nil, errors.New("postgres: DSN is empty")
	}
	return New(pgdriver.Open(dsn), logger)
}

// New opens a DB on any gorm dialector. Production code goes through Open.
func New(dialector gorm.Dialector, logger *slog.Logger) (*DB, error) {
	g, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.New(slogWriter{logger}, gormlogger.Config{SlowThreshold: 200 * time.Millisecond, LogLevel: gormlogger.Warn}),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: opening database: %w", err)
	}

	if err := g.Exec("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("postgres: pinging database: %w", err)
	}

	if err := g.AutoMigrate(&userRow{}, &profileRow{}, &logRow{}); err != nil {
		return nil, fmt.Errorf("postgres: running migrations: %w", err)
	}

	return &DB{gorm: g}, nil
}

// Close releases the underlying connection pool.
func (db *DB) Close() error {
	sqlDB, err := db.gorm.DB()
	if err != nil {
		return fmt.Errorf("postgres: getting sql.DB: %w", err)
	}
	return sqlDB.Close()
}

func (db *DB) withContext(ctx context.Context) *gorm.DB {
	return db.gorm.WithContext(ctx)
}

// dateExpr renders created_at as a YYYY-MM-DD calendar date shifted by a
// number of minutes, bound to its single placeholder.
func (db *DB) dateExpr() string {
	if db.gorm.Dialector.Name() == "postgres" {
		return "to_char((created_at AT TIME ZONE 'UTC') + (? * interval '1 minute'), 'YYYY-MM-DD')"
	}
	return "date(created_at, printf('%+d minutes', ?))"
}

// NormalizeDSN trims quotes and whitespace from a DSN. URL DSNs pass through;
// key=value DSNs get sslmode=disable appended when no sslmode is given.
func NormalizeDSN(raw string) string {
	s := strings.Trim(strings.TrimSpace(raw), "\"'")
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return s
	}
	if !strings.Contains(s, "=") {
		return s
	}
	cleaned := strings.Join(strings.Fields(s), " ")
	if !strings.Contains(strings.ToLower(cleaned), "sslmode=") {
		cleaned += " sslmode=disable"
	}
	return cleaned
}

// slogWriter lets gorm's logger print through slog.
type slogWriter struct {
	logger *slog.Logger
}

func (w slogWriter) Printf(format string, args ...any) {
	if w.logger == nil {
		return
	}
	w.logger.Warn("gorm", slog.String("detail", fmt.Sprintf(format, args...)))
}
