// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database: it lives inside the server binary as a single file.
// A personal tracker has one writer and a handful of rows per day, which is exactly the
// workload SQLite is good at. Tests use ":memory:" for a fresh database per test.
//
// modernc.org/sqlite is a pure Go translation of the SQLite C code, so no C compiler is
// needed to build or cross-compile the server.
//
// TIMESTAMPS:
// Log timestamps are stored as fixed-width UTC text (see timeLayout). Fixed width makes
// lexical order equal chronological order, so range filters and ORDER BY work on the raw
// column, and SQLite's date() function can group by calendar day.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/caloriesnap/internal/repository"
)

// timeLayout always renders a UTC time as exactly 30 characters,
// e.g. 2024-06-01T08:00:00.000000000Z.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// compile-time check that *DB implements every repository contract
var _ repository.Store = (*DB)(nil)

// DB wraps a sql.DB connection pool and provides repository methods.
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/caloriesnap.db" → file-based database (persistent)
//   - ":memory:"            → in-memory database (tests)
//
// sql.Open() only creates a pool manager; Ping forces the first real connection so a bad
// path or permission problem surfaces here rather than on the first request.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// An in-memory database lives and dies with its connection. Pinning the
	// pool to one connection keeps every query on the same database.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers (history queries) run while a log insert is in flight.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite; profiles and logs reference users.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE ... IF NOT EXISTS makes it safe to run on every start.
//
// The CHECK constraints mirror the log schema enforced by the validation package, so a
// client that skips validation still cannot store an out-of-range row.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			github_id     INTEGER UNIQUE,
			login         TEXT NOT NULL DEFAULT '',
			avatar_url    TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS profiles (
			id                 TEXT PRIMARY KEY REFERENCES users(id),
			email              TEXT,
			daily_calorie_goal INTEGER NOT NULL DEFAULT 2000,
			protein_goal       INTEGER NOT NULL DEFAULT 150,
			carbs_goal         INTEGER NOT NULL DEFAULT 250,
			fats_goal          INTEGER NOT NULL DEFAULT 70,
			breakfast_goal     INTEGER,
			lunch_goal         INTEGER,
			dinner_goal        INTEGER,
			snack_goal         INTEGER
		);
	`)
	if err != nil {
		return fmt.Errorf("creating profiles table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS logs (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id),
			food_name  TEXT NOT NULL,
			calories   REAL NOT NULL DEFAULT 0 CHECK (calories BETWEEN 0 AND 5000),
			protein    REAL NOT NULL DEFAULT 0 CHECK (protein BETWEEN 0 AND 1000),
			carbs      REAL NOT NULL DEFAULT 0 CHECK (carbs BETWEEN 0 AND 1000),
			fats       REAL NOT NULL DEFAULT 0 CHECK (fats BETWEEN 0 AND 1000),
			meal_type  TEXT NOT NULL CHECK (meal_type IN ('breakfast', 'lunch', 'dinner', 'snack')),
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_logs_user_created ON logs(user_id, created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating logs table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a PRIMARY KEY or UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	}
	return false
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// nullString maps "" to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
