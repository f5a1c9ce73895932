// Package config loads the settings of both executables: the server reads the
// environment (optionally seeded from a .env file), the terminal client reads
// and writes a small TOML file in the user's config directory.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sakif/caloriesnap/internal/auth"
	"github.com/sakif/caloriesnap/internal/nutrition"
)

// Database backends.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Server holds everything cmd/server needs.
type Server struct {
	Port     int
	DBDriver string
	DBPath   string // sqlite file
	DBURL    string // postgres DSN

	JWTSecret string
	TokenTTL  time.Duration

	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string

	GeminiAPIKey     string
	OpenFoodFactsURL string

	LogLevel slog.Level
}

// GitHubEnabled reports whether the OAuth routes should be mounted.
func (c Server) GitHubEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

// LoadServer loads envFile when it exists (variables already set in the
// environment win) and then reads the configuration from the environment.
// Pass "" for the default ".env".
func LoadServer(envFile string) (Server, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Server{}, fmt.Errorf("config: loading %s: %w", envFile, err)
	}
	return ServerFromEnv(os.Getenv)
}

// ServerFromEnv builds the configuration from a lookup function, which lets
// tests avoid touching the process environment.
func ServerFromEnv(getenv func(string) string) (Server, error) {
	cfg := Server{
		Port:             8080,
		DBDriver:         DriverSQLite,
		DBPath:           "data/caloriesnap.db",
		DBURL:            getenv("DATABASE_URL"),
		JWTSecret:        getenv("JWT_SECRET"),
		TokenTTL:         auth.DefaultTTL,
		GeminiAPIKey:     getenv("GEMINI_API_KEY"),
		OpenFoodFactsURL: nutrition.DefaultOpenFoodFactsURL,
		LogLevel:         slog.LevelInfo,
	}
	cfg.GitHubClientID = getenv("GITHUB_CLIENT_ID")
	cfg.GitHubClientSecret = getenv("GITHUB_CLIENT_SECRET")
	cfg.GitHubCallbackURL = getenv("GITHUB_CALLBACK_URL")

	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return Server{}, fmt.Errorf("config: invalid PORT %q", v)
		}
		cfg.Port = port
	}

	if v := strings.ToLower(strings.TrimSpace(getenv("DB_DRIVER"))); v != "" {
		if v != DriverSQLite && v != DriverPostgres {
			return Server{}, fmt.Errorf("config: DB_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, v)
		}
		cfg.DBDriver = v
	}
	if v := getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if cfg.DBDriver == DriverPostgres && strings.TrimSpace(cfg.DBURL) == "" {
		return Server{}, errors.New("config: DATABASE_URL is required when DB_DRIVER=postgres")
	}

	if cfg.JWTSecret == "" {
		return Server{}, errors.New("config: JWT_SECRET is required (try: openssl rand -hex 32)")
	}
	if v := getenv("TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Server{}, fmt.Errorf("config: invalid TOKEN_TTL %q", v)
		}
		cfg.TokenTTL = d
	}

	if cfg.GitHubCallbackURL == "" {
		cfg.GitHubCallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Port)
	}
	if v := getenv("OPENFOODFACTS_URL"); v != "" {
		cfg.OpenFoodFactsURL = v
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Server{}, fmt.Errorf("config: invalid LOG_LEVEL %q", v)
		}
	}

	return cfg, nil
}
