package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/caloriesnap/internal/auth"
	"github.com/sakif/caloriesnap/internal/model"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestServerFromEnv_Defaults(t *testing.T) {
	cfg, err := ServerFromEnv(envMap(map[string]string{"JWT_SECRET": "s3cret"}))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "data/caloriesnap.db", cfg.DBPath)
	assert.Equal(t, auth.DefaultTTL, cfg.TokenTTL)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "http://localhost:8080/auth/github/callback", cfg.GitHubCallbackURL)
	assert.False(t, cfg.GitHubEnabled())
}

func TestServerFromEnv_Overrides(t *testing.T) {
	cfg, err := ServerFromEnv(envMap(map[string]string{
		"JWT_SECRET":           "s3cret",
		"PORT":                 "9000",
		"DB_DRIVER":            "Postgres",
		"DATABASE_URL":         "postgres://u:p@localhost/db",
		"TOKEN_TTL":            "2h",
		"GITHUB_CLIENT_ID":     "id",
		"GITHUB_CLIENT_SECRET": "secret",
		"LOG_LEVEL":            "debug",
		"OPENFOODFACTS_URL":    "http://off.local",
	}))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "http://off.local", cfg.OpenFoodFactsURL)
	assert.Equal(t, "http://localhost:9000/auth/github/callback", cfg.GitHubCallbackURL)
	assert.True(t, cfg.GitHubEnabled())
}

func TestServerFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{}},
		{"bad port", map[string]string{"JWT_SECRET": "s", "PORT": "eighty"}},
		{"port out of range", map[string]string{"JWT_SECRET": "s", "PORT": "70000"}},
		{"unknown driver", map[string]string{"JWT_SECRET": "s", "DB_DRIVER": "mysql"}},
		{"postgres without url", map[string]string{"JWT_SECRET": "s", "DB_DRIVER": "postgres"}},
		{"bad ttl", map[string]string{"JWT_SECRET": "s", "TOKEN_TTL": "forever"}},
		{"negative ttl", map[string]string{"JWT_SECRET": "s", "TOKEN_TTL": "-1h"}},
		{"bad log level", map[string]string{"JWT_SECRET": "s", "LOG_LEVEL": "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ServerFromEnv(envMap(tt.env))
			assert.Error(t, err)
		})
	}
}

func TestLoadServer_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("JWT_SECRET=from-file\nPORT=7070\n"), 0o600))

	// Process environment wins over the file.
	t.Setenv("PORT", "7171")
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")

	cfg, err := LoadServer(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, 7171, cfg.Port)
}

func TestLoadServer_MissingFileIsFine(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")

	cfg, err := LoadServer(filepath.Join(t.TempDir(), "nope.env"))
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.JWTSecret)
}

func TestLoadClient_MissingFile(t *testing.T) {
	cfg, err := LoadClient(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultClient(), cfg)
}

func TestClient_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	want := DefaultClient()
	want.ServerURL = "https://snap.example.com"
	want.Token = "tok"
	want.Email = "a@example.com"
	want.Goals.Breakfast = 450

	require.NoError(t, SaveClient(path, want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := LoadClient(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadClient_PartialGoalsKeepDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := "server_url = \"http://snap.local/\"\n\n[goals]\nsnack = 150\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := LoadClient(path)
	require.NoError(t, err)

	assert.Equal(t, "http://snap.local", cfg.ServerURL)
	assert.Equal(t, 150, cfg.Goals.Snack)
	assert.Equal(t, model.DefaultGoals().Lunch, cfg.Goals.Lunch)
}

func TestLoadClient_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("server_url = [unterminated"), 0o600))

	_, err := LoadClient(path)
	assert.Error(t, err)
}

func TestExpandPath_Home(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/x/config.toml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x", "config.toml"), got)
}
