package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/sakif/caloriesnap/internal/model"
)

const (
	defaultClientPath = "~/.config/caloriesnap/config.toml"
	defaultServerURL  = "http://localhost:8080"
)

// Client is the terminal client's config file.
//
//	server_url = "http://localhost:8080"
//	token = "<jwt>"
//
//	[goals]
//	breakfast = 400
type Client struct {
	ServerURL string             `toml:"server_url"`
	Token     string             `toml:"token,omitempty"`
	Email     string             `toml:"email,omitempty"`
	Goals     model.GoalDefaults `toml:"goals"`
}

// DefaultClientPath returns the config path used when -config is not given.
func DefaultClientPath() string {
	return defaultClientPath
}

// DefaultClient is what a missing file resolves to.
func DefaultClient() Client {
	return Client{ServerURL: defaultServerURL, Goals: model.DefaultGoals()}
}

// LoadClient reads the file at path. A missing file yields DefaultClient; a
// malformed file is an error so that a typo does not silently drop the token.
// Goal values left out of [goals] keep their defaults.
func LoadClient(path string) (Client, error) {
	cfg := DefaultClient()

	resolved, err := resolvePath(path)
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: reading %s: %w", resolved, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return DefaultClient(), fmt.Errorf("config: parsing %s: %w", resolved, err)
	}

	cfg.ServerURL = strings.TrimRight(strings.TrimSpace(cfg.ServerURL), "/")
	if cfg.ServerURL == "" {
		cfg.ServerURL = defaultServerURL
	}
	return cfg, nil
}

// SaveClient writes cfg to path, creating the directory. The file holds a
// session token, so it is private to the user.
func SaveClient(path string, cfg Client) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o700); err != nil {
		return fmt.Errorf("config: creating config dir: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encoding: %w", err)
	}

	if err := os.WriteFile(resolved, data, 0o600); err != nil {
		return fmt.Errorf("config: writing %s: %w", resolved, err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultClientPath
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("config: resolving home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
