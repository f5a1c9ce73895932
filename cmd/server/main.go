// Command server runs the CalorieSnap backend: accounts, profiles, logs, the
// monthly summary procedure and the food lookup proxy.
//
// Configuration comes from the environment, optionally seeded from .env:
//
//	JWT_SECRET=$(openssl rand -hex 32) go run ./cmd/server
//
// See internal/config for every variable.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/sakif/caloriesnap/internal/config"
	"github.com/sakif/caloriesnap/internal/nutrition"
	"github.com/sakif/caloriesnap/internal/server"
)

func main() {
	envFile := flag.String("env", ".env", "dotenv file to load before reading the environment")
	flag.Parse()

	cfg, err := config.LoadServer(*envFile)
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	store, err := server.OpenStore(cfg, logger)
	if err != nil {
		logger.Error("failed to open database",
			slog.String("driver", cfg.DBDriver),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// A missing Gemini key disables AI estimates but not the server.
	estimator, err := nutrition.NewGeminiEstimator(context.Background(), cfg.GeminiAPIKey, logger)
	if err != nil {
		store.Close()
		logger.Error("failed to create estimator", slog.String("error", err.Error()))
		os.Exit(1)
	}

	food := server.Food{
		Search:   nutrition.NewOpenFoodFacts(cfg.OpenFoodFactsURL, logger),
		Estimate: estimator,
	}

	srv, err := server.New(cfg, store, food, logger)
	if err != nil {
		store.Close()
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if !cfg.GitHubEnabled() {
		logger.Info("GitHub login disabled (GITHUB_CLIENT_ID/GITHUB_CLIENT_SECRET not set)")
	}

	// Start blocks until SIGINT/SIGTERM and closes the store on the way out.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
