// Package server is the composition root of the backend: it picks the
// storage backend, builds services and handlers, mounts routes and runs the
// HTTP server until SIGINT/SIGTERM.
//
// DEPENDENCY FLOW:
//
//	config.Server ─► OpenStore ─► repository.Store
//	                                   │
//	             AuthService / ProfileService / LogService
//	                                   │
//	                 Auth / Profile / Log / Food handlers ─► chi router
//
// Handlers never see the store; services never see HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/caloriesnap/internal/auth"
	"github.com/sakif/caloriesnap/internal/config"
	"github.com/sakif/caloriesnap/internal/handler"
	"github.com/sakif/caloriesnap/internal/middleware"
	"github.com/sakif/caloriesnap/internal/model"
	"github.com/sakif/caloriesnap/internal/repository"
	"github.com/sakif/caloriesnap/internal/repository/postgres"
	sqliteRepo "github.com/sakif/caloriesnap/internal/repository/sqlite"
	"github.com/sakif/caloriesnap/internal/service"
)

const shutdownTimeout = 30 * time.Second

// Food bundles the two nutrition providers the /api/foods routes proxy.
type Food struct {
	Search   handler.FoodSearcher
	Estimate handler.FoodEstimator
}

// Server owns the router and the store; the store is closed on shutdown.
type Server struct {
	router *chi.Mux
	config config.Server
	logger *slog.Logger
	store  repository.Store
}

// OpenStore opens the backend named by cfg.DBDriver.
func OpenStore(cfg config.Server, logger *slog.Logger) (repository.Store, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		return postgres.Open(cfg.DBURL, logger)
	case config.DriverSQLite, "":
		if cfg.DBPath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
				return nil, fmt.Errorf("server: creating database directory: %w", err)
			}
		}
		return sqliteRepo.New(cfg.DBPath)
	default:
		return nil, fmt.Errorf("server: unknown database driver %q", cfg.DBDriver)
	}
}

// New wires every layer on top of store. The server takes ownership of store.
func New(cfg config.Server, store repository.Store, food Food, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
	}

	if err := s.setupRoutes(food); err != nil {
		return nil, fmt.Errorf("server: setting up routes: %w", err)
	}
	return s, nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ROUTES:
//
//	POST   /auth/signup | /auth/login | /auth/logout
//	GET    /auth/github/login | /auth/github/callback   (only when configured)
//	GET    /healthz
//	       /api/*                                       (RequireAuth)
//	GET    /api/me
//	GET    /api/profiles/{id}     PATCH /api/profiles/{id}
//	GET    /api/logs              POST  /api/logs        DELETE /api/logs/{id}
//	POST   /api/rpc/get_monthly_calorie_summary
//	GET    /api/foods/search      GET   /api/foods/estimate  POST /api/foods/analyze
//
// Order: RequestID must precede Logger so the ID can be logged; Recoverer
// sits inside Logger so that a recovered panic is logged as a 500.
func (s *Server) setupRoutes(food Food) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	var github *auth.GitHubProvider
	if s.config.GitHubEnabled() {
		github = auth.NewGitHubProvider(s.config.GitHubClientID, s.config.GitHubClientSecret, s.config.GitHubCallbackURL)
	}

	defaults := model.DefaultGoals()
	authSvc := service.NewAuthService(s.store, s.store, tokens, auth.NewPasswordService(), defaults, s.logger)
	profileSvc := service.NewProfileService(s.store, s.store, defaults, s.logger)
	logSvc := service.NewLogService(s.store, s.logger)

	authH := handler.NewAuthHandler(authSvc, github, tokens, s.logger)
	profileH := handler.NewProfileHandler(profileSvc, s.logger)
	logH := handler.NewLogHandler(logSvc, s.logger)
	foodH := handler.NewFoodHandler(food.Search, food.Estimate, s.logger)

	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authH.HandleSignup)
		r.Post("/login", authH.HandleLogin)
		r.Post("/logout", authH.HandleLogout)
		if github != nil {
			r.Get("/github/login", authH.HandleGitHubLogin)
			r.Get("/github/callback", authH.HandleGitHubCallback)
		}
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/me", authH.HandleMe)

		r.Get("/profiles/{id}", profileH.HandleGet)
		r.Patch("/profiles/{id}", profileH.HandleUpdate)

		r.Get("/logs", logH.HandleList)
		r.Post("/logs", logH.HandleCreate)
		r.Delete("/logs/{id}", logH.HandleDelete)
		r.Post("/rpc/get_monthly_calorie_summary", logH.HandleMonthlySummary)

		r.Get("/foods/search", foodH.HandleSearch)
		r.Get("/foods/estimate", foodH.HandleEstimate)
		r.Post("/foods/analyze", foodH.HandleAnalyze)
	})

	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// Start serves until a shutdown signal arrives, then drains in-flight
// requests for up to 30 seconds and closes the store.
func (s *Server) Start() error {
	defer func() {
		if err := s.store.Close(); err != nil {
			s.logger.Error("closing store", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: s.router,
		// Photo analysis waits on the model; keep the write timeout above the
		// provider's own deadline.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("driver", s.config.DBDriver),
			slog.Bool("github", s.config.GitHubEnabled()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
