package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/studypace/srs-api/internal/adaptive"
	"github.com/studypace/srs-api/internal/config"
	"github.com/studypace/srs-api/internal/domain/srs"
	"github.com/studypace/srs-api/internal/platform/postgres"
	"github.com/studypace/srs-api/internal/service/review"
	"github.com/studypace/srs-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	stateStore store.ReviewStateStore

	// Service interfaces
	srsService    srs.Service
	advisor       adaptive.Advisor
	reviewService review.ReviewService
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Initialize stores
	app.stateStore = postgres.NewPostgresReviewStateStore(db, logger)

	// Initialize the scheduling service with configured parameters
	params := srs.NewParamsFromConfig(cfg.Scheduler)
	app.srsService = srs.NewServiceWithParams(params)

	// Initialize the adaptive advisor; the scheduler works without it
	app.advisor = setupAdvisor(ctx, cfg, logger)

	// Initialize the review service
	app.reviewService = review.NewReviewService(
		db,
		app.stateStore,
		app.srsService,
		app.advisor,
		params,
		cfg.Scheduler.DueCardsLimit,
		logger,
	)

	logger.Info("application initialized successfully")
	return app, nil
}

// setupAdvisor constructs the adaptive scheduling advisor. Without an API
// key, or when the client cannot be created, the local deterministic
// fallback is used so scheduling never depends on the external service.
func setupAdvisor(ctx context.Context, cfg *config.Config, logger *slog.Logger) adaptive.Advisor {
	if cfg.Advisor.GeminiAPIKey == "" {
		logger.Info("adaptive advisor disabled, using local fallback")
		return adaptive.FallbackAdvisor{}
	}

	gemini, err := adaptive.NewGeminiAdvisor(ctx, logger, cfg.Advisor)
	if err != nil {
		logger.Warn("failed to initialize adaptive advisor, using local fallback",
			"error", err)
		return adaptive.FallbackAdvisor{}
	}

	breaker := adaptive.NewBreaker(
		cfg.Advisor.FailureThreshold,
		time.Duration(cfg.Advisor.CooldownSeconds)*time.Second,
		nil,
	)

	logger.Info("adaptive advisor initialized",
		"model", cfg.Advisor.ModelName,
		"failure_threshold", cfg.Advisor.FailureThreshold)
	return adaptive.NewResilientAdvisor(gemini, breaker, logger)
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.reviewService != nil {
		app.reviewService.Close()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
}
