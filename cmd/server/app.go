package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/carousel-api/internal/config"
	"github.com/phrazzld/carousel-api/internal/generation"
	"github.com/phrazzld/carousel-api/internal/platform/gemini"
	"github.com/phrazzld/carousel-api/internal/platform/postgres"
	"github.com/phrazzld/carousel-api/internal/service/auth"
	"github.com/phrazzld/carousel-api/internal/service/carousel"
	"github.com/phrazzld/carousel-api/internal/store"
	"github.com/phrazzld/carousel-api/internal/style"
)

// runLog is what the application needs from the run log: writes from the
// carousel service and reads from the runs endpoints.
type runLog interface {
	store.RunStore
	store.RunReader
}

// application holds the shared dependencies of the server and releases them
// on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	// db is nil when no database is configured.
	db *sql.DB

	generator       generation.Generator
	styles          *style.Catalog
	runs            runLog
	carouselService *carousel.Service
	// jwtService is nil when auth is disabled.
	jwtService auth.JWTService
}

// newApplication wires the services. db may be nil, in which case runs are
// discarded and the runs endpoints report nothing.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
		runs:   store.NoopRunStore{},
	}

	var err error
	if cfg.Auth.JWTSecret != "" {
		app.jwtService, err = auth.NewJWTService(cfg.Auth)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
		}
		logger.Info("JWT authentication enabled",
			"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)
	} else {
		logger.Warn("No JWT secret configured, the API is unauthenticated")
	}

	if db != nil {
		app.runs = postgres.NewPostgresRunStore(db)
	}

	app.styles, err = style.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load style catalog: %w", err)
	}

	app.generator, err = gemini.NewGenerator(ctx, logger.With("component", "llm_generator"), cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
	}

	app.carouselService, err = carousel.NewService(
		app.generator,
		logger,
		carousel.WithMaxConcurrentImages(cfg.Carousel.MaxConcurrentImages),
		carousel.WithImageDescriptionRefinement(cfg.Carousel.RefineImageDescriptions),
		carousel.WithRunStore(app.runs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create carousel service: %w", err)
	}

	logger.Info("Application initialized successfully",
		"styles", len(app.styles.List()),
		"max_concurrent_images", cfg.Carousel.MaxConcurrentImages)
	return app, nil
}

// Run serves HTTP until ctx is canceled or a shutdown signal arrives.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}
	app.logger.Info("Application shutdown completed")
}
