package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver
	"github.com/phrazzld/drill-api/internal/catalog"
	"github.com/phrazzld/drill-api/internal/config"
	"github.com/phrazzld/drill-api/internal/domain/srs"
	"github.com/phrazzld/drill-api/internal/platform/postgres"
	"github.com/phrazzld/drill-api/internal/service/auth"
	"github.com/phrazzld/drill-api/internal/service/review"
	"github.com/phrazzld/drill-api/internal/store"
)

// application bundles the wired dependencies of the running server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	catalog          catalog.Catalog
	userStore        store.UserStore
	userRecordStore  store.UserRecordStore
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	reviewService    review.Service
}

// newApplication wires every dependency: database, migrations, catalog,
// stores, and services. Fail fast: any error here aborts startup.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := setupDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, logger); err != nil {
		closeQuietly(db, logger)
		return nil, err
	}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		closeQuietly(db, logger)
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	logger.Info("catalog loaded",
		"items", len(cat.Items()),
		"subtopics", len(cat.Subtopics()))

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		closeQuietly(db, logger)
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	userStore := postgres.NewPostgresUserStore(db, logger)
	recordStore := postgres.NewPostgresUserRecordStore(db, logger)

	scheduler := srs.NewServiceWithParams(srs.NewParams(srs.ParamsConfig{
		WrongRetryMinutes:     cfg.Review.WrongRetryMinutes,
		EasyIntervalMinutes:   cfg.Review.EasyIntervalMinutes,
		MediumIntervalMinutes: cfg.Review.MediumIntervalMinutes,
		HardIntervalMinutes:   cfg.Review.HardIntervalMinutes,
	}))

	reviewService := review.NewService(cat, recordStore, scheduler, review.Params{
		BatchSize:      cfg.Review.BatchSize,
		CooldownWindow: time.Duration(cfg.Review.CooldownSeconds) * time.Second,
	}, logger)

	return &application{
		config:           cfg,
		logger:           logger,
		db:               db,
		catalog:          cat,
		userStore:        userStore,
		userRecordStore:  recordStore,
		jwtService:       jwtService,
		passwordVerifier: auth.NewBcryptVerifier(),
		reviewService:    reviewService,
	}, nil
}

// setupDatabase opens the connection pool and verifies connectivity.
func setupDatabase(cfg *config.Config, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		closeQuietly(db, logger)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established")
	return db, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		closeQuietly(app.db, app.logger)
		app.db = nil
	}
}

func closeQuietly(db *sql.DB, logger *slog.Logger) {
	if err := db.Close(); err != nil {
		logger.Error("failed to close database connection", "error", err)
	}
}
