package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/elprogramador2024/gestor-tareas/internal/config"
	"github.com/elprogramador2024/gestor-tareas/internal/platform/postgres"
	"github.com/elprogramador2024/gestor-tareas/internal/platform/ratelimit"
	"github.com/elprogramador2024/gestor-tareas/internal/service"
	"github.com/elprogramador2024/gestor-tareas/internal/service/auth"
	"github.com/elprogramador2024/gestor-tareas/internal/store"
	"github.com/elprogramador2024/gestor-tareas/internal/store/memory"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore store.UserStore
	taskStore store.TaskStore

	directory   *auth.Directory
	jwtService  auth.JWTService
	limiter     ratelimit.Limiter
	taskService service.TaskService
	userService service.UserService

	closeLimiter func() error
}

// newApplication creates a new application instance with all dependencies initialized.
// With no database URL configured the stores live in memory.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	if err := app.setupStores(ctx); err != nil {
		app.cleanup()
		return nil, err
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes,
		"refresh_token_lifetime_minutes", cfg.Auth.RefreshTokenLifetimeMinutes)

	hasher := auth.NewBcryptHasher(cfg.Auth.BCryptCost)
	app.directory = auth.NewDirectory(app.userStore, hasher, logger)

	app.taskService, err = service.NewTaskService(app.taskStore, app.directory, nil, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}
	app.userService, err = service.NewUserService(app.userStore, hasher, nil, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	app.limiter, app.closeLimiter, err = ratelimit.Open(ctx, cfg.RateLimit, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to set up login rate limiter: %w", err)
	}

	if b := cfg.Bootstrap; b.AdminUserName != "" {
		created, err := app.userService.EnsureAdmin(ctx, b.AdminUserName, b.AdminEmail, b.AdminPassword)
		if err != nil {
			app.cleanup()
			return nil, fmt.Errorf("failed to bootstrap administrator: %w", err)
		}
		logger.Info("Bootstrap administrator checked",
			"user_name", b.AdminUserName,
			"created", created)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupStores opens PostgreSQL and applies pending migrations, or falls
// back to the in-memory stores.
func (app *application) setupStores(ctx context.Context) error {
	if app.config.Database.URL == "" {
		tasks := memory.NewTaskStore()
		app.taskStore = tasks
		app.userStore = memory.NewUserStore(tasks)
		app.logger.Warn("No database configured, using in-memory stores")
		return nil
	}

	db, err := postgres.Open(ctx, app.config.Database)
	if err != nil {
		return err
	}
	app.db = db
	app.logger.Info("Database connection established")

	if err := postgres.Migrate(ctx, db, "up", app.logger); err != nil {
		return err
	}

	app.userStore = postgres.NewPostgresUserStore(db, app.logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, app.logger)
	return nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	addr := net.JoinHostPort("", strconv.Itoa(app.config.Server.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	if err := app.serve(ctx, ln, app.routes()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.closeLimiter != nil {
		if err := app.closeLimiter(); err != nil {
			app.logger.Error("Error closing rate limiter", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
