// Package main implements the entry point for the task manager API server,
// which serves task tracking and user management over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/elprogramador2024/gestor-tareas/internal/config"
	"github.com/elprogramador2024/gestor-tareas/internal/platform/logger"
	"github.com/elprogramador2024/gestor-tareas/internal/platform/postgres"
	"github.com/joho/godotenv"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		fmt.Sprintf("run a migration command %v against the configured database and exit", postgres.MigrationCommands))
	envFile := flag.String("env", ".env", "dotenv file loaded before configuration")
	flag.Parse()

	if err := run(*envFile, *migrateCmd); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// run loads configuration, sets up logging and either executes a migration
// command or serves the API until SIGINT or SIGTERM.
func run(envFile, migrateCmd string) error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	l.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database", cfg.Database.URL != "",
		"rate_limit", cfg.RateLimit.RedisURL != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if migrateCmd != "" {
		return runMigrationCommand(ctx, cfg, migrateCmd, l)
	}

	app, err := newApplication(ctx, cfg, l)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.cleanup()

	return app.Run(ctx)
}

// runMigrationCommand executes a single goose command and returns.
func runMigrationCommand(ctx context.Context, cfg *config.Config, command string, l *slog.Logger) error {
	if cfg.Database.URL == "" {
		return errors.New("database.url must be set to run migrations")
	}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			l.Error("Error closing database connection", "error", err)
		}
	}()

	return postgres.Migrate(ctx, db, command, l)
}
