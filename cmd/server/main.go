// Package main is the entry point for the Tasker API server, which serves
// user accounts and personal task lists over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/phrazzld/tasker-api/internal/config"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/platform/postgres"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatalf("tasker-api: %v", err)
	}
}

// run parses args, loads configuration and either executes a migration
// command or starts the HTTP server.
func run(args []string) error {
	flags := pflag.NewFlagSet("tasker-api", pflag.ContinueOnError)
	config.RegisterFlags(flags)
	migrateCmd := flags.String("migrate", "", "run a migration command (up, down, status, version, reset) and exit")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadWithFlags(flags)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}
	l.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"avatar_backend", cfg.Avatar.Backend,
		"sendgrid_enabled", cfg.Mail.SendGridAPIKey != "")

	ctx := context.Background()

	db, err := setupAppDatabase(ctx, cfg, l)
	if err != nil {
		return err
	}

	if *migrateCmd != "" {
		defer func() { _ = db.Close() }()
		return postgres.Migrate(ctx, db, *migrateCmd, l)
	}

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db, "up", l); err != nil {
			_ = db.Close()
			return err
		}
	}

	app, err := newApplication(ctx, cfg, l, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}

// setupAppLogger configures the process-wide logger from the server settings.
func setupAppLogger(cfg *config.Config) (*slog.Logger, error) {
	l, err := logger.Setup(logger.LoggerConfig{
		Level:  cfg.Server.LogLevel,
		Format: cfg.Server.LogFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	return l, nil
}
