package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/tasker-api/internal/avatar"
	"github.com/phrazzld/tasker-api/internal/config"
	"github.com/phrazzld/tasker-api/internal/events"
	"github.com/phrazzld/tasker-api/internal/mail"
	"github.com/phrazzld/tasker-api/internal/platform/postgres"
	"github.com/phrazzld/tasker-api/internal/platform/s3store"
	"github.com/phrazzld/tasker-api/internal/platform/sendgridmail"
	"github.com/phrazzld/tasker-api/internal/service"
	"github.com/phrazzld/tasker-api/internal/service/auth"
	"github.com/phrazzld/tasker-api/internal/store"
)

// application holds the shared dependencies of the server so they can be
// wired once and released together on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore   store.UserStore
	taskStore   store.TaskStore
	avatarStore store.AvatarStore

	tokenService auth.TokenService
	userService  service.UserService
	taskService  service.TaskService

	eventEmitter   *events.InMemoryEventEmitter
	mailDispatcher *mail.Dispatcher
}

// newApplication wires stores, services and the mail pipeline on top of an
// open database connection.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.tokenService, err = auth.NewTokenService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.avatarStore, err = newAvatarStore(ctx, cfg.Avatar, db, logger)
	if err != nil {
		return nil, err
	}

	app.mailDispatcher = newMailDispatcher(cfg.Mail, newMailer(cfg.Mail, logger), logger)
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(mail.NewAccountEventHandler(app.mailDispatcher, logger))

	app.userService, err = service.NewUserService(service.UserServiceDeps{
		Users:     app.userStore,
		Tasks:     app.taskStore,
		Avatars:   app.avatarStore,
		Tx:        store.NewDBTxRunner(db),
		Tokens:    app.tokenService,
		Hasher:    auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		Processor: avatar.NewProcessor(),
		Emitter:   app.eventEmitter,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	app.taskService, err = service.NewTaskService(app.taskStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	app.mailDispatcher.Start()

	logger.Info("Application initialized successfully")
	return app, nil
}

// newAvatarStore selects the avatar backend named in cfg.
func newAvatarStore(
	ctx context.Context,
	cfg config.AvatarConfig,
	db *sql.DB,
	logger *slog.Logger,
) (store.AvatarStore, error) {
	switch cfg.Backend {
	case config.AvatarBackendS3:
		client, err := s3store.NewClient(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		logger.Info("Avatar storage initialized", "backend", cfg.Backend, "bucket", cfg.S3Bucket)
		return s3store.NewAvatarStore(client, cfg.S3Bucket, logger), nil
	case config.AvatarBackendDatabase, "":
		logger.Info("Avatar storage initialized", "backend", config.AvatarBackendDatabase)
		return postgres.NewPostgresAvatarStore(db, logger), nil
	default:
		return nil, fmt.Errorf("unknown avatar backend %q", cfg.Backend)
	}
}

// newMailer returns the SendGrid mailer when an API key is configured and
// the log-only mailer otherwise.
func newMailer(cfg config.MailConfig, logger *slog.Logger) mail.Mailer {
	if cfg.SendGridAPIKey == "" {
		logger.Warn("SendGrid API key not set, emails will only be logged")
		return mail.NewLogMailer(logger)
	}
	return sendgridmail.New(cfg.SendGridAPIKey, cfg.FromAddress, cfg.FromName, logger)
}

func newMailDispatcher(cfg config.MailConfig, mailer mail.Mailer, logger *slog.Logger) *mail.Dispatcher {
	queue := mail.NewQueue(cfg.QueueSize, logger)
	return mail.NewDispatcher(queue, mailer, mail.DispatcherConfig{
		WorkerCount: cfg.WorkerCount,
		SendTimeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}, logger)
}

// Run serves HTTP until ctx is canceled or a shutdown signal arrives.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup drains pending mail and closes the database.
func (app *application) cleanup(ctx context.Context) {
	if app.mailDispatcher != nil {
		app.mailDispatcher.Stop(ctx)
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
