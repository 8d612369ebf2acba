package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskdeck/taskdeck-api/internal/config"
	"github.com/taskdeck/taskdeck-api/internal/events"
	"github.com/taskdeck/taskdeck-api/internal/job"
	"github.com/taskdeck/taskdeck-api/internal/platform/postgres"
	"github.com/taskdeck/taskdeck-api/internal/service"
	"github.com/taskdeck/taskdeck-api/internal/service/auth"
	"github.com/taskdeck/taskdeck-api/internal/store"
	"github.com/taskdeck/taskdeck-api/internal/web"
	"golang.org/x/crypto/bcrypt"
)

// application holds the shared application dependencies so wiring happens
// in one place and cleanup is straightforward on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore    store.UserStore
	taskStore    store.TaskStore
	sessionStore store.SessionStore
	jobStore     job.Store

	// Services
	jwtService     auth.JWTService
	userService    *service.UserService
	sessionService *service.SessionService
	taskService    *service.TaskService

	// Event system and queue producer
	eventEmitter *events.InMemoryEventEmitter
	jobProducer  job.Producer

	// HTML layer
	webHandler *web.Handler
}

// newApplication creates a new application instance with all dependencies
// initialized.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	app.userStore = postgres.NewUserStore(db, logger)
	app.taskStore = postgres.NewTaskStore(db, logger)
	app.sessionStore = postgres.NewSessionStore(db, logger)
	app.jobStore = postgres.NewJobStore(db, logger)

	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.jobProducer = job.NewQueueProducer(app.jobStore, logger)
	app.eventEmitter.RegisterHandler(job.NewCompletionEventHandler(app.jobProducer, logger))

	app.userService = service.NewUserService(db, app.userStore, hasher, hasher, logger)
	app.sessionService = service.NewSessionService(
		app.sessionStore,
		app.userStore,
		time.Duration(cfg.Session.LifetimeDays)*24*time.Hour,
		logger,
	)
	app.taskService = service.NewTaskService(app.taskStore, app.eventEmitter, logger)

	app.webHandler, err = web.NewHandler(
		app.userService,
		app.sessionService,
		app.taskService,
		cfg.Session.CookieName,
		cfg.Session.CookieSecure,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize web handler: %w", err)
	}

	logger.Info("application initialized")
	return app, nil
}

// Run starts the session purge loop and the HTTP server, blocking until
// shutdown.
func (app *application) Run(ctx context.Context) error {
	purgeCtx, cancelPurge := context.WithCancel(ctx)
	defer cancelPurge()
	go app.purgeSessionsLoop(purgeCtx)

	router := app.setupRouter()
	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// purgeSessionsLoop periodically removes expired sessions.
func (app *application) purgeSessionsLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := app.sessionService.PurgeExpired(ctx)
			if err != nil {
				app.logger.Error("failed to purge expired sessions", "error", err)
				continue
			}
			if removed > 0 {
				app.logger.Info("purged expired sessions", "count", removed)
			}
		}
	}
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
	app.logger.Info("application shutdown completed")
}
