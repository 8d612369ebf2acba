// Package main implements the entry point for the TaskDeck background
// worker, which consumes queued jobs from the database and delivers
// task completion notices.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Registers the pgx stdlib driver under the "pgx" name.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/taskdeck/taskdeck-api/internal/config"
	"github.com/taskdeck/taskdeck-api/internal/job"
	"github.com/taskdeck/taskdeck-api/internal/platform/logger"
	"github.com/taskdeck/taskdeck-api/internal/platform/postgres"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("worker failed: %v", err)
	}
}

// run loads configuration, starts the job runner, and blocks until a
// shutdown signal arrives.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	workerLogger, err := logger.Setup(cfg.Server.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("worker configuration loaded",
		"worker_count", cfg.Worker.Count,
		"poll_interval_seconds", cfg.Worker.PollIntervalSeconds)

	db, err := openDatabase(cfg, workerLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			workerLogger.Error("error closing database connection", "error", err)
		}
	}()

	jobStore := postgres.NewJobStore(db, workerLogger)
	taskStore := postgres.NewTaskStore(db, workerLogger)

	runner := job.NewRunner(jobStore, job.RunnerConfig{
		WorkerCount:  cfg.Worker.Count,
		PollInterval: time.Duration(cfg.Worker.PollIntervalSeconds) * time.Second,
		StuckJobAge:  time.Duration(cfg.Worker.StuckJobMinutes) * time.Minute,
	}, workerLogger)

	runner.Register(
		job.TypeCompletionNotice,
		job.NewCompletionNoticeHandler(taskStore, workerLogger),
	)

	if err := runner.Start(); err != nil {
		return fmt.Errorf("failed to start job runner: %w", err)
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownCh

	workerLogger.Info("shutting down worker...")
	runner.Stop()
	workerLogger.Info("worker shutdown completed")
	return nil
}

// openDatabase establishes the database connection for the worker. The
// worker holds fewer connections than the web process.
func openDatabase(cfg *config.Config, workerLogger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.Worker.Count + 1)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workerLogger.Info("database connection established")
	return db, nil
}
