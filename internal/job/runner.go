package job

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// RunnerConfig holds configuration for the job runner.
type RunnerConfig struct {
	// WorkerCount determines how many concurrent workers process jobs.
	WorkerCount int

	// PollInterval determines how often the runner polls for pending jobs.
	PollInterval time.Duration

	// StuckJobAge defines how long a job can sit in the processing state
	// before startup recovery resets it to pending.
	StuckJobAge time.Duration
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount:  2,
		PollInterval: 5 * time.Second,
		StuckJobAge:  30 * time.Minute,
	}
}

// Runner is the queue consumer loop: it polls the job store for pending
// jobs and dispatches each to the handler registered for its type.
type Runner struct {
	store      Store
	handlers   map[string]Handler
	jobChan    chan *Job
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     RunnerConfig
	logger     *slog.Logger
}

// NewRunner creates a new Runner.
func NewRunner(store Store, config RunnerConfig, logger *slog.Logger) *Runner {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 2
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 5 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		store:      store,
		handlers:   make(map[string]Handler),
		jobChan:    make(chan *Job, config.WorkerCount*2),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger.With("component", "job_runner"),
	}
}

// Register associates a handler with a job type. Jobs of an unregistered
// type are marked failed when claimed.
func (r *Runner) Register(jobType string, handler Handler) {
	r.handlers[jobType] = handler
}

// Start recovers stuck jobs, then launches the poll loop and the worker
// pool. Register all handlers before calling Start.
func (r *Runner) Start() error {
	reset, err := r.store.ResetStuck(r.ctx, r.config.StuckJobAge)
	if err != nil {
		return fmt.Errorf("failed to recover stuck jobs: %w", err)
	}
	if reset > 0 {
		r.logger.Info("reset stuck jobs to pending", "count", reset)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.wg.Add(1)
	go r.pollLoop()

	r.logger.Info("job runner started",
		"worker_count", r.config.WorkerCount,
		"poll_interval", r.config.PollInterval.String())
	return nil
}

// Stop gracefully shuts down the runner, waiting for in-flight jobs.
func (r *Runner) Stop() {
	r.cancelFunc()
	r.wg.Wait()
	close(r.jobChan)
	r.logger.Info("job runner stopped")
}

// pollLoop claims pending jobs on a fixed interval and feeds the workers.
func (r *Runner) pollLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.claimBatch()
		}
	}
}

// claimBatch pulls a batch of pending jobs and hands them to the workers.
func (r *Runner) claimBatch() {
	jobs, err := r.store.ClaimPending(r.ctx, cap(r.jobChan))
	if err != nil {
		r.logger.Error("failed to claim pending jobs", "error", err)
		return
	}

	for _, j := range jobs {
		select {
		case r.jobChan <- j:
		case <-r.ctx.Done():
			return
		}
	}
}

// worker processes jobs from the channel.
func (r *Runner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", "worker_id", id)
			return
		case j, ok := <-r.jobChan:
			if !ok {
				return
			}
			r.processJob(j, id)
		}
	}
}

// processJob handles execution of a single claimed job.
func (r *Runner) processJob(j *Job, workerID int) {
	ctx := context.Background()
	log := r.logger.With(
		"job_id", j.ID,
		"job_type", j.Type,
		"worker_id", workerID,
	)

	handler, ok := r.handlers[j.Type]
	if !ok {
		log.Error("no handler registered for job type")
		if err := r.store.MarkStatus(ctx, j.ID, StatusFailed, "no handler registered"); err != nil {
			log.Error("failed to mark job as failed", "error", err)
		}
		return
	}

	log.Info("processing job")

	if err := handler.Execute(ctx, j); err != nil {
		log.Error("job execution failed", "error", err)
		if updateErr := r.store.MarkStatus(ctx, j.ID, StatusFailed, err.Error()); updateErr != nil {
			log.Error("failed to mark job as failed", "error", updateErr)
		}
		return
	}

	log.Info("job completed")
	if err := r.store.MarkStatus(ctx, j.ID, StatusCompleted, ""); err != nil {
		log.Error("failed to mark job as completed", "error", err)
	}
}
