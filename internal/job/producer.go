package job

import (
	"context"
	"fmt"
	"log/slog"
)

// QueueProducer implements Producer by writing pending job rows through a
// Store. It lives in the web process; the worker process consumes what it
// writes.
type QueueProducer struct {
	store  Store
	logger *slog.Logger
}

// NewQueueProducer creates a new QueueProducer.
func NewQueueProducer(store Store, logger *slog.Logger) *QueueProducer {
	if store == nil {
		panic("store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &QueueProducer{
		store:  store,
		logger: logger.With("component", "job_producer"),
	}
}

// Ensure QueueProducer implements Producer
var _ Producer = (*QueueProducer)(nil)

// Enqueue implements Producer.Enqueue.
func (p *QueueProducer) Enqueue(ctx context.Context, jobType string, payload interface{}) error {
	j, err := New(jobType, payload)
	if err != nil {
		return fmt.Errorf("failed to build job: %w", err)
	}

	if err := p.store.Save(ctx, j); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}

	p.logger.Debug("job enqueued",
		"job_id", j.ID,
		"job_type", j.Type)
	return nil
}
