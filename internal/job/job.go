package job

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status represents the current state of a job.
type Status string

// Possible job status values.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Job type constants.
const (
	// TypeCompletionNotice is the job type fired when a task transitions
	// to completed.
	TypeCompletionNotice = "task.completion_notice"
)

// ErrEmptyJobType is returned when a job is created without a type.
var ErrEmptyJobType = errors.New("job type cannot be empty")

// Job represents a unit of background work queued in the jobs table.
type Job struct {
	ID           uuid.UUID       `json:"id"`
	Type         string          `json:"type"`
	Payload      json.RawMessage `json:"payload"`
	Status       Status          `json:"status"`
	ErrorMessage string          `json:"error_message"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// New creates a pending Job of the given type, serializing the payload
// to JSON.
func New(jobType string, payload interface{}) (*Job, error) {
	if jobType == "" {
		return nil, ErrEmptyJobType
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Job{
		ID:        uuid.New(),
		Type:      jobType,
		Payload:   payloadBytes,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// UnmarshalPayload decodes the job payload into the provided structure.
func (j *Job) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(j.Payload, v)
}

// CompletionNoticePayload is the payload carried by TypeCompletionNotice.
type CompletionNoticePayload struct {
	TaskID int64 `json:"task_id"`
}

// Store defines the interface for persisting jobs. The jobs table is the
// only channel between the web process and the worker process.
type Store interface {
	// Save persists a new job.
	Save(ctx context.Context, job *Job) error

	// MarkStatus updates the status and error message of a job.
	MarkStatus(ctx context.Context, id uuid.UUID, status Status, errorMsg string) error

	// ClaimPending atomically moves up to limit pending jobs to the
	// processing state and returns them, oldest first. Concurrent workers
	// never claim the same job twice.
	ClaimPending(ctx context.Context, limit int) ([]*Job, error)

	// ResetStuck moves processing jobs older than the given age back to
	// pending and returns the number of jobs reset. Used for crash
	// recovery on worker startup.
	ResetStuck(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Handler processes jobs of a single type.
type Handler interface {
	// Execute runs the job logic.
	Execute(ctx context.Context, job *Job) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, job *Job) error

// Execute implements Handler.
func (f HandlerFunc) Execute(ctx context.Context, job *Job) error {
	return f(ctx, job)
}

// Producer defines the interface for enqueueing background jobs.
type Producer interface {
	// Enqueue creates a pending job of the given type with the given
	// payload. The caller never observes the job's outcome.
	Enqueue(ctx context.Context, jobType string, payload interface{}) error
}
