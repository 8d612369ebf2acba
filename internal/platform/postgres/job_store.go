package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck-api/internal/job"
	"github.com/taskdeck/taskdeck-api/internal/platform/logger"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// JobStore implements the job.Store interface using a PostgreSQL database.
// The jobs table is the queue shared by the web and worker processes.
type JobStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewJobStore creates a new PostgreSQL implementation of the job.Store
// interface.
func NewJobStore(db store.DBTX, log *slog.Logger) *JobStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &JobStore{
		db:     db,
		logger: log.With(slog.String("component", "job_store")),
	}
}

// Ensure JobStore implements job.Store interface
var _ job.Store = (*JobStore)(nil)

// Save implements job.Store.Save.
func (s *JobStore) Save(ctx context.Context, j *job.Job) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO jobs (id, type, payload, status, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		j.ID,
		j.Type,
		[]byte(j.Payload),
		j.Status,
		j.ErrorMessage,
		j.CreatedAt,
		j.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to save job",
			slog.String("error", err.Error()),
			slog.String("job_id", j.ID.String()),
			slog.String("job_type", j.Type))
		return fmt.Errorf("failed to save job: %w", MapError(err))
	}

	return nil
}

// MarkStatus implements job.Store.MarkStatus.
// An unknown job ID is treated as a no-op.
func (s *JobStore) MarkStatus(ctx context.Context, id uuid.UUID, status job.Status, errorMsg string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE jobs
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := s.db.ExecContext(ctx, query, status, errorMsg, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update job status",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()),
			slog.String("status", string(status)))
		return fmt.Errorf("failed to update job status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		log.Warn("no job found with ID to update status",
			slog.String("job_id", id.String()))
	}

	return nil
}

// ClaimPending implements job.Store.ClaimPending.
// The SKIP LOCKED subquery keeps concurrent workers from claiming the same
// job twice.
func (s *JobStore) ClaimPending(ctx context.Context, limit int) ([]*job.Job, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE jobs
		SET status = $1, updated_at = $2
		WHERE id IN (
			SELECT id FROM jobs
			WHERE status = $3
			ORDER BY created_at
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, type, payload, status, error_message, created_at, updated_at
	`

	rows, err := s.db.QueryContext(
		ctx,
		query,
		job.StatusProcessing,
		time.Now().UTC(),
		job.StatusPending,
		limit,
	)
	if err != nil {
		log.Error("failed to claim pending jobs",
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to claim pending jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	jobs := []*job.Job{}
	for rows.Next() {
		var j job.Job
		var payload []byte
		if err := rows.Scan(
			&j.ID,
			&j.Type,
			&payload,
			&j.Status,
			&j.ErrorMessage,
			&j.CreatedAt,
			&j.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		j.Payload = payload
		jobs = append(jobs, &j)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate job rows: %w", err)
	}

	return jobs, nil
}

// ResetStuck implements job.Store.ResetStuck.
func (s *JobStore) ResetStuck(ctx context.Context, olderThan time.Duration) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE jobs
		SET status = $1, updated_at = $2
		WHERE status = $3 AND updated_at < $4
	`
	cutoff := time.Now().UTC().Add(-olderThan)

	result, err := s.db.ExecContext(
		ctx,
		query,
		job.StatusPending,
		time.Now().UTC(),
		job.StatusProcessing,
		cutoff,
	)
	if err != nil {
		log.Error("failed to reset stuck jobs",
			slog.String("error", err.Error()))
		return 0, fmt.Errorf("failed to reset stuck jobs: %w", err)
	}

	return result.RowsAffected()
}
