package store

import (
	"context"
	"database/sql"

	"github.com/taskdeck/taskdeck-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
// Ownership checks are the responsibility of the service layer; the store
// only scopes reads by owner where the method signature says so.
type TaskStore interface {
	// Create saves a new task to the store and fills in the generated ID.
	// Returns ErrInvalidEntity if the owning user does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID regardless of owner.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// ListByUser retrieves all tasks owned by the given user, ordered by
	// creation time.
	ListByUser(ctx context.Context, userID int64) ([]*domain.Task, error)

	// Update persists the task's title, description, and completed flag.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task from the store by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id int64) error

	// CountByUser returns the total and completed task counts for a user.
	CountByUser(ctx context.Context, userID int64) (total, completed int, err error)

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) TaskStore
}
