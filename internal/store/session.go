package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck-api/internal/domain"
)

// SessionStore defines the interface for server-side session persistence.
type SessionStore interface {
	// Create saves a new session to the store.
	Create(ctx context.Context, session *domain.Session) error

	// GetByID retrieves a session by its ID (the opaque cookie token).
	// Returns ErrSessionNotFound if the session does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)

	// Delete removes a session from the store by its ID.
	// Returns ErrSessionNotFound if the session does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteExpired removes all sessions whose expiry has passed and
	// returns the number of rows removed.
	DeleteExpired(ctx context.Context) (int64, error)

	// WithTx returns a new SessionStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) SessionStore
}
