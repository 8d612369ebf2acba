package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/platform/logger"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// SessionStore implements the store.SessionStore interface using a
// PostgreSQL database as the storage backend.
type SessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSessionStore creates a new PostgreSQL implementation of the
// SessionStore interface.
func NewSessionStore(db store.DBTX, log *slog.Logger) *SessionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &SessionStore{
		db:     db,
		logger: log.With(slog.String("component", "session_store")),
	}
}

// Ensure SessionStore implements store.SessionStore interface
var _ store.SessionStore = (*SessionStore)(nil)

// Create implements store.SessionStore.Create.
func (s *SessionStore) Create(ctx context.Context, session *domain.Session) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO sessions (id, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		session.ID,
		session.UserID,
		session.ExpiresAt,
		session.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create session",
			slog.String("error", err.Error()),
			slog.Int64("user_id", session.UserID))
		return MapError(err)
	}

	log.Debug("session created",
		slog.String("session_id", session.ID.String()),
		slog.Int64("user_id", session.UserID))
	return nil
}

// GetByID implements store.SessionStore.GetByID.
func (s *SessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, expires_at, created_at
		FROM sessions
		WHERE id = $1
	`

	var session domain.Session
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.UserID,
		&session.ExpiresAt,
		&session.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		log.Error("failed to get session",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return nil, err
	}

	return &session, nil
}

// Delete implements store.SessionStore.Delete.
func (s *SessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete session",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "session"); err != nil {
		return store.ErrSessionNotFound
	}

	return nil
}

// DeleteExpired implements store.SessionStore.DeleteExpired.
func (s *SessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
	if err != nil {
		log.Error("failed to delete expired sessions",
			slog.String("error", err.Error()))
		return 0, MapError(err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		log.Info("expired sessions removed", slog.Int64("count", removed))
	}
	return removed, nil
}

// WithTx implements store.SessionStore.WithTx.
func (s *SessionStore) WithTx(tx *sql.Tx) store.SessionStore {
	return &SessionStore{
		db:     tx,
		logger: s.logger,
	}
}
