package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// SessionService implements the identity provider for browser clients:
// it issues, resolves, and revokes server-side sessions keyed by the
// opaque token stored in the client's cookie.
type SessionService struct {
	sessionStore store.SessionStore
	userStore    store.UserStore
	lifetime     time.Duration
	logger       *slog.Logger
}

// NewSessionService creates a new SessionService with the given session
// lifetime.
func NewSessionService(
	sessionStore store.SessionStore,
	userStore store.UserStore,
	lifetime time.Duration,
	logger *slog.Logger,
) *SessionService {
	return &SessionService{
		sessionStore: sessionStore,
		userStore:    userStore,
		lifetime:     lifetime,
		logger:       logger.With("component", "session_service"),
	}
}

// Login creates a new session for the given user and returns it. The
// session ID is the opaque token the caller delivers to the client.
func (s *SessionService) Login(ctx context.Context, user *domain.User) (*domain.Session, error) {
	session, err := domain.NewSession(user.ID, s.lifetime)
	if err != nil {
		return nil, err
	}

	if err := s.sessionStore.Create(ctx, session); err != nil {
		s.logger.Error("failed to create session",
			"error", err,
			"user_id", user.ID)
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// Logout deletes the session with the given token. An unknown token is a
// no-op.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	id, err := uuid.Parse(token)
	if err != nil {
		return nil
	}

	if err := s.sessionStore.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil
		}
		s.logger.Error("failed to delete session", "error", err)
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// CurrentIdentity resolves a session token to its user. It returns
// store.ErrSessionNotFound for a malformed, unknown, or expired token;
// expired sessions are removed as a side effect.
func (s *SessionService) CurrentIdentity(ctx context.Context, token string) (*domain.User, error) {
	id, err := uuid.Parse(token)
	if err != nil {
		return nil, store.ErrSessionNotFound
	}

	session, err := s.sessionStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if session.IsExpired(time.Now().UTC()) {
		if err := s.sessionStore.Delete(ctx, session.ID); err != nil &&
			!errors.Is(err, store.ErrSessionNotFound) {
			s.logger.Warn("failed to remove expired session", "error", err)
		}
		return nil, store.ErrSessionNotFound
	}

	return s.userStore.GetByID(ctx, session.UserID)
}

// PurgeExpired removes all expired sessions. Called periodically by the
// server process.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.sessionStore.DeleteExpired(ctx)
}
