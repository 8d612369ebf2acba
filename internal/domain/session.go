package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Session.
var (
	ErrEmptySessionID     = errors.New("session ID cannot be empty")
	ErrEmptySessionUserID = errors.New("session user ID cannot be empty")
	ErrSessionLifetime    = errors.New("session lifetime must be positive")
)

// Session is a server-side login session. The session ID is the opaque
// token delivered to the client in a cookie; everything else stays on the
// server.
type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSession creates a session for the given user with the given lifetime.
// Returns an error if validation fails.
func NewSession(userID int64, lifetime time.Duration) (*Session, error) {
	now := time.Now().UTC()
	session := &Session{
		ID:        uuid.New(),
		UserID:    userID,
		ExpiresAt: now.Add(lifetime),
		CreatedAt: now,
	}

	if err := session.Validate(); err != nil {
		return nil, err
	}

	return session, nil
}

// Validate checks if the Session has valid data.
func (s *Session) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptySessionID
	}

	if s.UserID == 0 {
		return ErrEmptySessionUserID
	}

	if !s.ExpiresAt.After(s.CreatedAt) {
		return ErrSessionLifetime
	}

	return nil
}

// IsExpired reports whether the session has passed its expiry time.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
