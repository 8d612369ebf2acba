package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// UserStore is an in-memory store.UserStore.
type UserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User

	// CreateErr, when set, is returned by Create before any state change.
	CreateErr error
}

// NewUserStore creates an empty in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		nextID: 1,
		users:  make(map[int64]*domain.User),
	}
}

// Create implements store.UserStore.
func (s *UserStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.CreateErr != nil {
		return s.CreateErr
	}

	for _, existing := range s.users {
		if existing.Username == user.Username {
			return store.ErrUsernameExists
		}
	}

	user.ID = s.nextID
	s.nextID++

	copied := *user
	s.users[user.ID] = &copied
	return nil
}

// GetByID implements store.UserStore.
func (s *UserStore) GetByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

// GetByUsername implements store.UserStore.
func (s *UserStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// WithTx implements store.UserStore. The fake has no transactions, so it
// returns itself.
func (s *UserStore) WithTx(_ *sql.Tx) store.UserStore {
	return s
}
