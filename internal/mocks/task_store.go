package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// TaskStore is an in-memory store.TaskStore.
type TaskStore struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]*domain.Task

	// UpdateErr, when set, is returned by Update before any state change.
	UpdateErr error
}

// NewTaskStore creates an empty in-memory task store.
func NewTaskStore() *TaskStore {
	return &TaskStore{
		nextID: 1,
		tasks:  make(map[int64]*domain.Task),
	}
}

// Create implements store.TaskStore.
func (s *TaskStore) Create(_ context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task.ID = s.nextID
	s.nextID++

	copied := *task
	s.tasks[task.ID] = &copied
	return nil
}

// GetByID implements store.TaskStore.
func (s *TaskStore) GetByID(_ context.Context, id int64) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

// ListByUser implements store.TaskStore.
func (s *TaskStore) ListByUser(_ context.Context, userID int64) ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.Task
	for _, task := range s.tasks {
		if task.UserID == userID {
			copied := *task
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update implements store.TaskStore.
func (s *TaskStore) Update(_ context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.UpdateErr != nil {
		return s.UpdateErr
	}

	if _, ok := s.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	copied := *task
	s.tasks[task.ID] = &copied
	return nil
}

// Delete implements store.TaskStore.
func (s *TaskStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

// CountByUser implements store.TaskStore.
func (s *TaskStore) CountByUser(_ context.Context, userID int64) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total, completed int
	for _, task := range s.tasks {
		if task.UserID != userID {
			continue
		}
		total++
		if task.Completed {
			completed++
		}
	}
	return total, completed, nil
}

// WithTx implements store.TaskStore. The fake has no transactions, so it
// returns itself.
func (s *TaskStore) WithTx(_ *sql.Tx) store.TaskStore {
	return s
}
