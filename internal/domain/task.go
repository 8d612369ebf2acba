package domain

import (
	"errors"
	"time"
)

// Common validation errors for Task.
var (
	ErrEmptyTaskTitle   = errors.New("task title cannot be empty")
	ErrTaskTitleTooLong = errors.New("task title must be at most 100 characters long")
	ErrEmptyTaskUserID  = errors.New("task user ID cannot be empty")
)

// maxTaskTitleLength mirrors the tasks.title column width.
const maxTaskTitleLength = 100

// Task represents a single todo item owned by exactly one user.
// Only the owning user may view, edit, or delete it.
type Task struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"-"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTask creates a new Task owned by the given user. New tasks always
// start out not completed. The ID is assigned by the store on insert.
// Returns an error if validation fails.
func NewTask(userID int64, title, description string) (*Task, error) {
	task := &Task{
		UserID:      userID,
		Title:       title,
		Description: description,
		Completed:   false,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.UserID == 0 {
		return ErrEmptyTaskUserID
	}

	if t.Title == "" {
		return ErrEmptyTaskTitle
	}

	if len(t.Title) > maxTaskTitleLength {
		return ErrTaskTitleTooLong
	}

	return nil
}

// IsOwnedBy reports whether the task belongs to the given user.
func (t *Task) IsOwnedBy(userID int64) bool {
	return t.UserID == userID
}

// TaskPatch describes a partial update to a task. Nil fields are left
// unchanged, matching the PUT /api/tasks/{id} contract.
type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
}

// Apply copies the non-nil patch fields onto the task and bumps UpdatedAt.
// Returns an error if the patched task fails validation.
func (t *Task) Apply(patch TaskPatch) error {
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	t.UpdatedAt = time.Now().UTC()

	return t.Validate()
}

// TaskStats summarizes a user's tasks for the stats views.
type TaskStats struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	CompletionRate float64 `json:"completion_rate"`
}

// NewTaskStats derives the completion rate from the given counts.
// The rate is defined as 0 when there are no tasks.
func NewTaskStats(total, completed int) TaskStats {
	stats := TaskStats{Total: total, Completed: completed}
	if total > 0 {
		stats.CompletionRate = float64(completed) / float64(total) * 100
	}
	return stats
}
