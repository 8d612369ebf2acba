package api

import (
	"github.com/taskdeck/taskdeck-api/internal/domain"
)

// RegisterRequest is the payload for user registration.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=80"`
	Password string `json:"password" validate:"required,max=72"`
}

// LoginRequest is the payload for user login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned after successful registration or login.
type AuthResponse struct {
	UserID int64  `json:"user_id"`
	Token  string `json:"token"`
}

// CreateTaskRequest is the payload for task creation.
type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description"`
}

// UpdateTaskRequest is the payload for task updates. Nil fields are left
// unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=100"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// TaskResponse is the wire representation of a task.
type TaskResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// StatsResponse is the wire representation of a user's task stats.
type StatsResponse struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	CompletionRate float64 `json:"completion_rate"`
}

// NewTaskResponse converts a domain task to its wire representation.
func NewTaskResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
	}
}

// NewTaskListResponse converts a slice of domain tasks.
func NewTaskListResponse(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, NewTaskResponse(task))
	}
	return out
}

// NewStatsResponse converts domain stats to their wire representation.
func NewStatsResponse(stats domain.TaskStats) StatsResponse {
	return StatsResponse{
		Total:          stats.Total,
		Completed:      stats.Completed,
		CompletionRate: stats.CompletionRate,
	}
}
