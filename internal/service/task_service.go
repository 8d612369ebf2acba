package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/events"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// TaskService implements owner-scoped task CRUD, the completion toggle,
// and stats derivation. Every mutation verifies that the requester owns
// the task before touching it.
type TaskService struct {
	taskStore store.TaskStore
	emitter   events.EventEmitter
	logger    *slog.Logger
}

// NewTaskService creates a new TaskService. The emitter receives a
// task-completed event for every false→true completion transition.
func NewTaskService(
	taskStore store.TaskStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) *TaskService {
	return &TaskService{
		taskStore: taskStore,
		emitter:   emitter,
		logger:    logger.With("component", "task_service"),
	}
}

// ListByUser returns all tasks owned by the given user in creation order.
func (s *TaskService) ListByUser(ctx context.Context, ownerID int64) ([]*domain.Task, error) {
	return s.taskStore.ListByUser(ctx, ownerID)
}

// Create creates a new, not-completed task for the given owner.
func (s *TaskService) Create(ctx context.Context, ownerID int64, title, description string) (*domain.Task, error) {
	task, err := domain.NewTask(ownerID, title, description)
	if err != nil {
		return nil, err
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		s.logger.Error("failed to create task",
			"error", err,
			"user_id", ownerID)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// Get retrieves a task, enforcing ownership.
// Returns store.ErrTaskNotFound if the task does not exist and
// ErrTaskNotOwned if it belongs to another user.
func (s *TaskService) Get(ctx context.Context, requesterID, taskID int64) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if !task.IsOwnedBy(requesterID) {
		return nil, ErrTaskNotOwned
	}

	return task, nil
}

// Update applies the non-nil patch fields to a task, enforcing ownership.
// When the patch flips the completed flag from false to true, a completion
// event is emitted.
func (s *TaskService) Update(ctx context.Context, requesterID, taskID int64, patch domain.TaskPatch) (*domain.Task, error) {
	task, err := s.Get(ctx, requesterID, taskID)
	if err != nil {
		return nil, err
	}

	wasCompleted := task.Completed

	if err := task.Apply(patch); err != nil {
		return nil, err
	}

	if err := s.taskStore.Update(ctx, task); err != nil {
		s.logger.Error("failed to update task",
			"error", err,
			"task_id", taskID)
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if !wasCompleted && task.Completed {
		s.emitCompleted(ctx, task)
	}

	return task, nil
}

// ToggleCompletion flips a task's completed flag, enforcing ownership.
// A false→true transition emits a completion event; true→false does not.
func (s *TaskService) ToggleCompletion(ctx context.Context, requesterID, taskID int64) (*domain.Task, error) {
	task, err := s.Get(ctx, requesterID, taskID)
	if err != nil {
		return nil, err
	}

	completed := !task.Completed
	return s.Update(ctx, requesterID, taskID, domain.TaskPatch{Completed: &completed})
}

// Delete removes a task, enforcing ownership.
func (s *TaskService) Delete(ctx context.Context, requesterID, taskID int64) error {
	task, err := s.Get(ctx, requesterID, taskID)
	if err != nil {
		return err
	}

	if err := s.taskStore.Delete(ctx, task.ID); err != nil {
		s.logger.Error("failed to delete task",
			"error", err,
			"task_id", taskID)
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// Stats returns the task counts and completion rate for the given owner.
// The rate is 0 when the owner has no tasks.
func (s *TaskService) Stats(ctx context.Context, ownerID int64) (domain.TaskStats, error) {
	total, completed, err := s.taskStore.CountByUser(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to count tasks",
			"error", err,
			"user_id", ownerID)
		return domain.TaskStats{}, fmt.Errorf("failed to derive stats: %w", err)
	}

	return domain.NewTaskStats(total, completed), nil
}

// emitCompleted publishes a task-completed event. Emission is best effort:
// a failure is logged and never surfaces to the request path.
func (s *TaskService) emitCompleted(ctx context.Context, task *domain.Task) {
	event, err := events.NewEvent(events.EventTypeTaskCompleted, events.TaskCompletedPayload{
		TaskID: task.ID,
	})
	if err != nil {
		s.logger.Error("failed to build completion event",
			"error", err,
			"task_id", task.ID)
		return
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit completion event",
			"error", err,
			"task_id", task.ID)
	}
}
