package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/events"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// TaskGetter is the narrow slice of the task store the notification
// handler needs.
type TaskGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
}

// CompletionNoticeHandler handles TypeCompletionNotice jobs: it looks up
// the completed task and logs an acknowledgment. A real delivery channel
// (mail, push) would slot in here; the contract stays best effort either
// way.
type CompletionNoticeHandler struct {
	tasks  TaskGetter
	logger *slog.Logger
}

// NewCompletionNoticeHandler creates a new CompletionNoticeHandler.
func NewCompletionNoticeHandler(tasks TaskGetter, logger *slog.Logger) *CompletionNoticeHandler {
	return &CompletionNoticeHandler{
		tasks:  tasks,
		logger: logger.With("component", "completion_notice_handler"),
	}
}

// Ensure CompletionNoticeHandler implements Handler
var _ Handler = (*CompletionNoticeHandler)(nil)

// Execute implements Handler.Execute.
// A missing task is logged and swallowed: the task may have been deleted
// between completion and delivery, and the notice is best effort.
func (h *CompletionNoticeHandler) Execute(ctx context.Context, j *Job) error {
	var payload CompletionNoticePayload
	if err := j.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to unmarshal completion notice payload: %w", err)
	}

	task, err := h.tasks.GetByID(ctx, payload.TaskID)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			h.logger.Warn("completed task no longer exists, dropping notice",
				"task_id", payload.TaskID,
				"job_id", j.ID)
			return nil
		}
		return fmt.Errorf("failed to load task %d: %w", payload.TaskID, err)
	}

	h.logger.Info("task completed",
		"task_id", task.ID,
		"user_id", task.UserID,
		"title", task.Title)
	return nil
}

// CompletionEventHandler bridges the events package to the job queue: it
// turns task-completed events emitted by the service layer into queued
// completion notices. Enqueue failures propagate to the emitter, which
// logs them; the request path never fails because of them.
type CompletionEventHandler struct {
	producer Producer
	logger   *slog.Logger
}

// NewCompletionEventHandler creates a new CompletionEventHandler.
func NewCompletionEventHandler(producer Producer, logger *slog.Logger) *CompletionEventHandler {
	return &CompletionEventHandler{
		producer: producer,
		logger:   logger.With("component", "completion_event_handler"),
	}
}

// Ensure CompletionEventHandler implements events.EventHandler
var _ events.EventHandler = (*CompletionEventHandler)(nil)

// HandleEvent implements events.EventHandler.
func (h *CompletionEventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	if event.Type != events.EventTypeTaskCompleted {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload events.TaskCompletedPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to unmarshal event payload: %w", err)
	}

	if err := h.producer.Enqueue(ctx, TypeCompletionNotice, CompletionNoticePayload{
		TaskID: payload.TaskID,
	}); err != nil {
		return fmt.Errorf("failed to enqueue completion notice: %w", err)
	}

	h.logger.Debug("completion notice enqueued",
		"task_id", payload.TaskID,
		"event_id", event.ID)
	return nil
}
