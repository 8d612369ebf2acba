package job_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/events"
	"github.com/taskdeck/taskdeck-api/internal/job"
	"github.com/taskdeck/taskdeck-api/internal/mocks"
)

func TestCompletionNoticeHandler(t *testing.T) {
	t.Parallel()

	t.Run("acknowledges an existing task", func(t *testing.T) {
		t.Parallel()

		taskStore := mocks.NewTaskStore()
		task, err := domain.NewTask(1, "buy milk", "")
		require.NoError(t, err)
		require.NoError(t, taskStore.Create(context.Background(), task))

		handler := job.NewCompletionNoticeHandler(taskStore, slog.Default())

		notice, err := job.New(job.TypeCompletionNotice, job.CompletionNoticePayload{TaskID: task.ID})
		require.NoError(t, err)

		assert.NoError(t, handler.Execute(context.Background(), notice))
	})

	t.Run("a deleted task drops the notice without error", func(t *testing.T) {
		t.Parallel()

		handler := job.NewCompletionNoticeHandler(mocks.NewTaskStore(), slog.Default())

		notice, err := job.New(job.TypeCompletionNotice, job.CompletionNoticePayload{TaskID: 999})
		require.NoError(t, err)

		assert.NoError(t, handler.Execute(context.Background(), notice))
	})

	t.Run("malformed payload fails", func(t *testing.T) {
		t.Parallel()

		handler := job.NewCompletionNoticeHandler(mocks.NewTaskStore(), slog.Default())

		notice, err := job.New(job.TypeCompletionNotice, "not an object")
		require.NoError(t, err)

		assert.Error(t, handler.Execute(context.Background(), notice))
	})
}

func TestCompletionEventHandler(t *testing.T) {
	t.Parallel()

	t.Run("task completed event enqueues a notice", func(t *testing.T) {
		t.Parallel()

		jobStore := mocks.NewJobStore()
		producer := job.NewQueueProducer(jobStore, slog.Default())
		handler := job.NewCompletionEventHandler(producer, slog.Default())

		event, err := events.NewEvent(events.EventTypeTaskCompleted, events.TaskCompletedPayload{TaskID: 7})
		require.NoError(t, err)

		require.NoError(t, handler.HandleEvent(context.Background(), event))

		all := jobStore.All()
		require.Len(t, all, 1)
		assert.Equal(t, job.TypeCompletionNotice, all[0].Type)

		var payload job.CompletionNoticePayload
		require.NoError(t, all[0].UnmarshalPayload(&payload))
		assert.Equal(t, int64(7), payload.TaskID)
	})

	t.Run("other event types are ignored", func(t *testing.T) {
		t.Parallel()

		jobStore := mocks.NewJobStore()
		producer := job.NewQueueProducer(jobStore, slog.Default())
		handler := job.NewCompletionEventHandler(producer, slog.Default())

		event, err := events.NewEvent("task.created", nil)
		require.NoError(t, err)

		require.NoError(t, handler.HandleEvent(context.Background(), event))
		assert.Empty(t, jobStore.All())
	})
}
