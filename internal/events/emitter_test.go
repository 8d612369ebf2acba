package events_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck-api/internal/events"
)

// recordingHandler captures every event it receives.
type recordingHandler struct {
	received []*events.Event
	err      error
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *events.Event) error {
	h.received = append(h.received, event)
	return h.err
}

func TestInMemoryEventEmitter(t *testing.T) {
	t.Parallel()

	t.Run("delivers to all handlers", func(t *testing.T) {
		t.Parallel()

		emitter := events.NewInMemoryEventEmitter(slog.Default())
		first := &recordingHandler{}
		second := &recordingHandler{}
		emitter.RegisterHandler(first)
		emitter.RegisterHandler(second)

		event, err := events.NewEvent(events.EventTypeTaskCompleted, events.TaskCompletedPayload{TaskID: 7})
		require.NoError(t, err)

		require.NoError(t, emitter.EmitEvent(context.Background(), event))
		assert.Len(t, first.received, 1)
		assert.Len(t, second.received, 1)
	})

	t.Run("no handlers is not an error", func(t *testing.T) {
		t.Parallel()

		emitter := events.NewInMemoryEventEmitter(slog.Default())

		event, err := events.NewEvent(events.EventTypeTaskCompleted, nil)
		require.NoError(t, err)

		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
	})

	t.Run("a failing handler does not block the others", func(t *testing.T) {
		t.Parallel()

		emitter := events.NewInMemoryEventEmitter(slog.Default())
		failing := &recordingHandler{err: errors.New("boom")}
		healthy := &recordingHandler{}
		emitter.RegisterHandler(failing)
		emitter.RegisterHandler(healthy)

		event, err := events.NewEvent(events.EventTypeTaskCompleted, nil)
		require.NoError(t, err)

		err = emitter.EmitEvent(context.Background(), event)
		assert.EqualError(t, err, "boom")
		assert.Len(t, healthy.received, 1)
	})
}
