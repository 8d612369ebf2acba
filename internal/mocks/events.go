package mocks

import (
	"context"
	"sync"

	"github.com/taskdeck/taskdeck-api/internal/events"
)

// EventEmitter records emitted events for assertions.
type EventEmitter struct {
	mu     sync.Mutex
	events []*events.Event

	// EmitErr, when set, is returned by EmitEvent after recording.
	EmitErr error
}

// NewEventEmitter creates a recording event emitter.
func NewEventEmitter() *EventEmitter {
	return &EventEmitter{}
}

// EmitEvent implements events.EventEmitter.
func (e *EventEmitter) EmitEvent(_ context.Context, event *events.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.events = append(e.events, event)
	return e.EmitErr
}

// Events returns the events emitted so far.
func (e *EventEmitter) Events() []*events.Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]*events.Event, len(e.events))
	copy(out, e.events)
	return out
}
