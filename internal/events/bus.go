// Package events provides the in-process event bus that connects experiment
// execution to the HTTP streaming endpoints and the background job triggers.
package events

import (
	"sync"
	"time"
)

// EventType identifies a class of system events.
type EventType string

const (
	// RunStarted fires when an experiment run begins executing.
	RunStarted EventType = "run_started"
	// RunProgress fires as an experiment advances (per width / per trial batch).
	RunProgress EventType = "run_progress"
	// RunCompleted fires when an experiment run finishes successfully.
	RunCompleted EventType = "run_completed"
	// RunFailed fires when an experiment run errors out.
	RunFailed EventType = "run_failed"
	// WidthCertified fires when a quantum-volume width passes certification.
	WidthCertified EventType = "width_certified"
)

// Event is one published occurrence with its typed payload.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Data      EventData
}

// Handler consumes published events. Handlers run synchronously on the
// publisher's goroutine and must not block.
type Handler func(*Event)

// Bus is a minimal synchronous publish/subscribe hub.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	all      []Handler
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[EventType][]Handler)}
}

// Subscribe registers a handler for one event type.
func (b *Bus) Subscribe(t EventType, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], h)
}

// SubscribeAll registers a handler for every event type. The SSE and
// WebSocket streams use this to forward the full firehose.
func (b *Bus) SubscribeAll(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, h)
}

// Emit publishes an event to all matching handlers.
func (b *Bus) Emit(data EventData) {
	evt := &Event{
		Type:      data.EventType(),
		Timestamp: time.Now(),
		Data:      data,
	}

	b.mu.RLock()
	typed := b.handlers[evt.Type]
	all := b.all
	b.mu.RUnlock()

	for _, h := range typed {
		h(evt)
	}
	for _, h := range all {
		h(evt)
	}
}
