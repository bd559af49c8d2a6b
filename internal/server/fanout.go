// Package server provides the HTTP server and routing for qbenchd.
package server

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/quantalab/qbenchd/internal/events"
)

// EventFanout bridges the synchronous event bus to streaming connections.
// It subscribes once and fans events out to per-connection channels, so
// connections can come and go without touching bus subscriptions.
type EventFanout struct {
	mu      sync.Mutex
	clients map[chan *events.Event]struct{}
	log     zerolog.Logger
}

// NewEventFanout creates a fanout subscribed to all bus events.
func NewEventFanout(bus *events.Bus, log zerolog.Logger) *EventFanout {
	f := &EventFanout{
		clients: make(map[chan *events.Event]struct{}),
		log:     log.With().Str("component", "event_fanout").Logger(),
	}
	bus.SubscribeAll(f.broadcast)
	return f
}

// Register adds a connection channel. The buffer absorbs bursts; a full
// channel drops events rather than blocking the emitter.
func (f *EventFanout) Register() chan *events.Event {
	ch := make(chan *events.Event, 100)
	f.mu.Lock()
	f.clients[ch] = struct{}{}
	f.mu.Unlock()
	return ch
}

// Unregister removes a connection channel.
func (f *EventFanout) Unregister(ch chan *events.Event) {
	f.mu.Lock()
	delete(f.clients, ch)
	f.mu.Unlock()
}

func (f *EventFanout) broadcast(event *events.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for ch := range f.clients {
		select {
		case ch <- event:
		default:
			f.log.Warn().Str("event_type", string(event.Type)).Msg("Client channel full, dropping event")
		}
	}
}
