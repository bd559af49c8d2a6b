package server

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantalab/qbenchd/internal/events"
)

func TestFanoutDeliversToAllClients(t *testing.T) {
	bus := events.NewBus()
	f := NewEventFanout(bus, zerolog.Nop())

	a := f.Register()
	b := f.Register()

	bus.Emit(&events.RunStartedData{RunID: "r1", Kind: "volume"})

	for _, ch := range []chan *events.Event{a, b} {
		select {
		case evt := <-ch:
			assert.Equal(t, events.RunStarted, evt.Type)
		default:
			t.Fatal("expected event on client channel")
		}
	}
}

func TestFanoutUnregisterStopsDelivery(t *testing.T) {
	bus := events.NewBus()
	f := NewEventFanout(bus, zerolog.Nop())

	ch := f.Register()
	f.Unregister(ch)

	bus.Emit(&events.RunStartedData{RunID: "r1", Kind: "vqe"})
	select {
	case <-ch:
		t.Fatal("unregistered channel must not receive events")
	default:
	}
}

func TestFanoutDropsWhenClientFull(t *testing.T) {
	bus := events.NewBus()
	f := NewEventFanout(bus, zerolog.Nop())

	ch := f.Register()
	// Fill the buffer and one more: the overflow is dropped, not blocking.
	for i := 0; i < 101; i++ {
		bus.Emit(&events.RunProgressData{RunID: "r1", Kind: "volume", Completed: i, Total: 101})
	}

	require.Len(t, ch, 100)
	evt := <-ch
	data := evt.Data.(*events.RunProgressData)
	assert.Zero(t, data.Completed)
}
