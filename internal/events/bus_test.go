package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusTypedSubscription(t *testing.T) {
	bus := NewBus()

	var got []*Event
	bus.Subscribe(RunCompleted, func(e *Event) { got = append(got, e) })

	bus.Emit(&RunCompletedData{RunID: "r1", Kind: "volume", Headline: 8})
	bus.Emit(&RunFailedData{RunID: "r2", Kind: "vqe", Error: "boom"})

	require.Len(t, got, 1)
	assert.Equal(t, RunCompleted, got[0].Type)
	assert.False(t, got[0].Timestamp.IsZero())

	data, ok := got[0].Data.(*RunCompletedData)
	require.True(t, ok)
	assert.Equal(t, "r1", data.RunID)
	assert.Equal(t, 8.0, data.Headline)
}

func TestBusSubscribeAllReceivesEverything(t *testing.T) {
	bus := NewBus()

	var types []EventType
	bus.SubscribeAll(func(e *Event) { types = append(types, e.Type) })

	bus.Emit(&RunStartedData{RunID: "r1", Kind: "maxcut"})
	bus.Emit(&RunProgressData{RunID: "r1", Kind: "maxcut", Completed: 1, Total: 1})
	bus.Emit(&WidthCertifiedData{RunID: "r2", Width: 3, QuantumVolume: 8})

	assert.Equal(t, []EventType{RunStarted, RunProgress, WidthCertified}, types)
}

func TestBusMultipleHandlersPerType(t *testing.T) {
	bus := NewBus()

	calls := 0
	bus.Subscribe(RunStarted, func(*Event) { calls++ })
	bus.Subscribe(RunStarted, func(*Event) { calls++ })
	bus.SubscribeAll(func(*Event) { calls++ })

	bus.Emit(&RunStartedData{RunID: "r1", Kind: "volume"})
	assert.Equal(t, 3, calls)
}

func TestEventDataTypes(t *testing.T) {
	assert.Equal(t, RunStarted, (&RunStartedData{}).EventType())
	assert.Equal(t, RunProgress, (&RunProgressData{}).EventType())
	assert.Equal(t, RunCompleted, (&RunCompletedData{}).EventType())
	assert.Equal(t, RunFailed, (&RunFailedData{}).EventType())
	assert.Equal(t, WidthCertified, (&WidthCertifiedData{}).EventType())
}
