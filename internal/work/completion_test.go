package work

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompletionTrackerMarkAndGet(t *testing.T) {
	tracker := NewCompletionTracker()
	item := NewWorkItem(&WorkType{ID: "volume:run"}, "uuid-1")

	_, exists := tracker.GetCompletion("volume:run", "uuid-1")
	assert.False(t, exists)

	tracker.MarkCompleted(item)
	completedAt, exists := tracker.GetCompletion("volume:run", "uuid-1")
	assert.True(t, exists)
	assert.WithinDuration(t, time.Now(), completedAt, time.Second)

	// Same type, different subject: independent record.
	_, exists = tracker.GetCompletion("volume:run", "uuid-2")
	assert.False(t, exists)
}

func TestCompletionTrackerIsStale(t *testing.T) {
	tracker := NewCompletionTracker()
	item := NewWorkItem(&WorkType{ID: "maintenance:checkpoint"}, "")

	// Never completed: always stale.
	assert.True(t, tracker.IsStale("maintenance:checkpoint", "", time.Hour))

	// Zero interval means on-demand, always eligible.
	tracker.MarkCompleted(item)
	assert.True(t, tracker.IsStale("maintenance:checkpoint", "", 0))

	// Fresh completion within the interval.
	assert.False(t, tracker.IsStale("maintenance:checkpoint", "", time.Hour))

	// Old completion beyond the interval.
	tracker.MarkCompletedAt(item, time.Now().Add(-2*time.Hour))
	assert.True(t, tracker.IsStale("maintenance:checkpoint", "", time.Hour))
}

func TestCompletionTrackerClear(t *testing.T) {
	tracker := NewCompletionTracker()
	tracker.MarkCompleted(NewWorkItem(&WorkType{ID: "vqe:run"}, "a"))
	tracker.MarkCompleted(NewWorkItem(&WorkType{ID: "vqe:run"}, "b"))
	tracker.MarkCompleted(NewWorkItem(&WorkType{ID: "maxcut:run"}, "c"))

	tracker.Clear("vqe:run", "a")
	_, exists := tracker.GetCompletion("vqe:run", "a")
	assert.False(t, exists)
	_, exists = tracker.GetCompletion("vqe:run", "b")
	assert.True(t, exists)

	tracker.ClearByTypeID("vqe:run")
	_, exists = tracker.GetCompletion("vqe:run", "b")
	assert.False(t, exists)
	_, exists = tracker.GetCompletion("maxcut:run", "c")
	assert.True(t, exists)
}
