package work

import (
	"strings"
	"sync"
	"time"
)

// CompletionTracker tracks when work items were last completed.
// Interval-based work (scheduled sweeps, maintenance) uses it to decide
// staleness; dependency checks use it to gate dependent work types.
type CompletionTracker struct {
	completions map[string]time.Time // key: "typeID:subject"
	mu          sync.RWMutex
}

// NewCompletionTracker creates a new completion tracker.
func NewCompletionTracker() *CompletionTracker {
	return &CompletionTracker{
		completions: make(map[string]time.Time),
	}
}

func makeKey(typeID, subject string) string {
	if subject == "" {
		return typeID
	}
	return typeID + ":" + subject
}

// MarkCompleted records that a work item has been completed.
func (t *CompletionTracker) MarkCompleted(item *WorkItem) {
	t.MarkCompletedAt(item, time.Now())
}

// MarkCompletedAt records that a work item was completed at a specific time.
// This is primarily used for testing.
func (t *CompletionTracker) MarkCompletedAt(item *WorkItem, completedAt time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.completions[makeKey(item.TypeID, item.Subject)] = completedAt
}

// GetCompletion returns when a work type/subject combination was last
// completed, and whether a completion exists at all.
func (t *CompletionTracker) GetCompletion(typeID, subject string) (time.Time, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	completedAt, exists := t.completions[makeKey(typeID, subject)]
	return completedAt, exists
}

// IsStale returns true if the work should be re-executed based on the interval.
// Zero-interval work is on-demand only and always eligible when triggered.
func (t *CompletionTracker) IsStale(typeID, subject string, interval time.Duration) bool {
	if interval == 0 {
		return true
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	completedAt, exists := t.completions[makeKey(typeID, subject)]
	if !exists {
		return true
	}

	return time.Since(completedAt) > interval
}

// Clear removes the completion record for a specific work type/subject.
func (t *CompletionTracker) Clear(typeID, subject string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.completions, makeKey(typeID, subject))
}

// ClearByTypeID removes all completion records for a work type ID,
// across all subjects.
func (t *CompletionTracker) ClearByTypeID(typeID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for key := range t.completions {
		if key == typeID || strings.HasPrefix(key, typeID+":") {
			delete(t.completions, key)
		}
	}
}
