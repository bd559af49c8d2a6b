package work

import (
	"context"
	"strings"
	"time"
)

// WorkTimeout is the maximum duration a work item can run before being cancelled.
// A full quantum-volume sweep at 100 trials per width stays well under this.
const WorkTimeout = 30 * time.Minute

// MaxRetries is the maximum number of times a failed work item will be retried.
// Simulation failures are deterministic for a fixed seed, so retrying more
// than a couple of times only delays the failure verdict.
const MaxRetries = 3

// Priority defines the execution priority of work types.
type Priority int

const (
	// PriorityLow is for maintenance work (cleanup, WAL checkpoints, archive).
	PriorityLow Priority = iota
	// PriorityMedium is for scheduled re-certification sweeps.
	PriorityMedium
	// PriorityHigh is for user-requested experiment runs.
	PriorityHigh
)

// String returns a human-readable name for the priority.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	default:
		return "Unknown"
	}
}

// WorkType defines a type of work that can be executed.
// Work types are registered once and can generate multiple work items.
type WorkType struct {
	// ID is the unique identifier for this work type (e.g., "volume:run").
	ID string

	// DependsOn lists work type IDs that must complete before this work can run.
	DependsOn []string

	// Interval is the minimum time between runs (0 = on-demand only).
	Interval time.Duration

	// Priority determines execution order when multiple work items are eligible.
	Priority Priority

	// FindSubjects returns subjects (run UUIDs) that need this work.
	// Returns []string{""} for global work, nil if no work is needed.
	FindSubjects func() []string

	// Execute performs the work for a given subject.
	// Subject is empty string for global work, a run UUID for experiment work.
	Execute func(ctx context.Context, subject string) error
}

// WorkItem represents a specific unit of work to be executed.
type WorkItem struct {
	// ID is the full work ID including subject (e.g., "volume:run:<uuid>").
	ID string

	// TypeID is the work type ID (e.g., "volume:run").
	TypeID string

	// Subject is the run UUID for experiment work, empty for global work.
	Subject string

	// Retries is the number of times this item has been retried.
	Retries int

	// CreatedAt is when this work item was created.
	CreatedAt time.Time
}

// NewWorkItem creates a new work item from a work type and subject.
func NewWorkItem(workType *WorkType, subject string) *WorkItem {
	id := workType.ID
	if subject != "" {
		id = workType.ID + ":" + subject
	}

	return &WorkItem{
		ID:        id,
		TypeID:    workType.ID,
		Subject:   subject,
		CreatedAt: time.Now(),
	}
}

// ParseWorkID extracts the work type ID and subject from a full work ID.
// Work type IDs have the form "category:action"; anything after the second
// colon is the subject. "volume:run:9f2c..." returns ("volume:run", "9f2c...").
func ParseWorkID(id string) (typeID string, subject string) {
	parts := strings.SplitN(id, ":", 3)
	if len(parts) < 3 {
		return id, ""
	}
	return parts[0] + ":" + parts[1], parts[2]
}

// CompletionKey uniquely identifies a completed work item.
type CompletionKey struct {
	TypeID  string
	Subject string
}

// NewCompletionKey creates a completion key from a work item.
func NewCompletionKey(item *WorkItem) CompletionKey {
	return CompletionKey{
		TypeID:  item.TypeID,
		Subject: item.Subject,
	}
}

// String returns a string representation of the completion key.
func (ck CompletionKey) String() string {
	if ck.Subject == "" {
		return ck.TypeID
	}
	return ck.TypeID + ":" + ck.Subject
}
