// Package runs manages experiment run records: their lifecycle states and the
// persisted request/report JSON. Every experiment kind (volume, vqe, maxcut)
// shares this table; kind-specific aggregates live with their own modules.
package runs

import "time"

// Kind identifies an experiment type.
type Kind string

const (
	KindVolume Kind = "volume"
	KindVQE    Kind = "vqe"
	KindMaxCut Kind = "maxcut"
)

// Valid reports whether the kind is one of the known experiment types.
func (k Kind) Valid() bool {
	switch k {
	case KindVolume, KindVQE, KindMaxCut:
		return true
	}
	return false
}

// Status is the lifecycle state of a run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Run is one experiment run record.
type Run struct {
	UUID       string     `json:"uuid"`
	Kind       Kind       `json:"kind"`
	Status     Status     `json:"status"`
	Params     string     `json:"params"`
	Report     *string    `json:"report,omitempty"`
	Error      *string    `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
