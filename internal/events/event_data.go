package events

// EventData is the interface that all event payload types implement.
// It keeps payloads type-safe while letting the bus stay generic.
type EventData interface {
	// EventType returns the event type this data is associated with.
	EventType() EventType
}

// RunStartedData contains data for RunStarted events.
type RunStartedData struct {
	RunID string `json:"run_id"`
	Kind  string `json:"kind"`
}

// EventType returns the event type for RunStartedData.
func (d *RunStartedData) EventType() EventType {
	return RunStarted
}

// RunProgressData contains data for RunProgress events.
type RunProgressData struct {
	RunID     string `json:"run_id"`
	Kind      string `json:"kind"`
	Stage     string `json:"stage"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

// EventType returns the event type for RunProgressData.
func (d *RunProgressData) EventType() EventType {
	return RunProgress
}

// RunCompletedData contains data for RunCompleted events.
type RunCompletedData struct {
	RunID     string  `json:"run_id"`
	Kind      string  `json:"kind"`
	ElapsedMS int64   `json:"elapsed_ms"`
	Headline  float64 `json:"headline,omitempty"`
}

// EventType returns the event type for RunCompletedData.
func (d *RunCompletedData) EventType() EventType {
	return RunCompleted
}

// RunFailedData contains data for RunFailed events.
type RunFailedData struct {
	RunID string `json:"run_id"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// EventType returns the event type for RunFailedData.
func (d *RunFailedData) EventType() EventType {
	return RunFailed
}

// WidthCertifiedData contains data for WidthCertified events.
type WidthCertifiedData struct {
	RunID         string  `json:"run_id"`
	Width         int     `json:"width"`
	Confidence    float64 `json:"confidence"`
	QuantumVolume int     `json:"quantum_volume"`
}

// EventType returns the event type for WidthCertifiedData.
func (d *WidthCertifiedData) EventType() EventType {
	return WidthCertified
}
