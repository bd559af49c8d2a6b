package volume

import (
	"fmt"
	"time"

	"github.com/quantalab/qbenchd/internal/quantum"
)

// Params configures one quantum-volume run. Zero values are filled with the
// service defaults before execution.
type Params struct {
	// Widths lists the circuit widths (qubit counts) to certify, each >= 2.
	Widths []int `json:"widths"`
	// Trials is the number of random model circuits per width.
	Trials int `json:"trials"`
	// Shots is the number of noisy measurements per trial.
	Shots int `json:"shots"`
	// Noise is the device model applied to the noisy executions.
	Noise quantum.NoiseModel `json:"noise"`
	// Seed makes the run reproducible. 0 selects a time-based seed.
	Seed int64 `json:"seed"`
}

// Defaults used when a request leaves parameters unset. The widths mirror the
// canonical small-device sweep (2 through 5 qubits).
const (
	DefaultTrials = 100
	DefaultShots  = 1024
)

// DefaultWidths returns the canonical width sweep.
func DefaultWidths() []int {
	return []int{2, 3, 4, 5}
}

// DefaultNoise returns a mild superconducting-flavored device model.
func DefaultNoise() quantum.NoiseModel {
	return quantum.NoiseModel{
		Depolarizing1Q: 0.001,
		Depolarizing2Q: 0.01,
		ReadoutError:   0.02,
	}
}

// normalize applies defaults and validates the parameters.
func (p *Params) normalize() error {
	if len(p.Widths) == 0 {
		p.Widths = DefaultWidths()
	}
	if p.Trials == 0 {
		p.Trials = DefaultTrials
	}
	if p.Shots == 0 {
		p.Shots = DefaultShots
	}
	if p.Seed == 0 {
		p.Seed = time.Now().UnixNano()
	}
	if p.Trials < 0 {
		return fmt.Errorf("trial count %d must be positive: %w", p.Trials, ErrNoTrials)
	}
	if p.Shots < 0 {
		return fmt.Errorf("shot count %d must be positive: %w", p.Shots, quantum.ErrZeroShots)
	}
	for _, w := range p.Widths {
		if w < 2 || w > quantum.MaxQubits {
			return fmt.Errorf("width %d outside [2, %d]: %w", w, quantum.MaxQubits, quantum.ErrInvalidWidth)
		}
	}
	return p.Noise.Validate()
}

// TrialOutcome records one trial of one width: the noisy counts paired with
// the heavy-output frequency computed against the SAME trial's ideal
// distribution. The pairing is by construction, never by lookup.
type TrialOutcome struct {
	Trial          int            `json:"trial"`
	HeavyFrequency float64        `json:"heavy_frequency"`
	Counts         map[string]int `json:"counts,omitempty"`
}

// WidthResult is the aggregate verdict for one width.
type WidthResult struct {
	Width            int            `json:"width"`
	Certification    Certification  `json:"certification"`
	HeavyFrequencies []float64      `json:"heavy_frequencies"`
	Trials           []TrialOutcome `json:"trials,omitempty"`
	// QuantumVolume is 2^width when certified, 0 otherwise.
	QuantumVolume int `json:"quantum_volume"`
}

// Result is a full quantum-volume run report.
type Result struct {
	Params Params        `json:"params"`
	Widths []WidthResult `json:"widths"`
	// QuantumVolume is 2^w for the largest certified width, 0 if none passed.
	QuantumVolume int           `json:"quantum_volume"`
	Elapsed       time.Duration `json:"elapsed_ns"`
}
