package quantum

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrZeroShots reports a sampling request with no shots. The statistics layer
// treats this as a domain error rather than returning a degenerate result.
var ErrZeroShots = errors.New("shot count must be positive")

// NoiseModel is a stochastic device model: depolarizing errors priced per
// single- and two-qubit gate, plus a symmetric readout bit-flip. All
// probabilities are per-gate (respectively per-bit) and must lie in [0, 1].
type NoiseModel struct {
	// Depolarizing1Q is the probability of a uniformly random Pauli after
	// each single-qubit gate.
	Depolarizing1Q float64 `json:"depolarizing_1q"`
	// Depolarizing2Q is the probability, per qubit, of a uniformly random
	// Pauli after each two-qubit gate.
	Depolarizing2Q float64 `json:"depolarizing_2q"`
	// ReadoutError is the probability each measured bit is flipped.
	ReadoutError float64 `json:"readout_error"`
}

// Validate checks the model's probabilities.
func (n NoiseModel) Validate() error {
	for _, p := range []struct {
		name string
		v    float64
	}{
		{"depolarizing_1q", n.Depolarizing1Q},
		{"depolarizing_2q", n.Depolarizing2Q},
		{"readout_error", n.ReadoutError},
	} {
		if p.v < 0 || p.v > 1 {
			return fmt.Errorf("noise parameter %s = %v outside [0, 1]", p.name, p.v)
		}
	}
	return nil
}

// IsIdeal reports whether the model introduces no errors at all.
func (n NoiseModel) IsIdeal() bool {
	return n.Depolarizing1Q == 0 && n.Depolarizing2Q == 0 && n.ReadoutError == 0
}

// applyRandomPauli applies X, Y or Z with equal probability to qubit q.
func applyRandomPauli(rng *rand.Rand, s *StateVector, q int) {
	switch rng.Intn(3) {
	case 0:
		s.ApplyX(q)
	case 1:
		s.ApplyY(q)
	default:
		s.ApplyZ(q)
	}
}

// runTrajectory executes the circuit once with stochastic Pauli insertions
// after each gate (a Monte-Carlo unraveling of the depolarizing channel).
func runTrajectory(rng *rand.Rand, c *Circuit, n NoiseModel) (*StateVector, error) {
	state, err := NewStateVector(c.NumQubits)
	if err != nil {
		return nil, err
	}
	for i, g := range c.Gates {
		if err := state.apply(g); err != nil {
			return nil, fmt.Errorf("gate %d (%s): %w", i, g.Kind, err)
		}
		switch len(g.Qubits) {
		case 1:
			if n.Depolarizing1Q > 0 && rng.Float64() < n.Depolarizing1Q {
				applyRandomPauli(rng, state, g.Qubits[0])
			}
		case 2:
			if n.Depolarizing2Q > 0 {
				for _, q := range g.Qubits {
					if rng.Float64() < n.Depolarizing2Q {
						applyRandomPauli(rng, state, q)
					}
				}
			}
		}
	}
	return state, nil
}

// SampleCounts executes the circuit under the noise model and returns
// measurement counts keyed by bitstring. The counts always sum to shots.
//
// With a non-trivial depolarizing model every shot gets its own trajectory;
// an ideal (or readout-only) model simulates the circuit once and samples the
// exact distribution, which is what the ideal-reference path uses.
func SampleCounts(rng *rand.Rand, c *Circuit, n NoiseModel, shots int) (map[string]int, error) {
	if shots <= 0 {
		return nil, fmt.Errorf("sampling %d shots: %w", shots, ErrZeroShots)
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	record := func(outcome int) {
		if n.ReadoutError > 0 {
			for q := 0; q < c.NumQubits; q++ {
				if rng.Float64() < n.ReadoutError {
					outcome ^= 1 << q
				}
			}
		}
		counts[FormatBasisState(outcome, c.NumQubits)]++
	}

	if n.Depolarizing1Q == 0 && n.Depolarizing2Q == 0 {
		state, err := c.Run()
		if err != nil {
			return nil, err
		}
		for shot := 0; shot < shots; shot++ {
			record(state.Sample(rng))
		}
		return counts, nil
	}

	for shot := 0; shot < shots; shot++ {
		state, err := runTrajectory(rng, c, n)
		if err != nil {
			return nil, err
		}
		record(state.Sample(rng))
	}
	return counts, nil
}
