// Package ising models Z-diagonal Ising Hamiltonians and the weighted-graph
// MaxCut mapping. Both variational experiments (VQE and QAOA) evaluate their
// cost functions through this package: because the Hamiltonians are diagonal
// in the computational basis, expectation values reduce to sums over the
// simulator's exact output probabilities.
package ising

import (
	"errors"
	"fmt"
	"math"
)

// ErrEmptyHamiltonian reports a Hamiltonian with no terms at all.
var ErrEmptyHamiltonian = errors.New("hamiltonian has no terms")

// Coupling is one two-spin term J * Z_i Z_j.
type Coupling struct {
	I      int     `json:"i"`
	J      int     `json:"j"`
	Weight float64 `json:"weight"`
}

// Hamiltonian is H = sum_i h_i Z_i + sum_(i,j) J_ij Z_i Z_j + offset,
// diagonal in the computational basis. Spin convention: bit 0 -> +1
// (Z|0> = +|0>), bit 1 -> -1.
type Hamiltonian struct {
	NumSpins  int        `json:"num_spins"`
	Fields    []float64  `json:"fields"`
	Couplings []Coupling `json:"couplings"`
	Offset    float64    `json:"offset"`
}

// Validate checks index bounds and term sanity.
func (h *Hamiltonian) Validate() error {
	if h.NumSpins < 1 {
		return fmt.Errorf("hamiltonian needs at least one spin, got %d", h.NumSpins)
	}
	if len(h.Fields) != 0 && len(h.Fields) != h.NumSpins {
		return fmt.Errorf("field vector length %d does not match %d spins", len(h.Fields), h.NumSpins)
	}
	if len(h.Fields) == 0 && len(h.Couplings) == 0 {
		return ErrEmptyHamiltonian
	}
	for _, c := range h.Couplings {
		if c.I < 0 || c.I >= h.NumSpins || c.J < 0 || c.J >= h.NumSpins {
			return fmt.Errorf("coupling (%d,%d) outside %d spins", c.I, c.J, h.NumSpins)
		}
		if c.I == c.J {
			return fmt.Errorf("coupling (%d,%d) joins a spin to itself", c.I, c.J)
		}
		if math.IsNaN(c.Weight) || math.IsInf(c.Weight, 0) {
			return fmt.Errorf("coupling (%d,%d) has non-finite weight %v", c.I, c.J, c.Weight)
		}
	}
	return nil
}

// spin returns +1 or -1 for the given qubit of basis state idx.
func spin(idx, q int) float64 {
	if idx&(1<<q) != 0 {
		return -1
	}
	return 1
}

// Energy evaluates the Hamiltonian on one basis state.
func (h *Hamiltonian) Energy(idx int) float64 {
	e := h.Offset
	for q, field := range h.Fields {
		e += field * spin(idx, q)
	}
	for _, c := range h.Couplings {
		e += c.Weight * spin(idx, c.I) * spin(idx, c.J)
	}
	return e
}

// Expectation evaluates <H> from an exact output distribution over all
// 2^NumSpins basis states.
func (h *Hamiltonian) Expectation(probs []float64) (float64, error) {
	if len(probs) != 1<<h.NumSpins {
		return 0, fmt.Errorf("distribution over %d states does not match %d spins", len(probs), h.NumSpins)
	}
	e := 0.0
	for idx, p := range probs {
		if p == 0 {
			continue
		}
		e += p * h.Energy(idx)
	}
	return e, nil
}

// GroundState brute-forces the minimum-energy basis state. Feasible for the
// small systems in scope (2^NumSpins states).
func (h *Hamiltonian) GroundState() (int, float64) {
	bestIdx := 0
	bestE := math.Inf(1)
	for idx := 0; idx < 1<<h.NumSpins; idx++ {
		if e := h.Energy(idx); e < bestE {
			bestIdx, bestE = idx, e
		}
	}
	return bestIdx, bestE
}
