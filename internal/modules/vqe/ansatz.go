// Package vqe implements the variational quantum eigensolver experiment:
// a hardware-efficient ansatz whose parameters are tuned by gradient-free
// classical optimization to approximate the ground-state energy of an Ising
// Hamiltonian.
package vqe

import (
	"fmt"

	"github.com/quantalab/qbenchd/internal/quantum"
)

// Ansatz is the hardware-efficient template: an initial RY layer, then per
// entangling layer a CZ chain over neighboring qubits followed by another RY
// layer. Parameter count is width * (layers + 1).
type Ansatz struct {
	Width  int
	Layers int
}

// NewAnsatz validates and returns an ansatz template.
func NewAnsatz(width, layers int) (*Ansatz, error) {
	if width < 1 || width > quantum.MaxQubits {
		return nil, fmt.Errorf("ansatz width %d outside [1, %d]: %w", width, quantum.MaxQubits, quantum.ErrInvalidWidth)
	}
	if layers < 0 {
		return nil, fmt.Errorf("ansatz layer count %d must be non-negative", layers)
	}
	return &Ansatz{Width: width, Layers: layers}, nil
}

// ParamCount returns the number of rotation angles the template consumes.
func (a *Ansatz) ParamCount() int {
	return a.Width * (a.Layers + 1)
}

// Build instantiates the ansatz circuit for one parameter vector.
func (a *Ansatz) Build(params []float64) (*quantum.Circuit, error) {
	if len(params) != a.ParamCount() {
		return nil, fmt.Errorf("ansatz expects %d parameters, got %d", a.ParamCount(), len(params))
	}

	c, err := quantum.NewCircuit(a.Width)
	if err != nil {
		return nil, err
	}

	next := 0
	ryLayer := func() error {
		for q := 0; q < a.Width; q++ {
			if err := c.RY(q, params[next]); err != nil {
				return err
			}
			next++
		}
		return nil
	}

	if err := ryLayer(); err != nil {
		return nil, err
	}
	for layer := 0; layer < a.Layers; layer++ {
		for q := 0; q+1 < a.Width; q++ {
			if err := c.CZ(q, q+1); err != nil {
				return nil, err
			}
		}
		if err := ryLayer(); err != nil {
			return nil, err
		}
	}
	return c, nil
}
