// Package maxcut implements the QAOA experiment for weighted MaxCut, plus a
// trotterized annealing-schedule baseline. Graphs arrive as weighted edge
// lists; the cost landscape is the Ising mapping from the ising package.
package maxcut

import (
	"fmt"

	"github.com/quantalab/qbenchd/internal/modules/ising"
	"github.com/quantalab/qbenchd/internal/quantum"
)

// BuildQAOACircuit assembles the depth-p QAOA circuit for the graph:
// Hadamards on every qubit, then per layer the phase separator (one RZZ per
// edge, angle gamma * weight) and the transverse mixer (RX(2*beta)).
func BuildQAOACircuit(g *ising.Graph, gammas, betas []float64) (*quantum.Circuit, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if len(gammas) != len(betas) {
		return nil, fmt.Errorf("qaoa needs matching angle vectors, got %d gammas and %d betas", len(gammas), len(betas))
	}
	if len(gammas) == 0 {
		return nil, fmt.Errorf("qaoa needs at least one layer")
	}

	c, err := quantum.NewCircuit(g.NumNodes)
	if err != nil {
		return nil, err
	}
	for q := 0; q < g.NumNodes; q++ {
		if err := c.H(q); err != nil {
			return nil, err
		}
	}
	for layer := range gammas {
		for _, e := range g.Edges {
			if err := c.RZZ(e.A, e.B, gammas[layer]*e.Weight); err != nil {
				return nil, err
			}
		}
		for q := 0; q < g.NumNodes; q++ {
			if err := c.RX(q, 2*betas[layer]); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// BuildAnnealCircuit trotterizes a linear annealing schedule over total time
// T in steps slices: at step k, s = k/steps interpolates from the transverse
// mixer toward the Ising cost Hamiltonian. This is the non-variational
// baseline the QAOA result is compared against.
func BuildAnnealCircuit(h *ising.Hamiltonian, totalTime float64, steps int) (*quantum.Circuit, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	if totalTime <= 0 {
		return nil, fmt.Errorf("annealing time %v must be positive", totalTime)
	}
	if steps < 1 {
		return nil, fmt.Errorf("annealing needs at least one step, got %d", steps)
	}

	c, err := quantum.NewCircuit(h.NumSpins)
	if err != nil {
		return nil, err
	}
	for q := 0; q < h.NumSpins; q++ {
		if err := c.H(q); err != nil {
			return nil, err
		}
	}

	dt := totalTime / float64(steps)
	for k := 1; k <= steps; k++ {
		s := float64(k) / float64(steps)
		// Cost slice: exp(-i s dt H_C). RZZ(theta) = exp(-i theta/2 ZZ),
		// RZ(theta) likewise for single-spin fields.
		for _, cp := range h.Couplings {
			if err := c.RZZ(cp.I, cp.J, 2*s*dt*cp.Weight); err != nil {
				return nil, err
			}
		}
		for q, field := range h.Fields {
			if field == 0 {
				continue
			}
			if err := c.RZ(q, 2*s*dt*field); err != nil {
				return nil, err
			}
		}
		// Mixer slice: exp(+i (1-s) dt X) per spin.
		for q := 0; q < h.NumSpins; q++ {
			if err := c.RX(q, -2*(1-s)*dt); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}
