package ising

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoEdges reports a graph with no edges; MaxCut over it is vacuous.
var ErrNoEdges = errors.New("graph has no edges")

// Edge is one weighted undirected edge.
type Edge struct {
	A      int     `json:"a"`
	B      int     `json:"b"`
	Weight float64 `json:"weight"`
}

// Graph is a weighted undirected graph given as an edge list, the way the
// experiment requests carry it.
type Graph struct {
	NumNodes int    `json:"num_nodes"`
	Edges    []Edge `json:"edges"`
}

// Validate checks node bounds and edge sanity.
func (g *Graph) Validate() error {
	if g.NumNodes < 2 {
		return fmt.Errorf("graph needs at least 2 nodes, got %d", g.NumNodes)
	}
	if len(g.Edges) == 0 {
		return ErrNoEdges
	}
	for _, e := range g.Edges {
		if e.A < 0 || e.A >= g.NumNodes || e.B < 0 || e.B >= g.NumNodes {
			return fmt.Errorf("edge (%d,%d) outside %d nodes", e.A, e.B, g.NumNodes)
		}
		if e.A == e.B {
			return fmt.Errorf("edge (%d,%d) is a self-loop", e.A, e.B)
		}
		if math.IsNaN(e.Weight) || math.IsInf(e.Weight, 0) {
			return fmt.Errorf("edge (%d,%d) has non-finite weight %v", e.A, e.B, e.Weight)
		}
	}
	return nil
}

// CutValue returns the total weight of edges crossing the partition encoded
// by basis state idx (bit q selects the side of node q).
func (g *Graph) CutValue(idx int) float64 {
	cut := 0.0
	for _, e := range g.Edges {
		if (idx>>e.A)&1 != (idx>>e.B)&1 {
			cut += e.Weight
		}
	}
	return cut
}

// MaxCutBruteForce enumerates all partitions and returns the best one.
// Exponential in nodes, fine for the widths in scope; used as the reference
// optimum for approximation ratios.
func (g *Graph) MaxCutBruteForce() (int, float64) {
	bestIdx := 0
	bestCut := math.Inf(-1)
	for idx := 0; idx < 1<<g.NumNodes; idx++ {
		if c := g.CutValue(idx); c > bestCut {
			bestIdx, bestCut = idx, c
		}
	}
	return bestIdx, bestCut
}

// MaxCutHamiltonian maps the graph to the Ising cost Hamiltonian
//
//	H = sum_(i,j) (w_ij / 2) Z_i Z_j - sum w_ij / 2
//
// so that cut(s) = -H(s): minimizing the energy maximizes the cut.
func (g *Graph) MaxCutHamiltonian() (*Hamiltonian, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	h := &Hamiltonian{NumSpins: g.NumNodes}
	for _, e := range g.Edges {
		h.Couplings = append(h.Couplings, Coupling{I: e.A, J: e.B, Weight: e.Weight / 2})
		h.Offset -= e.Weight / 2
	}
	return h, nil
}
