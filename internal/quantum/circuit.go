package quantum

import (
	"errors"
	"fmt"
)

// MaxQubits bounds the simulator. 2^20 complex128 amplitudes is 16 MiB,
// well past the widths the benchmarks use.
const MaxQubits = 20

var (
	// ErrInvalidWidth reports a qubit count the simulator cannot represent.
	ErrInvalidWidth = errors.New("invalid qubit count")
	// ErrQubitOutOfRange reports a gate addressing a qubit outside the circuit.
	ErrQubitOutOfRange = errors.New("qubit index out of range")
)

// GateKind identifies a gate in the canonical set.
type GateKind string

const (
	GateH    GateKind = "H"
	GateX    GateKind = "X"
	GateY    GateKind = "Y"
	GateZ    GateKind = "Z"
	GateS    GateKind = "S"
	GateSdg  GateKind = "Sdg"
	GateT    GateKind = "T"
	GateTdg  GateKind = "Tdg"
	GateRX   GateKind = "RX"
	GateRY   GateKind = "RY"
	GateRZ   GateKind = "RZ"
	GateCX   GateKind = "CX"
	GateCZ   GateKind = "CZ"
	GateRZZ  GateKind = "RZZ"
	GateSWAP GateKind = "SWAP"
	// GateU2 is an opaque two-qubit unitary, used for the Haar-random SU(4)
	// blocks of the quantum-volume model circuits.
	GateU2 GateKind = "U2"
)

// Gate is one operation of a circuit. Qubits holds one index for single-qubit
// gates and two for two-qubit gates (control first for CX). Params carries
// rotation angles; Unitary carries the row-major matrix for GateU2.
type Gate struct {
	Kind    GateKind
	Qubits  []int
	Params  []float64
	Unitary []complex128
}

// Circuit is an ordered gate list over a fixed number of qubits.
type Circuit struct {
	NumQubits int
	Gates     []Gate
}

// NewCircuit returns an empty circuit on numQubits qubits.
func NewCircuit(numQubits int) (*Circuit, error) {
	if numQubits < 1 || numQubits > MaxQubits {
		return nil, fmt.Errorf("qubit count %d out of range [1, %d]: %w", numQubits, MaxQubits, ErrInvalidWidth)
	}
	return &Circuit{NumQubits: numQubits}, nil
}

// Append adds a gate after validating its qubit indices.
func (c *Circuit) Append(g Gate) error {
	for _, q := range g.Qubits {
		if q < 0 || q >= c.NumQubits {
			return fmt.Errorf("gate %s on qubit %d in %d-qubit circuit: %w", g.Kind, q, c.NumQubits, ErrQubitOutOfRange)
		}
	}
	c.Gates = append(c.Gates, g)
	return nil
}

// H appends a Hadamard on q.
func (c *Circuit) H(q int) error { return c.Append(Gate{Kind: GateH, Qubits: []int{q}}) }

// X appends a Pauli-X on q.
func (c *Circuit) X(q int) error { return c.Append(Gate{Kind: GateX, Qubits: []int{q}}) }

// RX appends an X rotation by theta on q.
func (c *Circuit) RX(q int, theta float64) error {
	return c.Append(Gate{Kind: GateRX, Qubits: []int{q}, Params: []float64{theta}})
}

// RY appends a Y rotation by theta on q.
func (c *Circuit) RY(q int, theta float64) error {
	return c.Append(Gate{Kind: GateRY, Qubits: []int{q}, Params: []float64{theta}})
}

// RZ appends a Z rotation by theta on q.
func (c *Circuit) RZ(q int, theta float64) error {
	return c.Append(Gate{Kind: GateRZ, Qubits: []int{q}, Params: []float64{theta}})
}

// CX appends a CNOT with the given control and target.
func (c *Circuit) CX(control, target int) error {
	return c.Append(Gate{Kind: GateCX, Qubits: []int{control, target}})
}

// CZ appends a controlled-Z on the pair.
func (c *Circuit) CZ(a, b int) error { return c.Append(Gate{Kind: GateCZ, Qubits: []int{a, b}}) }

// RZZ appends exp(-i theta/2 Z⊗Z) on the pair.
func (c *Circuit) RZZ(a, b int, theta float64) error {
	return c.Append(Gate{Kind: GateRZZ, Qubits: []int{a, b}, Params: []float64{theta}})
}

// Unitary2 appends an opaque two-qubit unitary on the pair.
func (c *Circuit) Unitary2(a, b int, u []complex128) error {
	return c.Append(Gate{Kind: GateU2, Qubits: []int{a, b}, Unitary: u})
}

// TwoQubitGateCount returns how many gates act on two qubits. The noise model
// prices these separately from single-qubit gates.
func (c *Circuit) TwoQubitGateCount() int {
	n := 0
	for _, g := range c.Gates {
		if len(g.Qubits) == 2 {
			n++
		}
	}
	return n
}

// apply dispatches one gate onto a state.
func (s *StateVector) apply(g Gate) error {
	switch g.Kind {
	case GateH:
		s.ApplyH(g.Qubits[0])
	case GateX:
		s.ApplyX(g.Qubits[0])
	case GateY:
		s.ApplyY(g.Qubits[0])
	case GateZ:
		s.ApplyZ(g.Qubits[0])
	case GateS:
		s.ApplyS(g.Qubits[0], false)
	case GateSdg:
		s.ApplyS(g.Qubits[0], true)
	case GateT:
		s.ApplyT(g.Qubits[0], false)
	case GateTdg:
		s.ApplyT(g.Qubits[0], true)
	case GateRX:
		s.ApplyRX(g.Qubits[0], g.Params[0])
	case GateRY:
		s.ApplyRY(g.Qubits[0], g.Params[0])
	case GateRZ:
		s.ApplyRZ(g.Qubits[0], g.Params[0])
	case GateCX:
		s.ApplyCX(g.Qubits[0], g.Qubits[1])
	case GateCZ:
		s.ApplyCZ(g.Qubits[0], g.Qubits[1])
	case GateRZZ:
		s.ApplyRZZ(g.Qubits[0], g.Qubits[1], g.Params[0])
	case GateSWAP:
		s.ApplySWAP(g.Qubits[0], g.Qubits[1])
	case GateU2:
		return s.ApplyUnitary2(g.Qubits[0], g.Qubits[1], g.Unitary)
	default:
		return fmt.Errorf("unknown gate kind %q", g.Kind)
	}
	return nil
}

// Run executes the circuit on |0...0> and returns the final state.
func (c *Circuit) Run() (*StateVector, error) {
	state, err := NewStateVector(c.NumQubits)
	if err != nil {
		return nil, err
	}
	for i, g := range c.Gates {
		if err := state.apply(g); err != nil {
			return nil, fmt.Errorf("gate %d (%s): %w", i, g.Kind, err)
		}
	}
	return state, nil
}

// IdealProbabilities executes the circuit noiselessly and returns the exact
// output distribution over all 2^w basis states.
func (c *Circuit) IdealProbabilities() ([]float64, error) {
	state, err := c.Run()
	if err != nil {
		return nil, err
	}
	return state.Probabilities(), nil
}
