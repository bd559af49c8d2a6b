// Package quantum implements the statevector simulator used by the benchmark
// experiments. It covers exactly what the experiments need: a dense complex128
// state over up to ~20 qubits, the standard gate set plus arbitrary one- and
// two-qubit unitaries, exact output probabilities, and finite-shot sampling.
package quantum

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"
)

// StateVector holds the amplitudes of a pure w-qubit state. Amplitude index i
// encodes the computational basis state whose bit q is (i >> q) & 1, i.e.
// qubit 0 is the least significant bit.
type StateVector struct {
	Amplitudes []complex128
	NumQubits  int
}

// NewStateVector returns the all-zeros state |0...0> on numQubits qubits.
func NewStateVector(numQubits int) (*StateVector, error) {
	if numQubits < 1 || numQubits > MaxQubits {
		return nil, fmt.Errorf("qubit count %d out of range [1, %d]: %w", numQubits, MaxQubits, ErrInvalidWidth)
	}
	amps := make([]complex128, 1<<numQubits)
	amps[0] = 1
	return &StateVector{Amplitudes: amps, NumQubits: numQubits}, nil
}

// Clone returns a deep copy of the state.
func (s *StateVector) Clone() *StateVector {
	amps := make([]complex128, len(s.Amplitudes))
	copy(amps, s.Amplitudes)
	return &StateVector{Amplitudes: amps, NumQubits: s.NumQubits}
}

// Probabilities returns the Born-rule probability of each basis state.
// The returned slice has length 2^w and sums to 1 up to float error.
func (s *StateVector) Probabilities() []float64 {
	probs := make([]float64, len(s.Amplitudes))
	for i, a := range s.Amplitudes {
		probs[i] = real(a)*real(a) + imag(a)*imag(a)
	}
	return probs
}

// Norm returns the 2-norm of the state. A well-formed state has norm 1;
// tests use this to catch non-unitary gate kernels.
func (s *StateVector) Norm() float64 {
	sum := 0.0
	for _, a := range s.Amplitudes {
		sum += real(a)*real(a) + imag(a)*imag(a)
	}
	return math.Sqrt(sum)
}

// ApplyH applies the Hadamard gate to qubit q.
func (s *StateVector) ApplyH(q int) {
	h := complex(1.0/math.Sqrt2, 0)
	bit := 1 << q
	for i := range s.Amplitudes {
		if i&bit == 0 {
			j := i | bit
			a0, a1 := s.Amplitudes[i], s.Amplitudes[j]
			s.Amplitudes[i] = h * (a0 + a1)
			s.Amplitudes[j] = h * (a0 - a1)
		}
	}
}

// ApplyX applies the Pauli-X (NOT) gate to qubit q.
func (s *StateVector) ApplyX(q int) {
	bit := 1 << q
	for i := range s.Amplitudes {
		if i&bit == 0 {
			j := i | bit
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

// ApplyY applies the Pauli-Y gate to qubit q.
func (s *StateVector) ApplyY(q int) {
	bit := 1 << q
	for i := range s.Amplitudes {
		if i&bit == 0 {
			j := i | bit
			s.Amplitudes[i], s.Amplitudes[j] = -1i*s.Amplitudes[j], 1i*s.Amplitudes[i]
		}
	}
}

// ApplyZ applies the Pauli-Z gate to qubit q.
func (s *StateVector) ApplyZ(q int) {
	bit := 1 << q
	for i := range s.Amplitudes {
		if i&bit != 0 {
			s.Amplitudes[i] = -s.Amplitudes[i]
		}
	}
}

// ApplyS applies the phase gate S (or its adjoint when dagger is true) to qubit q.
func (s *StateVector) ApplyS(q int, dagger bool) {
	factor := complex128(1i)
	if dagger {
		factor = -1i
	}
	bit := 1 << q
	for i := range s.Amplitudes {
		if i&bit != 0 {
			s.Amplitudes[i] *= factor
		}
	}
}

// ApplyT applies the T gate (or its adjoint when dagger is true) to qubit q.
func (s *StateVector) ApplyT(q int, dagger bool) {
	angle := math.Pi / 4
	if dagger {
		angle = -angle
	}
	factor := cmplx.Exp(complex(0, angle))
	bit := 1 << q
	for i := range s.Amplitudes {
		if i&bit != 0 {
			s.Amplitudes[i] *= factor
		}
	}
}

// ApplyRX applies an X-axis rotation by theta to qubit q.
func (s *StateVector) ApplyRX(q int, theta float64) {
	c := complex(math.Cos(theta/2), 0)
	js := complex(0, -math.Sin(theta/2))
	bit := 1 << q
	for i := range s.Amplitudes {
		if i&bit == 0 {
			j := i | bit
			a0, a1 := s.Amplitudes[i], s.Amplitudes[j]
			s.Amplitudes[i] = c*a0 + js*a1
			s.Amplitudes[j] = js*a0 + c*a1
		}
	}
}

// ApplyRY applies a Y-axis rotation by theta to qubit q.
func (s *StateVector) ApplyRY(q int, theta float64) {
	c := complex(math.Cos(theta/2), 0)
	sn := complex(math.Sin(theta/2), 0)
	bit := 1 << q
	for i := range s.Amplitudes {
		if i&bit == 0 {
			j := i | bit
			a0, a1 := s.Amplitudes[i], s.Amplitudes[j]
			s.Amplitudes[i] = c*a0 - sn*a1
			s.Amplitudes[j] = sn*a0 + c*a1
		}
	}
}

// ApplyRZ applies a Z-axis rotation by theta to qubit q.
func (s *StateVector) ApplyRZ(q int, theta float64) {
	phase := cmplx.Exp(complex(0, theta/2))
	bit := 1 << q
	for i := range s.Amplitudes {
		if i&bit != 0 {
			s.Amplitudes[i] *= phase
		} else {
			s.Amplitudes[i] *= cmplx.Conj(phase)
		}
	}
}

// ApplyCX applies a CNOT with the given control and target qubits.
func (s *StateVector) ApplyCX(control, target int) {
	cBit := 1 << control
	tBit := 1 << target
	for i := range s.Amplitudes {
		if i&cBit != 0 && i&tBit == 0 {
			j := i | tBit
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

// ApplyCZ applies a controlled-Z between the two qubits.
func (s *StateVector) ApplyCZ(a, b int) {
	aBit := 1 << a
	bBit := 1 << b
	for i := range s.Amplitudes {
		if i&aBit != 0 && i&bBit != 0 {
			s.Amplitudes[i] = -s.Amplitudes[i]
		}
	}
}

// ApplyRZZ applies exp(-i theta/2 Z⊗Z) between the two qubits. This is the
// phase-separation primitive of the QAOA and annealing circuits.
func (s *StateVector) ApplyRZZ(a, b int, theta float64) {
	plus := cmplx.Exp(complex(0, -theta/2))
	minus := cmplx.Exp(complex(0, theta/2))
	aBit := 1 << a
	bBit := 1 << b
	for i := range s.Amplitudes {
		// Parity of the two bits decides the phase sign.
		if (i&aBit != 0) == (i&bBit != 0) {
			s.Amplitudes[i] *= plus
		} else {
			s.Amplitudes[i] *= minus
		}
	}
}

// ApplySWAP exchanges the two qubits.
func (s *StateVector) ApplySWAP(a, b int) {
	aBit := 1 << a
	bBit := 1 << b
	for i := range s.Amplitudes {
		if i&aBit != 0 && i&bBit == 0 {
			j := (i &^ aBit) | bBit
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

// ApplyUnitary1 applies an arbitrary single-qubit unitary to qubit q.
// u is row-major 2x2: [u00 u01 u10 u11].
func (s *StateVector) ApplyUnitary1(q int, u []complex128) error {
	if len(u) != 4 {
		return fmt.Errorf("single-qubit unitary must have 4 entries, got %d", len(u))
	}
	bit := 1 << q
	for i := range s.Amplitudes {
		if i&bit == 0 {
			j := i | bit
			a0, a1 := s.Amplitudes[i], s.Amplitudes[j]
			s.Amplitudes[i] = u[0]*a0 + u[1]*a1
			s.Amplitudes[j] = u[2]*a0 + u[3]*a1
		}
	}
	return nil
}

// ApplyUnitary2 applies an arbitrary two-qubit unitary to qubits (a, b).
// u is row-major 4x4 over the local basis |b a>, i.e. local index = bit(a) + 2*bit(b).
func (s *StateVector) ApplyUnitary2(a, b int, u []complex128) error {
	if len(u) != 16 {
		return fmt.Errorf("two-qubit unitary must have 16 entries, got %d", len(u))
	}
	if a == b {
		return fmt.Errorf("two-qubit unitary requires distinct qubits, got %d twice", a)
	}
	aBit := 1 << a
	bBit := 1 << b
	for i := range s.Amplitudes {
		if i&aBit == 0 && i&bBit == 0 {
			idx := [4]int{i, i | aBit, i | bBit, i | aBit | bBit}
			var in [4]complex128
			for k := 0; k < 4; k++ {
				in[k] = s.Amplitudes[idx[k]]
			}
			for r := 0; r < 4; r++ {
				var acc complex128
				for c := 0; c < 4; c++ {
					acc += u[r*4+c] * in[c]
				}
				s.Amplitudes[idx[r]] = acc
			}
		}
	}
	return nil
}

// Sample draws one measurement outcome (a basis state index) from the state
// using the supplied RNG.
func (s *StateVector) Sample(rng *rand.Rand) int {
	r := rng.Float64()
	acc := 0.0
	for i, a := range s.Amplitudes {
		acc += real(a)*real(a) + imag(a)*imag(a)
		if r < acc {
			return i
		}
	}
	// Float round-off can leave acc fractionally below 1; attribute the
	// remainder to the last basis state.
	return len(s.Amplitudes) - 1
}

// FormatBasisState renders basis state index i over w qubits as a bitstring
// with qubit 0 rightmost ("q_{w-1} ... q_1 q_0").
func FormatBasisState(i, w int) string {
	buf := make([]byte, w)
	for q := 0; q < w; q++ {
		if i&(1<<q) != 0 {
			buf[w-1-q] = '1'
		} else {
			buf[w-1-q] = '0'
		}
	}
	return string(buf)
}

// ParseBasisState is the inverse of FormatBasisState.
func ParseBasisState(bits string) (int, error) {
	idx := 0
	w := len(bits)
	for pos, ch := range bits {
		q := w - 1 - pos
		switch ch {
		case '1':
			idx |= 1 << q
		case '0':
		default:
			return 0, fmt.Errorf("invalid bitstring %q: unexpected character %q", bits, ch)
		}
	}
	return idx, nil
}
