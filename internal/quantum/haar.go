package quantum

import (
	"math"
	"math/rand"
)

// RandomUnitary draws a Haar-distributed dim x dim unitary (row-major).
//
// A complex Ginibre matrix (i.i.d. standard complex Gaussian entries) is
// orthonormalized column by column with modified Gram-Schmidt. This is a QR
// factorization whose R has a positive real diagonal, which makes the Q factor
// Haar-distributed (Mezzadri, "How to generate random matrices from the
// classical compact groups").
func RandomUnitary(rng *rand.Rand, dim int) []complex128 {
	m := make([]complex128, dim*dim)
	for i := range m {
		m[i] = complex(rng.NormFloat64(), rng.NormFloat64())
	}

	// Modified Gram-Schmidt over columns.
	for c := 0; c < dim; c++ {
		for prev := 0; prev < c; prev++ {
			var dot complex128
			for r := 0; r < dim; r++ {
				u := m[r*dim+prev]
				dot += complex(real(u), -imag(u)) * m[r*dim+c]
			}
			for r := 0; r < dim; r++ {
				m[r*dim+c] -= dot * m[r*dim+prev]
			}
		}
		norm := 0.0
		for r := 0; r < dim; r++ {
			v := m[r*dim+c]
			norm += real(v)*real(v) + imag(v)*imag(v)
		}
		inv := complex(1.0/math.Sqrt(norm), 0)
		for r := 0; r < dim; r++ {
			m[r*dim+c] *= inv
		}
	}
	return m
}

// RandomSU4 draws a Haar-random two-qubit unitary block.
func RandomSU4(rng *rand.Rand) []complex128 {
	return RandomUnitary(rng, 4)
}
