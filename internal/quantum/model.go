package quantum

import (
	"fmt"
	"math/rand"
)

// ModelCircuit builds one random model circuit for the quantum-volume
// benchmark: a square circuit of width w and depth w where each layer applies
// a uniformly random qubit permutation followed by Haar-random SU(4) blocks on
// the permuted pairs. With odd width one qubit idles per layer.
//
// Trials built from independent RNG draws are i.i.d. by construction.
func ModelCircuit(rng *rand.Rand, width int) (*Circuit, error) {
	if width < 2 {
		return nil, fmt.Errorf("model circuit width %d below minimum 2: %w", width, ErrInvalidWidth)
	}
	c, err := NewCircuit(width)
	if err != nil {
		return nil, err
	}

	for layer := 0; layer < width; layer++ {
		perm := rng.Perm(width)
		for i := 0; i+1 < width; i += 2 {
			a, b := perm[i], perm[i+1]
			if err := c.Unitary2(a, b, RandomSU4(rng)); err != nil {
				return nil, fmt.Errorf("layer %d pair (%d,%d): %w", layer, a, b, err)
			}
		}
	}
	return c, nil
}
