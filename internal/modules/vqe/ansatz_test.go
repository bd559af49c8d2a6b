package vqe

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantalab/qbenchd/internal/quantum"
)

func TestNewAnsatzValidation(t *testing.T) {
	_, err := NewAnsatz(0, 1)
	assert.ErrorIs(t, err, quantum.ErrInvalidWidth)

	_, err = NewAnsatz(2, -1)
	assert.Error(t, err)

	a, err := NewAnsatz(3, 2)
	require.NoError(t, err)
	assert.Equal(t, 9, a.ParamCount())
}

func TestAnsatzBuildParamCount(t *testing.T) {
	a, err := NewAnsatz(2, 1)
	require.NoError(t, err)

	_, err = a.Build([]float64{0, 0})
	assert.Error(t, err)

	c, err := a.Build(make([]float64, a.ParamCount()))
	require.NoError(t, err)
	assert.Equal(t, 2, c.NumQubits)
	// Two RY layers of two gates each plus one CZ.
	assert.Len(t, c.Gates, 5)
}

func TestAnsatzZeroAnglesGiveZeroState(t *testing.T) {
	a, err := NewAnsatz(3, 2)
	require.NoError(t, err)
	c, err := a.Build(make([]float64, a.ParamCount()))
	require.NoError(t, err)

	probs, err := c.IdealProbabilities()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, probs[0], 1e-12)
}

func TestAnsatzCanReachBasisFlip(t *testing.T) {
	// RY(pi) on every qubit of the first layer maps |00> to |11>.
	a, err := NewAnsatz(2, 0)
	require.NoError(t, err)
	c, err := a.Build([]float64{math.Pi, math.Pi})
	require.NoError(t, err)

	probs, err := c.IdealProbabilities()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, probs[3], 1e-12)
}
