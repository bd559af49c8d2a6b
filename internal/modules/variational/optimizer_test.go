package variational

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinimizeQuadratic(t *testing.T) {
	objective := func(x []float64) float64 {
		return (x[0]-2)*(x[0]-2) + (x[1]+1)*(x[1]+1)
	}

	result, err := Minimize(objective, []float64{0, 0}, DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, 2.0, result.X[0], 1e-3)
	assert.InDelta(t, -1.0, result.X[1], 1e-3)
	assert.InDelta(t, 0.0, result.F, 1e-6)
	assert.Positive(t, result.Evaluations)
}

func TestMinimizeRejectsEmptyStart(t *testing.T) {
	_, err := Minimize(func([]float64) float64 { return 0 }, nil, DefaultOptions())
	assert.ErrorIs(t, err, ErrNoParameters)
}

func TestMinimizeZeroOptionsFallBackToDefaults(t *testing.T) {
	objective := func(x []float64) float64 { return x[0] * x[0] }
	result, err := Minimize(objective, []float64{3}, Options{})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, result.F, 1e-6)
}
