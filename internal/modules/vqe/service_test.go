package vqe

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantalab/qbenchd/internal/modules/ising"
)

func TestServiceRunSingleSpin(t *testing.T) {
	svc := NewService(nil, zerolog.Nop())

	// H = Z_0: ground state |1> with energy -1. A single RY reaches it.
	result, err := svc.Run(context.Background(), "vqe-1", Params{
		Hamiltonian: ising.Hamiltonian{NumSpins: 1, Fields: []float64{1}},
		Layers:      1,
		Seed:        5,
	})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, result.ExactGround, 1e-12)
	assert.InDelta(t, -1.0, result.Energy, 1e-3)
	assert.Less(t, result.AbsoluteError, 1e-3)
	assert.Positive(t, result.Evaluations)
}

func TestServiceRunAntiferromagneticPair(t *testing.T) {
	svc := NewService(nil, zerolog.Nop())

	// H = Z_0 Z_1: degenerate ground states |01> and |10> at energy -1.
	result, err := svc.Run(context.Background(), "vqe-2", Params{
		Hamiltonian: ising.Hamiltonian{
			NumSpins:  2,
			Couplings: []ising.Coupling{{I: 0, J: 1, Weight: 1}},
		},
		Layers: 2,
		Seed:   17,
	})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, result.ExactGround, 1e-12)
	assert.Less(t, result.AbsoluteError, 0.05)
	assert.Len(t, result.OptimalParams, 2*(2+1))
}

func TestServiceRunDeterministicBySeed(t *testing.T) {
	svc := NewService(nil, zerolog.Nop())
	p := Params{
		Hamiltonian: ising.Hamiltonian{NumSpins: 1, Fields: []float64{1}},
		Layers:      1,
		Seed:        9,
	}

	a, err := svc.Run(context.Background(), "a", p)
	require.NoError(t, err)
	b, err := svc.Run(context.Background(), "b", p)
	require.NoError(t, err)
	assert.Equal(t, a.Energy, b.Energy)
	assert.Equal(t, a.OptimalParams, b.OptimalParams)
}

func TestServiceRunRejectsInvalidHamiltonian(t *testing.T) {
	svc := NewService(nil, zerolog.Nop())
	_, err := svc.Run(context.Background(), "bad", Params{
		Hamiltonian: ising.Hamiltonian{NumSpins: 2},
	})
	assert.ErrorIs(t, err, ising.ErrEmptyHamiltonian)
}

func TestServiceRunCancellation(t *testing.T) {
	svc := NewService(nil, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Run(ctx, "cancelled", Params{
		Hamiltonian: ising.Hamiltonian{NumSpins: 1, Fields: []float64{1}},
		Seed:        1,
	})
	assert.ErrorIs(t, err, context.Canceled)
}
