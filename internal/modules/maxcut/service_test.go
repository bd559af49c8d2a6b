package maxcut

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantalab/qbenchd/internal/modules/ising"
)

func TestServiceRunTwoNodes(t *testing.T) {
	svc := NewService(nil, zerolog.Nop())

	result, err := svc.Run(context.Background(), "mc-1", Params{
		Graph:  twoNodeGraph(),
		Layers: 1,
		Shots:  512,
		Seed:   3,
	})
	require.NoError(t, err)

	// A single edge always splits: the sampled best cut is the optimum.
	assert.Equal(t, 1.0, result.Optimum)
	assert.Equal(t, 1.0, result.BestCut)
	assert.Equal(t, 1.0, result.ApproxRatio)
	assert.Len(t, result.OptimalGammas, 1)
	assert.Len(t, result.OptimalBetas, 1)
	assert.Contains(t, []string{"01", "10"}, result.BestBits)
}

func TestServiceRunDefaultGraph(t *testing.T) {
	svc := NewService(nil, zerolog.Nop())

	result, err := svc.Run(context.Background(), "mc-2", Params{Seed: 11})
	require.NoError(t, err)
	assert.Positive(t, result.Optimum)
	// Sampling 1024 shots over 32 partitions reliably hits a good cut.
	assert.GreaterOrEqual(t, result.ApproxRatio, 0.9)
	assert.LessOrEqual(t, result.ApproxRatio, 1.0)
}

func TestServiceRunWithAnnealBaseline(t *testing.T) {
	svc := NewService(nil, zerolog.Nop())

	result, err := svc.Run(context.Background(), "mc-3", Params{
		Graph:  twoNodeGraph(),
		Layers: 1,
		Shots:  256,
		Seed:   19,
		Anneal: &AnnealParams{Time: 6, Steps: 48},
	})
	require.NoError(t, err)
	require.NotNil(t, result.Anneal)
	assert.Equal(t, 256, result.Anneal.SampledShots)
	assert.Equal(t, 1.0, result.Anneal.BestCut)
	assert.Greater(t, result.Anneal.MeanCut, 0.5)
}

func TestServiceRunRejectsInvalidGraph(t *testing.T) {
	svc := NewService(nil, zerolog.Nop())

	_, err := svc.Run(context.Background(), "bad", Params{
		Graph: ising.Graph{NumNodes: 3},
		Seed:  1,
	})
	assert.ErrorIs(t, err, ising.ErrNoEdges)
}

func TestServiceRunCancellation(t *testing.T) {
	svc := NewService(nil, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Run(ctx, "cancelled", Params{Graph: twoNodeGraph(), Seed: 1})
	assert.ErrorIs(t, err, context.Canceled)
}
