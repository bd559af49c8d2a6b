package volume

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantalab/qbenchd/internal/events"
	"github.com/quantalab/qbenchd/internal/quantum"
)

func TestServiceRunNoiseless(t *testing.T) {
	svc := NewService(nil, zerolog.Nop())

	result, err := svc.Run(context.Background(), "test-run", Params{
		Widths: []int{2},
		Trials: 30,
		Shots:  512,
		Seed:   42,
	})
	require.NoError(t, err)
	require.Len(t, result.Widths, 1)

	wr := result.Widths[0]
	assert.Equal(t, 2, wr.Width)
	assert.Len(t, wr.HeavyFrequencies, 30)
	assert.Len(t, wr.Trials, 30)
	for _, f := range wr.HeavyFrequencies {
		assert.GreaterOrEqual(t, f, 0.0)
		assert.LessOrEqual(t, f, 1.0)
	}

	// Noiseless heavy-output rates sit near the Haar asymptote ~0.85, far
	// above the 2/3 threshold.
	assert.Greater(t, wr.Certification.MeanHeavyProb, 0.75)

	if wr.Certification.Certified {
		assert.Equal(t, 4, wr.QuantumVolume)
		assert.Equal(t, 4, result.QuantumVolume)
	} else {
		assert.Zero(t, wr.QuantumVolume)
	}
}

func TestServiceRunDeterministicBySeed(t *testing.T) {
	svc := NewService(nil, zerolog.Nop())
	p := Params{Widths: []int{2}, Trials: 5, Shots: 128, Seed: 7}

	a, err := svc.Run(context.Background(), "a", p)
	require.NoError(t, err)
	b, err := svc.Run(context.Background(), "b", p)
	require.NoError(t, err)

	assert.Equal(t, a.Widths[0].HeavyFrequencies, b.Widths[0].HeavyFrequencies)
	assert.Equal(t, a.Widths[0].Certification, b.Widths[0].Certification)
}

func TestServiceRunHeavyNoiseSuppressesCertification(t *testing.T) {
	svc := NewService(nil, zerolog.Nop())

	// Near-depolarized device: outcomes approach uniform, heavy rates
	// approach 0.5 and certification must fail.
	result, err := svc.Run(context.Background(), "noisy", Params{
		Widths: []int{2},
		Trials: 20,
		Shots:  256,
		Noise: quantum.NoiseModel{
			Depolarizing1Q: 0.5,
			Depolarizing2Q: 0.5,
			ReadoutError:   0.5,
		},
		Seed: 13,
	})
	require.NoError(t, err)
	assert.False(t, result.Widths[0].Certification.Certified)
	assert.Zero(t, result.QuantumVolume)
}

func TestServiceRunEmitsCertificationEvents(t *testing.T) {
	bus := events.NewBus()
	var certified []*events.WidthCertifiedData
	bus.Subscribe(events.WidthCertified, func(e *events.Event) {
		certified = append(certified, e.Data.(*events.WidthCertifiedData))
	})
	var progress int
	bus.Subscribe(events.RunProgress, func(e *events.Event) { progress++ })

	svc := NewService(bus, zerolog.Nop())
	result, err := svc.Run(context.Background(), "evt", Params{
		Widths: []int{2},
		Trials: 40,
		Shots:  512,
		Seed:   21,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, progress)
	if result.Widths[0].Certification.Certified {
		require.Len(t, certified, 1)
		assert.Equal(t, "evt", certified[0].RunID)
		assert.Equal(t, 4, certified[0].QuantumVolume)
	} else {
		assert.Empty(t, certified)
	}
}

func TestServiceRunCancellation(t *testing.T) {
	svc := NewService(nil, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Run(ctx, "cancelled", Params{Widths: []int{2}, Trials: 5, Shots: 64, Seed: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestServiceRunRejectsInvalidParams(t *testing.T) {
	svc := NewService(nil, zerolog.Nop())

	_, err := svc.Run(context.Background(), "bad", Params{Widths: []int{1}, Trials: 5, Shots: 64, Seed: 1})
	assert.ErrorIs(t, err, quantum.ErrInvalidWidth)

	_, err = svc.Run(context.Background(), "bad", Params{Widths: []int{2}, Trials: 5, Shots: 64, Seed: 1, Noise: quantum.NoiseModel{ReadoutError: 2}})
	assert.Error(t, err)
}

func TestParamsNormalizeDefaults(t *testing.T) {
	p := Params{}
	require.NoError(t, p.normalize())
	assert.Equal(t, DefaultWidths(), p.Widths)
	assert.Equal(t, DefaultTrials, p.Trials)
	assert.Equal(t, DefaultShots, p.Shots)
	assert.NotZero(t, p.Seed)
}
