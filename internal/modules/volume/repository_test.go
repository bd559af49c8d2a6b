package volume

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantalab/qbenchd/internal/modules/runs"
	testingpkg "github.com/quantalab/qbenchd/internal/testing"
)

func TestRepositorySaveAndLoadWidths(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "results")
	defer cleanup()

	runsRepo := runs.NewRepository(db.Conn(), zerolog.Nop())
	runUUID, err := runsRepo.Create(runs.KindVolume, Params{Widths: []int{2, 3}, Seed: 1})
	require.NoError(t, err)

	repo := NewRepository(db.Conn(), zerolog.Nop())
	widths := []WidthResult{
		{
			Width: 2,
			Certification: Certification{
				Trials:        10,
				MeanHeavyProb: 0.84,
				Confidence:    0.991,
				Certified:     true,
			},
			HeavyFrequencies: []float64{0.8, 0.88},
			Trials: []TrialOutcome{
				{Trial: 0, HeavyFrequency: 0.8, Counts: map[string]int{"00": 20, "11": 80}},
				{Trial: 1, HeavyFrequency: 0.88, Counts: map[string]int{"11": 100}},
			},
			QuantumVolume: 4,
		},
		{
			Width: 3,
			Certification: Certification{
				Trials:        10,
				MeanHeavyProb: 0.61,
				Confidence:    0.12,
				Certified:     false,
			},
			HeavyFrequencies: []float64{0.6, 0.62},
			Trials: []TrialOutcome{
				{Trial: 0, HeavyFrequency: 0.6},
				{Trial: 1, HeavyFrequency: 0.62},
			},
		},
	}
	require.NoError(t, repo.SaveWidths(runUUID, widths))

	loaded, err := repo.WidthsForRun(runUUID)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	assert.Equal(t, 2, loaded[0].Width)
	assert.True(t, loaded[0].Certification.Certified)
	assert.Equal(t, 4, loaded[0].QuantumVolume)
	assert.Equal(t, []float64{0.8, 0.88}, loaded[0].HeavyFrequencies)
	require.Len(t, loaded[0].Trials, 2)
	assert.Equal(t, map[string]int{"00": 20, "11": 80}, loaded[0].Trials[0].Counts)

	assert.Equal(t, 3, loaded[1].Width)
	assert.False(t, loaded[1].Certification.Certified)
	assert.Zero(t, loaded[1].QuantumVolume)
}

func TestRepositoryWidthsForUnknownRun(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "results")
	defer cleanup()

	repo := NewRepository(db.Conn(), zerolog.Nop())
	loaded, err := repo.WidthsForRun("no-such-run")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestRepositoryLatestQuantumVolume(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "results")
	defer cleanup()

	repo := NewRepository(db.Conn(), zerolog.Nop())

	// Nothing certified yet.
	qv, err := repo.LatestQuantumVolume()
	require.NoError(t, err)
	assert.Zero(t, qv)

	runsRepo := runs.NewRepository(db.Conn(), zerolog.Nop())
	first, err := runsRepo.Create(runs.KindVolume, Params{Seed: 1})
	require.NoError(t, err)
	second, err := runsRepo.Create(runs.KindVolume, Params{Seed: 2})
	require.NoError(t, err)

	require.NoError(t, repo.SaveWidths(first, []WidthResult{
		{Width: 2, Certification: Certification{Trials: 5, Certified: true}, QuantumVolume: 4},
	}))
	require.NoError(t, repo.SaveWidths(second, []WidthResult{
		{Width: 3, Certification: Certification{Trials: 5, Certified: true}, QuantumVolume: 8},
		{Width: 4, Certification: Certification{Trials: 5, Certified: false}},
	}))

	qv, err = repo.LatestQuantumVolume()
	require.NoError(t, err)
	assert.Equal(t, 8, qv)
}

func TestRepositoryCascadeDeleteWithRun(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "results")
	defer cleanup()

	runsRepo := runs.NewRepository(db.Conn(), zerolog.Nop())
	runUUID, err := runsRepo.Create(runs.KindVolume, Params{Seed: 3})
	require.NoError(t, err)

	repo := NewRepository(db.Conn(), zerolog.Nop())
	require.NoError(t, repo.SaveWidths(runUUID, []WidthResult{
		{Width: 2, Certification: Certification{Trials: 5}},
	}))

	_, err = db.Exec(`DELETE FROM runs WHERE uuid = ?`, runUUID)
	require.NoError(t, err)

	loaded, err := repo.WidthsForRun(runUUID)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
