package work

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantalab/qbenchd/internal/events"
	"github.com/quantalab/qbenchd/internal/modules/ising"
	"github.com/quantalab/qbenchd/internal/modules/maxcut"
	"github.com/quantalab/qbenchd/internal/modules/runs"
	"github.com/quantalab/qbenchd/internal/modules/volume"
	"github.com/quantalab/qbenchd/internal/modules/vqe"
	testingpkg "github.com/quantalab/qbenchd/internal/testing"
)

func newExperimentDeps(t *testing.T) (ExperimentDeps, *Registry, func()) {
	t.Helper()
	db, cleanup := testingpkg.NewTestDB(t, "results")

	log := zerolog.Nop()
	bus := events.NewBus()
	deps := ExperimentDeps{
		Runs:       runs.NewRepository(db.Conn(), log),
		VolumeRepo: volume.NewRepository(db.Conn(), log),
		Volume:     volume.NewService(bus, log),
		VQE:        vqe.NewService(bus, log),
		MaxCut:     maxcut.NewService(bus, log),
		Bus:        bus,
		Log:        log,
	}

	registry := NewRegistry()
	RegisterExperimentWork(registry, deps)
	return deps, registry, cleanup
}

func TestRegisterExperimentWorkTypes(t *testing.T) {
	_, registry, cleanup := newExperimentDeps(t)
	defer cleanup()

	assert.Equal(t, []string{TypeMaxCutRun, TypeVolumeRun, TypeVQERun}, registry.IDs())
	for _, id := range registry.IDs() {
		assert.Equal(t, PriorityHigh, registry.Get(id).Priority)
	}
}

func TestFindSubjectsFeedsOnPendingRuns(t *testing.T) {
	deps, registry, cleanup := newExperimentDeps(t)
	defer cleanup()

	wt := registry.Get(TypeVQERun)
	assert.Nil(t, wt.FindSubjects())

	runUUID, err := deps.Runs.Create(runs.KindVQE, vqe.Params{
		Hamiltonian: ising.Hamiltonian{NumSpins: 1, Fields: []float64{1}},
		Seed:        1,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{runUUID}, wt.FindSubjects())

	// Running and finished rows no longer feed the work type.
	require.NoError(t, deps.Runs.MarkRunning(runUUID))
	assert.Nil(t, wt.FindSubjects())
}

func TestExecuteVQERunEndToEnd(t *testing.T) {
	deps, registry, cleanup := newExperimentDeps(t)
	defer cleanup()

	var completed []*events.RunCompletedData
	deps.Bus.Subscribe(events.RunCompleted, func(e *events.Event) {
		completed = append(completed, e.Data.(*events.RunCompletedData))
	})

	runUUID, err := deps.Runs.Create(runs.KindVQE, vqe.Params{
		Hamiltonian: ising.Hamiltonian{NumSpins: 1, Fields: []float64{1}},
		Layers:      1,
		Seed:        5,
	})
	require.NoError(t, err)

	wt := registry.Get(TypeVQERun)
	require.NoError(t, wt.Execute(context.Background(), runUUID))

	run, err := deps.Runs.Get(runUUID)
	require.NoError(t, err)
	assert.Equal(t, runs.StatusCompleted, run.Status)
	require.NotNil(t, run.Report)

	var report vqe.Result
	require.NoError(t, json.Unmarshal([]byte(*run.Report), &report))
	assert.InDelta(t, -1.0, report.Energy, 1e-3)

	require.Len(t, completed, 1)
	assert.Equal(t, runUUID, completed[0].RunID)
	assert.Equal(t, "vqe", completed[0].Kind)
}

func TestExecuteVolumeRunPersistsWidths(t *testing.T) {
	deps, registry, cleanup := newExperimentDeps(t)
	defer cleanup()

	runUUID, err := deps.Runs.Create(runs.KindVolume, volume.Params{
		Widths: []int{2},
		Trials: 5,
		Shots:  64,
		Seed:   3,
	})
	require.NoError(t, err)

	wt := registry.Get(TypeVolumeRun)
	require.NoError(t, wt.Execute(context.Background(), runUUID))

	run, err := deps.Runs.Get(runUUID)
	require.NoError(t, err)
	assert.Equal(t, runs.StatusCompleted, run.Status)

	widths, err := deps.VolumeRepo.WidthsForRun(runUUID)
	require.NoError(t, err)
	require.Len(t, widths, 1)
	assert.Equal(t, 2, widths[0].Width)
	assert.Len(t, widths[0].HeavyFrequencies, 5)
}

func TestExecuteFailedRunIsMarkedFailed(t *testing.T) {
	deps, registry, cleanup := newExperimentDeps(t)
	defer cleanup()

	var failed []*events.RunFailedData
	deps.Bus.Subscribe(events.RunFailed, func(e *events.Event) {
		failed = append(failed, e.Data.(*events.RunFailedData))
	})

	// Empty Hamiltonian fails validation inside the service.
	runUUID, err := deps.Runs.Create(runs.KindVQE, vqe.Params{Seed: 1})
	require.NoError(t, err)

	wt := registry.Get(TypeVQERun)
	assert.Error(t, wt.Execute(context.Background(), runUUID))

	run, err := deps.Runs.Get(runUUID)
	require.NoError(t, err)
	assert.Equal(t, runs.StatusFailed, run.Status)
	require.NotNil(t, run.Error)
	require.Len(t, failed, 1)
	assert.Equal(t, runUUID, failed[0].RunID)
}

func TestExecuteSkipsNonPendingRun(t *testing.T) {
	deps, registry, cleanup := newExperimentDeps(t)
	defer cleanup()

	runUUID, err := deps.Runs.Create(runs.KindMaxCut, maxcut.Params{Seed: 1})
	require.NoError(t, err)
	require.NoError(t, deps.Runs.MarkRunning(runUUID))

	// An already-running row is another trigger's work; this is a no-op.
	wt := registry.Get(TypeMaxCutRun)
	require.NoError(t, wt.Execute(context.Background(), runUUID))

	run, err := deps.Runs.Get(runUUID)
	require.NoError(t, err)
	assert.Equal(t, runs.StatusRunning, run.Status)
}

func TestExecuteUnknownSubject(t *testing.T) {
	_, registry, cleanup := newExperimentDeps(t)
	defer cleanup()

	wt := registry.Get(TypeVolumeRun)
	assert.ErrorIs(t, wt.Execute(context.Background(), "missing"), runs.ErrNotFound)
}
