package work

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantalab/qbenchd/internal/database"
	"github.com/quantalab/qbenchd/internal/modules/runs"
	testingpkg "github.com/quantalab/qbenchd/internal/testing"
)

func TestMaintenanceWorkTypes(t *testing.T) {
	resultsDB, cleanupResults := testingpkg.NewTestDB(t, "results")
	defer cleanupResults()
	cacheDB, cleanupCache := testingpkg.NewTestDB(t, "cache")
	defer cleanupCache()

	log := zerolog.Nop()
	runsRepo := runs.NewRepository(resultsDB.Conn(), log)
	history := NewHistory(cacheDB.Conn(), log)

	registry := NewRegistry()
	RegisterMaintenanceWork(registry, MaintenanceDeps{
		Databases: []*database.DB{resultsDB, cacheDB},
		Runs:      runsRepo,
		History:   history,
		Log:       log,
	})

	require.True(t, registry.Has(TypeWALCheckpoint))
	require.True(t, registry.Has(TypeCleanup))
	assert.Equal(t, PriorityLow, registry.Get(TypeWALCheckpoint).Priority)
	assert.Equal(t, []string{""}, registry.Get(TypeWALCheckpoint).FindSubjects())

	// Checkpoint runs cleanly over both databases.
	require.NoError(t, registry.Get(TypeWALCheckpoint).Execute(context.Background(), ""))

	// Cleanup prunes finished runs past retention but keeps fresh ones.
	oldRun, err := runsRepo.Create(runs.KindVolume, nil)
	require.NoError(t, err)
	require.NoError(t, runsRepo.MarkRunning(oldRun))
	require.NoError(t, runsRepo.Complete(oldRun, nil))
	_, err = resultsDB.Exec(`UPDATE runs SET finished_at = ? WHERE uuid = ?`,
		time.Now().Add(-100*24*time.Hour).Unix(), oldRun)
	require.NoError(t, err)

	freshRun, err := runsRepo.Create(runs.KindVolume, nil)
	require.NoError(t, err)

	require.NoError(t, registry.Get(TypeCleanup).Execute(context.Background(), ""))

	_, err = runsRepo.Get(oldRun)
	assert.ErrorIs(t, err, runs.ErrNotFound)
	_, err = runsRepo.Get(freshRun)
	assert.NoError(t, err)
}
