package di

import (
	"github.com/rs/zerolog"

	"github.com/quantalab/qbenchd/internal/database"
	"github.com/quantalab/qbenchd/internal/work"
)

// InitializeWork wires the work processor: registry, completion tracker,
// persistent history, and the experiment and maintenance work types.
func InitializeWork(container *Container, log zerolog.Logger) {
	container.Registry = work.NewRegistry()
	container.Completion = work.NewCompletionTracker()
	container.History = work.NewHistory(container.CacheDB.Conn(), log)
	container.Processor = work.NewProcessor(container.Registry, container.Completion, container.History, log)

	work.RegisterExperimentWork(container.Registry, work.ExperimentDeps{
		Runs:       container.RunsRepo,
		VolumeRepo: container.VolumeRepo,
		Volume:     container.VolumeService,
		VQE:        container.VQEService,
		MaxCut:     container.MaxCutService,
		Bus:        container.Bus,
		Log:        log,
	})

	work.RegisterMaintenanceWork(container.Registry, work.MaintenanceDeps{
		Databases: []*database.DB{container.ResultsDB, container.CacheDB},
		Runs:      container.RunsRepo,
		History:   container.History,
		Log:       log,
	})
}
