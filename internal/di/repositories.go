package di

import (
	"github.com/rs/zerolog"

	"github.com/quantalab/qbenchd/internal/modules/runs"
	"github.com/quantalab/qbenchd/internal/modules/volume"
)

// InitializeRepositories wires the data access layer.
func InitializeRepositories(container *Container, log zerolog.Logger) {
	container.RunsRepo = runs.NewRepository(container.ResultsDB.Conn(), log)
	container.VolumeRepo = volume.NewRepository(container.ResultsDB.Conn(), log)
}
