package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/quantalab/qbenchd/internal/archive"
	"github.com/quantalab/qbenchd/internal/config"
	"github.com/quantalab/qbenchd/internal/events"
	"github.com/quantalab/qbenchd/internal/modules/maxcut"
	"github.com/quantalab/qbenchd/internal/modules/volume"
	"github.com/quantalab/qbenchd/internal/modules/vqe"
)

// InitializeServices wires the event bus, experiment services and the
// optional report archiver.
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	container.Bus = events.NewBus()

	container.VolumeService = volume.NewService(container.Bus, log)
	container.VQEService = vqe.NewService(container.Bus, log)
	container.MaxCutService = maxcut.NewService(container.Bus, log)

	if cfg.Archive.Enabled {
		archiver, err := archive.New(cfg.Archive, log)
		if err != nil {
			return fmt.Errorf("failed to initialize archiver: %w", err)
		}
		container.Archiver = archiver
		wireArchiver(container, log)
	}

	return nil
}

// wireArchiver uploads each completed run's report in the background.
func wireArchiver(container *Container, log zerolog.Logger) {
	archiveLog := log.With().Str("component", "archive_hook").Logger()

	container.Bus.Subscribe(events.RunCompleted, func(event *events.Event) {
		data, ok := event.Data.(*events.RunCompletedData)
		if !ok {
			return
		}

		go func() {
			run, err := container.RunsRepo.Get(data.RunID)
			if err != nil {
				archiveLog.Error().Err(err).Str("run", data.RunID).Msg("Failed to load run for archiving")
				return
			}
			if run.Report == nil {
				return
			}
			if err := container.Archiver.ArchiveReport(context.Background(), string(run.Kind), run.UUID, []byte(*run.Report)); err != nil {
				archiveLog.Error().Err(err).Str("run", data.RunID).Msg("Failed to archive report")
			}
		}()
	})
}
