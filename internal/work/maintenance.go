package work

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantalab/qbenchd/internal/database"
	"github.com/quantalab/qbenchd/internal/modules/runs"
)

// Maintenance work type IDs.
const (
	TypeWALCheckpoint = "maintenance:checkpoint"
	TypeCleanup       = "maintenance:cleanup"
)

// Retention windows for the cleanup work.
const (
	runRetention     = 90 * 24 * time.Hour
	historyRetention = 14 * 24 * time.Hour
)

// MaintenanceDeps bundles what the maintenance work types need.
type MaintenanceDeps struct {
	Databases []*database.DB
	Runs      *runs.Repository
	History   *History
	Log       zerolog.Logger
}

// RegisterMaintenanceWork registers WAL checkpointing and data retention
// work. Both are interval-gated; the cron scheduler provides the triggers.
func RegisterMaintenanceWork(registry *Registry, deps MaintenanceDeps) {
	log := deps.Log.With().Str("component", "maintenance").Logger()

	registry.Register(&WorkType{
		ID:       TypeWALCheckpoint,
		Priority: PriorityLow,
		Interval: time.Hour,
		FindSubjects: func() []string {
			return []string{""}
		},
		Execute: func(ctx context.Context, _ string) error {
			for _, db := range deps.Databases {
				if err := db.WALCheckpoint("TRUNCATE"); err != nil {
					log.Warn().Err(err).Str("database", db.Name()).Msg("WAL checkpoint failed")
					continue
				}
				log.Debug().Str("database", db.Name()).Msg("WAL checkpoint done")
			}
			return nil
		},
	})

	registry.Register(&WorkType{
		ID:       TypeCleanup,
		Priority: PriorityLow,
		Interval: 24 * time.Hour,
		FindSubjects: func() []string {
			return []string{""}
		},
		Execute: func(ctx context.Context, _ string) error {
			removed, err := deps.Runs.DeleteFinishedBefore(time.Now().Add(-runRetention))
			if err != nil {
				return err
			}
			pruned, err := deps.History.DeleteBefore(time.Now().Add(-historyRetention))
			if err != nil {
				return err
			}
			log.Info().Int64("runs", removed).Int64("history", pruned).Msg("Retention cleanup done")
			return nil
		},
	})
}
