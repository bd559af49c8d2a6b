// Package di provides dependency injection wiring and initialization.
// The Container is the single source of truth for all service instances and
// is passed to the server for access to repositories and services.
package di

import (
	"github.com/quantalab/qbenchd/internal/archive"
	"github.com/quantalab/qbenchd/internal/database"
	"github.com/quantalab/qbenchd/internal/events"
	"github.com/quantalab/qbenchd/internal/modules/maxcut"
	"github.com/quantalab/qbenchd/internal/modules/runs"
	"github.com/quantalab/qbenchd/internal/modules/volume"
	"github.com/quantalab/qbenchd/internal/modules/vqe"
	"github.com/quantalab/qbenchd/internal/work"
)

// Container holds all dependencies for the application.
//
// Architecture:
//   - Databases: results.db (runs and per-width aggregates) and cache.db
//     (job history), both SQLite with WAL mode and profile-specific PRAGMAs
//   - Repositories: data access for runs and volume aggregates
//   - Services: the experiment engines (volume, vqe, maxcut)
//   - Work components: registry, completion tracker, history, processor
//   - Archive: optional S3-compatible report archiver
type Container struct {
	// Databases
	ResultsDB *database.DB // Experiment runs and per-width certification rows
	CacheDB   *database.DB // Ephemeral operational data (job history)

	// Events
	Bus *events.Bus

	// Repositories
	RunsRepo   *runs.Repository
	VolumeRepo *volume.Repository

	// Services
	VolumeService *volume.Service
	VQEService    *vqe.Service
	MaxCutService *maxcut.Service

	// Work components
	Registry   *work.Registry
	Completion *work.CompletionTracker
	History    *work.History
	Processor  *work.Processor

	// Archive (nil when disabled)
	Archiver *archive.Archiver
}

// Close closes all database connections.
func (c *Container) Close() {
	if c.ResultsDB != nil {
		c.ResultsDB.Close()
	}
	if c.CacheDB != nil {
		c.CacheDB.Close()
	}
}
