package di

import (
	"fmt"

	"github.com/quantalab/qbenchd/internal/config"
	"github.com/quantalab/qbenchd/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens both databases and applies schemas.
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// results.db - experiment runs and per-width certification rows
	resultsDB, err := database.New(database.Config{
		Path:    cfg.DataDir + "/results.db",
		Profile: database.ProfileResults,
		Name:    "results",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize results database: %w", err)
	}
	container.ResultsDB = resultsDB

	// cache.db - ephemeral operational data (job history)
	cacheDB, err := database.New(database.Config{
		Path:    cfg.DataDir + "/cache.db",
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		resultsDB.Close()
		return nil, fmt.Errorf("failed to initialize cache database: %w", err)
	}
	container.CacheDB = cacheDB

	for _, db := range []*database.DB{resultsDB, cacheDB} {
		if err := db.Migrate(); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to migrate %s database: %w", db.Name(), err)
		}
		log.Debug().Str("database", db.Name()).Msg("Database ready")
	}

	return container, nil
}
