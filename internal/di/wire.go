package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/quantalab/qbenchd/internal/config"
)

// Wire initializes all dependencies and returns a fully configured container.
// Order of operations:
//  1. Initialize databases and apply schemas
//  2. Initialize repositories
//  3. Initialize services (event bus, experiment engines, archiver)
//  4. Initialize the work processor and register work types
func Wire(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container, err := InitializeDatabases(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize databases: %w", err)
	}

	InitializeRepositories(container, log)

	if err := InitializeServices(container, cfg, log); err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	InitializeWork(container, log)

	log.Info().Msg("Dependency injection wiring completed successfully")
	return container, nil
}
