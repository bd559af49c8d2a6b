// Package main is the entry point for the qbenchd quantum benchmarking
// service. It runs statevector-simulated experiments (quantum volume
// certification via the heavy-output test, VQE ground-state search, QAOA
// MaxCut) as background work, persists the reports, and serves them over a
// REST API with live event streaming.
//
// The application follows clean architecture principles:
// - Experiment engines are pure (no infrastructure dependencies)
// - Dependency injection via DI container
// - Repository pattern for data access
// - HTTP handlers for API endpoints
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quantalab/qbenchd/internal/config"
	"github.com/quantalab/qbenchd/internal/di"
	"github.com/quantalab/qbenchd/internal/scheduler"
	"github.com/quantalab/qbenchd/internal/server"
	"github.com/quantalab/qbenchd/internal/work"
	"github.com/quantalab/qbenchd/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger so the configuration error is still logged
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting qbenchd")

	// Wire all dependencies: databases, repositories, services, work types
	container, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	// HTTP server
	srv := server.New(server.Config{
		Port:      cfg.Port,
		Log:       log,
		Config:    cfg,
		DevMode:   cfg.DevMode,
		Container: container,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Work processor drains pending experiment runs one at a time
	go container.Processor.Run()
	log.Info().Msg("Work processor started")

	// Cron schedules: nightly sweep, WAL checkpoints, retention cleanup
	sched := scheduler.New(log)
	if cfg.Schedule.SweepEnabled {
		if err := sched.AddJob(cfg.Schedule.SweepSpec, scheduler.NewSweepJob(container.RunsRepo, container.Processor, log)); err != nil {
			log.Fatal().Err(err).Msg("Failed to register sweep job")
		}
	}
	if err := sched.AddJob(cfg.Schedule.CheckpointSpec, scheduler.NewProcessorJob("wal_checkpoint", work.TypeWALCheckpoint, container.Processor)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register checkpoint job")
	}
	if err := sched.AddJob(cfg.Schedule.CleanupSpec, scheduler.NewProcessorJob("retention_cleanup", work.TypeCleanup, container.Processor)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cleanup job")
	}
	sched.Start()

	// Kick the processor once so runs left pending by a previous shutdown
	// resume immediately
	container.Processor.Trigger()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	sched.Stop()
	container.Processor.Stop()
	log.Info().Msg("Work processor stopped")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Shutdown complete")
}
