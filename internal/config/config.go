// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for all databases, always absolute
	Port     int
	LogLevel string
	DevMode  bool

	Schedule *ScheduleConfig
	Archive  *ArchiveConfig
}

// ScheduleConfig holds the cron specs for background jobs.
type ScheduleConfig struct {
	// SweepEnabled controls the nightly re-certification sweep.
	SweepEnabled bool
	// SweepSpec is the cron spec for the nightly quantum-volume sweep.
	SweepSpec string
	// CheckpointSpec is the cron spec for WAL checkpointing.
	CheckpointSpec string
	// CleanupSpec is the cron spec for retention cleanup.
	CleanupSpec string
}

// ArchiveConfig holds S3-compatible archive storage settings.
// Any S3-compatible endpoint works (AWS, R2, MinIO).
type ArchiveConfig struct {
	Enabled   bool
	Bucket    string
	Region    string
	Endpoint  string // empty for AWS
	AccessKey string
	SecretKey string
	Prefix    string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("QBENCH_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("QBENCH_PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DevMode:  getEnvAsBool("DEV_MODE", false),
		Schedule: &ScheduleConfig{
			SweepEnabled: getEnvAsBool("QBENCH_SWEEP_ENABLED", true),
			// 03:00 local: the box is idle and a full sweep takes minutes
			SweepSpec:      getEnv("QBENCH_SWEEP_CRON", "0 3 * * *"),
			CheckpointSpec: getEnv("QBENCH_CHECKPOINT_CRON", "30 * * * *"),
			CleanupSpec:    getEnv("QBENCH_CLEANUP_CRON", "15 4 * * *"),
		},
		Archive: loadArchiveConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Archive.Enabled && c.Archive.Bucket == "" {
		return fmt.Errorf("archive enabled but QBENCH_ARCHIVE_BUCKET is empty")
	}
	return nil
}

func loadArchiveConfig() *ArchiveConfig {
	return &ArchiveConfig{
		Enabled:   getEnvAsBool("QBENCH_ARCHIVE_ENABLED", false),
		Bucket:    getEnv("QBENCH_ARCHIVE_BUCKET", ""),
		Region:    getEnv("QBENCH_ARCHIVE_REGION", "auto"),
		Endpoint:  getEnv("QBENCH_ARCHIVE_ENDPOINT", ""),
		AccessKey: getEnv("QBENCH_ARCHIVE_ACCESS_KEY", ""),
		SecretKey: getEnv("QBENCH_ARCHIVE_SECRET_KEY", ""),
		Prefix:    getEnv("QBENCH_ARCHIVE_PREFIX", "reports"),
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
