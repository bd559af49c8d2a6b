package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/quantalab/qbenchd/internal/database"
	"github.com/quantalab/qbenchd/internal/work"
)

// SystemHandlers serves system status, database and job monitoring endpoints.
type SystemHandlers struct {
	log       zerolog.Logger
	dataDir   string
	databases []*database.DB
	history   *work.History
	processor *work.Processor
	startedAt time.Time
}

// NewSystemHandlers creates new system handlers.
func NewSystemHandlers(log zerolog.Logger, dataDir string, databases []*database.DB, history *work.History, processor *work.Processor) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		dataDir:   dataDir,
		databases: databases,
		history:   history,
		processor: processor,
		startedAt: time.Now(),
	}
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPct, memPct := h.systemStats()

	h.writeJSON(w, map[string]interface{}{
		"data": map[string]interface{}{
			"status":         "running",
			"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
			"cpu_percent":    cpuPct,
			"memory_percent": memPct,
			"in_flight":      h.processor.InFlight(),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleDatabaseStats handles GET /api/system/database/stats
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	stats := make(map[string]interface{}, len(h.databases))
	for _, db := range h.databases {
		s, err := db.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to get database stats")
			stats[db.Name()] = map[string]string{"error": err.Error()}
			continue
		}
		stats[db.Name()] = s
	}

	h.writeJSON(w, map[string]interface{}{
		"data": stats,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleDiskUsage handles GET /api/system/disk
func (h *SystemHandlers) HandleDiskUsage(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]interface{}{
		"data": map[string]interface{}{
			"data_dir_mb": h.dirSizeMB(h.dataDir),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleJobsStatus handles GET /api/system/jobs
func (h *SystemHandlers) HandleJobsStatus(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.history.Recent(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get job history")
		http.Error(w, "Failed to get job history", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]interface{}{
		"data": map[string]interface{}{
			"jobs":  entries,
			"count": len(entries),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// systemStats returns CPU and RAM usage percentages. The 100ms CPU sampling
// window keeps the endpoint responsive for pollers.
func (h *SystemHandlers) systemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}
	return cpuAvg, memStat.UsedPercent
}

// dirSizeMB calculates total size of a directory in MB
func (h *SystemHandlers) dirSizeMB(dirPath string) float64 {
	var totalSize int64

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})
	if err != nil {
		h.log.Warn().Err(err).Str("dir", dirPath).Msg("Failed to calculate directory size")
		return 0
	}

	return float64(totalSize) / 1024 / 1024
}

// writeJSON writes a JSON response
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
