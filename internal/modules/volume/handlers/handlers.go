// Package handlers provides HTTP handlers for quantum-volume benchmarking.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/quantalab/qbenchd/internal/modules/runs"
	"github.com/quantalab/qbenchd/internal/modules/volume"
)

// Handler handles quantum-volume HTTP requests
type Handler struct {
	runsRepo   *runs.Repository
	volumeRepo *volume.Repository
	trigger    func()
	log        zerolog.Logger
}

// NewHandler creates a new volume handler. The trigger wakes the work
// processor after a run is enqueued.
func NewHandler(runsRepo *runs.Repository, volumeRepo *volume.Repository, trigger func(), log zerolog.Logger) *Handler {
	return &Handler{
		runsRepo:   runsRepo,
		volumeRepo: volumeRepo,
		trigger:    trigger,
		log:        log.With().Str("handler", "volume").Logger(),
	}
}

// RegisterRoutes registers volume routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/volume", func(r chi.Router) {
		r.Post("/runs", h.HandleCreateRun)
		r.Get("/runs/{uuid}/widths", h.HandleWidths)
		r.Get("/latest", h.HandleLatest)
		r.Get("/defaults", h.HandleDefaults)
	})
}

// HandleCreateRun handles POST /api/volume/runs. The body is a params
// document; an empty body enqueues a run with defaults.
func (h *Handler) HandleCreateRun(w http.ResponseWriter, r *http.Request) {
	var params volume.Params
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			http.Error(w, "Invalid params: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	runUUID, err := h.runsRepo.Create(runs.KindVolume, params)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create volume run")
		http.Error(w, "Failed to create run", http.StatusInternalServerError)
		return
	}

	h.log.Info().Str("run", runUUID).Msg("Volume run enqueued")
	h.trigger()

	h.writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"data": map[string]interface{}{
			"uuid":   runUUID,
			"kind":   string(runs.KindVolume),
			"status": string(runs.StatusPending),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleWidths handles GET /api/volume/runs/{uuid}/widths
func (h *Handler) HandleWidths(w http.ResponseWriter, r *http.Request) {
	runUUID := chi.URLParam(r, "uuid")

	widths, err := h.volumeRepo.WidthsForRun(runUUID)
	if err != nil {
		h.log.Error().Err(err).Str("uuid", runUUID).Msg("Failed to load width results")
		http.Error(w, "Failed to load width results", http.StatusInternalServerError)
		return
	}
	if len(widths) == 0 {
		http.Error(w, "No width results for run", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"run_uuid": runUUID,
			"widths":   widths,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleLatest handles GET /api/volume/latest
func (h *Handler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	qv, err := h.volumeRepo.LatestQuantumVolume()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get latest quantum volume")
		http.Error(w, "Failed to get latest quantum volume", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"quantum_volume": qv,
			"certified":      qv > 0,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleDefaults handles GET /api/volume/defaults. Clients use it to prefill
// the run form.
func (h *Handler) HandleDefaults(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"widths": volume.DefaultWidths(),
			"trials": volume.DefaultTrials,
			"shots":  volume.DefaultShots,
			"noise":  volume.DefaultNoise(),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
