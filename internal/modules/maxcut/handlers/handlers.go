// Package handlers provides HTTP handlers for QAOA MaxCut runs.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/quantalab/qbenchd/internal/modules/maxcut"
	"github.com/quantalab/qbenchd/internal/modules/runs"
)

// Handler handles MaxCut HTTP requests
type Handler struct {
	runsRepo *runs.Repository
	trigger  func()
	log      zerolog.Logger
}

// NewHandler creates a new MaxCut handler
func NewHandler(runsRepo *runs.Repository, trigger func(), log zerolog.Logger) *Handler {
	return &Handler{
		runsRepo: runsRepo,
		trigger:  trigger,
		log:      log.With().Str("handler", "maxcut").Logger(),
	}
}

// RegisterRoutes registers MaxCut routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/maxcut", func(r chi.Router) {
		r.Post("/runs", h.HandleCreateRun)
		r.Get("/defaults", h.HandleDefaults)
	})
}

// HandleCreateRun handles POST /api/maxcut/runs. An empty body runs QAOA on
// the default benchmark graph.
func (h *Handler) HandleCreateRun(w http.ResponseWriter, r *http.Request) {
	var params maxcut.Params
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			http.Error(w, "Invalid params: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	if len(params.Graph.Edges) > 0 {
		if err := params.Graph.Validate(); err != nil {
			http.Error(w, "Invalid graph: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	runUUID, err := h.runsRepo.Create(runs.KindMaxCut, params)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create MaxCut run")
		http.Error(w, "Failed to create run", http.StatusInternalServerError)
		return
	}

	h.log.Info().Str("run", runUUID).Msg("MaxCut run enqueued")
	h.trigger()

	h.writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"data": map[string]interface{}{
			"uuid":   runUUID,
			"kind":   string(runs.KindMaxCut),
			"status": string(runs.StatusPending),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleDefaults handles GET /api/maxcut/defaults
func (h *Handler) HandleDefaults(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"graph":  maxcut.DefaultGraph(),
			"layers": maxcut.DefaultLayers,
			"shots":  maxcut.DefaultShots,
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
