// Package handlers provides HTTP handlers for VQE ground-state runs.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/quantalab/qbenchd/internal/modules/runs"
	"github.com/quantalab/qbenchd/internal/modules/vqe"
)

// Handler handles VQE HTTP requests
type Handler struct {
	runsRepo *runs.Repository
	trigger  func()
	log      zerolog.Logger
}

// NewHandler creates a new VQE handler
func NewHandler(runsRepo *runs.Repository, trigger func(), log zerolog.Logger) *Handler {
	return &Handler{
		runsRepo: runsRepo,
		trigger:  trigger,
		log:      log.With().Str("handler", "vqe").Logger(),
	}
}

// RegisterRoutes registers VQE routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/vqe", func(r chi.Router) {
		r.Post("/runs", h.HandleCreateRun)
	})
}

// HandleCreateRun handles POST /api/vqe/runs. The body must carry the
// problem Hamiltonian; the run fails fast otherwise.
func (h *Handler) HandleCreateRun(w http.ResponseWriter, r *http.Request) {
	var params vqe.Params
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "Invalid params: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := params.Hamiltonian.Validate(); err != nil {
		http.Error(w, "Invalid hamiltonian: "+err.Error(), http.StatusBadRequest)
		return
	}

	runUUID, err := h.runsRepo.Create(runs.KindVQE, params)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create VQE run")
		http.Error(w, "Failed to create run", http.StatusInternalServerError)
		return
	}

	h.log.Info().Str("run", runUUID).Int("spins", params.Hamiltonian.NumSpins).Msg("VQE run enqueued")
	h.trigger()

	h.writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"data": map[string]interface{}{
			"uuid":   runUUID,
			"kind":   string(runs.KindVQE),
			"status": string(runs.StatusPending),
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
