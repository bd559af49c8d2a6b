// Package handlers provides HTTP handlers for experiment run records.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/quantalab/qbenchd/internal/modules/runs"
)

// Handler handles run HTTP requests
type Handler struct {
	repo *runs.Repository
	log  zerolog.Logger
}

// NewHandler creates a new runs handler
func NewHandler(repo *runs.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "runs").Logger(),
	}
}

// RegisterRoutes registers run routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/runs", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Get("/{uuid}", h.HandleGet)
	})
}

// runView is a Run with its params and report decoded from stored JSON.
type runView struct {
	UUID       string          `json:"uuid"`
	Kind       runs.Kind       `json:"kind"`
	Status     runs.Status     `json:"status"`
	Params     json.RawMessage `json:"params"`
	Report     json.RawMessage `json:"report,omitempty"`
	Error      *string         `json:"error,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	StartedAt  *time.Time      `json:"started_at,omitempty"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}

func toView(run *runs.Run) runView {
	v := runView{
		UUID:       run.UUID,
		Kind:       run.Kind,
		Status:     run.Status,
		Params:     json.RawMessage(run.Params),
		Error:      run.Error,
		CreatedAt:  run.CreatedAt,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}
	if run.Report != nil {
		v.Report = json.RawMessage(*run.Report)
	}
	return v
}

// HandleList handles GET /api/runs
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	kind := runs.Kind(r.URL.Query().Get("kind"))
	if kind != "" && !kind.Valid() {
		http.Error(w, "unknown run kind", http.StatusBadRequest)
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	list, err := h.repo.List(kind, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list runs")
		http.Error(w, "Failed to list runs", http.StatusInternalServerError)
		return
	}

	views := make([]runView, 0, len(list))
	for i := range list {
		views = append(views, toView(&list[i]))
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"runs":  views,
			"count": len(views),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGet handles GET /api/runs/{uuid}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	runUUID := chi.URLParam(r, "uuid")

	run, err := h.repo.Get(runUUID)
	if err != nil {
		if errors.Is(err, runs.ErrNotFound) {
			http.Error(w, "Run not found", http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Str("uuid", runUUID).Msg("Failed to get run")
		http.Error(w, "Failed to get run", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": toView(run),
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
