package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantalab/qbenchd/internal/modules/maxcut"
	"github.com/quantalab/qbenchd/internal/modules/runs"
	testingpkg "github.com/quantalab/qbenchd/internal/testing"
)

func setup(t *testing.T) (*chi.Mux, *runs.Repository, func()) {
	t.Helper()
	db, cleanup := testingpkg.NewTestDB(t, "results")
	repo := runs.NewRepository(db.Conn(), zerolog.Nop())

	r := chi.NewRouter()
	NewHandler(repo, func() {}, zerolog.Nop()).RegisterRoutes(r)
	return r, repo, cleanup
}

func TestHandleCreateRunEmptyBodyUsesDefaultGraph(t *testing.T) {
	router, repo, cleanup := setup(t)
	defer cleanup()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/maxcut/runs", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)

	var body struct {
		Data struct {
			UUID string `json:"uuid"`
			Kind string `json:"kind"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "maxcut", body.Data.Kind)

	run, err := repo.Get(body.Data.UUID)
	require.NoError(t, err)
	assert.Equal(t, runs.KindMaxCut, run.Kind)
}

func TestHandleCreateRunWithGraph(t *testing.T) {
	router, repo, cleanup := setup(t)
	defer cleanup()

	payload := `{
		"graph": {"num_nodes": 3, "edges": [
			{"a": 0, "b": 1, "weight": 1},
			{"a": 1, "b": 2, "weight": 2}
		]},
		"layers": 1,
		"seed": 3
	}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/maxcut/runs", strings.NewReader(payload)))
	require.Equal(t, http.StatusAccepted, rec.Code)

	var body struct {
		Data struct {
			UUID string `json:"uuid"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	run, err := repo.Get(body.Data.UUID)
	require.NoError(t, err)
	var stored maxcut.Params
	require.NoError(t, json.Unmarshal([]byte(run.Params), &stored))
	assert.Equal(t, 3, stored.Graph.NumNodes)
	assert.Len(t, stored.Graph.Edges, 2)
}

func TestHandleCreateRunRejectsInvalidGraph(t *testing.T) {
	router, _, cleanup := setup(t)
	defer cleanup()

	payload := `{"graph": {"num_nodes": 2, "edges": [{"a": 0, "b": 5, "weight": 1}]}}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/maxcut/runs", strings.NewReader(payload)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleDefaults(t *testing.T) {
	router, _, cleanup := setup(t)
	defer cleanup()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/maxcut/defaults", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			Layers int `json:"layers"`
			Shots  int `json:"shots"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, maxcut.DefaultLayers, body.Data.Layers)
	assert.Equal(t, maxcut.DefaultShots, body.Data.Shots)
}
