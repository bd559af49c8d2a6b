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

	"github.com/quantalab/qbenchd/internal/modules/runs"
	testingpkg "github.com/quantalab/qbenchd/internal/testing"
)

func setup(t *testing.T) (*chi.Mux, *runs.Repository, *int, func()) {
	t.Helper()
	db, cleanup := testingpkg.NewTestDB(t, "results")
	repo := runs.NewRepository(db.Conn(), zerolog.Nop())

	triggered := 0
	r := chi.NewRouter()
	NewHandler(repo, func() { triggered++ }, zerolog.Nop()).RegisterRoutes(r)
	return r, repo, &triggered, cleanup
}

func TestHandleCreateRun(t *testing.T) {
	router, repo, triggered, cleanup := setup(t)
	defer cleanup()

	payload := `{
		"hamiltonian": {
			"num_spins": 2,
			"couplings": [{"i": 0, "j": 1, "weight": 1}]
		},
		"layers": 2,
		"seed": 5
	}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/vqe/runs", strings.NewReader(payload)))
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, *triggered)

	var body struct {
		Data struct {
			UUID string `json:"uuid"`
			Kind string `json:"kind"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "vqe", body.Data.Kind)

	run, err := repo.Get(body.Data.UUID)
	require.NoError(t, err)
	assert.Equal(t, runs.KindVQE, run.Kind)
}

func TestHandleCreateRunRejectsMissingHamiltonian(t *testing.T) {
	router, _, triggered, cleanup := setup(t)
	defer cleanup()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/vqe/runs", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, *triggered)
}

func TestHandleCreateRunRejectsMalformedBody(t *testing.T) {
	router, _, _, cleanup := setup(t)
	defer cleanup()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/vqe/runs", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
