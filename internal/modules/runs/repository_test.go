package runs

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testingpkg "github.com/quantalab/qbenchd/internal/testing"
)

func newRepo(t *testing.T) (*Repository, func()) {
	t.Helper()
	db, cleanup := testingpkg.NewTestDB(t, "results")
	return NewRepository(db.Conn(), zerolog.Nop()), cleanup
}

func TestKindValid(t *testing.T) {
	assert.True(t, KindVolume.Valid())
	assert.True(t, KindVQE.Valid())
	assert.True(t, KindMaxCut.Valid())
	assert.False(t, Kind("portfolio").Valid())
}

func TestCreateAndGet(t *testing.T) {
	repo, cleanup := newRepo(t)
	defer cleanup()

	params := map[string]interface{}{"trials": 10, "seed": 42}
	runUUID, err := repo.Create(KindVolume, params)
	require.NoError(t, err)
	require.NotEmpty(t, runUUID)

	run, err := repo.Get(runUUID)
	require.NoError(t, err)
	assert.Equal(t, KindVolume, run.Kind)
	assert.Equal(t, StatusPending, run.Status)
	assert.JSONEq(t, `{"trials":10,"seed":42}`, run.Params)
	assert.Nil(t, run.Report)
	assert.Nil(t, run.Error)
	assert.Nil(t, run.StartedAt)
	assert.Nil(t, run.FinishedAt)
}

func TestCreateRejectsUnknownKind(t *testing.T) {
	repo, cleanup := newRepo(t)
	defer cleanup()

	_, err := repo.Create(Kind("nope"), nil)
	assert.Error(t, err)
}

func TestGetUnknownRun(t *testing.T) {
	repo, cleanup := newRepo(t)
	defer cleanup()

	_, err := repo.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLifecycleComplete(t *testing.T) {
	repo, cleanup := newRepo(t)
	defer cleanup()

	runUUID, err := repo.Create(KindVQE, map[string]int{"layers": 2})
	require.NoError(t, err)

	require.NoError(t, repo.MarkRunning(runUUID))
	run, err := repo.Get(runUUID)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, run.Status)
	assert.NotNil(t, run.StartedAt)

	// A running run cannot be marked running again.
	assert.ErrorIs(t, repo.MarkRunning(runUUID), ErrNotFound)

	require.NoError(t, repo.Complete(runUUID, map[string]float64{"energy": -1.5}))
	run, err = repo.Get(runUUID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, run.Status)
	require.NotNil(t, run.Report)
	assert.JSONEq(t, `{"energy":-1.5}`, *run.Report)
	assert.NotNil(t, run.FinishedAt)
}

func TestLifecycleFail(t *testing.T) {
	repo, cleanup := newRepo(t)
	defer cleanup()

	runUUID, err := repo.Create(KindMaxCut, nil)
	require.NoError(t, err)
	require.NoError(t, repo.MarkRunning(runUUID))
	require.NoError(t, repo.Fail(runUUID, errors.New("optimizer diverged")))

	run, err := repo.Get(runUUID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, run.Status)
	require.NotNil(t, run.Error)
	assert.Equal(t, "optimizer diverged", *run.Error)
}

func TestPendingUUIDsOrderedByCreation(t *testing.T) {
	repo, cleanup := newRepo(t)
	defer cleanup()

	first, err := repo.Create(KindVolume, nil)
	require.NoError(t, err)
	second, err := repo.Create(KindVolume, nil)
	require.NoError(t, err)
	other, err := repo.Create(KindVQE, nil)
	require.NoError(t, err)
	require.NoError(t, repo.MarkRunning(other))

	pending, err := repo.PendingUUIDs(KindVolume)
	require.NoError(t, err)
	assert.Equal(t, []string{first, second}, pending)

	pending, err = repo.PendingUUIDs(KindVQE)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestListFiltersByKind(t *testing.T) {
	repo, cleanup := newRepo(t)
	defer cleanup()

	_, err := repo.Create(KindVolume, nil)
	require.NoError(t, err)
	_, err = repo.Create(KindVQE, nil)
	require.NoError(t, err)

	all, err := repo.List("", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	vqeOnly, err := repo.List(KindVQE, 10)
	require.NoError(t, err)
	require.Len(t, vqeOnly, 1)
	assert.Equal(t, KindVQE, vqeOnly[0].Kind)
}

func TestDeleteFinishedBefore(t *testing.T) {
	repo, cleanup := newRepo(t)
	defer cleanup()

	old, err := repo.Create(KindVolume, nil)
	require.NoError(t, err)
	require.NoError(t, repo.MarkRunning(old))
	require.NoError(t, repo.Complete(old, nil))

	pending, err := repo.Create(KindVolume, nil)
	require.NoError(t, err)

	deleted, err := repo.DeleteFinishedBefore(time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	// The pending run survives regardless of age.
	_, err = repo.Get(pending)
	assert.NoError(t, err)
	_, err = repo.Get(old)
	assert.ErrorIs(t, err, ErrNotFound)
}
