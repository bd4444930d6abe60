package sqlite

import (
	"errors"
	"testing"
	"time"

	"github.com/bnema/segbench/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func reportedRun(asset string, startedAt time.Time) *domain.Run {
	run := domain.NewRun(asset, 10)
	run.StartedAt = startedAt
	run.AssetDuration = 95
	run.NumSegments = 10
	run.Sequential = domain.ExecutionReport{Mode: domain.ExecutionModeSequential, Elapsed: 20 * time.Second, Workers: 1, Jobs: 10}
	run.Parallel = domain.ExecutionReport{Mode: domain.ExecutionModeParallel, Elapsed: 5 * time.Second, Workers: 4, Jobs: 10}
	run.Equivalent = true
	run.MarkAsReported("/out/final.mp4", 95, 2048)
	return run
}

func TestStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	run := reportedRun("/in/a.mp4", time.Now())

	require.NoError(t, store.Save(run))

	got, err := store.Get(run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, domain.StateReported, got.State)
	assert.Equal(t, 5*time.Second, got.Parallel.Elapsed)
	assert.InDelta(t, 4.0, got.Metrics.Speedup, 1e-9)
	assert.Equal(t, domain.InsightExcellent, got.Insight.Level)
	assert.True(t, got.StartedAt.Equal(run.StartedAt))
}

func TestStore_SaveUpdatesExistingRun(t *testing.T) {
	store := newTestStore(t)
	run := domain.NewRun("/in/a.mp4", 10)
	require.NoError(t, store.Save(run))

	run.MarkAsFailed(domain.NewPhaseError(domain.StateMerge, domain.ErrMerge))
	require.NoError(t, store.Save(run))

	got, err := store.Get(run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateFailed, got.State)
	assert.Equal(t, "merge phase failed: merge failed", got.ErrorMessage)

	runs, err := store.List(0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestStore_GetNotFound(t *testing.T) {
	store := newTestStore(t)

	run, err := store.Get("missing")
	assert.Nil(t, run)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestStore_ListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	base := time.Now()

	older := reportedRun("/in/old.mp4", base.Add(-time.Hour))
	newest := reportedRun("/in/new.mp4", base)
	middle := reportedRun("/in/mid.mp4", base.Add(-time.Minute))
	for _, r := range []*domain.Run{older, newest, middle} {
		require.NoError(t, store.Save(r))
	}

	runs, err := store.List(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newest.ID, runs[0].ID)
	assert.Equal(t, middle.ID, runs[1].ID)

	all, err := store.List(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestNewStore_ReopenKeepsHistory(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	run := reportedRun("/in/a.mp4", time.Now())
	require.NoError(t, store.Save(run))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(run.ID)
	require.NoError(t, err)
	assert.Equal(t, "/in/a.mp4", got.AssetPath)
}
