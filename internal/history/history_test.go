package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kginsights/datapuur/internal/domain"
)

func newTestHistory(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndList(t *testing.T) {
	store := newTestHistory(t)

	require.NoError(t, store.RecordStart("job-1", "transform", "plan-9", domain.JobPending))
	require.NoError(t, store.RecordFinish(domain.Job{
		ID:     "job-1",
		Status: domain.JobCompleted,
		Result: &domain.JobResult{OutputFile: "out.csv"},
	}))

	entries, err := store.List(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "job-1", e.JobID)
	assert.Equal(t, "transform", e.Kind)
	assert.Equal(t, "plan-9", e.PlanID)
	assert.Equal(t, domain.JobCompleted, e.Status)
	assert.Equal(t, "out.csv", e.OutputFile)
	assert.False(t, e.StartedAt.IsZero())
	require.NotNil(t, e.FinishedAt)
}

func TestUnfinishedRunHasNoFinishTime(t *testing.T) {
	store := newTestHistory(t)

	require.NoError(t, store.RecordStart("job-2", "transform", "", domain.JobRunning))

	entries, err := store.List(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.JobRunning, entries[0].Status)
	assert.Nil(t, entries[0].FinishedAt)
	assert.Empty(t, entries[0].OutputFile)
}

func TestFailedRunKeepsError(t *testing.T) {
	store := newTestHistory(t)

	require.NoError(t, store.RecordStart("job-3", "transform", "", domain.JobPending))
	require.NoError(t, store.RecordFinish(domain.Job{
		ID:     "job-3",
		Status: domain.JobFailed,
		Error:  "executor crashed",
	}))

	entries, err := store.List(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.JobFailed, entries[0].Status)
	assert.Equal(t, "executor crashed", entries[0].Error)
}

func TestListHonorsLimit(t *testing.T) {
	store := newTestHistory(t)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.RecordStart(id, "transform", "", domain.JobPending))
	}

	entries, err := store.List(2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRecordStartIsUpsert(t *testing.T) {
	store := newTestHistory(t)

	require.NoError(t, store.RecordStart("job-4", "transform", "", domain.JobPending))
	require.NoError(t, store.RecordStart("job-4", "transform", "", domain.JobRunning))

	entries, err := store.List(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.JobRunning, entries[0].Status)
}
