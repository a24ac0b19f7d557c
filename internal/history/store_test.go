package history_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odexlab/deodexer/internal/history"
	"github.com/odexlab/deodexer/pkg/deodex"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "nested", "history.db"), nil)
	require.NoError(t, err, "Open must create parent directories and apply the schema")
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleBatch() (deodex.BatchReport, []deodex.ConversionResult) {
	results := []deodex.ConversionResult{
		{SourcePath: "/in/a.odex", Status: deodex.StatusSucceeded, OutputPath: "/out/a", DurationSeconds: 1.5, SizeBytes: 1024},
		{SourcePath: "/in/b.odex", Status: deodex.StatusFailed, ErrorDetail: "bad input", DurationSeconds: 0.2},
	}
	return deodex.GenerateReport(results), results
}

// TestStore_SaveAndListBatches verifies the round trip through the batches
// table.
func TestStore_SaveAndListBatches(t *testing.T) {
	store := openStore(t)
	report, results := sampleBatch()

	started := time.Now().Add(-time.Minute)
	batchID, err := store.SaveBatch(context.Background(), started, report, results)
	require.NoError(t, err)
	require.NotEmpty(t, batchID)

	batches, err := store.RecentBatches(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, batches, 1)

	b := batches[0]
	assert.Equal(t, batchID, b.ID)
	assert.Equal(t, 2, b.TotalFiles)
	assert.Equal(t, 1, b.Succeeded)
	assert.Equal(t, 1, b.Failed)
	assert.InDelta(t, 50.0, b.SuccessRate, 0.01)
	assert.InDelta(t, 1.7, b.DurationSeconds, 0.001)
}

// TestStore_JobsForBatch verifies per-file rows preserve insertion order
// and nullable columns come back empty, not failing.
func TestStore_JobsForBatch(t *testing.T) {
	store := openStore(t)
	report, results := sampleBatch()

	batchID, err := store.SaveBatch(context.Background(), time.Now(), report, results)
	require.NoError(t, err)

	jobs, err := store.JobsForBatch(context.Background(), batchID)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "/in/a.odex", jobs[0].File)
	assert.Equal(t, "succeeded", jobs[0].Status)
	assert.Equal(t, "/out/a", jobs[0].OutputPath)
	assert.Empty(t, jobs[0].Error)

	assert.Equal(t, "/in/b.odex", jobs[1].File)
	assert.Equal(t, "failed", jobs[1].Status)
	assert.Equal(t, "bad input", jobs[1].Error)
	assert.Empty(t, jobs[1].OutputPath)
}

// TestStore_RecentBatchesOrderAndLimit verifies newest-first ordering and
// the limit clause.
func TestStore_RecentBatchesOrderAndLimit(t *testing.T) {
	store := openStore(t)
	report, results := sampleBatch()

	base := time.Now().Add(-time.Hour)
	var newest string
	for i := 0; i < 3; i++ {
		id, err := store.SaveBatch(context.Background(), base.Add(time.Duration(i)*time.Minute), report, results)
		require.NoError(t, err)
		newest = id
	}

	batches, err := store.RecentBatches(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, newest, batches[0].ID, "batches must list newest first")
}

// TestStore_UnknownBatch verifies an empty result, not an error.
func TestStore_UnknownBatch(t *testing.T) {
	store := openStore(t)
	jobs, err := store.JobsForBatch(context.Background(), "no-such-batch")
	require.NoError(t, err)
	assert.Empty(t, jobs)
}
