package report

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/filamentrecolor/internal/batch"
	"github.com/MeKo-Tech/filamentrecolor/internal/recolor"
)

func testInfo() RunInfo {
	return RunInfo{
		StartedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		SourceDir: "/photos",
		HueRange:  recolor.DefaultHueRange().String(),
		Colors:    "rojo,azul",
		Workers:   1,
	}
}

func result(file, color string, err error, skipped bool) batch.Result {
	return batch.Result{
		Task: batch.Task{
			Color:  recolor.TargetColor{Name: color},
			File:   file,
			Output: batch.OutputPath("/photos", color, file),
		},
		Err:     err,
		Elapsed: 12 * time.Millisecond,
		Outcome: batch.Outcome{Skipped: skipped, Coverage: 0.25},
	}
}

func TestWriter_New(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "report.db")

	w, err := New(dbPath, testInfo())
	require.NoError(t, err)
	defer w.Close()

	_, err = os.Stat(dbPath)
	require.NoError(t, err, "database file was not created")

	var count int
	require.NoError(t, w.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count))
	assert.Equal(t, 1, count)
	assert.Equal(t, int64(1), w.RunID())
}

func TestEntryFromResult(t *testing.T) {
	ok := EntryFromResult(result("a.png", "rojo", nil, false))
	assert.Equal(t, StatusOK, ok.Status)
	assert.Equal(t, "rojo", ok.Color)
	assert.Equal(t, filepath.Join("/photos", "modified", "rojo", "a.png"), ok.Output)
	assert.InDelta(t, 0.25, ok.Coverage, 1e-9)

	skipped := EntryFromResult(result("a.png", "rojo", nil, true))
	assert.Equal(t, StatusSkipped, skipped.Status)

	decodeErr := &batch.DecodeError{Path: "/photos/a.png", Err: errors.New("bad header")}
	failed := EntryFromResult(result("a.png", "rojo", decodeErr, false))
	assert.Equal(t, StatusFailed, failed.Status)
	assert.Equal(t, "decode", failed.ErrorKind)
	assert.Contains(t, failed.Error, "bad header")
}

func TestReport_RoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "report.db")

	w, err := New(dbPath, testInfo())
	require.NoError(t, err)

	writeErr := &batch.WriteError{Path: "/photos/modified/azul/b.png", Err: errors.New("disk full")}
	results := []batch.Result{
		result("a.png", "rojo", nil, false),
		result("b.png", "rojo", nil, true),
		result("a.png", "azul", nil, false),
		result("b.png", "azul", writeErr, false),
	}
	for _, r := range results {
		require.NoError(t, w.Record(r))
	}
	require.NoError(t, w.Finish(batch.Summary{Total: 4, Succeeded: 2, Failed: 1, Skipped: 1}))
	require.NoError(t, w.Close())

	r, err := OpenReader(dbPath)
	require.NoError(t, err)
	defer r.Close()

	run, err := r.LatestRun()
	require.NoError(t, err)
	assert.Equal(t, "/photos", run.SourceDir)
	assert.Equal(t, "(15,50,50)-(50,255,255)", run.HueRange)
	assert.Equal(t, "rojo,azul", run.Colors)
	assert.True(t, run.StartedAt.Equal(testInfo().StartedAt))
	assert.False(t, run.FinishedAt.IsZero())
	assert.Equal(t, 4, run.Total)
	assert.Equal(t, 2, run.Succeeded)
	assert.Equal(t, 1, run.Failed)
	assert.Equal(t, 1, run.Skipped)

	entries, err := r.Results(run.ID)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, "a.png", entries[0].File)
	assert.Equal(t, "rojo", entries[0].Color)
	assert.Equal(t, StatusOK, entries[0].Status)
	assert.Equal(t, 12*time.Millisecond, entries[0].Elapsed)
	assert.Equal(t, StatusSkipped, entries[1].Status)
	assert.Equal(t, StatusFailed, entries[3].Status)
	assert.Equal(t, "write", entries[3].ErrorKind)
	assert.Contains(t, entries[3].Error, "disk full")
}

func TestReport_MultipleRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "report.db")

	for i := 0; i < 2; i++ {
		w, err := New(dbPath, testInfo())
		require.NoError(t, err)
		require.NoError(t, w.Record(result("a.png", "rojo", nil, false)))
		require.NoError(t, w.Close())
	}

	r, err := OpenReader(dbPath)
	require.NoError(t, err)
	defer r.Close()

	runs, err := r.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Less(t, runs[0].ID, runs[1].ID)
	assert.True(t, runs[0].FinishedAt.IsZero(), "unfinished run has no finish time")

	for _, run := range runs {
		entries, err := r.Results(run.ID)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	}
}

func TestWriter_BatchFlush(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "report.db")

	w, err := New(dbPath, testInfo())
	require.NoError(t, err)

	for i := 0; i < 150; i++ {
		require.NoError(t, w.Record(result("a.png", "rojo", nil, false)))
	}

	// The first DefaultBatchSize entries are flushed automatically.
	var count int
	require.NoError(t, w.db.QueryRow("SELECT COUNT(*) FROM results").Scan(&count))
	assert.Equal(t, DefaultBatchSize, count)

	require.NoError(t, w.Close())

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM results").Scan(&count))
	assert.Equal(t, 150, count)

	var maxSeq int
	require.NoError(t, db.QueryRow("SELECT MAX(seq) FROM results").Scan(&maxSeq))
	assert.Equal(t, 150, maxSeq)
}

func TestReader_InvalidDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "invalid.db")
	require.NoError(t, os.WriteFile(dbPath, []byte("not a database"), 0o644))

	_, err := OpenReader(dbPath)
	assert.Error(t, err)
}

func TestReader_MissingTables(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "other.db")

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE tiles (id INTEGER)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = OpenReader(dbPath)
	assert.ErrorContains(t, err, "does not contain a run report")
}

func TestReader_MissingFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "missing.db")

	_, err := OpenReader(dbPath)
	require.Error(t, err)

	_, statErr := os.Stat(dbPath)
	assert.True(t, os.IsNotExist(statErr), "reader must not create the database")
}
