package report

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/MeKo-Tech/filamentrecolor/internal/batch"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	// DefaultBatchSize is the number of entries to buffer before flushing to the database.
	DefaultBatchSize = 100
)

// Writer appends one run and its results to a report database.
type Writer struct {
	db        *sql.DB
	path      string
	batch     []Entry
	runID     int64
	batchSize int
	mu        sync.Mutex
}

// New opens (or creates) the report database at path and registers a new run.
func New(path string, info RunInfo) (*Writer, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	runID, err := insertRun(db, info)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}

	return &Writer{
		db:        db,
		path:      path,
		runID:     runID,
		batch:     make([]Entry, 0, DefaultBatchSize),
		batchSize: DefaultBatchSize,
	}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			source_dir TEXT NOT NULL,
			hue_range TEXT,
			colors TEXT,
			workers INTEGER NOT NULL DEFAULT 1,
			dry_run INTEGER NOT NULL DEFAULT 0,
			total INTEGER NOT NULL DEFAULT 0,
			succeeded INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS results (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			seq INTEGER NOT NULL,
			color TEXT NOT NULL,
			file TEXT NOT NULL,
			output TEXT,
			status TEXT NOT NULL,
			error_kind TEXT,
			error TEXT,
			coverage REAL,
			elapsed_ms INTEGER
		);

		CREATE INDEX IF NOT EXISTS results_run ON results (run_id, seq);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

func insertRun(db *sql.DB, info RunInfo) (int64, error) {
	started := info.StartedAt
	if started.IsZero() {
		started = time.Now()
	}

	res, err := db.Exec(
		"INSERT INTO runs (started_at, source_dir, hue_range, colors, workers, dry_run) VALUES (?, ?, ?, ?, ?, ?)",
		formatTime(started), info.SourceDir, info.HueRange, info.Colors, info.Workers, boolToInt(info.DryRun),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RunID returns the id of the run this writer records.
func (w *Writer) RunID() int64 {
	return w.runID
}

// Record buffers a batch result. When the buffer is full, it is flushed.
func (w *Writer) Record(r batch.Result) error {
	return w.WriteEntry(EntryFromResult(r))
}

// WriteEntry buffers an entry. When the buffer is full, it is flushed.
func (w *Writer) WriteEntry(e Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.batch = append(w.batch, e)

	if len(w.batch) >= w.batchSize {
		return w.flushLocked()
	}

	return nil
}

// Flush writes any buffered entries to the database.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

// flushLocked writes buffered entries. Must be called with lock held.
func (w *Writer) flushLocked() error {
	if len(w.batch) == 0 {
		return nil
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck

	var seq int
	if err := tx.QueryRow("SELECT COUNT(*) FROM results WHERE run_id = ?", w.runID).Scan(&seq); err != nil {
		return fmt.Errorf("failed to count results: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO results
		(run_id, seq, color, file, output, status, error_kind, error, coverage, elapsed_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range w.batch {
		seq++
		if _, err := stmt.Exec(w.runID, seq, e.Color, e.File, e.Output, e.Status,
			e.ErrorKind, e.Error, e.Coverage, e.Elapsed.Milliseconds()); err != nil {
			return fmt.Errorf("failed to insert result %s (%s): %w", e.File, e.Color, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.batch = w.batch[:0]
	return nil
}

// Finish flushes buffered entries and stores the run totals.
func (w *Writer) Finish(s batch.Summary) error {
	if err := w.Flush(); err != nil {
		return err
	}

	_, err := w.db.Exec(
		"UPDATE runs SET finished_at = ?, total = ?, succeeded = ?, failed = ?, skipped = ? WHERE id = ?",
		formatTime(time.Now()), s.Total, s.Succeeded, s.Failed, s.Skipped, w.runID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run %d: %w", w.runID, err)
	}
	return nil
}

// Close flushes any remaining entries and closes the database.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		w.db.Close()
		return err
	}

	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
