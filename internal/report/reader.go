package report

import (
	"database/sql"
	"fmt"
	"os"
	"time"
)

// Reader reads runs and results from a report database.
type Reader struct {
	db   *sql.DB
	path string
}

// OpenReader opens an existing report database for reading.
func OpenReader(path string) (*Reader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA query_only = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set read-only mode: %w", err)
	}

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('runs', 'results')").Scan(&count)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to verify schema: %w", err)
	}
	if count != 2 {
		db.Close()
		return nil, fmt.Errorf("database does not contain a run report")
	}

	return &Reader{
		db:   db,
		path: path,
	}, nil
}

// Runs returns all stored runs, oldest first.
func (r *Reader) Runs() ([]Run, error) {
	rows, err := r.db.Query(`SELECT id, started_at, finished_at, source_dir, hue_range, colors,
		workers, dry_run, total, succeeded, failed, skipped FROM runs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run              Run
			started          string
			finished         sql.NullString
			hueRange, colors sql.NullString
			dryRun           int
		)
		if err := rows.Scan(&run.ID, &started, &finished, &run.SourceDir, &hueRange, &colors,
			&run.Workers, &dryRun, &run.Total, &run.Succeeded, &run.Failed, &run.Skipped); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}

		run.StartedAt = parseTime(started)
		if finished.Valid {
			run.FinishedAt = parseTime(finished.String)
		}
		run.HueRange = hueRange.String
		run.Colors = colors.String
		run.DryRun = dryRun != 0
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// LatestRun returns the most recently started run.
func (r *Reader) LatestRun() (Run, error) {
	runs, err := r.Runs()
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, fmt.Errorf("report contains no runs")
	}
	return runs[len(runs)-1], nil
}

// Results returns the entries of a run in the order they were recorded.
func (r *Reader) Results(runID int64) ([]Entry, error) {
	rows, err := r.db.Query(`SELECT color, file, output, status, error_kind, error, coverage, elapsed_ms
		FROM results WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                     Entry
			output, kind, errText sql.NullString
			coverage              sql.NullFloat64
			elapsedMS             sql.NullInt64
		)
		if err := rows.Scan(&e.Color, &e.File, &output, &e.Status, &kind, &errText, &coverage, &elapsedMS); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}

		e.Output = output.String
		e.ErrorKind = kind.String
		e.Error = errText.String
		e.Coverage = coverage.Float64
		e.Elapsed = time.Duration(elapsedMS.Int64) * time.Millisecond
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating results: %w", err)
	}

	return entries, nil
}

// Close closes the database connection.
func (r *Reader) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
