// Package report stores batch run results in a SQLite database.
package report

import (
	"time"

	"github.com/MeKo-Tech/filamentrecolor/internal/batch"
)

// Result statuses.
const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// RunInfo describes a run when it starts.
type RunInfo struct {
	StartedAt time.Time
	SourceDir string
	HueRange  string // formatted as "(h,s,v)-(h,s,v)"
	Colors    string // comma-separated color names in table order
	Workers   int
	DryRun    bool
}

// Run is a stored run, including its totals once finished.
type Run struct {
	RunInfo
	FinishedAt time.Time // zero while the run has not finished
	ID         int64
	Total      int
	Succeeded  int
	Failed     int
	Skipped    int
}

// Entry is one stored (file, color) result.
type Entry struct {
	Color     string
	File      string
	Output    string
	Status    string
	ErrorKind string
	Error     string
	Coverage  float64
	Elapsed   time.Duration
}

// EntryFromResult converts a batch result into a report entry.
func EntryFromResult(r batch.Result) Entry {
	e := Entry{
		Color:    r.Task.Color.Name,
		File:     r.Task.File,
		Output:   r.Task.Output,
		Status:   StatusOK,
		Coverage: r.Coverage,
		Elapsed:  r.Elapsed,
	}

	switch {
	case r.Err != nil:
		e.Status = StatusFailed
		e.ErrorKind = batch.Kind(r.Err)
		e.Error = r.Err.Error()
	case r.Skipped:
		e.Status = StatusSkipped
	}

	return e
}
