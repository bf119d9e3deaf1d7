package batch

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Progress prints one console line per finished task and keeps totals.
type Progress struct {
	startTime time.Time
	output    io.Writer
	total     int
	completed int
	failed    int
	skipped   int
	mu        sync.Mutex
	dryRun    bool
}

// NewProgress creates a progress tracker for total tasks writing to out
// (stdout when nil).
func NewProgress(total int, out io.Writer, dryRun bool) *Progress {
	if out == nil {
		out = os.Stdout
	}
	return &Progress{
		total:     total,
		startTime: time.Now(),
		output:    out,
		dryRun:    dryRun,
	}
}

// Record counts r and prints its line.
func (p *Progress) Record(r Result) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.completed++
	switch {
	case r.Err != nil:
		p.failed++
		fmt.Fprintf(p.output, "Error processing image %s (%s): %v\n", r.Task.File, r.Task.Color.Name, r.Err)
	case r.Skipped:
		p.skipped++
		fmt.Fprintf(p.output, "Image %d/%d skipped (%s): %s already exists\n",
			r.Task.Index, r.Task.Total, r.Task.Color.Name, r.Task.File)
	case p.dryRun:
		fmt.Fprintf(p.output, "Image %d/%d analyzed (%s): %s (%.1f%% selected)\n",
			r.Task.Index, r.Task.Total, r.Task.Color.Name, r.Task.File, r.Coverage*100)
	default:
		fmt.Fprintf(p.output, "Image %d/%d processed (%s): %s\n",
			r.Task.Index, r.Task.Total, r.Task.Color.Name, r.Task.File)
	}
}

// Callback returns a ResultFunc suitable for PoolConfig.
func (p *Progress) Callback() ResultFunc {
	return p.Record
}

// Counts returns completed, failed and skipped task counts.
func (p *Progress) Counts() (completed, failed, skipped int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.completed, p.failed, p.skipped
}

// Summary returns a summary string of the completed work.
func (p *Progress) Summary() string {
	p.mu.Lock()
	completed, failed, skipped := p.completed, p.failed, p.skipped
	total := p.total
	startTime := p.startTime
	p.mu.Unlock()

	elapsed := time.Since(startTime)
	successful := completed - failed - skipped

	var rate float64
	if elapsed.Seconds() > 0 {
		rate = float64(completed) / elapsed.Seconds()
	}

	return fmt.Sprintf("Recolored %d/%d images (%d failed, %d skipped) in %s (%.1f images/sec)",
		successful, total, failed, skipped, formatDuration(elapsed), rate)
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		secs := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", mins, secs)
	}
	hours := int(d.Hours())
	mins := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", hours, mins)
}
