package batch

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MeKo-Tech/filamentrecolor/internal/recolor"
)

func progressTask(file, color string, index, total int) Task {
	return Task{File: file, Color: recolor.TargetColor{Name: color}, Index: index, Total: total}
}

func TestProgress_RecordLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(3, &buf, false)

	p.Record(Result{Task: progressTask("a.jpg", "rojo", 1, 3)})
	p.Record(Result{Task: progressTask("b.jpg", "rojo", 2, 3), Err: errors.New("boom")})
	p.Record(Result{Task: progressTask("c.jpg", "rojo", 3, 3), Outcome: Outcome{Skipped: true}})

	want := "Image 1/3 processed (rojo): a.jpg\n" +
		"Error processing image b.jpg (rojo): boom\n" +
		"Image 3/3 skipped (rojo): c.jpg already exists\n"
	if buf.String() != want {
		t.Errorf("Unexpected output:\n%s\nwant:\n%s", buf.String(), want)
	}

	completed, failed, skipped := p.Counts()
	if completed != 3 || failed != 1 || skipped != 1 {
		t.Errorf("Expected 3/1/1, got %d/%d/%d", completed, failed, skipped)
	}
}

func TestProgress_DryRunLine(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(1, &buf, true)

	p.Record(Result{Task: progressTask("a.png", "azul", 1, 1), Outcome: Outcome{Coverage: 0.125}})

	if got := buf.String(); got != "Image 1/1 analyzed (azul): a.png (12.5% selected)\n" {
		t.Errorf("Unexpected output: %q", got)
	}
}

func TestProgress_Summary(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(4, &buf, false)
	p.startTime = time.Now().Add(-2 * time.Second)

	p.Record(Result{Task: progressTask("a", "rojo", 1, 2)})
	p.Record(Result{Task: progressTask("b", "rojo", 2, 2), Err: errors.New("x")})

	s := p.Summary()
	if !strings.Contains(s, "Recolored 1/4 images") {
		t.Errorf("Expected 'Recolored 1/4 images' in summary, got: %s", s)
	}
	if !strings.Contains(s, "(1 failed, 0 skipped)") {
		t.Errorf("Expected failure count in summary, got: %s", s)
	}
	if !strings.Contains(s, "images/sec") {
		t.Errorf("Expected rate in summary, got: %s", s)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		expected string
		d        time.Duration
	}{
		{"0s", 0},
		{"30s", 30 * time.Second},
		{"1m30s", 90 * time.Second},
		{"5m0s", 5 * time.Minute},
		{"1h0m", time.Hour},
		{"2h30m", 2*time.Hour + 30*time.Minute},
	}

	for _, tt := range tests {
		result := formatDuration(tt.d)
		if result != tt.expected {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, result, tt.expected)
		}
	}
}
