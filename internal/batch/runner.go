// Package batch recolors every image in a directory once per target color.
//
// Outputs land in <source>/modified/<color>/<file>. A failing (file, color)
// pair is reported and skipped; it never stops the rest of the batch.
package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/MeKo-Tech/filamentrecolor/internal/imageio"
	"github.com/MeKo-Tech/filamentrecolor/internal/mask"
	"github.com/MeKo-Tech/filamentrecolor/internal/recolor"
)

// ModifiedDirName is the subdirectory of the source that receives outputs.
const ModifiedDirName = "modified"

// Recorder persists task results, e.g. into a run report.
type Recorder interface {
	Record(r Result) error
}

// Config describes one batch run.
type Config struct {
	Output          io.Writer
	Recorder        Recorder
	Logger          *slog.Logger
	SourceDir       string
	Colors          recolor.ColorTable
	Encode          imageio.EncodeOptions
	Range           recolor.HueRange
	Workers         int
	MaskCleanup     int
	Force           bool
	DryRun          bool
	AnyCaseExt      bool
	MaskedRangeOnly bool
}

// Summary aggregates the results of a run.
type Summary struct {
	Results   []Result
	Files     int
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
	Elapsed   time.Duration
}

// Failures returns the failed results.
func (s Summary) Failures() []Result {
	var failed []Result
	for _, r := range s.Results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

// Runner executes a batch. It is also the Processor its pool runs.
type Runner struct {
	cfg  Config
	opts []recolor.Option
}

// New validates cfg and prepares a runner.
func New(cfg Config) (*Runner, error) {
	if cfg.SourceDir == "" {
		return nil, fmt.Errorf("source directory is required")
	}
	if err := cfg.Colors.Validate(); err != nil {
		return nil, fmt.Errorf("invalid color table: %w", err)
	}
	if err := cfg.Range.Validate(); err != nil {
		return nil, fmt.Errorf("invalid hue range: %w", err)
	}
	if cfg.MaskCleanup < 0 {
		return nil, fmt.Errorf("mask cleanup must not be negative")
	}

	return &Runner{
		cfg: cfg,
		opts: []recolor.Option{
			recolor.WithMaskCleanup(cfg.MaskCleanup),
			recolor.WithMaskedRangeOnly(cfg.MaskedRangeOnly),
		},
	}, nil
}

// OutputPath returns where the recolored copy of file for color is written.
func OutputPath(sourceDir, color, file string) string {
	return filepath.Join(sourceDir, ModifiedDirName, color, file)
}

// Run lists the images, then processes every (color, file) pair in table
// order and listing order. A directory without images yields a
// *NoInputError and an empty Summary.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	src := r.cfg.SourceDir

	if !r.cfg.DryRun {
		if err := imageio.EnsureDir(filepath.Join(src, ModifiedDirName)); err != nil {
			return Summary{}, &WriteError{Path: filepath.Join(src, ModifiedDirName), Err: err}
		}
	}

	files, err := imageio.ListImages(src, r.cfg.AnyCaseExt)
	if err != nil {
		return Summary{}, err
	}
	if len(files) == 0 {
		r.log().Info("No images found", "dir", src)
		return Summary{}, &NoInputError{Dir: src}
	}

	r.log().Info("Starting batch",
		"dir", src,
		"images", len(files),
		"colors", len(r.cfg.Colors),
		"range", r.cfg.Range.String(),
		"workers", r.cfg.Workers,
		"dry_run", r.cfg.DryRun,
	)

	tasks := make([]Task, 0, len(files)*len(r.cfg.Colors))
	for _, color := range r.cfg.Colors {
		if !r.cfg.DryRun {
			// A failure here resurfaces as a WriteError on each of the color's tasks.
			if err := imageio.EnsureDir(filepath.Join(src, ModifiedDirName, color.Name)); err != nil {
				r.log().Error("Failed to create color directory", "color", color.Name, "error", err)
			}
		}

		for i, file := range files {
			tasks = append(tasks, Task{
				Color:  color,
				File:   file,
				Source: filepath.Join(src, file),
				Output: OutputPath(src, color.Name, file),
				Index:  i + 1,
				Total:  len(files),
			})
		}
	}

	progress := NewProgress(len(tasks), r.cfg.Output, r.cfg.DryRun)
	pool := NewPool(PoolConfig{
		Workers:   r.cfg.Workers,
		Processor: r,
		OnResult: func(res Result) {
			progress.Record(res)
			r.observe(res)
		},
	})

	results := pool.Run(ctx, tasks)

	completed, failed, skipped := progress.Counts()
	summary := Summary{
		Results:   results,
		Files:     len(files),
		Total:     len(tasks),
		Succeeded: completed - failed - skipped,
		Failed:    failed,
		Skipped:   skipped,
		Elapsed:   time.Since(start),
	}

	r.log().Info(progress.Summary())
	return summary, nil
}

// Process loads, recolors and writes a single task.
func (r *Runner) Process(ctx context.Context, task Task) (Outcome, error) {
	if !r.cfg.Force && !r.cfg.DryRun && imageio.Exists(task.Output) {
		return Outcome{Skipped: true}, nil
	}

	img, err := imageio.Load(task.Source)
	if err != nil {
		return Outcome{}, &DecodeError{Path: task.Source, Err: err}
	}

	if r.cfg.DryRun {
		sel := recolor.Mask(img, r.cfg.Range, r.opts...)
		return Outcome{Coverage: mask.Coverage(sel)}, nil
	}

	out, sel := recolor.Apply(img, task.Color, r.cfg.Range, r.opts...)

	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	if err := imageio.Save(task.Output, out, r.cfg.Encode); err != nil {
		return Outcome{}, classifySave(task.Output, err)
	}

	return Outcome{Coverage: mask.Coverage(sel)}, nil
}

func (r *Runner) observe(res Result) {
	if res.Err != nil {
		r.log().Debug("Task failed",
			"file", res.Task.File,
			"color", res.Task.Color.Name,
			"kind", Kind(res.Err),
			"error", res.Err,
		)
	} else {
		r.log().Debug("Task done",
			"file", res.Task.File,
			"color", res.Task.Color.Name,
			"coverage", res.Coverage,
			"skipped", res.Skipped,
			"elapsed", res.Elapsed,
		)
	}

	if r.cfg.Recorder != nil {
		if err := r.cfg.Recorder.Record(res); err != nil {
			r.log().Warn("Failed to record result", "file", res.Task.File, "color", res.Task.Color.Name, "error", err)
		}
	}
}

func (r *Runner) log() *slog.Logger {
	if r.cfg.Logger != nil {
		return r.cfg.Logger
	}
	return slog.Default()
}
