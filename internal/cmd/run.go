package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/filamentrecolor/internal/batch"
	"github.com/MeKo-Tech/filamentrecolor/internal/imageio"
	"github.com/MeKo-Tech/filamentrecolor/internal/report"
)

var runCmd = &cobra.Command{
	Use:   "run [dir]",
	Short: "Recolor every image in a directory",
	Long: `Recolor every .jpg and .png image in a directory once per target color.

Outputs are written to <dir>/modified/<color>/<file>. A file that fails to
decode or write is reported and skipped; the rest of the batch continues.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Input and selection
	runCmd.Flags().StringP("source", "s", ".", "Directory containing the source images")
	runCmd.Flags().String("lower", "", "Lower HSV bound h,s,v (default 15,50,50)")
	runCmd.Flags().String("upper", "", "Upper HSV bound h,s,v (default 50,255,255)")
	runCmd.Flags().StringArrayP("color", "c", nil, "Target color name=h,s,v (repeatable, replaces the color table)")
	runCmd.Flags().Bool("any-case", false, "Match .jpg/.png extensions case-insensitively")

	// Processing
	runCmd.Flags().IntP("workers", "w", 1, "Number of parallel workers (1 keeps output ordered)")
	runCmd.Flags().Int("mask-cleanup", 0, "Kernel size of the morphological opening applied to the mask (0 disables)")
	runCmd.Flags().Bool("masked-range-only", false, "Stretch brightness using only the masked pixels' range")
	runCmd.Flags().Bool("force", true, "Overwrite existing outputs (--force=false skips them)")
	runCmd.Flags().Bool("dry-run", false, "Compute masks and report coverage without writing files")

	// Output
	runCmd.Flags().Int("jpeg-quality", imageio.DefaultJPEGQuality, "JPEG quality (1-100)")
	runCmd.Flags().String("png-compression", "default", "PNG compression (default, speed, best, none)")
	runCmd.Flags().String("report", "", "Append a run report to this SQLite database")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"run.source", "source"},
		{"run.lower", "lower"},
		{"run.upper", "upper"},
		{"run.any_case", "any-case"},
		{"run.workers", "workers"},
		{"run.mask_cleanup", "mask-cleanup"},
		{"run.masked_range_only", "masked-range-only"},
		{"run.force", "force"},
		{"run.dry_run", "dry-run"},
		{"run.jpeg_quality", "jpeg-quality"},
		{"run.png_compression", "png-compression"},
		{"run.report", "report"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, runCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	source := viper.GetString("run.source")
	if len(args) == 1 {
		source = args[0]
	}
	workers := viper.GetInt("run.workers")
	maskCleanup := viper.GetInt("run.mask_cleanup")
	maskedRangeOnly := viper.GetBool("run.masked_range_only")
	force := viper.GetBool("run.force")
	dryRun := viper.GetBool("run.dry_run")
	anyCase := viper.GetBool("run.any_case")
	jpegQuality := viper.GetInt("run.jpeg_quality")
	pngCompression := viper.GetString("run.png_compression")
	reportPath := viper.GetString("run.report")

	if logger == nil {
		initLogging()
	}

	rng, err := resolveHueRange(viper.GetString("run.lower"), viper.GetString("run.upper"))
	if err != nil {
		return err
	}

	flagColors, err := cmd.Flags().GetStringArray("color")
	if err != nil {
		return err
	}
	entries, err := configColorEntries()
	if err != nil {
		return err
	}
	colors, err := resolveColors(flagColors, entries)
	if err != nil {
		return fmt.Errorf("invalid color table: %w", err)
	}

	if jpegQuality < 1 || jpegQuality > 100 {
		return fmt.Errorf("invalid jpeg-quality %d: must be within 1-100", jpegQuality)
	}
	pngLevel, err := imageio.ParsePNGCompression(pngCompression)
	if err != nil {
		return err
	}
	if workers <= 0 {
		workers = 1
	}

	cfg := batch.Config{
		Output:    cmd.OutOrStdout(),
		Logger:    logger,
		SourceDir: source,
		Colors:    colors,
		Encode: imageio.EncodeOptions{
			JPEGQuality:    jpegQuality,
			PNGCompression: pngLevel,
		},
		Range:           rng,
		Workers:         workers,
		MaskCleanup:     maskCleanup,
		Force:           force,
		DryRun:          dryRun,
		AnyCaseExt:      anyCase,
		MaskedRangeOnly: maskedRangeOnly,
	}

	var reportWriter *report.Writer
	if reportPath != "" {
		reportWriter, err = report.New(reportPath, report.RunInfo{
			StartedAt: time.Now(),
			SourceDir: source,
			HueRange:  rng.String(),
			Colors:    strings.Join(colors.Names(), ","),
			Workers:   workers,
			DryRun:    dryRun,
		})
		if err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}
		defer func() {
			if err := reportWriter.Close(); err != nil {
				logger.Warn("Failed to close report", "path", reportPath, "error", err)
			}
		}()
		cfg.Recorder = reportWriter
		logger.Info("Recording run report", "path", reportPath, "run_id", reportWriter.RunID())
	}

	runner, err := batch.New(cfg)
	if err != nil {
		return err
	}

	// Setup context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Received interrupt signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	summary, err := runner.Run(ctx)
	if batch.IsNoInput(err) {
		fmt.Fprintf(cmd.OutOrStdout(), "No images found in %s\n", source)
		return nil
	}
	if err != nil {
		return err
	}

	if reportWriter != nil {
		if err := reportWriter.Finish(summary); err != nil {
			logger.Warn("Failed to finish report", "path", reportPath, "error", err)
		}
	}

	if summary.Failed > 0 {
		logger.Warn("Some images failed to process", "failed_count", summary.Failed, "total", summary.Total)
	}

	return nil
}
