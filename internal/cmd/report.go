package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/filamentrecolor/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report <path.db>",
	Short: "Print a stored run report",
	Long: `Print a run recorded with "run --report". By default the latest run is
shown; use --run to pick another one or --list to list all runs.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().Int64("run", 0, "Run id to print (default: latest)")
	reportCmd.Flags().Bool("list", false, "List all runs instead of printing one")
	reportCmd.Flags().Bool("failures", false, "Only print failed results")
}

func runReport(cmd *cobra.Command, args []string) error {
	runID, _ := cmd.Flags().GetInt64("run")
	list, _ := cmd.Flags().GetBool("list")
	failuresOnly, _ := cmd.Flags().GetBool("failures")

	r, err := report.OpenReader(args[0])
	if err != nil {
		return err
	}
	defer r.Close()

	out := cmd.OutOrStdout()

	if list {
		runs, err := r.Runs()
		if err != nil {
			return err
		}
		return printRuns(out, runs)
	}

	run, err := selectRun(r, runID)
	if err != nil {
		return err
	}
	entries, err := r.Results(run.ID)
	if err != nil {
		return err
	}

	return printRun(out, run, entries, failuresOnly)
}

func selectRun(r *report.Reader, id int64) (report.Run, error) {
	if id == 0 {
		return r.LatestRun()
	}

	runs, err := r.Runs()
	if err != nil {
		return report.Run{}, err
	}
	for _, run := range runs {
		if run.ID == id {
			return run, nil
		}
	}
	return report.Run{}, fmt.Errorf("run %d not found", id)
}

func printRuns(w io.Writer, runs []report.Run) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tSOURCE\tTOTAL\tOK\tFAILED\tSKIPPED")
	for _, run := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%d\n",
			run.ID, run.StartedAt.Local().Format(time.DateTime), run.SourceDir,
			run.Total, run.Succeeded, run.Failed, run.Skipped)
	}
	return tw.Flush()
}

func printRun(w io.Writer, run report.Run, entries []report.Entry, failuresOnly bool) error {
	fmt.Fprintf(w, "Run %d: %s\n", run.ID, run.SourceDir)
	fmt.Fprintf(w, "Started:  %s\n", run.StartedAt.Local().Format(time.DateTime))
	if !run.FinishedAt.IsZero() {
		fmt.Fprintf(w, "Finished: %s (%s)\n", run.FinishedAt.Local().Format(time.DateTime),
			run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	}
	fmt.Fprintf(w, "Range:    %s\n", run.HueRange)
	fmt.Fprintf(w, "Colors:   %s\n", run.Colors)
	if run.DryRun {
		fmt.Fprintln(w, "Mode:     dry run")
	}
	fmt.Fprintf(w, "Totals:   %d ok, %d failed, %d skipped of %d\n\n",
		run.Succeeded, run.Failed, run.Skipped, run.Total)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COLOR\tFILE\tSTATUS\tCOVERAGE\tELAPSED\tERROR")
	for _, e := range entries {
		if failuresOnly && e.Status != report.StatusFailed {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f%%\t%s\t%s\n",
			e.Color, e.File, e.Status, e.Coverage*100, e.Elapsed, e.Error)
	}
	return tw.Flush()
}
