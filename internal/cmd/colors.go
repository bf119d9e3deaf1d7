package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/filamentrecolor/internal/recolor"
)

var colorsCmd = &cobra.Command{
	Use:   "colors",
	Short: "Print the effective color table",
	Long: `Print the color table a run would use, in processing order, with the
category that decides how brightness is derived for each color.

The table comes from run.colors in the config file, or the built-in
default when none is configured.`,
	Args: cobra.NoArgs,
	RunE: runColors,
}

func init() {
	rootCmd.AddCommand(colorsCmd)
}

func runColors(cmd *cobra.Command, args []string) error {
	entries, err := configColorEntries()
	if err != nil {
		return err
	}
	table, err := resolveColors(nil, entries)
	if err != nil {
		return fmt.Errorf("invalid color table: %w", err)
	}

	return printColorTable(cmd.OutOrStdout(), table)
}

func printColorTable(w io.Writer, table recolor.ColorTable) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tHUE\tSAT\tVAL\tCATEGORY")
	for _, c := range table {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", c.Name, c.Hue, c.Saturation, c.Value, c.Category)
	}
	return tw.Flush()
}
