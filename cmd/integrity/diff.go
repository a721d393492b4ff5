package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/integrity/pkg/integrity/codec"
	"github.com/jamesainslie/integrity/pkg/integrity/diff"
	"github.com/jamesainslie/integrity/pkg/integrity/journal"
	"github.com/jamesainslie/integrity/pkg/integrity/report"
)

var diffCmd = &cobra.Command{
	Use:   "diff <old-database> <new-database>",
	Short: "Compare two snapshot databases",
	Long: `Diff loads two databases and classifies the drift from the old
snapshot to the new one. Directionality matters: a file truncated to
zero bytes between old and new is suspicious, the reverse is an
ordinary change.

Databases built with disjoint digest sets are still comparable through
sizes and byte-class flags.

Exit status reports the verdict: 0 no changes, 1 changes, 2 suspicious
changes.`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	oldPath, newPath := args[0], args[1]

	before, err := codec.LoadFile(oldPath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", oldPath, err)
	}
	after, err := codec.LoadFile(newPath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", newPath, err)
	}

	d := diff.Compute(before, after)
	if !getQuiet() {
		report.Render(os.Stdout, d)
	}
	s := d.Summarize()
	report.RenderSummary(os.Stdout, s)
	exitStatus = s.ExitCode()

	files, bytes := after.Totals()
	recordJournal(journal.OpDiff, journal.Record{
		Database: oldPath,
		Target:   newPath,
		Summary:  s.String(),
		Files:    files,
		Bytes:    bytes,
	})
	return nil
}
