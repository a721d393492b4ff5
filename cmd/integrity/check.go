package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/integrity/pkg/integrity/builder"
	"github.com/jamesainslie/integrity/pkg/integrity/codec"
	"github.com/jamesainslie/integrity/pkg/integrity/diff"
	"github.com/jamesainslie/integrity/pkg/integrity/journal"
	"github.com/jamesainslie/integrity/pkg/integrity/metrics"
	"github.com/jamesainslie/integrity/pkg/integrity/report"
	"github.com/jamesainslie/integrity/pkg/integrity/snapshot"
)

var checkCmd = &cobra.Command{
	Use:   "check <database> <path>",
	Short: "Compare a database against the current state of a file tree",
	Long: `Check re-walks the tree rooted at <path> with the digest set the
database was built with, compares the fresh snapshot against the stored
one, and classifies the drift.

Exit status reports the verdict: 0 no changes, 1 changes, 2 suspicious
changes.

Examples:
  integrity check baseline.db /etc
  integrity check -j 8 baseline.db /usr/local`,
	Args: cobra.ExactArgs(2),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	dbPath, root := args[0], args[1]

	stored, err := codec.LoadFile(dbPath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", dbPath, err)
	}

	opts, closeCache := buildOptions(cmd, root)
	defer closeCache()

	// Rebuild with the stored digest set unless flags override it, so
	// both sides carry comparable metrics.
	if !anyFeatureFlag(cmd) {
		opts.Features = storedFeatures(stored)
	}

	ctx, stop := signalContext()
	defer stop()

	fresh, err := builder.Build(ctx, opts)
	if err != nil {
		if builder.IsCanceled(err) {
			return fmt.Errorf("check interrupted")
		}
		return err
	}

	d := diff.Compute(stored, fresh)
	if !getQuiet() {
		report.Render(os.Stdout, d)
	}
	s := d.Summarize()
	report.RenderSummary(os.Stdout, s)
	exitStatus = s.ExitCode()

	files, bytes := fresh.Totals()
	recordJournal(journal.OpCheck, journal.Record{
		Database: dbPath,
		Target:   root,
		Summary:  s.String(),
		Files:    files,
		Bytes:    bytes,
	})
	return nil
}

// anyFeatureFlag reports whether the user picked digests explicitly.
func anyFeatureFlag(cmd *cobra.Command) bool {
	flags := cmd.Flags()
	return flags.Changed("sha2") || flags.Changed("no-sha2") ||
		flags.Changed("blake2") || flags.Changed("no-blake2")
}

// storedFeatures infers the digest set a database was built with from
// its first file entry. Every entry of one build shares the same set.
func storedFeatures(db *snapshot.Database) metrics.Features {
	if f, ok := fileFeatures(db.Root()); ok {
		return f
	}
	return metrics.DefaultFeatures()
}

func fileFeatures(e *snapshot.Entry) (metrics.Features, bool) {
	if !e.IsDir() {
		return e.Metrics().Features(), true
	}
	for _, name := range e.Names() {
		child, _ := e.Child(name)
		if f, ok := fileFeatures(child); ok {
			return f, true
		}
	}
	return metrics.Features{}, false
}
