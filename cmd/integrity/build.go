package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jamesainslie/integrity/pkg/integrity/builder"
	"github.com/jamesainslie/integrity/pkg/integrity/codec"
	"github.com/jamesainslie/integrity/pkg/integrity/journal"
)

var buildCmd = &cobra.Command{
	Use:   "build <database> <path>",
	Short: "Snapshot a file tree into a database",
	Long: `Build walks the tree rooted at <path>, computes the enabled digests
plus size and byte-class flags for every regular file, and writes the
resulting snapshot to <database>.

An existing database file is never overwritten unless --force is given.

Examples:
  integrity build baseline.db /etc
  integrity build -j 8 --blake2 baseline.db /usr/local
  integrity build -e '*.log' -e .git baseline.db ~/project`,
	Args: cobra.ExactArgs(2),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().BoolP("force", "f", false, "overwrite an existing database file")
}

func runBuild(cmd *cobra.Command, args []string) error {
	dbPath, root := args[0], args[1]

	opts, closeCache := buildOptions(cmd, root)
	defer closeCache()

	ctx, stop := signalContext()
	defer stop()

	db, err := builder.Build(ctx, opts)
	if err != nil {
		if builder.IsCanceled(err) {
			return fmt.Errorf("build interrupted")
		}
		return err
	}

	openFlags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force, _ := cmd.Flags().GetBool("force"); force {
		openFlags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(dbPath, openFlags, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%s already exists (use --force to overwrite)", dbPath)
		}
		return fmt.Errorf("creating database file: %w", err)
	}

	if err := codec.Dump(f, db, opts.Features); err != nil {
		_ = f.Close()
		_ = os.Remove(dbPath)
		return fmt.Errorf("writing database: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing database file: %w", err)
	}

	files, bytes := db.Totals()
	printInfo("wrote %s: %d files, %s", dbPath, files, humanize.IBytes(bytes))

	recordJournal(journal.OpBuild, journal.Record{
		Database: dbPath,
		Target:   root,
		Summary:  "built",
		Files:    files,
		Bytes:    bytes,
	})
	return nil
}
