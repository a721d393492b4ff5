package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/integrity/pkg/integrity/config"
	"github.com/jamesainslie/integrity/pkg/integrity/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View operation history",
	Long: `View the history of build, check, diff, and selfcheck operations.

The journal keeps one record per operation, including which database
was involved and what each comparison concluded.`,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show details of a specific operation",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean up old history entries",
	Long:  `Remove history entries older than the retention period.`,
	RunE:  runHistoryClean,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// getJournal returns a journal rooted at the configured directory.
func getJournal() (*journal.Journal, error) {
	dir := viper.GetString("journal.path")
	if dir == "" {
		dir = journal.DefaultPath()
	}
	return journal.New(dir)
}

// runHistory lists recent operations.
func runHistory(cmd *cobra.Command, args []string) error {
	j, err := getJournal()
	if err != nil {
		return fmt.Errorf("initializing journal: %w", err)
	}

	entries, err := j.List(historyLimit)
	if err != nil {
		return fmt.Errorf("listing history: %w", err)
	}

	if len(entries) == 0 {
		printInfo("No history entries found.")
		printInfo("Run 'integrity build <database> <path>' to snapshot a tree.")
		return nil
	}

	fmt.Printf("\n%-36s  %-9s  %-20s  %-8s  %-10s\n", "ID", "OP", "RESULT", "FILES", "SIZE")
	fmt.Println(strings.Repeat("-", 92))

	for _, entry := range entries {
		fmt.Printf("%-36s  %-9s  %-20s  %-8d  %-10s\n",
			entry.ID,
			entry.Operation,
			truncateString(entry.Record.Summary, 20),
			entry.Record.Files,
			humanize.IBytes(entry.Record.Bytes),
		)
	}

	fmt.Println(strings.Repeat("-", 92))
	fmt.Printf("\nShowing %d entries. Use --limit to see more.\n", len(entries))
	fmt.Println("Use 'integrity history show <id>' for details on a specific entry.")

	return nil
}

// runHistoryShow displays details of a specific operation.
func runHistoryShow(cmd *cobra.Command, args []string) error {
	id := args[0]

	j, err := getJournal()
	if err != nil {
		return fmt.Errorf("initializing journal: %w", err)
	}

	entries, err := j.List(0)
	if err != nil {
		return fmt.Errorf("listing history: %w", err)
	}

	for _, entry := range entries {
		if entry.ID != id {
			continue
		}
		fmt.Println("\nOperation Details")
		fmt.Println(strings.Repeat("=", 60))
		fmt.Printf("ID:         %s\n", entry.ID)
		fmt.Printf("Timestamp:  %s\n", entry.Timestamp.Format("2006-01-02 15:04:05 MST"))
		fmt.Printf("Operation:  %s\n", entry.Operation)
		fmt.Printf("Database:   %s\n", entry.Record.Database)
		if entry.Record.Target != "" {
			fmt.Printf("Target:     %s\n", entry.Record.Target)
		}
		fmt.Printf("Result:     %s\n", entry.Record.Summary)
		fmt.Printf("Files:      %d\n", entry.Record.Files)
		fmt.Printf("Total Size: %s\n", humanize.IBytes(entry.Record.Bytes))
		return nil
	}
	return fmt.Errorf("no history entry with id %s", id)
}

// runHistoryClean removes old history entries.
func runHistoryClean(cmd *cobra.Command, args []string) error {
	j, err := getJournal()
	if err != nil {
		return fmt.Errorf("initializing journal: %w", err)
	}

	retentionDays := viper.GetInt("journal.retention_days")
	if retentionDays <= 0 {
		retentionDays = config.DefaultRetentionDays
	}

	printInfo("Cleaning history entries older than %d days...", retentionDays)

	removed, err := j.Clean(retentionDays)
	if err != nil {
		return fmt.Errorf("cleaning history: %w", err)
	}

	printInfo("History cleanup complete: %d entries removed.", removed)
	return nil
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
