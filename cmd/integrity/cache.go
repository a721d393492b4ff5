package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/integrity/pkg/integrity/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the metrics cache",
	Long: `Commands for managing the metrics cache.

The cache stores per-file digests keyed by size and modification time
to speed up repeat builds of the same tree. Cache data is stored in the
XDG cache directory (typically ~/.cache/integrity/cache).`,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [root]",
	Short: "Clear cached metrics",
	Long: `Removes cached metrics. With a root argument, only entries recorded
for that tree are removed; without one, the whole cache is deleted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCacheClear,
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show cache location",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(cachePath())
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cachePath()

		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			fmt.Println("Cache: empty")
			fmt.Printf("Cache location: %s\n", path)
			return nil
		}
		if err != nil {
			return fmt.Errorf("stat cache: %w", err)
		}

		var size int64
		var fileCount int
		err = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
			if err == nil && !info.IsDir() {
				size += info.Size()
				fileCount++
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("calculating cache size: %w", err)
		}

		fmt.Printf("Cache location: %s\n", path)
		fmt.Printf("Cache size: %.2f MB\n", float64(size)/1024/1024)
		fmt.Printf("Cache files: %d\n", fileCount)
		fmt.Printf("Last modified: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePathCmd)
	rootCmd.AddCommand(cacheCmd)
}

func cachePath() string {
	if p := viper.GetString("cache.path"); p != "" {
		return p
	}
	return cache.DefaultPath()
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	path := cachePath()

	if len(args) == 0 {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			fmt.Println("Cache is already empty.")
			return nil
		}
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
		fmt.Println("Cache cleared.")
		return nil
	}

	root, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving root: %w", err)
	}
	c, err := cache.Open(path)
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer c.Close()

	if err := c.Clear(root); err != nil {
		return fmt.Errorf("clearing cache entries for %s: %w", root, err)
	}
	fmt.Printf("Cache entries for %s cleared.\n", root)
	return nil
}
