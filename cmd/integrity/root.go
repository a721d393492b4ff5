package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/integrity/pkg/integrity/cache"
	"github.com/jamesainslie/integrity/pkg/integrity/config"
	"github.com/jamesainslie/integrity/pkg/integrity/journal"
	"github.com/jamesainslie/integrity/pkg/integrity/logging"
)

// exitError is the process status for any failed operation, mirroring
// the documented "nonzero error code". Drift classifications use 0-2.
const exitError = 255

var (
	cfgFile string

	// exitStatus carries the drift classification of check/diff to the
	// process exit: 0 no changes, 1 changes, 2 suspicious.
	exitStatus int

	rootCmd = &cobra.Command{
		Use:   "integrity",
		Short: "Detect unauthorized modification of a file tree",
		Long: `Integrity builds content-addressed snapshots of directory trees and
compares them to detect drift.

A snapshot database records a digest, size, and byte-class flags for
every regular file, persisted in a tamper-evident compressed envelope.
Comparing two snapshots classifies the drift as no changes, ordinary
changes, or suspicious changes (truncation to empty, new NUL bytes,
new non-ASCII bytes).

Examples:
  integrity build baseline.db /etc          # Snapshot a directory
  integrity check baseline.db /etc          # Compare it against disk
  integrity diff old.db new.db              # Compare two snapshots
  integrity selfcheck baseline.db           # Verify a database file
  integrity history                         # View recorded operations

Return code:
  0    Success / no changes
  1    Changes
  2    Suspicious changes
  255  Error`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setupLogging,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/integrity/config.yaml)")
	rootCmd.PersistentFlags().IntP("threads", "j", 0, "number of hashing workers (0=config default)")
	rootCmd.PersistentFlags().Bool("sha2", false, "enable the SHA2-512/256 digest")
	rootCmd.PersistentFlags().Bool("no-sha2", false, "disable the SHA2-512/256 digest")
	rootCmd.PersistentFlags().Bool("blake2", false, "enable the BLAKE2b digest")
	rootCmd.PersistentFlags().Bool("no-blake2", false, "disable the BLAKE2b digest")
	rootCmd.PersistentFlags().StringSliceP("exclude", "e", nil, "exclude patterns (can be specified multiple times)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().Bool("no-cache", false, "bypass the metrics cache, hash every file")

	_ = viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("threads"))
	_ = viper.BindPFlag("exclude", rootCmd.PersistentFlags().Lookup("exclude"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("no_cache", rootCmd.PersistentFlags().Lookup("no-cache"))
}

// initConfig reads in the config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "integrity"))
		}
		homeDir, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "integrity"))
		}
	}

	viper.SetEnvPrefix("INTEGRITY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("features.sha2", config.DefaultSHA2)
	viper.SetDefault("features.blake2b", config.DefaultBlake2b)
	viper.SetDefault("workers", config.DefaultWorkers)
	viper.SetDefault("exclude", config.DefaultExclusions)
	viper.SetDefault("cache.enabled", false)
	viper.SetDefault("cache.path", cache.DefaultPath())
	viper.SetDefault("journal.enabled", true)
	viper.SetDefault("journal.path", journal.DefaultPath())
	viper.SetDefault("journal.retention_days", config.DefaultRetentionDays)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.path", "")
	viper.SetDefault("logging.console_level", "")

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()
}

// setupLogging initializes the logging system from config and flags.
// Verbose mode mirrors everything to stderr at debug level.
func setupLogging(cmd *cobra.Command, args []string) error {
	consoleLevel := viper.GetString("logging.console_level")
	if getVerbose() {
		consoleLevel = "debug"
	}
	return logging.Init(logging.Config{
		Level:        viper.GetString("logging.level"),
		Path:         viper.GetString("logging.path"),
		ConsoleLevel: consoleLevel,
	})
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		return exitError
	}
	return exitStatus
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printInfo prints a message unless quiet mode is enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
