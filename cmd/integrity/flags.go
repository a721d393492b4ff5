package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/integrity/pkg/integrity/builder"
	"github.com/jamesainslie/integrity/pkg/integrity/cache"
	"github.com/jamesainslie/integrity/pkg/integrity/journal"
	"github.com/jamesainslie/integrity/pkg/integrity/logging"
	"github.com/jamesainslie/integrity/pkg/integrity/metrics"
)

// resolveFeatures combines the configured digest set with the
// enable/disable flag pairs. The no- form wins when both are given. An
// empty set is permitted: size and byte-class flags are always
// recorded, so a digest-free database is still usable, just weaker.
func resolveFeatures(cmd *cobra.Command) metrics.Features {
	f := metrics.Features{
		SHA2:    viper.GetBool("features.sha2"),
		Blake2b: viper.GetBool("features.blake2b"),
	}
	flags := cmd.Flags()
	if flags.Changed("sha2") {
		f.SHA2 = true
	}
	if flags.Changed("no-sha2") {
		f.SHA2 = false
	}
	if flags.Changed("blake2") {
		f.Blake2b = true
	}
	if flags.Changed("no-blake2") {
		f.Blake2b = false
	}
	return f
}

// buildOptions assembles builder options for the given root from config
// and flags. The returned closer releases the cache, if one was opened;
// a cache that fails to open degrades to a cache-less build.
func buildOptions(cmd *cobra.Command, root string) (builder.Options, func()) {
	opts := builder.DefaultOptions()
	opts.Root = root
	opts.Features = resolveFeatures(cmd)
	opts.Exclude = viper.GetStringSlice("exclude")
	opts.Verbose = getVerbose()
	if w := viper.GetInt("workers"); w > 0 {
		opts.Workers = w
	}

	closer := func() {}
	if viper.GetBool("cache.enabled") && !viper.GetBool("no_cache") {
		c, err := cache.Open(viper.GetString("cache.path"))
		if err != nil {
			logging.Get("cli").Warn("opening metrics cache", "error", err)
		} else {
			opts.Cache = c
			closer = func() { _ = c.Close() }
		}
	}
	return opts, closer
}

// recordJournal persists an operation record. Journal failures are
// logged, never propagated: auditing must not break the operation it
// audits.
func recordJournal(op journal.Operation, rec journal.Record) {
	if !viper.GetBool("journal.enabled") {
		return
	}
	j, err := journal.New(viper.GetString("journal.path"))
	if err == nil {
		_, err = j.Record(op, rec)
	}
	if err != nil {
		logging.Get("cli").Warn("recording journal entry", "operation", op, "error", err)
	}
}

// signalContext returns a context canceled on SIGINT or SIGTERM, so a
// long parallel build can stop cleanly mid-walk.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
