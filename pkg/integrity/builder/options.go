// Package builder walks a directory tree and produces a snapshot
// database: one Metrics record per regular file, inserted under its
// root-relative path. Hashing runs either sequentially or on a
// fixed-size worker pool; the sorted tree model makes the resulting
// database identical for any worker count and scheduling.
package builder

import (
	"github.com/jamesainslie/integrity/pkg/integrity/cache"
	"github.com/jamesainslie/integrity/pkg/integrity/metrics"
)

// DefaultWorkers is the default worker count: a single sequential pass.
const DefaultWorkers = 1

// Options configures a build.
type Options struct {
	// Root is the directory (or single file) to snapshot.
	Root string

	// Features selects which digests are computed per file.
	Features metrics.Features

	// Workers is the size of the hashing worker pool. Values <= 1 run
	// a single sequential pass with no locking.
	Workers int

	// Exclude contains glob patterns for paths to skip. Patterns are
	// matched against the full path, the basename, and as directory
	// prefixes. Ignore-file conventions themselves are the walker's
	// concern, not the builder's.
	Exclude []string

	// Cache is an optional metrics cache for speeding up repeat builds.
	// If nil, every file is hashed fresh.
	Cache *cache.Cache

	// Verbose enables the post-build throughput report.
	Verbose bool
}

// DefaultOptions returns options with the default digest selection and
// a single worker.
func DefaultOptions() Options {
	return Options{
		Root:     ".",
		Features: metrics.DefaultFeatures(),
		Workers:  DefaultWorkers,
	}
}

// Validate normalizes invalid values in place.
func (o *Options) Validate() error {
	if o.Root == "" {
		o.Root = "."
	}
	if o.Workers < 1 {
		o.Workers = DefaultWorkers
	}
	return nil
}
