package builder

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/dustin/go-humanize"

	"github.com/jamesainslie/integrity/pkg/integrity/cache"
	"github.com/jamesainslie/integrity/pkg/integrity/logging"
	"github.com/jamesainslie/integrity/pkg/integrity/metrics"
	"github.com/jamesainslie/integrity/pkg/integrity/snapshot"
)

// Builder performs one build. The in-progress database and the cache
// write-back map are the only contended state; each is guarded by its
// own mutex, held only for the brief insertion step and never across a
// file read or hash computation. Counters are atomics.
type Builder struct {
	opts Options
	root string

	db   *snapshot.Database
	dbMu sync.Mutex

	bytesHashed atomic.Uint64
	filesHashed atomic.Int64
	cacheHits   atomic.Int64

	pending   map[string]*cache.Entry
	pendingMu sync.Mutex

	log *logging.Logger
}

// Build walks opts.Root and returns the completed database. Any
// per-file or walk error aborts the build and is returned; in parallel
// mode the first error cancels in-flight work. There is no partial
// result and no retry.
func Build(ctx context.Context, opts Options) (*snapshot.Database, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}

	b := &Builder{
		opts: opts,
		root: root,
		db:   snapshot.New(),
		log:  logging.Get("builder"),
	}
	if opts.Cache != nil {
		b.pending = make(map[string]*cache.Entry)
	}

	start := time.Now()

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	switch {
	case info.Mode().IsRegular():
		// The root names a single file: its base name is the sole key.
		err = b.processFile(root, filepath.Base(root), info.Size(), info.ModTime().UnixNano())
	case info.IsDir():
		if opts.Workers > 1 {
			err = b.walkParallel(ctx)
		} else {
			err = b.walkSequential(ctx)
		}
	default:
		return nil, fmt.Errorf("root %s is neither a directory nor a regular file", root)
	}
	if err != nil {
		return nil, err
	}

	b.flushCache()

	if opts.Verbose {
		b.report(time.Since(start))
	}
	return b.db, nil
}

// walkSequential makes a single lock-free pass over the tree.
func (b *Builder) walkSequential(ctx context.Context) error {
	return filepath.WalkDir(b.root, func(path string, d fs.DirEntry, err error) error {
		return b.visit(ctx, path, d, err)
	})
}

// walkParallel fans the walk out over a fixed-size pool. Workers hash
// without holding any lock; insertion into the shared database is the
// only locked step. Hashing dominates cost, so contention stays low.
// The first error returned by any callback stops the walk and cancels
// the remaining work.
func (b *Builder) walkParallel(ctx context.Context) error {
	conf := fastwalk.Config{
		Follow:     false,
		NumWorkers: b.opts.Workers,
	}
	return fastwalk.Walk(&conf, b.root, func(path string, d fs.DirEntry, err error) error {
		return b.visit(ctx, path, d, err)
	})
}

// visit is the shared walk callback for both modes.
func (b *Builder) visit(ctx context.Context, path string, d fs.DirEntry, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		return fmt.Errorf("walking %s: %w", path, err)
	}

	if b.isExcluded(path) {
		if d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	}
	if !d.Type().IsRegular() {
		return nil
	}

	info, err := d.Info()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	rel, err := filepath.Rel(b.root, path)
	if err != nil {
		return fmt.Errorf("relativizing %s: %w", path, err)
	}
	key := filepath.ToSlash(rel)

	return b.processFile(path, key, info.Size(), info.ModTime().UnixNano())
}

// processFile computes (or recalls) the metrics for one file and
// inserts the result. The hash runs outside any lock; only the insert
// itself is serialized.
func (b *Builder) processFile(path, key string, size, mtime int64) error {
	m, hit := b.cachedMetrics(key, size, mtime)
	if !hit {
		var err error
		m, err = metrics.ComputeFile(path, b.opts.Features)
		if err != nil {
			return err
		}
		b.rememberMetrics(key, size, mtime, m)
	}

	b.bytesHashed.Add(m.Size)
	b.filesHashed.Add(1)

	b.dbMu.Lock()
	b.db.Insert(key, snapshot.NewFile(m))
	b.dbMu.Unlock()
	return nil
}

// cachedMetrics consults the cache, if one is attached.
func (b *Builder) cachedMetrics(key string, size, mtime int64) (metrics.Metrics, bool) {
	if b.opts.Cache == nil {
		return metrics.Metrics{}, false
	}
	m, ok := b.opts.Cache.Lookup(b.root, key, size, mtime, b.opts.Features)
	if ok {
		b.cacheHits.Add(1)
	}
	return m, ok
}

// rememberMetrics queues a freshly computed result for write-back.
func (b *Builder) rememberMetrics(key string, size, mtime int64, m metrics.Metrics) {
	if b.pending == nil {
		return
	}
	b.pendingMu.Lock()
	b.pending[key] = &cache.Entry{Size: size, Mtime: mtime, Metrics: m}
	b.pendingMu.Unlock()
}

// flushCache writes the collected entries back in one batch. A cache
// write failure never fails the build.
func (b *Builder) flushCache() {
	if b.opts.Cache == nil || len(b.pending) == 0 {
		return
	}
	if err := b.opts.Cache.Update(b.root, b.pending); err != nil {
		b.log.Warn("cache update failed", "root", b.root, "error", err)
	}
}

// report logs elapsed time, worker count, bytes, and throughput.
// Observational only; it is not part of the build contract.
func (b *Builder) report(elapsed time.Duration) {
	bytes := b.bytesHashed.Load()
	rate := float64(bytes) / elapsed.Seconds()
	b.log.Info("build complete",
		"elapsed", elapsed.Round(time.Millisecond),
		"workers", b.opts.Workers,
		"files", b.filesHashed.Load(),
		"bytes", humanize.IBytes(bytes),
		"throughput", humanize.IBytes(uint64(rate))+"/s",
		"cache_hits", b.cacheHits.Load(),
	)
}

// isExcluded checks if a path matches any exclusion pattern.
func (b *Builder) isExcluded(path string) bool {
	for _, pattern := range b.opts.Exclude {
		if matchesExclusionPattern(path, pattern) {
			return true
		}
	}
	return false
}

// matchesExclusionPattern checks one pattern against the full path, the
// basename, and as a directory prefix.
func matchesExclusionPattern(path, pattern string) bool {
	if pattern == "" {
		return false
	}
	if path == pattern {
		return true
	}
	if len(path) > len(pattern) && path[:len(pattern)+1] == pattern+string(filepath.Separator) {
		return true
	}
	if matched, err := filepath.Match(pattern, filepath.Base(path)); err == nil && matched {
		return true
	}
	if matched, err := filepath.Match(pattern, path); err == nil && matched {
		return true
	}
	return false
}

// IsCanceled reports whether a build error came from context
// cancellation rather than from the tree itself.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
