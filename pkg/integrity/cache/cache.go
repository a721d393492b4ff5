package cache

import (
	"errors"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/jamesainslie/integrity/pkg/integrity/metrics"
)

// Cache provides high-level metrics caching for the builder.
type Cache struct {
	store *Store
}

// Open opens or creates a cache at the given path.
func Open(path string) (*Cache, error) {
	store, err := OpenStore(path)
	if err != nil {
		return nil, err
	}
	return &Cache{store: store}, nil
}

// Close closes the cache.
func (c *Cache) Close() error {
	return c.store.Close()
}

// Lookup returns the cached metrics for a file if the cached entry is
// still fresh for the given stat fields and covers the requested
// features. The returned metrics are restricted to exactly the
// requested digests, so a cache built with a wider feature set serves
// narrower builds without leaking extra fields into the snapshot.
func (c *Cache) Lookup(root, relPath string, size, mtime int64, features metrics.Features) (metrics.Metrics, bool) {
	entry, err := c.store.Get(root, relPath)
	if err != nil {
		// Lookup misses are indistinguishable from store errors here:
		// either way the builder recomputes.
		return metrics.Metrics{}, false
	}
	if !entry.Fresh(size, mtime, features) {
		return metrics.Metrics{}, false
	}
	return entry.Metrics.Restrict(features), true
}

// Update writes a batch of freshly computed entries for a root.
func (c *Cache) Update(root string, entries map[string]*Entry) error {
	return c.store.PutBatch(root, entries)
}

// Clear removes all cached entries for a root.
func (c *Cache) Clear(root string) error {
	return c.store.DeletePrefix(root)
}

// IsNotFound reports whether err is the store's miss sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// DefaultPath returns the default cache directory,
// $XDG_CACHE_HOME/integrity/cache.
func DefaultPath() string {
	return filepath.Join(xdg.CacheHome, "integrity", "cache")
}
