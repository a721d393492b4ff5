// Package cache provides a badger-backed store of previously computed
// file metrics, keyed by scan root and relative path. A cached result is
// reused only when the file's size and modification time are unchanged
// and the cached digests cover the digests the current build requests.
// The cache is purely an acceleration: a build produces a byte-identical
// database with or without it.
package cache

import (
	"bytes"
	"encoding/gob"
	"strconv"

	"github.com/jamesainslie/integrity/pkg/integrity/metrics"
)

// Version is incremented when the cache format changes. It is folded
// into the key prefix so stale formats simply miss.
const Version = 1

// KeySeparator separates root from relative path in cache keys.
const KeySeparator = '\x00'

// Entry is one cached file result: the stat fields it was validated
// against and the metrics computed at that time.
type Entry struct {
	// Size is the file size in bytes at computation time.
	Size int64

	// Mtime is the file modification time as UnixNano.
	Mtime int64

	// Metrics is the computed result, carrying whichever digests were
	// enabled when it was produced.
	Metrics metrics.Metrics
}

// Fresh reports whether the entry is still valid for a file with the
// given stat fields and carries every digest the features require.
func (e *Entry) Fresh(size, mtime int64, features metrics.Features) bool {
	return e.Size == size && e.Mtime == mtime && e.Metrics.Features().Covers(features)
}

// Encode serializes the entry to bytes using gob.
func (e *Entry) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode deserializes bytes into the entry using gob.
func (e *Entry) Decode(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(e)
}

// versionPrefix returns the format-version prefix shared by all keys.
func versionPrefix() string {
	return "v" + strconv.Itoa(Version) + string(KeySeparator)
}

// MakeKey creates a cache key from root and relative path.
func MakeKey(root, relPath string) []byte {
	return []byte(versionPrefix() + root + string(KeySeparator) + relPath)
}

// MakeKeyPrefix returns the prefix for all keys under a root.
func MakeKeyPrefix(root string) []byte {
	return []byte(versionPrefix() + root + string(KeySeparator))
}

// ParseKey extracts root and relative path from a cache key.
func ParseKey(key []byte) (root, relPath string) {
	rest := bytes.TrimPrefix(key, []byte(versionPrefix()))
	idx := bytes.IndexByte(rest, KeySeparator)
	if idx == -1 {
		return string(rest), ""
	}
	return string(rest[:idx]), string(rest[idx+1:])
}
