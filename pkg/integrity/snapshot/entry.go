// Package snapshot provides the ordered tree model for integrity
// databases. An Entry is either a directory of named children or the
// metrics of one regular file; a Database is a single root entry. The
// tree mirrors a filesystem, so recursion is bounded by directory depth
// and no cycles are possible.
package snapshot

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jamesainslie/integrity/pkg/integrity/metrics"
)

// Entry is a node in the snapshot tree: a directory with an ordered
// mapping from path component to child, or a file with its metrics.
// Exactly one of the two shapes holds for any entry.
type Entry struct {
	children map[string]*Entry
	metrics  *metrics.Metrics
}

// NewDirectory returns an empty directory entry.
func NewDirectory() *Entry {
	return &Entry{children: make(map[string]*Entry)}
}

// NewFile returns a file entry holding a copy of m.
func NewFile(m metrics.Metrics) *Entry {
	return &Entry{metrics: &m}
}

// IsDir reports whether the entry is a directory.
func (e *Entry) IsDir() bool {
	return e.children != nil
}

// Metrics returns the file metrics, or nil for a directory.
func (e *Entry) Metrics() *metrics.Metrics {
	return e.metrics
}

// Len returns the number of direct children of a directory, 0 for a file.
func (e *Entry) Len() int {
	return len(e.children)
}

// Names returns the child components of a directory in sorted order.
// The sorted enumeration is what makes diffing and serialization
// deterministic regardless of insertion order or worker scheduling.
func (e *Entry) Names() []string {
	names := make([]string, 0, len(e.children))
	for name := range e.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Child returns the named direct child of a directory.
func (e *Entry) Child(name string) (*Entry, bool) {
	child, ok := e.children[name]
	return child, ok
}

// insert descends path component by component from e, creating
// intermediate directories on demand, and places entry at the final
// component. Paths use forward slashes.
//
// The walker never yields the same path twice and never yields a file
// as an ancestor of another, so a duplicate component or a descent
// through a file entry is a logic error, not a runtime condition.
func (e *Entry) insert(path string, entry *Entry) {
	if e.children == nil {
		panic(fmt.Sprintf("snapshot: insert through file entry at %q", path))
	}
	first, rest, nested := strings.Cut(path, "/")
	if !nested {
		if _, exists := e.children[first]; exists {
			panic(fmt.Sprintf("snapshot: duplicate path component %q", first))
		}
		e.children[first] = entry
		return
	}
	sub, ok := e.children[first]
	if !ok {
		sub = NewDirectory()
		e.children[first] = sub
	}
	sub.insert(rest, entry)
}

// lookup resolves a slash-separated path below e.
func (e *Entry) lookup(path string) (*Entry, bool) {
	if e.children == nil {
		return nil, false
	}
	first, rest, nested := strings.Cut(path, "/")
	child, ok := e.children[first]
	if !ok {
		return nil, false
	}
	if !nested {
		return child, true
	}
	return child.lookup(rest)
}

// Equal reports deep structural equality of two entries.
func (e *Entry) Equal(other *Entry) bool {
	if e.IsDir() != other.IsDir() {
		return false
	}
	if !e.IsDir() {
		return e.metrics.Equal(*other.metrics)
	}
	if len(e.children) != len(other.children) {
		return false
	}
	for name, child := range e.children {
		otherChild, ok := other.children[name]
		if !ok || !child.Equal(otherChild) {
			return false
		}
	}
	return true
}

// Totals returns the number of file leaves beneath e and the sum of
// their recorded sizes.
func (e *Entry) Totals() (files uint64, bytes uint64) {
	if !e.IsDir() {
		return 1, e.metrics.Size
	}
	for _, child := range e.children {
		f, b := child.Totals()
		files += f
		bytes += b
	}
	return files, bytes
}

// entryJSON is the externally tagged wire form of an Entry: exactly one
// of the two fields is present.
type entryJSON struct {
	Directory map[string]*Entry `json:"directory,omitempty"`
	File      *metrics.Metrics  `json:"file,omitempty"`
}

// MarshalJSON encodes the entry in its externally tagged form. Map keys
// are emitted in sorted order, so the byte output is deterministic.
func (e *Entry) MarshalJSON() ([]byte, error) {
	if e.IsDir() {
		return json.Marshal(entryJSON{Directory: e.children})
	}
	return json.Marshal(entryJSON{File: e.metrics})
}

// UnmarshalJSON decodes the externally tagged form.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var wire entryJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	switch {
	case wire.Directory != nil && wire.File != nil:
		return fmt.Errorf("snapshot: entry is both directory and file")
	case wire.File != nil:
		e.children = nil
		e.metrics = wire.File
	case wire.Directory != nil:
		e.children = wire.Directory
		e.metrics = nil
	default:
		// An empty directory marshals as {"directory": {}} but some
		// encoders drop empty maps; treat a bare object as one.
		e.children = make(map[string]*Entry)
		e.metrics = nil
	}
	return nil
}
