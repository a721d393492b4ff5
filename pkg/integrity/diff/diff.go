// Package diff structurally compares two snapshot databases. The
// comparison is directional: old versus new is meaningful, and the
// truncation signal only fires in that direction. Directories are
// compared by a linear merge-join over their sorted children, so the
// whole diff is proportional to the size of the two trees with no
// quadratic lookups.
package diff

import (
	"sort"

	"github.com/jamesainslie/integrity/pkg/integrity/snapshot"
)

// DirectoryDiff aggregates what happened beneath one directory. Counts
// fold upward: a parent's counters include everything from recursed
// child directories, while an entry present on only one side counts as
// a single add or remove without descending into its subtree.
type DirectoryDiff struct {
	Added     uint64
	Removed   uint64
	Changed   uint64
	Unchanged uint64
}

// Dirty reports whether the directory saw any addition, removal, or change.
func (d DirectoryDiff) Dirty() bool {
	return d.Added > 0 || d.Removed > 0 || d.Changed > 0
}

// MetricsDiff describes how one file differs between the snapshots.
type MetricsDiff struct {
	// ChangedContent is set when the sizes differ or a digest present on
	// both sides differs. A digest present on only one side cannot
	// contribute: snapshots built with disjoint feature sets are
	// comparable, but only through size and the byte-class flags.
	ChangedContent bool

	// Zeroed is set when the old file had content and the new one is
	// empty. Directional: growing a file from empty never sets it.
	Zeroed bool

	// ChangedNul is set when the NUL-byte flag flipped.
	ChangedNul bool

	// ChangedNonASCII is set when the non-ASCII flag flipped.
	ChangedNonASCII bool
}

// Suspicious reports whether the file shows a tampering-like pattern.
func (m MetricsDiff) Suspicious() bool {
	return m.Zeroed || m.ChangedNul || m.ChangedNonASCII
}

// EntryDiff mirrors the shape of the entries it compares: a directory
// node carries per-child diffs and aggregate counts, a file node carries
// a MetricsDiff, and KindChanged marks a structural flip (directory on
// one side, file on the other) at the same path.
type EntryDiff struct {
	// Children holds the diffs of components present on both sides.
	// Nil except for directory nodes.
	Children map[string]*EntryDiff

	// Dir holds the aggregate counts. Nil except for directory nodes.
	Dir *DirectoryDiff

	// File holds the metrics comparison. Nil except for file nodes.
	File *MetricsDiff

	// KindChanged marks a directory/file flip between the snapshots.
	KindChanged bool
}

// Names returns the children of a directory diff in sorted order.
func (d *EntryDiff) Names() []string {
	names := make([]string, 0, len(d.Children))
	for name := range d.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compute compares two databases and returns the mirrored diff tree.
func Compute(before, after *snapshot.Database) *EntryDiff {
	return compareEntries(before.Root(), after.Root())
}

func compareEntries(before, after *snapshot.Entry) *EntryDiff {
	switch {
	case before.IsDir() && after.IsDir():
		return compareDirectories(before, after)
	case !before.IsDir() && !after.IsDir():
		return &EntryDiff{File: compareMetrics(before, after)}
	default:
		return &EntryDiff{KindChanged: true}
	}
}

// compareDirectories merge-joins the two sorted child sequences in
// lockstep. Equal keys recurse and fold the child's counts into the
// parent; a key present on one side only is a single add or remove, and
// its subtree is not descended into for counting.
func compareDirectories(before, after *snapshot.Entry) *EntryDiff {
	children := make(map[string]*EntryDiff)
	var stats DirectoryDiff

	oldNames := before.Names()
	newNames := after.Names()
	i, j := 0, 0
	for i < len(oldNames) && j < len(newNames) {
		switch {
		case oldNames[i] < newNames[j]:
			stats.Removed++
			i++
		case oldNames[i] > newNames[j]:
			stats.Added++
			j++
		default:
			oldChild, _ := before.Child(oldNames[i])
			newChild, _ := after.Child(newNames[j])
			child := compareEntries(oldChild, newChild)
			switch {
			case child.Dir != nil:
				stats.Added += child.Dir.Added
				stats.Removed += child.Dir.Removed
				stats.Changed += child.Dir.Changed
				stats.Unchanged += child.Dir.Unchanged
			case child.File != nil:
				if child.File.ChangedContent {
					stats.Changed++
				} else {
					stats.Unchanged++
				}
			default:
				stats.Changed++
			}
			children[oldNames[i]] = child
			i++
			j++
		}
	}
	stats.Removed += uint64(len(oldNames) - i)
	stats.Added += uint64(len(newNames) - j)

	return &EntryDiff{Children: children, Dir: &stats}
}

func compareMetrics(before, after *snapshot.Entry) *MetricsDiff {
	om, nm := before.Metrics(), after.Metrics()

	changed := om.Size != nm.Size
	if om.SHA2 != nil && nm.SHA2 != nil && !om.SHA2.Equal(nm.SHA2) {
		changed = true
	}
	if om.Blake2b != nil && nm.Blake2b != nil && !om.Blake2b.Equal(nm.Blake2b) {
		changed = true
	}

	return &MetricsDiff{
		ChangedContent:  changed,
		Zeroed:          om.Size > 0 && nm.Size == 0,
		ChangedNul:      om.Nul != nm.Nul,
		ChangedNonASCII: om.NonASCII != nm.NonASCII,
	}
}

// Summarize reduces the diff tree to its severity classification. The
// answer for a whole-tree diff is the root's classification.
func (d *EntryDiff) Summarize() Summary {
	switch {
	case d.Dir != nil:
		summary := NoChanges
		if d.Dir.Dirty() {
			summary = Changes
		}
		for _, child := range d.Children {
			summary = summary.Meet(child.Summarize())
		}
		return summary
	case d.File != nil:
		if d.File.Suspicious() {
			return Suspicious
		}
		if d.File.ChangedContent {
			return Changes
		}
		return NoChanges
	default:
		return Changes
	}
}
