package diff

// Summary is the three-level classification of a comparison. The levels
// form a total order, NoChanges < Changes < Suspicious, and Meet is the
// join of that order: folding any set of child classifications yields
// the most severe one.
type Summary int

const (
	// NoChanges means the two snapshots are indistinguishable.
	NoChanges Summary = iota

	// Changes means ordinary drift: edited, added, or removed entries.
	Changes

	// Suspicious means a change pattern that looks more like tampering
	// than an ordinary edit: truncation to empty, a new NUL byte, or a
	// new non-ASCII byte.
	Suspicious
)

// Meet combines two classifications, keeping the more severe.
func (s Summary) Meet(other Summary) Summary {
	if other > s {
		return other
	}
	return s
}

// String returns the human-readable form of the classification.
func (s Summary) String() string {
	switch s {
	case NoChanges:
		return "no changes"
	case Changes:
		return "changes"
	case Suspicious:
		return "suspicious changes"
	default:
		return "unknown"
	}
}

// ExitCode maps the classification to the process exit code reported by
// check and diff: 0 for no changes, 1 for changes, 2 for suspicious.
func (s Summary) ExitCode() int {
	switch s {
	case Changes:
		return 1
	case Suspicious:
		return 2
	default:
		return 0
	}
}
