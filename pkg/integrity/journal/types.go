// Package journal records integrity operations to the filesystem: one
// JSON file per build, check, diff, or selfcheck, so operators can audit
// when snapshots were taken and what each comparison concluded.
package journal

import "time"

// Operation represents the type of recorded operation.
type Operation string

const (
	// OpBuild records the creation of a snapshot database.
	OpBuild Operation = "build"
	// OpCheck records a database-versus-directory comparison.
	OpCheck Operation = "check"
	// OpDiff records a database-versus-database comparison.
	OpDiff Operation = "diff"
	// OpSelfCheck records an envelope verification.
	OpSelfCheck Operation = "selfcheck"
)

// Record is the caller-supplied portion of an entry.
type Record struct {
	// Database is the snapshot file the operation read or wrote.
	Database string `json:"database"`

	// Target is the directory or second database compared against,
	// empty for selfcheck.
	Target string `json:"target,omitempty"`

	// Summary is the resulting classification, or "built" for builds.
	Summary string `json:"summary"`

	// Files is the number of file leaves involved.
	Files uint64 `json:"files"`

	// Bytes is the total recorded size of those files.
	Bytes uint64 `json:"bytes"`
}

// Entry is one persisted journal record.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Operation Operation `json:"operation"`
	Record    Record    `json:"record"`
}
