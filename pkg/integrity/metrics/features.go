// Package metrics computes per-file content metrics for the integrity
// checker. A single sequential pass over a file feeds every enabled
// accumulator: the selected cryptographic digests, a byte counter, a
// NUL-byte flag, and a non-ASCII flag. The result is one immutable
// Metrics value per file.
package metrics

// Features selects which digest algorithms are computed.
//
// A disabled digest is not computed at all, and the corresponding field
// is omitted from the serialized Metrics. The database format is
// self-describing: which digests a snapshot carries is inferred from
// which fields are present, so Features legitimately varies per run.
type Features struct {
	// SHA2 enables the SHA-512/256 digest.
	SHA2 bool `mapstructure:"sha2"`

	// Blake2b enables the BLAKE2b-256 digest.
	Blake2b bool `mapstructure:"blake2b"`
}

// DefaultFeatures returns the default digest selection: SHA-512/256
// enabled, BLAKE2b disabled.
func DefaultFeatures() Features {
	return Features{SHA2: true}
}

// Any reports whether at least one digest is enabled. A snapshot built
// with no digests can still detect size and byte-class changes, but its
// envelope checksum cannot detect tampering.
func (f Features) Any() bool {
	return f.SHA2 || f.Blake2b
}

// Covers reports whether f enables every digest that other enables.
func (f Features) Covers(other Features) bool {
	if other.SHA2 && !f.SHA2 {
		return false
	}
	if other.Blake2b && !f.Blake2b {
		return false
	}
	return true
}
