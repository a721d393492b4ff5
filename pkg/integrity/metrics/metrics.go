package metrics

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// HashSum is an opaque digest value. Equality is byte-wise; the base64
// text form exists only at the JSON boundary.
type HashSum []byte

// Equal reports whether two sums have identical bytes.
func (h HashSum) Equal(other HashSum) bool {
	return bytes.Equal(h, other)
}

// MarshalJSON encodes the sum as a base64 string.
func (h HashSum) MarshalJSON() ([]byte, error) {
	return json.Marshal(base64.StdEncoding.EncodeToString(h))
}

// UnmarshalJSON decodes a base64 string into the sum.
func (h *HashSum) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return fmt.Errorf("decoding hash sum: %w", err)
	}
	*h = decoded
	return nil
}

// Metrics records the facts about one regular file at snapshot time.
// A digest field is present exactly when the corresponding feature was
// enabled during computation. Metrics values are immutable once built.
type Metrics struct {
	// SHA2 is the SHA-512/256 digest of the file contents, if computed.
	SHA2 HashSum `json:"sha2-512/256,omitempty"`

	// Blake2b is the BLAKE2b-256 digest of the file contents, if computed.
	Blake2b HashSum `json:"blake2b,omitempty"`

	// Size is the file size in bytes.
	Size uint64 `json:"size"`

	// Nul reports whether any byte of the file was 0x00.
	Nul bool `json:"nul"`

	// NonASCII reports whether any byte of the file had the high bit set.
	NonASCII bool `json:"nonascii"`
}

// Features reports which digests are present on the metrics.
func (m Metrics) Features() Features {
	return Features{SHA2: m.SHA2 != nil, Blake2b: m.Blake2b != nil}
}

// Restrict returns a copy of the metrics with any digest not enabled in
// features removed. It is used when cached metrics carry more digests
// than the current run requested: absent fields must stay absent in the
// serialized form, not zero-filled.
func (m Metrics) Restrict(features Features) Metrics {
	out := m
	if !features.SHA2 {
		out.SHA2 = nil
	}
	if !features.Blake2b {
		out.Blake2b = nil
	}
	return out
}

// Equal reports whether two metrics are identical, including digest
// presence.
func (m Metrics) Equal(other Metrics) bool {
	return m.Size == other.Size &&
		m.Nul == other.Nul &&
		m.NonASCII == other.NonASCII &&
		m.SHA2.Equal(other.SHA2) &&
		m.Blake2b.Equal(other.Blake2b)
}
