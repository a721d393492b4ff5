// Package codec persists snapshot databases in a tamper-evident,
// gzip-compressed envelope. The layout inside the compressed stream is
//
//	checksum-header-json || 0x0A || database-body-json
//
// where the header records the digests and size of the body bytes. The
// header and body are compact JSON and contain no literal line feed, so
// the single 0x0A byte is an unambiguous separator.
//
// One deliberate weakness carries over from the format's origin: a
// digest field is only compared when it is present on both the header
// and the recomputed side, so a header with no digest fields at all
// trivially matches any body. A database dumped with an empty feature
// set cannot be tamper-detected.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"

	"github.com/jamesainslie/integrity/pkg/integrity/metrics"
	"github.com/jamesainslie/integrity/pkg/integrity/snapshot"
)

// separator divides the checksum header from the database body.
const separator = 0x0a

// ErrChecksumMismatch is returned by Load when the body bytes do not
// match the checksum header: the file was corrupted or tampered with.
var ErrChecksumMismatch = errors.New("database checksum mismatch")

// ErrMissingSeparator is returned by Load when the decompressed stream
// contains no header/body separator and cannot be parsed.
var ErrMissingSeparator = errors.New("missing header separator")

// Checksum is the envelope's integrity guard: digests and size of the
// serialized body bytes, independent of the per-file hashes inside the
// tree. Digest fields are present exactly for the features that were
// enabled at dump time.
type Checksum struct {
	SHA2    metrics.HashSum `json:"sha2-512/256,omitempty"`
	Blake2b metrics.HashSum `json:"blake2b,omitempty"`
	Size    uint64          `json:"size"`
}

// checksumOf runs the body bytes through the metrics engines with the
// given features and folds the result into a Checksum.
func checksumOf(body []byte, features metrics.Features) (Checksum, error) {
	m, err := metrics.Compute(bytes.NewReader(body), features)
	if err != nil {
		return Checksum{}, err
	}
	return Checksum{SHA2: m.SHA2, Blake2b: m.Blake2b, Size: m.Size}, nil
}

// features infers which digests were active when the checksum was
// written, from which fields are present.
func (c Checksum) features() metrics.Features {
	return metrics.Features{SHA2: c.SHA2 != nil, Blake2b: c.Blake2b != nil}
}

// matches compares field by field. A digest only counts as a mismatch
// when both sides carry it and the values differ; the size always
// participates.
func (c Checksum) matches(actual Checksum) bool {
	if c.Size != actual.Size {
		return false
	}
	if c.SHA2 != nil && actual.SHA2 != nil && !c.SHA2.Equal(actual.SHA2) {
		return false
	}
	if c.Blake2b != nil && actual.Blake2b != nil && !c.Blake2b.Equal(actual.Blake2b) {
		return false
	}
	return true
}

// Dump serializes the database into the checksum-framed envelope and
// writes the whole concatenation through gzip at best compression.
func Dump(w io.Writer, db *snapshot.Database, features metrics.Features) error {
	body, err := json.Marshal(db)
	if err != nil {
		return fmt.Errorf("encoding database: %w", err)
	}
	// The separator is a raw line feed, so the body must not contain
	// one. Compact JSON with base64 digests never does.
	if bytes.IndexByte(body, separator) != -1 {
		return fmt.Errorf("encoding database: body contains separator byte")
	}

	checksum, err := checksumOf(body, features)
	if err != nil {
		return fmt.Errorf("computing checksum: %w", err)
	}
	header, err := json.Marshal(checksum)
	if err != nil {
		return fmt.Errorf("encoding checksum: %w", err)
	}
	if bytes.IndexByte(header, separator) != -1 {
		return fmt.Errorf("encoding checksum: header contains separator byte")
	}

	gz, err := gzip.NewWriterLevel(w, gzip.BestCompression)
	if err != nil {
		return fmt.Errorf("initializing compressor: %w", err)
	}
	for _, chunk := range [][]byte{header, {separator}, body} {
		if _, err := gz.Write(chunk); err != nil {
			return fmt.Errorf("writing database: %w", err)
		}
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("flushing database: %w", err)
	}
	return nil
}

// Load decompresses the stream, verifies the checksum header against
// the body bytes, and decodes the database. The body is never decoded
// when verification fails.
func Load(r io.Reader) (*snapshot.Database, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("initializing decompressor: %w", err)
	}
	defer gz.Close()

	raw, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("decompressing database: %w", err)
	}

	index := bytes.IndexByte(raw, separator)
	if index == -1 {
		return nil, ErrMissingSeparator
	}
	header, body := raw[:index], raw[index+1:]

	var expected Checksum
	if err := json.Unmarshal(header, &expected); err != nil {
		return nil, fmt.Errorf("decoding checksum: %w", err)
	}

	actual, err := checksumOf(body, expected.features())
	if err != nil {
		return nil, fmt.Errorf("computing checksum: %w", err)
	}
	if !expected.matches(actual) {
		return nil, ErrChecksumMismatch
	}

	db := snapshot.New()
	if err := json.Unmarshal(body, db); err != nil {
		return nil, fmt.Errorf("decoding database: %w", err)
	}
	return db, nil
}

// LoadFile opens path and loads the database it contains.
func LoadFile(path string) (*snapshot.Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}
