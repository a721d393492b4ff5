package metrics

import (
	"crypto/sha512"
	"fmt"
	"hash"
	"io"
	"os"

	"golang.org/x/crypto/blake2b"
)

// ChunkSize is the read granularity for streaming computation. Every
// chunk is fed to all enabled accumulators before the next read, so the
// source is traversed exactly once regardless of how many accumulators
// are active.
const ChunkSize = 4096

// Engines is the set of accumulators for one file. Digest engines are
// only allocated when their feature is enabled; a disabled digest is
// never computed.
type Engines struct {
	sha2     hash.Hash
	blake2b  hash.Hash
	size     uint64
	nul      bool
	nonascii bool
}

// NewEngines returns accumulators for the given feature selection.
func NewEngines(features Features) *Engines {
	e := &Engines{}
	if features.SHA2 {
		e.sha2 = sha512.New512_256()
	}
	if features.Blake2b {
		// New256 only errors when a key is supplied.
		h, err := blake2b.New256(nil)
		if err != nil {
			panic(err)
		}
		e.blake2b = h
	}
	return e
}

// Write feeds one chunk to every enabled accumulator. It never fails;
// the io.Writer signature lets the engines sit at the end of any stream.
func (e *Engines) Write(p []byte) (int, error) {
	if e.sha2 != nil {
		e.sha2.Write(p)
	}
	if e.blake2b != nil {
		e.blake2b.Write(p)
	}
	e.size += uint64(len(p))
	if !e.nul || !e.nonascii {
		for _, b := range p {
			if b == 0x00 {
				e.nul = true
			}
			if b&0x80 != 0 {
				e.nonascii = true
			}
			if e.nul && e.nonascii {
				break
			}
		}
	}
	return len(p), nil
}

// Sum finalizes the accumulators into an immutable Metrics value.
func (e *Engines) Sum() Metrics {
	m := Metrics{
		Size:     e.size,
		Nul:      e.nul,
		NonASCII: e.nonascii,
	}
	if e.sha2 != nil {
		m.SHA2 = e.sha2.Sum(nil)
	}
	if e.blake2b != nil {
		m.Blake2b = e.blake2b.Sum(nil)
	}
	return m
}

// Compute streams r through a fresh set of engines in ChunkSize chunks
// and returns the resulting metrics. Any read error aborts: there is no
// partial or degraded result.
func Compute(r io.Reader, features Features) (Metrics, error) {
	engines := NewEngines(features)
	buf := make([]byte, ChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			engines.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return Metrics{}, err
		}
	}
	return engines.Sum(), nil
}

// ComputeFile opens path and computes its metrics in a single pass.
func ComputeFile(path string, features Features) (Metrics, error) {
	f, err := os.Open(path)
	if err != nil {
		return Metrics{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	m, err := Compute(f, features)
	if err != nil {
		return Metrics{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return m, nil
}
