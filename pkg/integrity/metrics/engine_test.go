package metrics

import (
	"bytes"
	"crypto/sha512"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/blake2b"
)

func TestComputeKnownVectors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		input       string
		wantSHA2    string
		wantBlake2b string
	}{
		{
			name:        "empty input",
			input:       "",
			wantSHA2:    "c672b8d1ef56ed28ab87c3622c5114069bdd3ad7b8f9737498d0c01ecef0967a",
			wantBlake2b: "0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8",
		},
		{
			name:        "abc",
			input:       "abc",
			wantSHA2:    "53048e2681941ef99b2e29b76b4c7dabe4c2d0c634fc6d46e0e2f13107e7af23",
			wantBlake2b: "bddd813c634239723171ef3fee98579b94964e3bb1cb3e427262c8c068d52319",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, err := Compute(bytes.NewReader([]byte(tt.input)), Features{SHA2: true, Blake2b: true})
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}

			if got := hex.EncodeToString(m.SHA2); got != tt.wantSHA2 {
				t.Errorf("SHA2 = %s, want %s", got, tt.wantSHA2)
			}
			if got := hex.EncodeToString(m.Blake2b); got != tt.wantBlake2b {
				t.Errorf("Blake2b = %s, want %s", got, tt.wantBlake2b)
			}
			if m.Size != uint64(len(tt.input)) {
				t.Errorf("Size = %d, want %d", m.Size, len(tt.input))
			}
		})
	}
}

func TestComputeChunkBoundaries(t *testing.T) {
	t.Parallel()

	// Chunked computation must agree with a one-shot digest at and
	// around the chunk size.
	for _, size := range []int{0, 1, ChunkSize - 1, ChunkSize, ChunkSize + 1, 3 * ChunkSize} {
		data := make([]byte, size)
		for i := range data {
			data[i] = byte(i % 127)
		}

		m, err := Compute(bytes.NewReader(data), Features{SHA2: true, Blake2b: true})
		if err != nil {
			t.Fatalf("Compute() error for size %d: %v", size, err)
		}

		wantSHA2 := sha512.Sum512_256(data)
		if !bytes.Equal(m.SHA2, wantSHA2[:]) {
			t.Errorf("size %d: SHA2 disagrees with one-shot digest", size)
		}
		wantBlake := blake2b.Sum256(data)
		if !bytes.Equal(m.Blake2b, wantBlake[:]) {
			t.Errorf("size %d: Blake2b disagrees with one-shot digest", size)
		}
		if m.Size != uint64(size) {
			t.Errorf("size %d: Size = %d", size, m.Size)
		}
	}
}

func TestComputeByteClassFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		input        []byte
		wantNul      bool
		wantNonASCII bool
	}{
		{"plain ascii", []byte("hello world\n"), false, false},
		{"nul byte", []byte{'a', 0x00, 'b'}, true, false},
		{"high bit", []byte{'a', 0xC3, 0xA9}, false, true},
		{"both", []byte{0x00, 0xFF}, true, true},
		{"nul in later chunk", nulAfterFirstChunk(), true, false},
		{"empty", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, err := Compute(bytes.NewReader(tt.input), Features{})
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}
			if m.Nul != tt.wantNul {
				t.Errorf("Nul = %v, want %v", m.Nul, tt.wantNul)
			}
			if m.NonASCII != tt.wantNonASCII {
				t.Errorf("NonASCII = %v, want %v", m.NonASCII, tt.wantNonASCII)
			}
		})
	}
}

// nulAfterFirstChunk returns a NUL-free first chunk followed by one NUL
// byte, so the flag must survive across chunk boundaries.
func nulAfterFirstChunk() []byte {
	data := bytes.Repeat([]byte{'x'}, ChunkSize+1)
	data[ChunkSize] = 0x00
	return data
}

func TestComputeFeatureGating(t *testing.T) {
	t.Parallel()

	data := []byte("feature gating")

	tests := []struct {
		name     string
		features Features
	}{
		{"none", Features{}},
		{"sha2 only", Features{SHA2: true}},
		{"blake2b only", Features{Blake2b: true}},
		{"both", Features{SHA2: true, Blake2b: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, err := Compute(bytes.NewReader(data), tt.features)
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}

			if got := m.SHA2 != nil; got != tt.features.SHA2 {
				t.Errorf("SHA2 presence = %v, want %v", got, tt.features.SHA2)
			}
			if got := m.Blake2b != nil; got != tt.features.Blake2b {
				t.Errorf("Blake2b presence = %v, want %v", got, tt.features.Blake2b)
			}
			if !m.Features().Covers(tt.features) || !tt.features.Covers(m.Features()) {
				t.Errorf("Features() = %+v, want %+v", m.Features(), tt.features)
			}
			// Size and flags are computed regardless of digests.
			if m.Size != uint64(len(data)) {
				t.Errorf("Size = %d, want %d", m.Size, len(data))
			}
		})
	}
}

func TestComputeFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")
	content := []byte("file contents with \x00 and \xC3\xA9")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("writing test file: %v", err)
	}

	m, err := ComputeFile(path, DefaultFeatures())
	if err != nil {
		t.Fatalf("ComputeFile() error = %v", err)
	}

	want, err := Compute(bytes.NewReader(content), DefaultFeatures())
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if !m.Equal(want) {
		t.Errorf("ComputeFile() = %+v, want %+v", m, want)
	}
	if !m.Nul || !m.NonASCII {
		t.Errorf("byte-class flags = (%v, %v), want (true, true)", m.Nul, m.NonASCII)
	}
}

func TestComputeFileMissing(t *testing.T) {
	t.Parallel()

	_, err := ComputeFile(filepath.Join(t.TempDir(), "absent"), DefaultFeatures())
	if err == nil {
		t.Fatal("ComputeFile() error = nil, want error for missing file")
	}
}
