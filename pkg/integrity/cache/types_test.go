package cache

import (
	"bytes"
	"testing"
	"time"

	"github.com/jamesainslie/integrity/pkg/integrity/metrics"
)

func TestEntryEncodeDecode(t *testing.T) {
	t.Parallel()

	original := Entry{
		Size:  4096,
		Mtime: time.Now().UnixNano(),
		Metrics: metrics.Metrics{
			SHA2:     metrics.HashSum("sha-digest"),
			Blake2b:  metrics.HashSum("blake-digest"),
			Size:     4096,
			Nul:      true,
			NonASCII: true,
		},
	}

	encoded, err := original.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	var decoded Entry
	if err := decoded.Decode(encoded); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if decoded.Size != original.Size || decoded.Mtime != original.Mtime {
		t.Errorf("stat fields mismatch: got %+v", decoded)
	}
	if !decoded.Metrics.Equal(original.Metrics) {
		t.Errorf("metrics mismatch: got %+v, want %+v", decoded.Metrics, original.Metrics)
	}
}

func TestEntryDecodeGarbage(t *testing.T) {
	t.Parallel()

	var e Entry
	if err := e.Decode([]byte("not gob data")); err == nil {
		t.Fatal("decode of garbage succeeded")
	}
}

func TestEntryFresh(t *testing.T) {
	t.Parallel()

	entry := Entry{
		Size:    100,
		Mtime:   42,
		Metrics: metrics.Metrics{SHA2: metrics.HashSum("d"), Size: 100},
	}

	tests := []struct {
		name     string
		size     int64
		mtime    int64
		features metrics.Features
		want     bool
	}{
		{"exact match", 100, 42, metrics.Features{SHA2: true}, true},
		{"no digests requested", 100, 42, metrics.Features{}, true},
		{"size changed", 101, 42, metrics.Features{SHA2: true}, false},
		{"mtime changed", 100, 43, metrics.Features{SHA2: true}, false},
		{"missing requested digest", 100, 42, metrics.Features{Blake2b: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := entry.Fresh(tt.size, tt.mtime, tt.features); got != tt.want {
				t.Errorf("Fresh() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMakeKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		root     string
		relPath  string
		expected string
	}{
		{"/home/user", "", "v1\x00/home/user\x00"},
		{"/home/user", "docs", "v1\x00/home/user\x00docs"},
		{"/home/user", "docs/file.txt", "v1\x00/home/user\x00docs/file.txt"},
	}

	for _, tt := range tests {
		key := MakeKey(tt.root, tt.relPath)
		if !bytes.Equal(key, []byte(tt.expected)) {
			t.Errorf("MakeKey(%q, %q) = %q, want %q", tt.root, tt.relPath, key, tt.expected)
		}
	}
}

func TestParseKey(t *testing.T) {
	t.Parallel()

	key := MakeKey("/home/user", "docs/file.txt")
	root, relPath := ParseKey(key)
	if root != "/home/user" {
		t.Errorf("root = %q, want %q", root, "/home/user")
	}
	if relPath != "docs/file.txt" {
		t.Errorf("relPath = %q, want %q", relPath, "docs/file.txt")
	}
}

func TestMakeKeyPrefixCoversKeys(t *testing.T) {
	t.Parallel()

	prefix := MakeKeyPrefix("/home/user")
	key := MakeKey("/home/user", "docs/file.txt")
	if !bytes.HasPrefix(key, prefix) {
		t.Errorf("key %q does not start with prefix %q", key, prefix)
	}

	// A sibling root with a shared string prefix must not collide.
	other := MakeKey("/home/user2", "docs/file.txt")
	if bytes.HasPrefix(other, prefix) {
		t.Errorf("sibling root key %q matches prefix %q", other, prefix)
	}
}
