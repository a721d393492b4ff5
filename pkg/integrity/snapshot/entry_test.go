package snapshot

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/jamesainslie/integrity/pkg/integrity/metrics"
)

func fileEntry(size uint64) *Entry {
	return NewFile(metrics.Metrics{
		SHA2: metrics.HashSum([]byte{byte(size), 0x01}),
		Size: size,
	})
}

func TestInsertAndLookup(t *testing.T) {
	t.Parallel()

	db := New()
	db.Insert("etc/hosts", fileEntry(10))
	db.Insert("etc/ssh/sshd_config", fileEntry(20))
	db.Insert("README", fileEntry(5))

	tests := []struct {
		path  string
		found bool
		isDir bool
		size  uint64
	}{
		{"etc", true, true, 0},
		{"etc/hosts", true, false, 10},
		{"etc/ssh", true, true, 0},
		{"etc/ssh/sshd_config", true, false, 20},
		{"README", true, false, 5},
		{"missing", false, false, 0},
		{"etc/missing", false, false, 0},
		{"etc/hosts/below-a-file", false, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			e, ok := db.Lookup(tt.path)
			if ok != tt.found {
				t.Fatalf("Lookup(%q) found = %v, want %v", tt.path, ok, tt.found)
			}
			if !ok {
				return
			}
			if e.IsDir() != tt.isDir {
				t.Errorf("IsDir() = %v, want %v", e.IsDir(), tt.isDir)
			}
			if !tt.isDir && e.Metrics().Size != tt.size {
				t.Errorf("Size = %d, want %d", e.Metrics().Size, tt.size)
			}
		})
	}
}

func TestNamesSorted(t *testing.T) {
	t.Parallel()

	db := New()
	for _, name := range []string{"zeta", "alpha", "mid", "beta"} {
		db.Insert(name, fileEntry(1))
	}

	names := db.Root().Names()
	want := []string{"alpha", "beta", "mid", "zeta"}
	if len(names) != len(want) {
		t.Fatalf("Names() length = %d, want %d", len(names), len(want))
	}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], name)
		}
	}
}

func TestInsertPanics(t *testing.T) {
	t.Parallel()

	t.Run("duplicate path", func(t *testing.T) {
		t.Parallel()
		db := New()
		db.Insert("a/b", fileEntry(1))

		defer func() {
			if recover() == nil {
				t.Fatal("duplicate insert did not panic")
			}
		}()
		db.Insert("a/b", fileEntry(2))
	})

	t.Run("descent through file", func(t *testing.T) {
		t.Parallel()
		db := New()
		db.Insert("a", fileEntry(1))

		defer func() {
			if recover() == nil {
				t.Fatal("insert through file entry did not panic")
			}
		}()
		db.Insert("a/b", fileEntry(2))
	})
}

func TestEqual(t *testing.T) {
	t.Parallel()

	build := func(paths map[string]uint64) *Database {
		db := New()
		for path, size := range paths {
			db.Insert(path, fileEntry(size))
		}
		return db
	}

	base := map[string]uint64{"a/x": 1, "a/y": 2, "b": 3}

	if !build(base).Equal(build(base)) {
		t.Error("structurally identical databases compare unequal")
	}
	if build(base).Equal(build(map[string]uint64{"a/x": 1, "a/y": 2})) {
		t.Error("missing entry compares equal")
	}
	if build(base).Equal(build(map[string]uint64{"a/x": 1, "a/y": 9, "b": 3})) {
		t.Error("different metrics compare equal")
	}
	if !New().Equal(New()) {
		t.Error("empty databases compare unequal")
	}
}

func TestTotals(t *testing.T) {
	t.Parallel()

	db := New()
	db.Insert("a/x", fileEntry(100))
	db.Insert("a/b/y", fileEntry(200))
	db.Insert("z", fileEntry(50))

	files, bytes := db.Totals()
	if files != 3 {
		t.Errorf("files = %d, want 3", files)
	}
	if bytes != 350 {
		t.Errorf("bytes = %d, want 350", bytes)
	}
}

func TestEntryJSONShape(t *testing.T) {
	t.Parallel()

	db := New()
	db.Insert("dir/file.txt", fileEntry(10))

	data, err := json.Marshal(db)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	s := string(data)

	// Externally tagged: every node is wrapped in a "directory" or
	// "file" object.
	if !strings.HasPrefix(s, `{"directory":`) {
		t.Errorf("root not tagged as directory: %s", s)
	}
	if !strings.Contains(s, `"file.txt":{"file":{`) {
		t.Errorf("leaf not tagged as file: %s", s)
	}
	if strings.IndexByte(s, '\n') != -1 {
		t.Errorf("compact encoding contains a line feed: %q", s)
	}
}

func TestDatabaseJSONRoundTrip(t *testing.T) {
	t.Parallel()

	db := New()
	db.Insert("etc/hosts", NewFile(metrics.Metrics{
		SHA2:     metrics.HashSum("digest-bytes"),
		Size:     123,
		Nul:      true,
		NonASCII: true,
	}))
	db.Insert("etc/empty-dir-sibling", fileEntry(0))
	db.Insert("top", fileEntry(9))

	data, err := json.Marshal(db)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	decoded := New()
	if err := json.Unmarshal(data, decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !db.Equal(decoded) {
		t.Error("database changed across JSON round trip")
	}

	// Determinism: re-encoding the decoded tree yields identical bytes.
	again, err := json.Marshal(decoded)
	if err != nil {
		t.Fatalf("re-Marshal() error = %v", err)
	}
	if string(data) != string(again) {
		t.Errorf("encoding not deterministic:\n%s\n%s", data, again)
	}
}

func TestEntryUnmarshalEdgeCases(t *testing.T) {
	t.Parallel()

	t.Run("bare object is an empty directory", func(t *testing.T) {
		t.Parallel()
		var e Entry
		if err := json.Unmarshal([]byte(`{}`), &e); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if !e.IsDir() || e.Len() != 0 {
			t.Error("bare object did not decode to an empty directory")
		}
	})

	t.Run("both tags rejected", func(t *testing.T) {
		t.Parallel()
		var e Entry
		err := json.Unmarshal([]byte(`{"directory":{},"file":{"size":1,"nul":false,"nonascii":false}}`), &e)
		if err == nil {
			t.Fatal("entry with both tags decoded without error")
		}
	})
}
