package journal

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("valid directory", func(t *testing.T) {
		t.Parallel()
		j, err := New(t.TempDir())
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if j == nil {
			t.Fatal("New() returned nil")
		}
	})

	t.Run("empty directory rejected", func(t *testing.T) {
		t.Parallel()
		if _, err := New(""); err == nil {
			t.Fatal("New() error = nil for empty directory")
		}
	})
}

func TestRecordAndList(t *testing.T) {
	t.Parallel()

	j, err := New(filepath.Join(t.TempDir(), "journal"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	entry, err := j.Record(OpBuild, Record{
		Database: "baseline.db",
		Target:   "/etc",
		Summary:  "built",
		Files:    42,
		Bytes:    4096,
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if entry.ID == "" {
		t.Error("Record() produced an empty ID")
	}
	if entry.Operation != OpBuild {
		t.Errorf("Operation = %q, want %q", entry.Operation, OpBuild)
	}

	entries, err := j.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("List() returned %d entries, want 1", len(entries))
	}
	got := entries[0]
	if got.ID != entry.ID || got.Record.Database != "baseline.db" || got.Record.Files != 42 {
		t.Errorf("round-tripped entry = %+v", got)
	}
}

func TestListOrderAndLimit(t *testing.T) {
	t.Parallel()

	j, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ops := []Operation{OpBuild, OpCheck, OpDiff}
	ids := make([]string, 0, len(ops))
	for _, op := range ops {
		e, err := j.Record(op, Record{Summary: string(op)})
		if err != nil {
			t.Fatalf("Record() error = %v", err)
		}
		ids = append(ids, e.ID)
		time.Sleep(5 * time.Millisecond)
	}

	entries, err := j.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("List() returned %d entries, want 3", len(entries))
	}
	// Newest first.
	if entries[0].ID != ids[2] {
		t.Errorf("List()[0].ID = %s, want newest %s", entries[0].ID, ids[2])
	}

	limited, err := j.List(2)
	if err != nil {
		t.Fatalf("List(2) error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("List(2) returned %d entries", len(limited))
	}
}

func TestListEmptyDirectory(t *testing.T) {
	t.Parallel()

	j, err := New(filepath.Join(t.TempDir(), "never-created"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	entries, err := j.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("List() on absent directory returned %d entries", len(entries))
	}
}

func TestListSkipsUnparsable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	j, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := j.Record(OpSelfCheck, Record{Summary: "verified"}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "garbage.json"), []byte("{"), 0o644); err != nil {
		t.Fatalf("writing garbage: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not json"), 0o644); err != nil {
		t.Fatalf("writing notes: %v", err)
	}

	entries, err := j.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("List() returned %d entries, want 1", len(entries))
	}
}

func TestClean(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	j, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// One current entry, one pre-dated past the retention window.
	if _, err := j.Record(OpBuild, Record{Summary: "built"}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	old := &Entry{
		ID:        "old-entry",
		Timestamp: time.Now().UTC().AddDate(0, 0, -120),
		Operation: OpCheck,
	}
	if err := j.writeEntry(old); err != nil {
		t.Fatalf("writeEntry() error = %v", err)
	}

	removed, err := j.Clean(90)
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("Clean() removed %d entries, want 1", removed)
	}

	entries, err := j.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("%d entries remain, want 1", len(entries))
	}
}
