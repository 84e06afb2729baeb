package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewFileDefaults(t *testing.T) {
	f := NewFile("/tmp/x.json", 0)
	if f.Expiry() != DefaultExpiry {
		t.Errorf("Expiry() = %v, want %v", f.Expiry(), DefaultExpiry)
	}
	if f.Path() != "/tmp/x.json" {
		t.Errorf("Path() = %q, want /tmp/x.json", f.Path())
	}
}

func TestFileMissing(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "missing.json"), time.Hour)

	if f.Exists() {
		t.Error("Exists() = true for missing file")
	}
	if f.Fresh() {
		t.Error("Fresh() = true for missing file")
	}
	if _, err := f.Read(); err == nil {
		t.Error("Read() should fail for missing file")
	}
}

func TestWriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "snapshot.json")
	f := NewFile(path, time.Hour)

	if err := f.Write([]byte(`{"a":1}`)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, err := f.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(data) != `{"a":1}` {
		t.Errorf("Read() = %q, want %q", data, `{"a":1}`)
	}
	if !f.Fresh() {
		t.Error("Fresh() = false right after Write()")
	}
}

func TestWriteReplacesWithoutLeftovers(t *testing.T) {
	dir := t.TempDir()
	f := NewFile(filepath.Join(dir, "snapshot.json"), time.Hour)

	for _, content := range []string{"first", "second"} {
		if err := f.Write([]byte(content)); err != nil {
			t.Fatalf("Write(%q) error = %v", content, err)
		}
	}

	data, _ := f.Read()
	if string(data) != "second" {
		t.Errorf("Read() = %q, want %q", data, "second")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the snapshot", len(entries))
	}
}

func TestFreshnessByModTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	f := NewFile(path, time.Hour)

	if err := f.Write([]byte("x")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}

	if f.Fresh() {
		t.Error("Fresh() = true for a snapshot older than expiry")
	}
	if !f.Exists() {
		t.Error("Exists() = false for a stale snapshot")
	}

	age, ok := f.Age()
	if !ok || age < time.Hour {
		t.Errorf("Age() = %v, %v; want > 1h, true", age, ok)
	}
}

func TestAgeUsesClock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	f := NewFile(path, time.Hour)
	if err := f.Write([]byte("x")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	f.now = func() time.Time { return time.Now().Add(3 * time.Hour) }
	if f.Fresh() {
		t.Error("Fresh() = true although the clock moved past expiry")
	}
}
