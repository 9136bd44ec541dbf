package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiskUsageBytes(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.bin"), make([]byte, 100), 0644); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(dir, "sub")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "b.bin"), make([]byte, 50), 0644); err != nil {
		t.Fatal(err)
	}

	total, err := DiskUsageBytes(dir)
	if err != nil {
		t.Fatalf("DiskUsageBytes: %v", err)
	}
	if total != 150 {
		t.Errorf("total = %d, want 150", total)
	}
}

func TestDiskUsageBytesMissingPath(t *testing.T) {
	total, err := DiskUsageBytes(filepath.Join(t.TempDir(), "missing"), "")
	if err != nil {
		t.Fatalf("DiskUsageBytes: %v", err)
	}
	if total != 0 {
		t.Errorf("total = %d, want 0 for missing paths", total)
	}
}
