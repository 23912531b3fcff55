package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiskUsageBytes(t *testing.T) {
	dir := t.TempDir()

	// Layout mirrors what the status surface sums: a database file plus an
	// index directory tree.
	db := filepath.Join(dir, "companies.db")
	if err := os.WriteFile(db, []byte("sqlite"), 0600); err != nil {
		t.Fatal(err)
	}
	indices := filepath.Join(dir, "indices", "companies")
	if err := os.MkdirAll(indices, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(indices, "seg1"), []byte("abcd"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(indices, "seg2"), []byte("ef"), 0600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		paths []string
		want  int64
	}{
		{"database file only", []string{db}, 6},
		{"index tree only", []string{filepath.Join(dir, "indices")}, 6},
		{"database plus indices", []string{db, filepath.Join(dir, "indices")}, 12},
		{"missing path skipped", []string{db, filepath.Join(dir, "gone")}, 6},
		{"empty path skipped", []string{"", db}, 6},
		{"no paths", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DiskUsageBytes(tt.paths...)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("DiskUsageBytes(%v) = %d, want %d", tt.paths, got, tt.want)
			}
		})
	}
}
