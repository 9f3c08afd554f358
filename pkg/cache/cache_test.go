package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	return path
}

func TestNewCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")

	c, err := New(dir, 24, true)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if c == nil {
		t.Fatal("New() returned nil cache")
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("Cache directory not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("Cache path is not a directory")
	}
}

func TestNewDisabled(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")

	c, err := New(dir, 24, false)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("Disabled cache should not create its directory")
	}

	// All operations are no-ops.
	if c.IsClean("anything.py", "fp") {
		t.Error("Disabled cache should never report clean")
	}
	if err := c.MarkClean("anything.py", "fp"); err != nil {
		t.Errorf("MarkClean on disabled cache: %v", err)
	}
	if err := c.Clear(); err != nil {
		t.Errorf("Clear on disabled cache: %v", err)
	}
}

func TestMarkCleanAndIsClean(t *testing.T) {
	tmpDir := t.TempDir()
	c, err := New(filepath.Join(tmpDir, "cache"), 24, true)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	path := writeFile(t, tmpDir, "mod.py", "x = 1\n")

	if c.IsClean(path, "fp") {
		t.Error("Unmarked file should not be clean")
	}

	if err := c.MarkClean(path, "fp"); err != nil {
		t.Fatalf("MarkClean() error: %v", err)
	}
	if !c.IsClean(path, "fp") {
		t.Error("Marked file should be clean")
	}
}

func TestIsCleanAfterEdit(t *testing.T) {
	tmpDir := t.TempDir()
	c, _ := New(filepath.Join(tmpDir, "cache"), 24, true)

	path := writeFile(t, tmpDir, "mod.py", "x = 1\n")
	if err := c.MarkClean(path, "fp"); err != nil {
		t.Fatalf("MarkClean() error: %v", err)
	}

	writeFile(t, tmpDir, "mod.py", "import os\nx = 1\n")

	if c.IsClean(path, "fp") {
		t.Error("Edited file should no longer be clean")
	}
}

func TestIsCleanDifferentFingerprint(t *testing.T) {
	tmpDir := t.TempDir()
	c, _ := New(filepath.Join(tmpDir, "cache"), 24, true)

	path := writeFile(t, tmpDir, "mod.py", "x = 1\n")
	if err := c.MarkClean(path, "imports-only"); err != nil {
		t.Fatalf("MarkClean() error: %v", err)
	}

	if !c.IsClean(path, "imports-only") {
		t.Error("Same fingerprint should hit")
	}
	if c.IsClean(path, "all-rewrites") {
		t.Error("A different fingerprint should miss")
	}
}

func TestIsCleanExpiredEntry(t *testing.T) {
	tmpDir := t.TempDir()
	cacheDir := filepath.Join(tmpDir, "cache")
	c, _ := New(cacheDir, 1, true)

	path := writeFile(t, tmpDir, "mod.py", "x = 1\n")
	if err := c.MarkClean(path, "fp"); err != nil {
		t.Fatalf("MarkClean() error: %v", err)
	}

	// Backdate the entry past the TTL.
	entryPath := c.keyPath(path, "fp")
	data, err := os.ReadFile(entryPath)
	if err != nil {
		t.Fatalf("Failed to read entry: %v", err)
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("Failed to unmarshal entry: %v", err)
	}
	entry.Timestamp = time.Now().Add(-2 * time.Hour)
	data, _ = json.Marshal(entry)
	if err := os.WriteFile(entryPath, data, 0600); err != nil {
		t.Fatalf("Failed to rewrite entry: %v", err)
	}

	if c.IsClean(path, "fp") {
		t.Error("Expired entry should miss")
	}
	if _, err := os.Stat(entryPath); !os.IsNotExist(err) {
		t.Error("Expired entry should be removed from disk")
	}
}

func TestIsCleanCorruptEntry(t *testing.T) {
	tmpDir := t.TempDir()
	c, _ := New(filepath.Join(tmpDir, "cache"), 24, true)

	path := writeFile(t, tmpDir, "mod.py", "x = 1\n")
	if err := os.WriteFile(c.keyPath(path, "fp"), []byte("not json"), 0600); err != nil {
		t.Fatalf("Failed to write corrupt entry: %v", err)
	}

	if c.IsClean(path, "fp") {
		t.Error("Corrupt entry should miss")
	}
}

func TestInvalidate(t *testing.T) {
	tmpDir := t.TempDir()
	c, _ := New(filepath.Join(tmpDir, "cache"), 24, true)

	path := writeFile(t, tmpDir, "mod.py", "x = 1\n")
	if err := c.MarkClean(path, "fp"); err != nil {
		t.Fatalf("MarkClean() error: %v", err)
	}

	if err := c.Invalidate(path, "fp"); err != nil {
		t.Fatalf("Invalidate() error: %v", err)
	}
	if c.IsClean(path, "fp") {
		t.Error("Invalidated entry should miss")
	}
}

func TestClear(t *testing.T) {
	tmpDir := t.TempDir()
	cacheDir := filepath.Join(tmpDir, "cache")
	c, _ := New(cacheDir, 24, true)

	a := writeFile(t, tmpDir, "a.py", "x = 1\n")
	b := writeFile(t, tmpDir, "b.py", "y = 2\n")
	c.MarkClean(a, "fp")
	c.MarkClean(b, "fp")

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if c.IsClean(a, "fp") || c.IsClean(b, "fp") {
		t.Error("Cleared cache should miss everything")
	}
}

func TestMarkCleanMissingFile(t *testing.T) {
	tmpDir := t.TempDir()
	c, _ := New(filepath.Join(tmpDir, "cache"), 24, true)

	if err := c.MarkClean(filepath.Join(tmpDir, "missing.py"), "fp"); err == nil {
		t.Error("MarkClean on missing file should fail")
	}
}

func TestHashBytes(t *testing.T) {
	h1 := HashBytes([]byte("import os\n"))
	h2 := HashBytes([]byte("import os\n"))
	h3 := HashBytes([]byte("import sys\n"))

	if h1 != h2 {
		t.Error("Same content should hash identically")
	}
	if h1 == h3 {
		t.Error("Different content should hash differently")
	}
	if len(h1) != 64 {
		t.Errorf("Expected 64 hex chars, got %d", len(h1))
	}
}

func TestHashFileMatchesHashBytes(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeFile(t, tmpDir, "mod.py", "x = 1\n")

	fromFile, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile() error: %v", err)
	}
	if fromFile != HashBytes([]byte("x = 1\n")) {
		t.Error("HashFile should match HashBytes of the same content")
	}
}

func TestGetStats(t *testing.T) {
	tmpDir := t.TempDir()
	c, _ := New(filepath.Join(tmpDir, "cache"), 24, true)

	a := writeFile(t, tmpDir, "a.py", "x = 1\n")
	b := writeFile(t, tmpDir, "b.py", "y = 2\n")
	c.MarkClean(a, "fp")
	c.MarkClean(b, "fp")

	stats, err := c.GetStats()
	if err != nil {
		t.Fatalf("GetStats() error: %v", err)
	}
	if stats.Entries != 2 {
		t.Errorf("Expected 2 entries, got %d", stats.Entries)
	}
	if stats.TotalSize == 0 {
		t.Error("Expected non-zero total size")
	}
}

func TestGetStatsDisabled(t *testing.T) {
	c, _ := New("", 24, false)
	stats, err := c.GetStats()
	if err != nil {
		t.Fatalf("GetStats() error: %v", err)
	}
	if stats.Entries != 0 {
		t.Errorf("Expected 0 entries, got %d", stats.Entries)
	}
}
