// Package cache remembers files that were already verified clean so
// repeated runs can skip them. An entry is keyed by file path plus the
// active rewrite configuration and validated against the file's content
// hash, so any edit or option change invalidates it.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"
)

// Cache provides file-based caching of clean verdicts.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

// Entry represents a cached clean verdict.
type Entry struct {
	Hash      string    `json:"hash"`
	Timestamp time.Time `json:"timestamp"`
}

// New creates a new cache instance.
func New(dir string, ttlHours int, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}

	// Ensure cache directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlHours) * time.Hour,
		enabled: true,
	}, nil
}

// HashFile computes a BLAKE3 hash of a file's contents.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return HashBytes(data), nil
}

// HashBytes computes a BLAKE3 hash of bytes and returns it as a hex string.
func HashBytes(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// IsClean reports whether the file at path was previously verified
// clean with the same configuration fingerprint and has not changed
// since.
func (c *Cache) IsClean(path, fingerprint string) bool {
	if !c.enabled {
		return false
	}

	entryPath := c.keyPath(path, fingerprint)
	data, err := os.ReadFile(entryPath)
	if err != nil {
		return false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return false
	}

	// Check TTL
	if time.Since(entry.Timestamp) > c.ttl {
		os.Remove(entryPath)
		return false
	}

	hash, err := HashFile(path)
	if err != nil {
		return false
	}
	return entry.Hash == hash
}

// MarkClean records that the file at path needed no fixes under the
// given configuration fingerprint.
func (c *Cache) MarkClean(path, fingerprint string) error {
	if !c.enabled {
		return nil
	}

	hash, err := HashFile(path)
	if err != nil {
		return err
	}

	entry := Entry{
		Hash:      hash,
		Timestamp: time.Now(),
	}

	entryData, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return os.WriteFile(c.keyPath(path, fingerprint), entryData, 0600)
}

// Invalidate removes the cache entry for a path and fingerprint.
func (c *Cache) Invalidate(path, fingerprint string) error {
	if !c.enabled {
		return nil
	}
	return os.Remove(c.keyPath(path, fingerprint))
}

// Clear removes all cache entries.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	return os.RemoveAll(c.dir)
}

// keyPath converts a path and fingerprint to a filesystem path.
func (c *Cache) keyPath(path, fingerprint string) string {
	// Hash the key to avoid filesystem path issues
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	hash := blake3.Sum256([]byte(abs + "\x00" + fingerprint))
	return filepath.Join(c.dir, hex.EncodeToString(hash[:])+".json")
}

// Stats returns cache statistics.
type Stats struct {
	Entries   int   `json:"entries"`
	TotalSize int64 `json:"total_size"`
}

// GetStats returns statistics about the cache.
func (c *Cache) GetStats() (*Stats, error) {
	if !c.enabled {
		return &Stats{}, nil
	}

	stats := &Stats{}
	err := filepath.Walk(c.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		stats.Entries++
		stats.TotalSize += info.Size()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}
