// Package jsonfile stores the todo snapshot cache as a JSON file.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/colonyops/pl/internal/core/todo"
)

// CacheFileName is the cache file created inside the data directory.
const CacheFileName = "todo-cache.json"

// cacheVersion is bumped whenever the file layout changes. Files with a
// different version are treated as empty.
const cacheVersion = 1

// CacheFile is the root JSON structure stored on disk.
type CacheFile struct {
	Version  int           `json:"version"`
	RunID    string        `json:"run_id,omitempty"`
	Snapshot todo.Snapshot `json:"snapshot"`
}

// Cache persists the last aggregation snapshot.
type Cache struct {
	path string
	mu   sync.RWMutex
}

// NewCache creates a cache backed by the file at path.
func NewCache(path string) *Cache {
	return &Cache{path: path}
}

// Path returns the backing file.
func (c *Cache) Path() string {
	return c.path
}

// Load returns the cached snapshot. A missing, empty, unreadable or
// outdated file yields a zero snapshot, which is never fresh.
func (c *Cache) Load() (todo.Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	file, err := c.load()
	if err != nil {
		return todo.Snapshot{}, err
	}
	return file.Snapshot, nil
}

// Save replaces the cached snapshot.
func (c *Cache) Save(snap todo.Snapshot, runID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if snap.Items == nil {
		snap.Items = []todo.Item{}
	}
	snap.Timestamp = snap.Timestamp.UTC()

	return c.save(CacheFile{Version: cacheVersion, RunID: runID, Snapshot: snap})
}

// Clear removes the cache file. Clearing a missing cache is not an error.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove cache: %w", err)
	}
	return nil
}

// load reads the cache file from disk.
func (c *Cache) load() (CacheFile, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return CacheFile{}, nil
		}
		return CacheFile{}, fmt.Errorf("read cache: %w", err)
	}

	if len(data) == 0 {
		return CacheFile{}, nil
	}

	var file CacheFile
	if err := json.Unmarshal(data, &file); err != nil {
		return CacheFile{}, fmt.Errorf("decode cache: %w", err)
	}
	if file.Version != cacheVersion {
		return CacheFile{}, nil
	}

	return file, nil
}

// save writes the cache file to disk atomically.
func (c *Cache) save(file CacheFile) error {
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp cache: %w", err)
	}

	if err := os.Rename(tmpName, c.path); err != nil {
		return fmt.Errorf("replace cache: %w", err)
	}
	return nil
}
