package jsonfile

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/pl/internal/core/todo"
)

func sampleSnapshot() todo.Snapshot {
	return todo.Snapshot{
		Timestamp: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		Items: []todo.Item{
			{ID: "SEC-001", Category: todo.CategorySecurity, Priority: todo.PriorityHigh, Title: "Security update available", Site: "mysite"},
			{ID: "TOK-001", Category: todo.CategoryToken, Priority: todo.PriorityMedium, Title: "Rotate linode token"},
		},
	}
}

func TestCache_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", CacheFileName)
	cache := NewCache(path)

	require.NoError(t, cache.Save(sampleSnapshot(), "run-1"))

	got, err := cache.Load()
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot(), got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestCache_Missing(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), CacheFileName))

	got, err := cache.Load()
	require.NoError(t, err)
	assert.True(t, got.Timestamp.IsZero())
	assert.False(t, got.Fresh(time.Now(), time.Hour))
}

func TestCache_EmptyAndOutdated(t *testing.T) {
	path := filepath.Join(t.TempDir(), CacheFileName)
	cache := NewCache(path)

	require.NoError(t, os.WriteFile(path, nil, 0o644))
	got, err := cache.Load()
	require.NoError(t, err)
	assert.Empty(t, got.Items)

	require.NoError(t, os.WriteFile(path, []byte(`{"version": 99, "snapshot": {"items": [{"id": "SEC-001"}]}}`), 0o644))
	got, err = cache.Load()
	require.NoError(t, err)
	assert.Empty(t, got.Items)
}

func TestCache_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), CacheFileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"version":`), 0o644))

	_, err := NewCache(path).Load()
	require.Error(t, err)
}

func TestCache_SaveReplaces(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), CacheFileName))
	require.NoError(t, cache.Save(sampleSnapshot(), "run-1"))

	next := todo.Snapshot{Timestamp: time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, cache.Save(next, "run-2"))

	got, err := cache.Load()
	require.NoError(t, err)
	assert.Equal(t, next.Timestamp, got.Timestamp)
	assert.NotNil(t, got.Items)
	assert.Empty(t, got.Items)
}

func TestCache_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), CacheFileName)
	cache := NewCache(path)

	require.NoError(t, cache.Clear(), "clearing a missing cache")
	require.NoError(t, cache.Save(sampleSnapshot(), ""))
	require.NoError(t, cache.Clear())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestCache_ConcurrentSaves(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), CacheFileName))

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap := sampleSnapshot()
			snap.Timestamp = snap.Timestamp.Add(time.Duration(i) * time.Minute)
			assert.NoError(t, cache.Save(snap, ""))
		}()
	}
	wg.Wait()

	got, err := cache.Load()
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
}
