package utils

import (
	"os"
	"sync"
	"time"
)

// fileStamp identifies one version of a file on disk
type fileStamp struct {
	modTime time.Time
	size    int64
}

func stampOf(info os.FileInfo) fileStamp {
	return fileStamp{modTime: info.ModTime(), size: info.Size()}
}

type cacheEntry[V any] struct {
	value V
	stamp fileStamp
}

// FileCache memoizes a value computed from a file. An entry stays valid while the
// file keeps the modification time and size it had when the value was stored.
type FileCache[V any] struct {
	mu     sync.RWMutex
	items  map[string]cacheEntry[V]
	hits   int
	misses int
}

// NewFileCache creates an empty cache
func NewFileCache[V any]() *FileCache[V] {
	return &FileCache[V]{items: make(map[string]cacheEntry[V])}
}

// Load returns the cached value for path, or computes it with compute and stores it.
// Errors from compute are not cached.
func (c *FileCache[V]) Load(path string, compute func(path string) (V, error)) (V, error) {
	var zero V
	info, err := os.Stat(path)
	if err != nil {
		c.Delete(path)
		return zero, err
	}
	stamp := stampOf(info)

	c.mu.RLock()
	entry, ok := c.items[path]
	c.mu.RUnlock()
	if ok && entry.stamp == stamp {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return entry.value, nil
	}

	value, err := compute(path)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.misses++
	if err != nil {
		delete(c.items, path)
		return zero, err
	}
	c.items[path] = cacheEntry[V]{value: value, stamp: stamp}
	return value, nil
}

// Delete removes the entry for path
func (c *FileCache[V]) Delete(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, path)
}

// Prune drops every entry whose path is not in keep
func (c *FileCache[V]) Prune(keep []string) {
	wanted := make(map[string]struct{}, len(keep))
	for _, p := range keep {
		wanted[p] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for p := range c.items {
		if _, ok := wanted[p]; !ok {
			delete(c.items, p)
		}
	}
}

// Clear removes all entries and resets the statistics
func (c *FileCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]cacheEntry[V])
	c.hits, c.misses = 0, 0
}

// GetStats returns cache statistics
func (c *FileCache[V]) GetStats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{Size: len(c.items), Hits: c.hits, Misses: c.misses}
}

// CacheStats provides cache statistics
type CacheStats struct {
	Size   int
	Hits   int
	Misses int
}
