package texture

import (
	"path/filepath"
	"sync"
)

// Loader resolves a texture path to a decoded Map.
type Loader interface {
	Load(path string) (*Map, error)
}

// Cache is a concurrency-safe texture cache. Materials and cube faces that
// name the same file share one decoded Map.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*cacheEntry
}

type cacheEntry struct {
	m   *Map
	err error // load failures are remembered so a bad file is decoded once
}

// NewCache creates an empty texture cache.
func NewCache() *Cache {
	return &Cache{items: make(map[string]*cacheEntry)}
}

// Load returns the cached Map for path, decoding it on first use.
func (c *Cache) Load(path string) (*Map, error) {
	key := filepath.Clean(path)

	// Fast path: read lock
	c.mu.RLock()
	if entry, exists := c.items[key]; exists {
		c.mu.RUnlock()
		return entry.m, entry.err
	}
	c.mu.RUnlock()

	// Slow path: load from disk
	m, err := Load(key)

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, exists := c.items[key]; exists {
		return entry.m, entry.err
	}
	c.items[key] = &cacheEntry{m: m, err: err}

	return m, err
}

// Len returns the number of cached paths, including failed ones.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
