package manifest

import (
	"log/slog"
	"path/filepath"
	"sync"
)

// Cache holds parsed manifests keyed by absolute path so a prepare run does
// not re-parse the same file. Callers must Invalidate after writing a
// manifest; the cache never checks the file for changes on its own.
type Cache struct {
	entries map[string]*Manifest
	load    func(string) (*Manifest, error)
	mu      sync.RWMutex
	logger  *slog.Logger
}

// NewCache creates an empty cache that loads manifests with Load.
func NewCache(logger *slog.Logger) *Cache {
	return &Cache{
		entries: make(map[string]*Manifest),
		load:    Load,
		logger:  logger,
	}
}

// Get returns the cached manifest for path, loading it on first use.
func (c *Cache) Get(path string) (*Manifest, error) {
	key := cacheKey(path)

	c.mu.RLock()
	m, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return m, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.entries[key]; ok {
		return m, nil
	}
	m, err := c.load(path)
	if err != nil {
		return nil, err
	}
	c.entries[key] = m
	c.logger.Debug("cached manifest", "path", key, "format", m.Format)
	return m, nil
}

// Invalidate drops the entry for path.
func (c *Cache) Invalidate(path string) {
	key := cacheKey(path)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		delete(c.entries, key)
		c.logger.Debug("invalidated manifest", "path", key)
	}
}

// InvalidateAll empties the cache.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*Manifest)
	c.logger.Debug("invalidated all manifests")
}

// Len returns the number of cached manifests.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
