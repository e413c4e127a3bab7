package translate

import "sync"

// Cache stores resolved translations keyed by (targetLanguage, sourceText).
// Implementations must be safe for concurrent use; writes are
// last-write-wins. Entries live for the lifetime of the store.
type Cache interface {
	Get(targetLang, source string) (string, bool)
	Put(targetLang, source, translated string)
}

type cacheKey struct {
	lang   string
	source string
}

// MemoryCache is the default process-lifetime cache. Growth is
// unbounded; a bounded implementation can be injected instead.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[cacheKey]string)}
}

func (c *MemoryCache) Get(targetLang, source string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[cacheKey{lang: targetLang, source: source}]
	return v, ok
}

func (c *MemoryCache) Put(targetLang, source, translated string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{lang: targetLang, source: source}] = translated
}

// Len reports the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
