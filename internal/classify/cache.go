package classify

import (
	"sync"
	"time"

	"github.com/sells-group/payee-cli/internal/model"
)

// DefaultCacheTTL bounds how long a cached classification stays valid.
const DefaultCacheTTL = 15 * time.Minute

type cacheEntry struct {
	result  model.ClassificationResult
	expires time.Time
}

// Cache is a concurrency-safe name→result cache scoped to one run. Writes
// are at-most-once per key in practice; a duplicate write of the same value
// is harmless.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewCache builds a cache with the given TTL. Non-positive TTLs fall back to
// DefaultCacheTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached result for key if present and unexpired.
func (c *Cache) Get(key string) (model.ClassificationResult, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expires) {
		return model.ClassificationResult{}, false
	}
	return entry.result, true
}

// Put stores a result under key.
func (c *Cache) Put(key string, result model.ClassificationResult) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{result: result, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Len reports the number of entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
