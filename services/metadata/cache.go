package metadata

import (
	"sync"
	"time"
)

// memoryCache is a mutex-guarded in-memory TTL cache for provider
// responses. Expired entries are indistinguishable from absent ones; both
// make the caller re-fetch. Failures are never stored, so there is no
// negative caching.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	ttl     time.Duration
}

type cacheEntry struct {
	value     any
	fetchedAt time.Time
}

func newMemoryCache(ttl time.Duration) *memoryCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &memoryCache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
	}
}

// get returns the cached value for key when present and unexpired.
func (c *memoryCache) get(key string) (any, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Since(entry.fetchedAt) > c.ttl {
		return nil, false
	}
	return entry.value, true
}

// set stores value under key with a fresh timestamp.
func (c *memoryCache) set(key string, value any) {
	c.mu.Lock()
	c.entries[key] = &cacheEntry{value: value, fetchedAt: time.Now()}
	c.mu.Unlock()
}

// sweep drops expired entries so a long-lived process does not accumulate
// stale keys. Called periodically from the service.
func (c *memoryCache) sweep() {
	c.mu.Lock()
	for key, entry := range c.entries {
		if time.Since(entry.fetchedAt) > c.ttl {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

// len reports the number of entries, expired or not. Used in tests.
func (c *memoryCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
