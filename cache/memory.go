package cache

import (
	"sort"
	"sync"
	"time"
)

// cacheEntry holds a cached value with its expiry.
type cacheEntry struct {
	value   string
	expires time.Time // zero means never
}

func (e cacheEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && now.After(e.expires)
}

// InMemoryCache is a thread-safe in-memory cache with TTL support.
type InMemoryCache struct {
	cache map[string]cacheEntry
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
}

// NewInMemoryCache creates a new in-memory cache with the specified TTL.
// If ttlSeconds is 0 or negative, entries never expire.
func NewInMemoryCache(ttlSeconds int) *InMemoryCache {
	var ttl time.Duration
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	return &InMemoryCache{
		cache: make(map[string]cacheEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get retrieves a value from the cache.
func (c *InMemoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.cache[key]
	c.mu.RUnlock()

	if !ok {
		return "", false
	}

	if entry.expired(c.now()) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have refreshed it
		if current, ok := c.cache[key]; ok && current.expired(c.now()) {
			delete(c.cache, key)
		}
		c.mu.Unlock()
		return "", false
	}

	return entry.value, true
}

// Set stores a value in the cache.
func (c *InMemoryCache) Set(key string, value string) error {
	entry := cacheEntry{value: value}
	if c.ttl > 0 {
		entry.expires = c.now().Add(c.ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = entry
	return nil
}

// Delete removes a key.
func (c *InMemoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, key)
}

// Len returns the number of entries in the cache (including expired ones).
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Clear removes all entries from the cache.
func (c *InMemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]cacheEntry)
}

// Keys returns the sorted keys of all non-expired entries.
func (c *InMemoryCache) Keys() []string {
	entries, _ := c.Entries()
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Entries returns all non-expired entries as key-value pairs.
func (c *InMemoryCache) Entries() (map[string]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]string, len(c.cache))
	now := c.now()
	for key, entry := range c.cache {
		if entry.expired(now) {
			continue
		}
		result[key] = entry.value
	}

	return result, nil
}

// Verify InMemoryCache implements TranslationCache
var _ TranslationCache = (*InMemoryCache)(nil)
