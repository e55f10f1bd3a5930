// Package cache provides key-value stores for translations and preferences.
package cache

// TranslationCache is the interface for translation caching.
type TranslationCache interface {
	// Get retrieves a cached value. Returns empty string and false if not found or expired.
	Get(key string) (string, bool)

	// Set stores a value in the cache.
	Set(key string, value string) error
}

// Enumerable is implemented by caches whose live entries can be listed.
type Enumerable interface {
	Entries() (map[string]string, error)
}
