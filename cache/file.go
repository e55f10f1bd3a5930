package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileCache is a key-value store persisted as a JSON object on disk.
// Every Set rewrites the file atomically (write to temp file, rename).
type FileCache struct {
	path string
	mu   sync.RWMutex
	data map[string]string
}

// OpenFileCache loads path, or starts empty when it does not exist yet.
// The path is provided by the caller and is intentionally user-controlled.
func OpenFileCache(path string) (*FileCache, error) {
	c := &FileCache{path: path, data: make(map[string]string)}

	raw, err := os.ReadFile(path) // #nosec G304 - path is intentionally user-provided
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &c.data); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
	}

	return c, nil
}

// Get retrieves a value.
func (c *FileCache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.data[key]
	return val, ok
}

// Set stores a value and persists the store.
func (c *FileCache) Set(key string, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev, had := c.data[key]
	c.data[key] = value

	if err := c.flush(); err != nil {
		if had {
			c.data[key] = prev
		} else {
			delete(c.data, key)
		}
		return err
	}
	return nil
}

// Entries returns a copy of all entries.
func (c *FileCache) Entries() (map[string]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]string, len(c.data))
	for k, v := range c.data {
		out[k] = v
	}
	return out, nil
}

// Path returns the backing file path.
func (c *FileCache) Path() string {
	return c.path
}

// flush writes the store to disk (must be called with lock held).
func (c *FileCache) flush() error {
	raw, err := json.MarshalIndent(c.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".agrivaani-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("writing store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing store: %w", err)
	}

	return os.Rename(tmp.Name(), c.path)
}

// Verify FileCache implements TranslationCache
var _ TranslationCache = (*FileCache)(nil)
var _ Enumerable = (*FileCache)(nil)
