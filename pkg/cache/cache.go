// Package cache holds the process-wide key/value store shared by every
// request the mock server handles.
//
// Templates read from it, and scripted or dynamic responses write to it.
// The store is created once when the server starts and seeded by the
// hosting process (for example with the server's own base URL under
// MockServerKey) before the first request arrives.
package cache

import (
	"maps"
	"sync"
)

// MockServerKey is the key the server seeds with its own base URL.
const MockServerKey = "mockServer"

// Cache is a thread-safe string-keyed store.
// Reads share a read lock; writes are exclusive.
type Cache struct {
	mu     sync.RWMutex
	values map[string]any
}

// New creates a cache, optionally seeded with initial values.
// The seed map is copied.
func New(seed map[string]any) *Cache {
	values := make(map[string]any, len(seed))
	maps.Copy(values, seed)
	return &Cache{values: values}
}

// Get returns the value stored under key.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok
}

// Set stores value under key. The change is visible to all subsequent requests.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

// Delete removes key. Returns true if the key was present.
func (c *Cache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.values[key]; !ok {
		return false
	}
	delete(c.values, key)
	return true
}

// Len returns the number of shared keys.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}

// Keys returns the shared keys in no particular order.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	return keys
}

// Snapshot returns a copy of the shared values merged with adding.
// On a key collision the value from adding wins. The shared state is not
// modified.
func (c *Cache) Snapshot(adding map[string]any) map[string]any {
	c.mu.RLock()
	out := make(map[string]any, len(c.values)+len(adding))
	maps.Copy(out, c.values)
	c.mu.RUnlock()

	maps.Copy(out, adding)
	return out
}
