package api

import "sync"

// Cache stores raw response bodies keyed by request identity. Each entry
// carries a set of tags; invalidating a tag drops every entry that holds it.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	body []byte
	tags map[string]struct{}
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: map[string]cacheEntry{}}
}

// Get returns the cached body for key.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.body, true
}

// Set stores body under key with the given tags, replacing any previous entry.
func (c *Cache) Set(key string, body []byte, tags ...string) {
	e := cacheEntry{body: body, tags: make(map[string]struct{}, len(tags))}
	for _, t := range tags {
		e.tags[t] = struct{}{}
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}

// Invalidate drops every entry carrying any of tags and returns how many were dropped.
func (c *Cache) Invalidate(tags ...string) int {
	if len(tags) == 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for key, e := range c.entries {
		for _, t := range tags {
			if _, ok := e.tags[t]; ok {
				delete(c.entries, key)
				n++
				break
			}
		}
	}
	return n
}

// Reset drops everything.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.entries = map[string]cacheEntry{}
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
