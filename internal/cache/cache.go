package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultTTL is how long fetched pages stay valid when no TTL is configured.
const DefaultTTL = 24 * time.Hour

// Cache stores page content with a time-to-live.
type Cache struct {
	store *gocache.Cache
}

// New creates a Cache whose entries expire after ttl. A non-positive ttl
// falls back to DefaultTTL.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		store: gocache.New(ttl, 2*ttl),
	}
}

// Get returns the cached value for key and whether a live entry was found.
func (c *Cache) Get(key string) (string, bool) {
	v, ok := c.store.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Set stores value under key with the cache's TTL.
func (c *Cache) Set(key, value string) {
	c.store.SetDefault(key, value)
}

// Invalidate removes key from the cache. Missing keys are a no-op.
func (c *Cache) Invalidate(key string) {
	c.store.Delete(key)
}
