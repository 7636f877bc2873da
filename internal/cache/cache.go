package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// item wraps cached data with its expiry
type item struct {
	data      interface{}
	expiresAt time.Time
}

// TTLCache is a small in-process LRU cache with per-entry TTL, used for
// responses that tolerate short staleness (the trending feed).
type TTLCache struct {
	lruCache *lru.Cache[string, item]
}

func New(size int) (*TTLCache, error) {
	l, err := lru.New[string, item](size)
	if err != nil {
		return nil, err
	}
	return &TTLCache{lruCache: l}, nil
}

// Set stores data under key for ttl.
func (c *TTLCache) Set(key string, data interface{}, ttl time.Duration) {
	c.lruCache.Add(key, item{
		data:      data,
		expiresAt: time.Now().Add(ttl),
	})
}

// Get returns the cached data, or nil if missing or expired.
func (c *TTLCache) Get(key string) interface{} {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return nil
	}

	if time.Now().After(val.expiresAt) {
		c.lruCache.Remove(key)
		return nil
	}

	return val.data
}

// Delete removes a key.
func (c *TTLCache) Delete(key string) {
	c.lruCache.Remove(key)
}
