package repository

import (
	"context"
	"sync"
	"time"
)

// MemoryResponseCache is the in-process fallback of the gateway read cache.
type MemoryResponseCache struct {
	entries sync.Map
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	body      []byte
	expiresAt time.Time
}

func NewMemoryResponseCache(ttl time.Duration) *MemoryResponseCache {
	return &MemoryResponseCache{ttl: ttl, now: time.Now}
}

func (c *MemoryResponseCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, ok := c.entries.Load(key)
	if !ok {
		return nil, false, nil
	}
	entry := val.(*cacheEntry)
	if c.now().After(entry.expiresAt) {
		c.entries.Delete(key)
		return nil, false, nil
	}
	return entry.body, true, nil
}

func (c *MemoryResponseCache) Set(ctx context.Context, key string, body []byte) error {
	c.entries.Store(key, &cacheEntry{body: body, expiresAt: c.now().Add(c.ttl)})
	return nil
}

func (c *MemoryResponseCache) Flush(ctx context.Context) error {
	c.entries.Range(func(key, _ any) bool {
		c.entries.Delete(key)
		return true
	})
	return nil
}
