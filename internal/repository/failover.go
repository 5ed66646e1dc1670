package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// ResponseCache is implemented by the redis and in-memory caches.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, body []byte) error
	Flush(ctx context.Context) error
}

const recoveryInterval = time.Minute

// FailoverResponseCache prefers the primary cache and switches to the fallback when it errors.
// The primary is retried once per recoveryInterval.
type FailoverResponseCache struct {
	primary  ResponseCache
	fallback ResponseCache
	logger   *zerolog.Logger
	isDown   atomic.Bool

	mu        sync.Mutex
	lastCheck time.Time
	now       func() time.Time
}

func NewFailoverResponseCache(primary, fallback ResponseCache, logger *zerolog.Logger) *FailoverResponseCache {
	return &FailoverResponseCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

func (c *FailoverResponseCache) markDown(err error) {
	c.logger.Error().Err(err).Msg("Primary response cache failed, falling back to memory")
	c.isDown.Store(true)
	c.mu.Lock()
	c.lastCheck = c.now()
	c.mu.Unlock()
}

// usePrimary is true while the primary is healthy or when a recovery attempt is due.
func (c *FailoverResponseCache) usePrimary() bool {
	if !c.isDown.Load() {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.now().Sub(c.lastCheck) > recoveryInterval {
		c.lastCheck = c.now()
		return true
	}
	return false
}

func (c *FailoverResponseCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c.usePrimary() {
		body, ok, err := c.primary.Get(ctx, key)
		if err == nil {
			c.isDown.Store(false)
			return body, ok, nil
		}
		c.markDown(err)
	}
	return c.fallback.Get(ctx, key)
}

func (c *FailoverResponseCache) Set(ctx context.Context, key string, body []byte) error {
	if c.usePrimary() {
		err := c.primary.Set(ctx, key, body)
		if err == nil {
			c.isDown.Store(false)
			return nil
		}
		c.markDown(err)
	}
	return c.fallback.Set(ctx, key, body)
}

// Flush clears both caches so that a recovered primary never serves stale entries.
func (c *FailoverResponseCache) Flush(ctx context.Context) error {
	if err := c.primary.Flush(ctx); err != nil {
		c.markDown(err)
	}
	return c.fallback.Flush(ctx)
}
