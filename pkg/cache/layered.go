package cache

import (
	"context"
	"time"
)

// LayeredCache implements two-level cache (L1: Memory, L2: usually Redis).
type LayeredCache struct {
	memCache *MemoryCache
	remote   Service
}

// NewLayeredCache puts an in-memory layer in front of remote.
func NewLayeredCache(remote Service, opts ...LayeredOption) *LayeredCache {
	cfg := &LayeredConfig{
		MemoryMaxSize: 1000,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return &LayeredCache{
		memCache: NewMemoryCache(WithMemoryMaxSize(cfg.MemoryMaxSize)),
		remote:   remote,
	}
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	// Write-through: remote first, then memory
	if err := lc.remote.Set(ctx, key, value, expiration); err != nil {
		return err
	}
	_ = lc.memCache.Set(ctx, key, value, expiration)
	return nil
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := lc.memCache.Get(ctx, key, dest); err == nil {
		return nil
	}

	if err := lc.remote.Get(ctx, key, dest); err != nil {
		return err
	}

	// The remote TTL is unknown here; keep the L1 copy short.
	_ = lc.memCache.Set(ctx, key, dest, time.Minute)
	return nil
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.memCache.Delete(ctx, keys...)
	return lc.remote.Delete(ctx, keys...)
}

func (lc *LayeredCache) Exists(ctx context.Context, keys ...string) (bool, error) {
	return lc.remote.Exists(ctx, keys...)
}

// Close closes both cache layers.
func (lc *LayeredCache) Close() error {
	_ = lc.memCache.Close()
	return lc.remote.Close()
}
