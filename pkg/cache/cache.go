package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Service defines cache operations interface. Values are stored as JSON;
// Get decodes into dest.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, keys ...string) (bool, error)
	Close() error
}

var (
	_ Service = (*MemoryCache)(nil)
	_ Service = (*RedisCache)(nil)
	_ Service = (*LayeredCache)(nil)
)
