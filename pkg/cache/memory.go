package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

const defaultMemoryTTL = 7 * 24 * time.Hour

// MemoryItem stores a JSON-encoded value with expiration.
type MemoryItem struct {
	Value    []byte
	ExpireAt time.Time
}

// IsExpired checks if item has expired.
func (m *MemoryItem) IsExpired() bool {
	return time.Now().After(m.ExpireAt)
}

// MemoryCache implements Service using in-memory storage with LRU eviction.
type MemoryCache struct {
	data          map[string]*MemoryItem
	access        map[string]time.Time
	mutex         sync.Mutex
	maxSize       int
	cleanupTicker *time.Ticker
	done          chan struct{}
	closeOnce     sync.Once
}

// NewMemoryCache creates an in-memory cache.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{
		MaxSize:         1000,
		CleanupInterval: 5 * time.Minute,
	}

	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 1000
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}

	mc := &MemoryCache{
		data:          make(map[string]*MemoryItem),
		access:        make(map[string]time.Time),
		maxSize:       cfg.MaxSize,
		cleanupTicker: time.NewTicker(cfg.CleanupInterval),
		done:          make(chan struct{}),
	}

	go mc.cleanupExpired()
	return mc
}

func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	if _, exists := mc.data[key]; !exists && len(mc.data) >= mc.maxSize {
		mc.evictLRU()
	}

	if expiration <= 0 {
		expiration = defaultMemoryTTL
	}

	mc.data[key] = &MemoryItem{
		Value:    data,
		ExpireAt: time.Now().Add(expiration),
	}
	mc.access[key] = time.Now()
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	mc.mutex.Lock()
	item, exists := mc.data[key]
	if !exists || item.IsExpired() {
		if exists {
			delete(mc.data, key)
			delete(mc.access, key)
		}
		mc.mutex.Unlock()
		return ErrCacheMiss
	}
	mc.access[key] = time.Now()
	data := item.Value
	mc.mutex.Unlock()

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	for _, key := range keys {
		delete(mc.data, key)
		delete(mc.access, key)
	}
	return nil
}

func (mc *MemoryCache) Exists(_ context.Context, keys ...string) (bool, error) {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	for _, key := range keys {
		if item, ok := mc.data[key]; ok && !item.IsExpired() {
			return true, nil
		}
	}
	return false, nil
}

// Len returns the number of stored items, expired ones included.
func (mc *MemoryCache) Len() int {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()
	return len(mc.data)
}

func (mc *MemoryCache) evictLRU() {
	if len(mc.data) == 0 {
		return
	}

	var oldestKey string
	var oldestTime time.Time

	for key, accessTime := range mc.access {
		if oldestKey == "" || accessTime.Before(oldestTime) {
			oldestTime = accessTime
			oldestKey = key
		}
	}

	if oldestKey != "" {
		delete(mc.data, oldestKey)
		delete(mc.access, oldestKey)
	}
}

func (mc *MemoryCache) cleanupExpired() {
	for {
		select {
		case <-mc.done:
			return
		case <-mc.cleanupTicker.C:
		}

		mc.mutex.Lock()
		now := time.Now()
		for key, item := range mc.data {
			if now.After(item.ExpireAt) {
				delete(mc.data, key)
				delete(mc.access, key)
			}
		}
		mc.mutex.Unlock()
	}
}

// Close stops the cleanup goroutine.
func (mc *MemoryCache) Close() error {
	mc.closeOnce.Do(func() {
		mc.cleanupTicker.Stop()
		close(mc.done)
	})
	return nil
}
