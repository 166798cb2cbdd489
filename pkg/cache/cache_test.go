package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type payload struct {
	Asset string  `json:"asset"`
	Price float64 `json:"price"`
}

func TestMemoryCacheRoundTripTyped(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	if err := mc.Set(ctx, "k", payload{Asset: "bitcoin", Price: 105.5}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var got payload
	if err := mc.Get(ctx, "k", &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Asset != "bitcoin" || got.Price != 105.5 {
		t.Fatalf("got %+v", got)
	}

	var s string
	_ = mc.Set(ctx, "s", "plain", 0)
	if err := mc.Get(ctx, "s", &s); err != nil || s != "plain" {
		t.Fatalf("string round trip: %q %v", s, err)
	}
}

func TestMemoryCacheMissAndExpiry(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	var got payload
	if err := mc.Get(ctx, "missing", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss, got %v", err)
	}

	_ = mc.Set(ctx, "short", payload{}, time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	if err := mc.Get(ctx, "short", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expired miss, got %v", err)
	}
	if ok, _ := mc.Exists(ctx, "short"); ok {
		t.Fatalf("expired key reported as existing")
	}
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryMaxSize(2), WithMemoryCleanup(time.Hour))
	defer mc.Close()

	_ = mc.Set(ctx, "a", 1, 0)
	time.Sleep(time.Millisecond)
	_ = mc.Set(ctx, "b", 2, 0)
	time.Sleep(time.Millisecond)
	var v int
	_ = mc.Get(ctx, "a", &v) // a is now more recent than b
	time.Sleep(time.Millisecond)
	_ = mc.Set(ctx, "c", 3, 0)

	if mc.Len() != 2 {
		t.Fatalf("len = %d", mc.Len())
	}
	if ok, _ := mc.Exists(ctx, "b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if ok, _ := mc.Exists(ctx, "a", "c"); !ok {
		t.Fatalf("a and c should remain")
	}

	// Overwriting an existing key must not evict another one.
	_ = mc.Set(ctx, "c", 4, 0)
	if mc.Len() != 2 {
		t.Fatalf("len after overwrite = %d", mc.Len())
	}
}

func TestMemoryCacheDelete(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	_ = mc.Set(ctx, "a", 1, 0)
	_ = mc.Delete(ctx, "a")
	if ok, _ := mc.Exists(ctx, "a"); ok {
		t.Fatalf("a should be gone")
	}
	if err := mc.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestLayeredCacheReadsThrough(t *testing.T) {
	ctx := context.Background()
	remote := NewMemoryCache()
	lc := NewLayeredCache(remote, WithLayeredMemorySize(10))
	defer lc.Close()

	_ = remote.Set(ctx, "k", payload{Asset: "solana", Price: 150}, time.Minute)

	var got payload
	if err := lc.Get(ctx, "k", &got); err != nil || got.Asset != "solana" {
		t.Fatalf("read-through: %+v %v", got, err)
	}
	_ = remote.Delete(ctx, "k")
	got = payload{}
	if err := lc.Get(ctx, "k", &got); err != nil || got.Price != 150 {
		t.Fatalf("expected L1 hit after remote delete: %+v %v", got, err)
	}

	_ = lc.Set(ctx, "w", payload{Asset: "xrp"}, time.Minute)
	if ok, _ := remote.Exists(ctx, "w"); !ok {
		t.Fatalf("write-through missing in remote")
	}
	_ = lc.Delete(ctx, "w")
	if err := lc.Get(ctx, "w", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after delete, got %v", err)
	}
}

func TestGenerateKeyWithParams(t *testing.T) {
	if got := GenerateKeyWithParams("outcome", "bitcoin", "7d"); got != "outcome:bitcoin:7d" {
		t.Fatalf("got %q", got)
	}
	if got := GenerateKey("outcome", "x"); got != "outcome:x" {
		t.Fatalf("got %q", got)
	}
}
