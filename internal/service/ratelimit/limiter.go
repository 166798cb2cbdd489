package ratelimit

import (
    "sync"
    "time"

    "golang.org/x/time/rate"
)

type entry struct {
    lim  *rate.Limiter
    seen time.Time
}

// Limiter keeps one token bucket per key (e.g. client address).
type Limiter struct {
    mu    sync.Mutex
    m     map[string]*entry
    limit rate.Limit
    burst int
    idle  time.Duration
    now   func() time.Time
}

// New allows rps requests per second per key with the given burst.
// A non-positive rps disables limiting.
func New(rps float64, burst int) *Limiter {
    if burst < 1 {
        burst = 1
    }
    lim := rate.Limit(rps)
    if rps <= 0 {
        lim = rate.Inf
    }
    return &Limiter{
        m:     make(map[string]*entry),
        limit: lim,
        burst: burst,
        idle:  10 * time.Minute,
        now:   time.Now,
    }
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
    now := l.now()
    l.mu.Lock()
    e, ok := l.m[key]
    if !ok {
        e = &entry{lim: rate.NewLimiter(l.limit, l.burst)}
        l.m[key] = e
        l.evictLocked(now)
    }
    e.seen = now
    l.mu.Unlock()
    return e.lim.AllowN(now, 1)
}

// evictLocked drops buckets idle for longer than l.idle.
func (l *Limiter) evictLocked(now time.Time) {
    for k, e := range l.m {
        if now.Sub(e.seen) > l.idle && !e.seen.IsZero() {
            delete(l.m, k)
        }
    }
}

// Len reports how many keys are tracked.
func (l *Limiter) Len() int {
    l.mu.Lock()
    defer l.mu.Unlock()
    return len(l.m)
}
