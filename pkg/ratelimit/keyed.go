// Package ratelimit keeps one token-bucket limiter per key (client IP, email address).
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultCleanupInterval = 5 * time.Minute
	defaultLimiterTTL      = 30 * time.Minute
)

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

// Keyed hands out a rate.Limiter per key. Idle limiters are swept during calls, so no
// background goroutine is needed.
type Keyed struct {
	limit rate.Limit
	burst int
	ttl   time.Duration

	mu        sync.Mutex
	entries   map[string]*limiterEntry
	lastSweep time.Time
	now       func() time.Time
}

func NewKeyed(limit rate.Limit, burst int) *Keyed {
	return &Keyed{
		limit:   limit,
		burst:   burst,
		ttl:     defaultLimiterTTL,
		entries: make(map[string]*limiterEntry),
		now:     time.Now,
	}
}

func (k *Keyed) get(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	if now.Sub(k.lastSweep) > defaultCleanupInterval {
		for key, e := range k.entries {
			if now.Sub(e.lastUse) > k.ttl {
				delete(k.entries, key)
			}
		}
		k.lastSweep = now
	}

	e, ok := k.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.entries[key] = e
	}
	e.lastUse = now
	return e.limiter
}

// Allow reports whether one more event for key may happen now.
func (k *Keyed) Allow(key string) bool {
	return k.get(key).AllowN(k.now(), 1)
}

// Reset forgets key, restoring its full burst.
func (k *Keyed) Reset(key string) {
	k.mu.Lock()
	delete(k.entries, key)
	k.mu.Unlock()
}

// Len returns the number of tracked keys.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
