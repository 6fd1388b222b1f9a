// Package ratelimit provides token-bucket limiters keyed by an arbitrary
// string, used per upstream host and per inbound client IP.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config is the rate applied to every key that has no override.
type Config struct {
	RequestsPerSecond float64
	BurstSize         int
}

// DefaultConfig returns the default upstream budget.
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 10,
		BurstSize:         20,
	}
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter lazily creates one limiter per key.
type KeyedLimiter struct {
	mu       sync.Mutex
	limiters map[string]*entry
	defaults Config
	now      func() time.Time
}

// NewKeyedLimiter creates a limiter set using cfg for new keys.
func NewKeyedLimiter(cfg Config) *KeyedLimiter {
	return &KeyedLimiter{
		limiters: make(map[string]*entry),
		defaults: cfg,
		now:      time.Now,
	}
}

// Get returns the limiter for key, creating it on first use.
func (k *KeyedLimiter) Get(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, ok := k.limiters[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(rate.Limit(k.defaults.RequestsPerSecond), k.defaults.BurstSize)}
		k.limiters[key] = e
	}
	e.lastSeen = k.now()
	return e.limiter
}

// SetLimit overrides the rate for one key.
func (k *KeyedLimiter) SetLimit(key string, rps float64, burst int) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.limiters[key] = &entry{limiter: rate.NewLimiter(rate.Limit(rps), burst), lastSeen: k.now()}
}

// Wait blocks until key may proceed or ctx is done.
func (k *KeyedLimiter) Wait(ctx context.Context, key string) error {
	return k.Get(key).Wait(ctx)
}

// Allow reports whether key may proceed now without waiting.
func (k *KeyedLimiter) Allow(key string) bool {
	return k.Get(key).Allow()
}

// Prune drops limiters not used within idle and returns how many were removed.
func (k *KeyedLimiter) Prune(idle time.Duration) int {
	k.mu.Lock()
	defer k.mu.Unlock()

	cutoff := k.now().Add(-idle)
	removed := 0
	for key, e := range k.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(k.limiters, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (k *KeyedLimiter) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.limiters)
}
