// Package ratelimit provides fixed-window counters backed by an atomic
// key-value store.
package ratelimit

import (
	"context"
	"time"
)

// Store is an atomic counter store. A counter's TTL is set only by the
// increment that creates it, so a window is fixed from first use.
type Store interface {
	// IncrementWithExpiry adds points to key and returns the new count. When the
	// key does not exist it is created with the given window as TTL.
	IncrementWithExpiry(ctx context.Context, key string, points int64, window time.Duration) (int64, error)
	// TTL returns the remaining lifetime of key. ok is false when the key is
	// missing or carries no expiry.
	TTL(ctx context.Context, key string) (ttl time.Duration, ok bool, err error)
	// Get returns the current count, zero when the key is missing.
	Get(ctx context.Context, key string) (int64, error)
	// Delete removes key.
	Delete(ctx context.Context, key string) error
	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}

// Rate defines the rate limit configuration
type Rate struct {
	// Requests is the number of requests allowed in the window
	Requests int
	// Window is the time window for the rate limit
	Window time.Duration
}

// Info contains information about the current rate limit status
type Info struct {
	// Limit is the total number of requests allowed
	Limit int
	// Remaining is the number of requests remaining
	Remaining int
	// Reset is when the window ends
	Reset time.Time
}

// Limiter applies fixed-window limits to arbitrary keys.
type Limiter struct {
	store     Store
	keyPrefix string
	now       func() time.Time
}

func NewLimiter(store Store, keyPrefix string) *Limiter {
	return &Limiter{
		store:     store,
		keyPrefix: keyPrefix,
		now:       time.Now,
	}
}

func (l *Limiter) formatKey(key string) string {
	return l.keyPrefix + ":" + key
}

// Allow consumes one request from key's window. On store error the request is
// allowed and the error returned so the caller can log it.
func (l *Limiter) Allow(ctx context.Context, key string, rate Rate) (bool, Info, error) {
	now := l.now()
	windowKey := l.formatKey(key)

	count, err := l.store.IncrementWithExpiry(ctx, windowKey, 1, rate.Window)
	if err != nil {
		return true, Info{Limit: rate.Requests, Remaining: rate.Requests, Reset: now.Add(rate.Window)}, err
	}

	reset := now.Add(rate.Window)
	if ttl, ok, err := l.store.TTL(ctx, windowKey); err == nil && ok {
		reset = now.Add(ttl)
	}

	remaining := rate.Requests - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return count <= int64(rate.Requests), Info{
		Limit:     rate.Requests,
		Remaining: remaining,
		Reset:     reset,
	}, nil
}

// Reset clears the window for key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.store.Delete(ctx, l.formatKey(key))
}
