// Package ratelimit provides keyed token-bucket limiting for the public API.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limit allows Requests per Window. A bucket holds at most Requests tokens
// and refills continuously at Requests/Window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// PerSecond returns a limit of n requests per second.
func PerSecond(n int) Limit {
	return Limit{Requests: n, Window: time.Second}
}

// Unlimited reports whether l places no restriction.
func (l Limit) Unlimited() bool {
	return l.Requests <= 0 || l.Window <= 0
}

func (l Limit) rate() float64 {
	return float64(l.Requests) / l.Window.Seconds()
}

// Limiter implements token bucket rate limiting per key (API key, client
// IP).
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	tokens   float64
	lastFill time.Time
	limit    Limit
}

// New creates a new rate limiter.
func New() *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Allow checks whether key may proceed under limit.
func (l *Limiter) Allow(key string, limit Limit) bool {
	ok, _ := l.Reserve(key, limit)
	return ok
}

// Reserve takes a token for key when one is available. When none is, it
// reports how long until the next token.
func (l *Limiter) Reserve(key string, limit Limit) (bool, time.Duration) {
	if limit.Unlimited() {
		return true, 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.getOrCreateBucket(key, limit)
	b.refill(l.now())

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	missing := 1 - b.tokens
	return false, time.Duration(missing / limit.rate() * float64(time.Second))
}

// Wait blocks until limit allows key or the context is cancelled.
func (l *Limiter) Wait(ctx context.Context, key string, limit Limit) error {
	for {
		ok, retryAfter := l.Reserve(key, limit)
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryAfter):
		}
	}
}

// Reset clears the rate limit state for key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

// Prune drops buckets that have refilled completely, which are
// indistinguishable from new ones. It returns the number dropped.
func (l *Limiter) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	n := 0
	for key, b := range l.buckets {
		b.refill(now)
		if b.tokens >= float64(b.limit.Requests) {
			delete(l.buckets, key)
			n++
		}
	}
	return n
}

func (l *Limiter) getOrCreateBucket(key string, limit Limit) *bucket {
	b, ok := l.buckets[key]
	if !ok || b.limit != limit {
		b = &bucket{
			tokens:   float64(limit.Requests), // start full
			lastFill: l.now(),
			limit:    limit,
		}
		l.buckets[key] = b
	}
	return b
}

func (b *bucket) refill(now time.Time) {
	elapsed := now.Sub(b.lastFill).Seconds()
	if elapsed <= 0 {
		return
	}
	b.tokens += elapsed * b.limit.rate()
	if capacity := float64(b.limit.Requests); b.tokens > capacity {
		b.tokens = capacity // cap at burst size = requests per window
	}
	b.lastFill = now
}
