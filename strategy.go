package pacer

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Strategy decides how long to wait before the next request to an endpoint
// may be issued. Implementations may block the calling goroutine; they must
// honor context cancellation while blocked.
//
// A Strategy instance carries per-endpoint state and must not be shared
// between unrelated endpoints.
type Strategy interface {
	// Wait blocks until it is permissible to issue the next request, or
	// until the context is done. A nil return means the request may proceed.
	Wait(ctx context.Context) error
}

// StrategyFactory builds a Strategy from a minimum-interval duration. The
// Client uses its configured factory whenever a rate limit is given as a
// plain duration rather than a ready-made Strategy.
type StrategyFactory func(minInterval time.Duration) Strategy

// NoOp is a Strategy that never waits. It is the fallback when no rate limit
// is configured for an endpoint.
type NoOp struct{}

// Wait returns immediately.
func (NoOp) Wait(ctx context.Context) error { return nil }

// FixedInterval enforces a minimum spacing between consecutive requests.
// Successive Wait calls on the same instance never complete closer together
// than the configured interval, including under concurrent callers: the
// read-wait-update sequence runs under a per-instance lock.
type FixedInterval struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

// NewFixedInterval creates a FixedInterval strategy. A zero interval never
// delays but still records request timestamps.
//
// Example:
//
//	s := pacer.NewFixedInterval(500 * time.Millisecond)
//	client.ConfigureLimit("https://api.example.com/v1/items", s)
func NewFixedInterval(minInterval time.Duration) *FixedInterval {
	return &FixedInterval{interval: minInterval}
}

// Wait blocks until at least the configured interval has passed since the
// previous Wait on this instance returned. The first call never waits.
func (s *FixedInterval) Wait(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.last.IsZero() {
		if remaining := s.interval - time.Since(s.last); remaining > 0 {
			t := time.NewTimer(remaining)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
			}
		}
	}

	s.last = time.Now()
	return nil
}

// Interval returns the configured minimum interval.
func (s *FixedInterval) Interval() time.Duration { return s.interval }

// TokenBucket is a Strategy backed by golang.org/x/time/rate. It allows
// bursts up to the bucket size and refills at the configured rate, which
// suits endpoints with "N requests per second" style limits better than a
// strict minimum spacing.
type TokenBucket struct {
	limiter *rate.Limiter
}

// NewTokenBucket creates a token bucket strategy refilling at r events per
// second with the given burst capacity.
//
// Example:
//
//	// 10 requests per second, bursts of up to 5.
//	s := pacer.NewTokenBucket(rate.Limit(10), 5)
func NewTokenBucket(r rate.Limit, burst int) *TokenBucket {
	return &TokenBucket{limiter: rate.NewLimiter(r, burst)}
}

// Wait reserves a token, blocking until one is available or the context is
// done.
func (s *TokenBucket) Wait(ctx context.Context) error {
	return s.limiter.Wait(ctx)
}
