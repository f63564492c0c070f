package extractor

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RateLimiter enforces a minimum interval between consecutive OCR
// invocations. Its count lives in instance state so callers share exactly
// the limiter they are handed, nothing process-wide.
type RateLimiter struct {
	mu          sync.Mutex
	lastCall    time.Time
	minInterval time.Duration
}

// NewRateLimiter creates a limiter with the given minimum interval between
// calls. A non-positive interval disables waiting.
func NewRateLimiter(minInterval time.Duration) *RateLimiter {
	return &RateLimiter{minInterval: minInterval}
}

// Wait blocks until the minimum interval since the previous call has
// elapsed. Returns an error if the context is cancelled while waiting.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if r.minInterval <= 0 {
		return nil
	}

	r.mu.Lock()
	now := time.Now()
	if r.lastCall.IsZero() || now.Sub(r.lastCall) >= r.minInterval {
		r.lastCall = now
		r.mu.Unlock()
		return nil
	}
	remaining := r.minInterval - now.Sub(r.lastCall)
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait: %w", ctx.Err())
	case <-time.After(remaining):
	}

	r.mu.Lock()
	r.lastCall = time.Now()
	r.mu.Unlock()
	return nil
}
