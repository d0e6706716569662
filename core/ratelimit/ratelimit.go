package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter caps outbound provider API calls using a token bucket with capacity
// Burst and refill rate PerSecond tokens per second. One Limiter is constructed
// at process start and passed by handle to every fetch path; the token bucket is
// the only state shared between concurrent callers and is safe without external
// locking.
//
// No cross-process coordination is attempted: in a multi-replica deployment each
// process enforces its own budget.
type Limiter struct {
	bucket *rate.Limiter
}

// New creates a limiter that refills perSecond tokens per second with a bucket
// capacity of burst tokens. Non-positive values fall back to a conservative
// 1 req/s with a single-token bucket.
func New(perSecond float64, burst int) *Limiter {
	if perSecond <= 0 {
		perSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{bucket: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// TryAcquire consumes one token if available and returns false otherwise.
// It never blocks; callers that receive false must back off themselves.
func (l *Limiter) TryAcquire() bool {
	return l.bucket.Allow()
}

// Wait blocks until a token is available or the context is cancelled.
// The paginated fetch path uses this before every HTTP request.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.bucket.Wait(ctx)
}
