// Package ratelimit throttles outbound calls to model and index servers.
package ratelimit

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBackoff applies when a 429 response carries no usable Retry-After.
const DefaultBackoff = 5 * time.Second

// Limiter is a token bucket with an additional backoff window that is set
// when the remote side answers 429 Too Many Requests.
type Limiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// New creates a limiter allowing requestsPerSecond sustained calls.
// Zero or negative means unlimited; backoff after 429 still applies.
func New(requestsPerSecond float64) *Limiter {
	limit := rate.Inf
	burst := 1
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
		burst = max(1, int(requestsPerSecond))
	}
	return &Limiter{limiter: rate.NewLimiter(limit, burst)}
}

// Wait blocks until a request can be made, honouring any backoff window.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return l.limiter.Wait(ctx)
}

// Backoff delays every future Wait until d has elapsed.
func (l *Limiter) Backoff(d time.Duration) {
	if d <= 0 {
		d = DefaultBackoff
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if at := time.Now().Add(d); at.After(l.retryAt) {
		l.retryAt = at
	}
}

// BackoffFromHeader calls Backoff with the seconds in a Retry-After header value.
func (l *Limiter) BackoffFromHeader(retryAfter string) {
	secs, err := strconv.Atoi(retryAfter)
	if err != nil {
		l.Backoff(0)
		return
	}
	l.Backoff(time.Duration(secs) * time.Second)
}

// Allow reports whether a request may proceed immediately.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}
	return l.limiter.Allow()
}
