package google

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ServiceType identifies a Google API service for rate limiting purposes.
type ServiceType string

const (
	// ServiceGmail is the Gmail API service (reads and sends).
	ServiceGmail ServiceType = "gmail"
	// ServiceCalendar is the Google Calendar API service.
	ServiceCalendar ServiceType = "calendar"
)

// DefaultBackoff is applied after a 429 without a usable Retry-After.
const DefaultBackoff = 60 * time.Second

// RateLimitConfig holds rate limiting configuration for a service.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// DefaultRateLimits are well below Google's per-user quotas.
var DefaultRateLimits = map[ServiceType]RateLimitConfig{
	ServiceGmail:    {RequestsPerSecond: 2.0, BurstSize: 5},
	ServiceCalendar: {RequestsPerSecond: 5.0, BurstSize: 10},
}

// RateLimiter is a token bucket with a backoff window for 429 responses.
type RateLimiter struct {
	limiter *rate.Limiter

	mu      sync.Mutex
	retryAt time.Time
}

// NewRateLimiter creates a rate limiter for service.
func NewRateLimiter(service ServiceType) *RateLimiter {
	cfg, ok := DefaultRateLimits[service]
	if !ok {
		cfg = RateLimitConfig{RequestsPerSecond: 5.0, BurstSize: 10}
	}
	return NewRateLimiterWithConfig(cfg)
}

// NewRateLimiterWithConfig creates a rate limiter with custom configuration.
func NewRateLimiterWithConfig(cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
	}
}

// Wait blocks until a request may be made, honouring any backoff window.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return r.limiter.Wait(ctx)
}

// Backoff delays further requests by d, or DefaultBackoff when d is not positive.
func (r *RateLimiter) Backoff(d time.Duration) {
	if d <= 0 {
		d = DefaultBackoff
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retryAt = time.Now().Add(d)
}

// Allow reports whether a request may be made immediately.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}
	return r.limiter.Allow()
}
