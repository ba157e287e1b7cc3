// Package ratelimit provides per-client request throttling for the serving
// layer using in-memory token buckets.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config holds rate limiter configuration
type Config struct {
	IPLimitPerMin   int // IP-based rate limit per minute
	BurstMultiplier int // Burst capacity multiplier
}

// DefaultConfig returns default rate limiting configuration
func DefaultConfig() Config {
	return Config{
		IPLimitPerMin:   60,
		BurstMultiplier: 2,
	}
}

// Result represents the result of a rate limit check
type Result struct {
	Allowed    bool
	Limit      int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// RateLimiter keeps one token bucket per client key. Buckets idle longer
// than the cleanup horizon are dropped so the map cannot grow unbounded.
type RateLimiter struct {
	config Config

	mu       sync.Mutex
	limiters map[string]*clientLimiter
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new in-memory rate limiter and starts its
// cleanup loop.
func NewRateLimiter(config Config) *RateLimiter {
	rl := &RateLimiter{
		config:   config,
		limiters: make(map[string]*clientLimiter),
	}
	go rl.cleanup()
	return rl
}

// AllowIP checks whether the given IP may make a request under the
// per-minute limit.
func (rl *RateLimiter) AllowIP(ip string) *Result {
	return rl.allow("ip:"+ip, rl.config.IPLimitPerMin, time.Minute)
}

func (rl *RateLimiter) allow(key string, limit int, period time.Duration) *Result {
	rl.mu.Lock()
	cl, exists := rl.limiters[key]
	if !exists {
		rps := rate.Limit(float64(limit) / period.Seconds())
		burst := limit * rl.config.BurstMultiplier
		if burst < 5 {
			burst = 5
		}
		cl = &clientLimiter{limiter: rate.NewLimiter(rps, burst)}
		rl.limiters[key] = cl
	}
	cl.lastSeen = time.Now()
	rl.mu.Unlock()

	if cl.limiter.Allow() {
		return &Result{Allowed: true, Limit: limit}
	}

	retryAfter := cl.limiter.Reserve()
	delay := retryAfter.Delay()
	retryAfter.Cancel()

	return &Result{
		Allowed:    false,
		Limit:      limit,
		ResetAt:    time.Now().Add(delay),
		RetryAfter: delay,
	}
}

// cleanup drops buckets not seen for ten minutes.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-10 * time.Minute)
		rl.mu.Lock()
		for key, cl := range rl.limiters {
			if cl.lastSeen.Before(cutoff) {
				delete(rl.limiters, key)
			}
		}
		rl.mu.Unlock()
	}
}
