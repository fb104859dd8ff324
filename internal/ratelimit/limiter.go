package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter throttles inbound requests using a token bucket
type Limiter struct {
	limiter        *rate.Limiter
	requestsPerSec float64
	burstSize      int
	mu             sync.RWMutex
	allowedCount   int64
	rejectedCount  int64
}

// NewLimiter creates a new limiter
func NewLimiter(requestsPerSecond float64, burstSize int) *Limiter {
	return &Limiter{
		limiter:        rate.NewLimiter(rate.Limit(requestsPerSecond), burstSize),
		requestsPerSec: requestsPerSecond,
		burstSize:      burstSize,
	}
}

// Allow checks if a request can proceed right now
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	allowed := l.limiter.Allow()
	if allowed {
		l.allowedCount++
	} else {
		l.rejectedCount++
	}
	return allowed
}

// RetryAfter estimates how long until the next token is available
func (l *Limiter) RetryAfter() time.Duration {
	r := l.limiter.Reserve()
	defer r.Cancel()
	return r.Delay()
}

// GetStats returns current statistics
func (l *Limiter) GetStats() (allowed, rejected int64) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.allowedCount, l.rejectedCount
}

// GetLimit returns current rate limit settings
func (l *Limiter) GetLimit() (requestsPerSec float64, burstSize int) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.requestsPerSec, l.burstSize
}

// Middleware rejects requests with 429 once the bucket is empty.
// onReject, if set, is called for every rejected request.
func (l *Limiter) Middleware(onReject func(r *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow() {
				if onReject != nil {
					onReject(r)
				}
				seconds := int(l.RetryAfter().Seconds()) + 1
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				http.Error(w, "Too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
