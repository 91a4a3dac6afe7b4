package crm

import (
	"sync"
	"time"
)

// RateLimiter paces outbound Pipedrive calls with a token bucket: the
// budget refills continuously at the configured rate and allows a burst of
// up to one second's worth of requests, matching Pipedrive's rolling-window
// quota better than fixed spacing would.
type RateLimiter struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64
	last     time.Time
}

func NewRateLimiter(requestsPerSecond int) *RateLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	r := float64(requestsPerSecond)
	return &RateLimiter{tokens: r, capacity: r, rate: r, last: time.Now()}
}

// WaitTurn takes one token, sleeping until the bucket can cover the debt.
func (r *RateLimiter) WaitTurn() {
	r.mu.Lock()
	now := time.Now()
	r.tokens += now.Sub(r.last).Seconds() * r.rate
	if r.tokens > r.capacity {
		r.tokens = r.capacity
	}
	r.last = now
	r.tokens--

	var wait time.Duration
	if r.tokens < 0 {
		wait = time.Duration(-r.tokens / r.rate * float64(time.Second))
	}
	r.mu.Unlock()

	if wait > 0 {
		time.Sleep(wait)
	}
}
