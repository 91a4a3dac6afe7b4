package crm

import (
	"testing"
	"time"
)

func TestRateLimiterAllowsBurst(t *testing.T) {
	limiter := NewRateLimiter(50)

	start := time.Now()
	for i := 0; i < 50; i++ {
		limiter.WaitTurn()
	}
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Fatalf("burst within capacity blocked for %v", elapsed)
	}
}

func TestRateLimiterPacesOverBudget(t *testing.T) {
	limiter := NewRateLimiter(100)

	start := time.Now()
	// Twice the one-second capacity: the second half must be paced.
	for i := 0; i < 200; i++ {
		limiter.WaitTurn()
	}
	if elapsed := time.Since(start); elapsed < 500*time.Millisecond {
		t.Fatalf("200 calls at 100 rps finished in %v", elapsed)
	}
}

func TestRateLimiterZeroRateDefaults(t *testing.T) {
	limiter := NewRateLimiter(0)
	if limiter.rate != 1 || limiter.capacity != 1 {
		t.Fatalf("rate=%v capacity=%v", limiter.rate, limiter.capacity)
	}
}
