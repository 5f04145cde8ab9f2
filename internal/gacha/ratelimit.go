package gacha

import (
	"context"
	"sync"
	"susrolld/internal/structures"
	"time"
)

const (
	rateWindow     = 60 * time.Second
	heavyThreshold = 10
	busyThreshold  = 5
	heavyDelay     = 2000 * time.Millisecond
	busyDelay      = 1000 * time.Millisecond
)

// RateLimiter smooths outbound calls to the character source. It keeps
// a request count over a trailing window and escalates the minimum gap
// between calls as recent volume grows. Not a token bucket: bursts are
// smoothed, not strictly capped.
type RateLimiter struct {
	mu           sync.Mutex
	requestCount int
	lastRequest  time.Time
	minDelay     time.Duration

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewRateLimiter(conf *structures.Config) *RateLimiter {
	return &RateLimiter{
		minDelay: conf.Source.MinDelay,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// Throttle blocks until enough time has passed since the previous call,
// then records the call. The effective delay is minDelay, raised to 1s
// after 5 and 2s after 10 requests within the trailing 60 seconds.
// Callers are serialized; a context cancellation aborts the wait
// without recording a request.
func (rl *RateLimiter) Throttle(ctx context.Context) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastRequest) > rateWindow {
		rl.requestCount = 0
	}

	delay := rl.minDelay
	if rl.requestCount > heavyThreshold {
		delay = heavyDelay
	} else if rl.requestCount > busyThreshold {
		delay = busyDelay
	}

	if elapsed := now.Sub(rl.lastRequest); elapsed < delay {
		if err := rl.sleep(ctx, delay-elapsed); err != nil {
			return err
		}
	}

	rl.lastRequest = rl.now()
	rl.requestCount++
	return nil
}

// Reset clears the request tracking. Used on full data wipes.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.requestCount = 0
	rl.lastRequest = time.Time{}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
