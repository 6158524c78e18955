package viewer

import (
	"sync"
	"time"
)

// RateLimiter hands out batch starts per session. Each key earns rate starts
// per window, accrued continuously, and may hold at most rate unused starts.
// Keys idle long enough to be back at full allowance are forgotten.
type RateLimiter struct {
	mu       sync.Mutex
	keys     map[string]*allowance
	rate     int
	window   time.Duration
	lastScan time.Time
	now      func() time.Time
}

// allowance tracks one key as the time it will next be fully recharged.
// A key at or past full never needs to be remembered.
type allowance struct {
	full time.Time
}

func NewRateLimiter(ratePerWindow int, window time.Duration) *RateLimiter {
	if ratePerWindow <= 0 {
		ratePerWindow = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		keys:   make(map[string]*allowance),
		rate:   ratePerWindow,
		window: window,
		now:    time.Now,
	}
}

// interval is the time it takes to earn one start.
func (rl *RateLimiter) interval() time.Duration {
	return rl.window / time.Duration(rl.rate)
}

// Allow spends one start for key. When none is left it reports how long until
// the next one is earned.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	step := rl.interval()
	a, ok := rl.keys[key]
	if !ok || !a.full.After(now) {
		a = &allowance{full: now}
		rl.keys[key] = a
	}
	// Spending pushes the recharge point one interval out; more than a
	// window ahead means the allowance is empty.
	next := a.full.Add(step)
	if over := next.Sub(now) - rl.window; over > 0 {
		return false, over
	}
	a.full = next
	return true, 0
}

// sweep drops keys that have recharged completely. It runs at most once per
// window so Allow stays cheap.
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastScan) < rl.window {
		return
	}
	rl.lastScan = now
	for key, a := range rl.keys {
		if !a.full.After(now) {
			delete(rl.keys, key)
		}
	}
}

// Len reports how many keys are currently tracked.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.keys)
}
