package ratelimiter

import (
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// FixedWindowRateLimiter allows limit requests per key in each window. A
// key's window starts with its first request.
type FixedWindowRateLimiter struct {
	sync.Mutex
	clients map[string]*window // keyed by client IP
	limit   int
	window  time.Duration
	now     func() time.Time
}

func NewFixedWindowLimiter(limit int, win time.Duration) *FixedWindowRateLimiter {
	return &FixedWindowRateLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		window:  win,
		now:     time.Now,
	}
}

// Allow reports whether key may proceed and, if not, how long until its
// window resets.
func (rl *FixedWindowRateLimiter) Allow(key string) (bool, time.Duration) {
	rl.Lock()
	defer rl.Unlock()

	now := rl.now()
	w, exists := rl.clients[key]
	if !exists || !now.Before(w.resetAt) {
		rl.evictExpired(now)
		rl.clients[key] = &window{count: 1, resetAt: now.Add(rl.window)}
		return true, 0
	}

	if w.count < rl.limit {
		w.count++
		return true, 0
	}

	return false, w.resetAt.Sub(now)
}

// evictExpired drops finished windows so idle clients do not accumulate.
func (rl *FixedWindowRateLimiter) evictExpired(now time.Time) {
	for key, w := range rl.clients {
		if !now.Before(w.resetAt) {
			delete(rl.clients, key)
		}
	}
}
