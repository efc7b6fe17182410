package server

import (
	"sync"
	"time"
)

// rateLimiter counts requests per key in fixed windows. Counters reset when
// a window elapses; stale keys are pruned as windows roll over.
type rateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*requestWindow
}

type requestWindow struct {
	start time.Time
	seen  int
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:   limit,
		window:  window,
		now:     func() time.Time { return time.Now().UTC() },
		windows: make(map[string]*requestWindow),
	}
}

func (r *rateLimiter) Allow(key string) bool {
	if key == "" {
		return false
	}

	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.windows[key]
	if current == nil || now.Sub(current.start) > r.window {
		r.pruneLocked(now)
		current = &requestWindow{start: now}
		r.windows[key] = current
	}

	if current.seen >= r.limit {
		return false
	}
	current.seen++
	return true
}

func (r *rateLimiter) pruneLocked(now time.Time) {
	for key, w := range r.windows {
		if now.Sub(w.start) > r.window {
			delete(r.windows, key)
		}
	}
}
