// Package ratelimit implements sliding-window request admission control
// keyed by user. At most maxRequests calls are admitted within any trailing
// window; rejected calls are not recorded.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter tracks request instants per key inside a trailing time window.
// Safe for concurrent use.
type Limiter struct {
	maxRequests int
	window      time.Duration

	mu       sync.Mutex
	requests map[string][]time.Time

	now func() time.Time
}

// NewLimiter creates a limiter admitting at most maxRequests per key within
// any trailing window.
func NewLimiter(maxRequests int, window time.Duration) *Limiter {
	return &Limiter{
		maxRequests: maxRequests,
		window:      window,
		requests:    make(map[string][]time.Time),
		now:         time.Now,
	}
}

// Allow reports whether a request for key is admitted. Expired instants are
// purged first; an admitted request is recorded, a rejected one is not.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	live := l.purgeLocked(key, now)

	if len(live) >= l.maxRequests {
		return false
	}

	l.requests[key] = append(live, now)
	return true
}

// ResetTime returns the instant at which the oldest recorded request for key
// falls out of the window. ok is false when the key has no live requests.
func (l *Limiter) ResetTime(key string) (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	live := l.purgeLocked(key, l.now())
	if len(live) == 0 {
		return time.Time{}, false
	}

	oldest := live[0]
	for _, t := range live[1:] {
		if t.Before(oldest) {
			oldest = t
		}
	}
	return oldest.Add(l.window), true
}

// PurgeIdle drops keys whose every recorded instant has expired. Called from
// the scheduled sweep task to bound memory across many one-off senders.
func (l *Limiter) PurgeIdle() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key := range l.requests {
		if len(l.purgeLocked(key, now)) == 0 {
			delete(l.requests, key)
			removed++
		}
	}
	return removed
}

// purgeLocked drops instants older than the window and returns the remaining
// ones. Caller must hold l.mu.
func (l *Limiter) purgeLocked(key string, now time.Time) []time.Time {
	recorded := l.requests[key]
	live := recorded[:0]
	for _, t := range recorded {
		if now.Sub(t) < l.window {
			live = append(live, t)
		}
	}
	if len(live) == 0 && recorded != nil {
		delete(l.requests, key)
		return nil
	}
	l.requests[key] = live
	return live
}
