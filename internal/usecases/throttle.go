package usecases

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

// LoginLimiter keeps a token bucket per login key.
type LoginLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	entries map[string]*limiterEntry
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLoginLimiter allows attemptsPerMinute attempts per key with the given burst.
// A non-positive attemptsPerMinute returns nil, which allows everything.
func NewLoginLimiter(attemptsPerMinute int, burst int) *LoginLimiter {
	if attemptsPerMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = attemptsPerMinute
	}
	return &LoginLimiter{
		limit:   rate.Every(time.Minute / time.Duration(attemptsPerMinute)),
		burst:   burst,
		entries: map[string]*limiterEntry{},
	}
}

func (l *LoginLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.prune(now)

	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

func (l *LoginLimiter) prune(now time.Time) {
	cutoff := now.Add(-limiterIdleTTL)
	for k, e := range l.entries {
		if e.lastSeen.Before(cutoff) {
			delete(l.entries, k)
		}
	}
}
