// Package throttle limits how often one client may call an endpoint.
package throttle

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultIdleTTL is how long an unused client bucket is kept.
const DefaultIdleTTL = 10 * time.Minute

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per key. A bucket holds perMinute tokens
// and refills evenly over a minute. Idle buckets are evicted inline, so the
// map stays bounded without a background goroutine.
type Limiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idle      time.Duration
	entries   map[string]*entry
	lastSweep time.Time
	now       func() time.Time
}

// NewLimiter allows perMinute calls per key per minute. A perMinute <= 0
// disables limiting.
func NewLimiter(perMinute int, idle time.Duration, now func() time.Time) *Limiter {
	if idle <= 0 {
		idle = DefaultIdleTTL
	}
	if now == nil {
		now = time.Now
	}
	l := &Limiter{
		limit:   rate.Inf,
		idle:    idle,
		entries: make(map[string]*entry),
		now:     now,
	}
	if perMinute > 0 {
		l.limit = rate.Every(time.Minute / time.Duration(perMinute))
		l.burst = perMinute
	}
	return l
}

// Allow reports whether key may make one more call now.
func (l *Limiter) Allow(key string) bool {
	if l.limit == rate.Inf {
		return true
	}

	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.idle {
		l.sweep(now)
	}

	e, ok := l.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// Len reports the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Limiter) sweep(now time.Time) {
	for k, e := range l.entries {
		if now.Sub(e.lastSeen) >= l.idle {
			delete(l.entries, k)
		}
	}
	l.lastSweep = now
}
