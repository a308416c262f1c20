package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttle applies a per-key rate limit, used to slow credential guessing
// on the login and register endpoints. Each key gets its own rate.Limiter;
// keys that go quiet are forgotten so the map cannot grow without bound.
type Throttle struct {
	mu    sync.Mutex
	limit rate.Limit
	burst int
	seen  map[string]*throttled
}

type throttled struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewThrottle allows burst immediate requests per key, refilling at
// perSecond tokens per second.
func NewThrottle(perSecond float64, burst int) *Throttle {
	t := &Throttle{
		limit: rate.Limit(perSecond),
		burst: burst,
		seen:  make(map[string]*throttled),
	}
	go func() {
		for range time.Tick(5 * time.Minute) {
			t.forgetIdle(10 * time.Minute)
		}
	}()
	return t
}

// Allow reports whether the key may proceed now, consuming one token from
// its limiter if so.
func (t *Throttle) Allow(key string) bool {
	t.mu.Lock()
	entry, ok := t.seen[key]
	if !ok {
		entry = &throttled{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.seen[key] = entry
	}
	entry.lastSeen = time.Now()
	t.mu.Unlock()

	return entry.limiter.Allow()
}

func (t *Throttle) forgetIdle(idle time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := time.Now().Add(-idle)
	for key, entry := range t.seen {
		if entry.lastSeen.Before(cutoff) {
			delete(t.seen, key)
		}
	}
}
