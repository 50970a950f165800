// internal/ratelimit/limiter.go
//
// Fixed-window request counter.
//
// Context
// -------
// One Limiter owns one map of per-key windows.  `Check` is the whole
// contract: under a single mutex hold it resets an expired window, judges
// the count, and increments on admit, so two concurrent requests can never
// both take the last slot.  Rejections carry the remaining window time as
// the Retry-After hint.
//
// Expired entries are swept by a janitor goroutine on an independent
// ticker; sweeping needs no coordination with in-flight checks beyond the
// same mutex.  The clock is injectable so tests can advance time instead
// of sleeping.
//
// Two limiter instances exist in practice: the general one (window and max
// from configuration) and the strict one (15 minutes, 5 requests) for
// sensitive endpoints.  That wiring lives in internal/pipeline; this type
// knows nothing about HTTP.
//
// Notes
// -----
//   • Counters only advance on admitted requests; a rejected request does
//     not extend or refill the window.
//   • Oxford commas, two spaces after periods.

package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Decision is the outcome of one Check.
type Decision struct {
	Allowed    bool
	Remaining  int           // slots left in the current window after this request
	RetryAfter time.Duration // > 0 only when rejected
}

type entry struct {
	count       int
	windowStart time.Time
}

// Limiter is safe for concurrent use.  Zero value is invalid; use New.
type Limiter struct {
	window time.Duration
	max    int
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

// Option adjusts a Limiter at construction time.
type Option func(*Limiter)

// WithClock replaces time.Now; tests advance a fake clock instead of
// sleeping through windows.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New returns a limiter admitting max requests per key per window.
// Panics on a non-positive window or max: both come from validated
// configuration, so a bad value here is a programming error.
func New(window time.Duration, max int, opts ...Option) *Limiter {
	if window <= 0 || max < 1 {
		panic("ratelimit: window and max must be positive")
	}
	l := &Limiter{
		window:  window,
		max:     max,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Check records one request for key and reports whether it is admitted.
// Check-then-increment is atomic per key.
func (l *Limiter) Check(key string) Decision {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok || now.Sub(e.windowStart) >= l.window {
		e = &entry{windowStart: now}
		l.entries[key] = e
	}

	if e.count >= l.max {
		retry := e.windowStart.Add(l.window).Sub(now)
		if retry < time.Second {
			retry = time.Second
		}
		return Decision{Allowed: false, RetryAfter: retry}
	}

	e.count++
	return Decision{Allowed: true, Remaining: l.max - e.count}
}

// Len reports the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Sweep drops every key whose window has fully elapsed.  Returns the
// number of evicted entries.
func (l *Limiter) Sweep() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	var evicted int
	for k, e := range l.entries {
		if now.Sub(e.windowStart) >= l.window {
			delete(l.entries, k)
			evicted++
		}
	}
	return evicted
}

// StartJanitor sweeps expired entries every interval until ctx is done.
func (l *Limiter) StartJanitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = l.window
	}
	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.Sweep()
			}
		}
	}()
}
