package ratelimit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Quota headers returned by the Tradier API.
const (
	HeaderAllowed   = "X-Ratelimit-Allowed"
	HeaderUsed      = "X-Ratelimit-Used"
	HeaderAvailable = "X-Ratelimit-Available"
	HeaderExpiry    = "X-Ratelimit-Expiry"
)

// Defaults when the caller passes zero values.
const (
	DefaultMaxRequests = 120
	DefaultWindow      = 60 * time.Second

	// waitBuffer pads the computed wait so the oldest admission has
	// definitely expired when the waiter re-checks.
	waitBuffer = 100 * time.Millisecond
)

// Stats is a read-only view of the limiter state.
type Stats struct {
	MaxRequests      int `json:"max_requests"`
	RequestsInWindow int `json:"requests_in_window"`
	Available        int `json:"available"`
	WindowSeconds    int `json:"window_seconds"`
}

// Limiter admits requests at most maxRequests per trailing window.
// All methods are safe for concurrent use.
type Limiter struct {
	mu          sync.Mutex
	maxRequests int
	window      time.Duration
	admissions  []time.Time // Oldest first

	logger *slog.Logger
}

// New creates a Limiter. Zero arguments fall back to the production
// defaults (120 requests per 60s window).
func New(maxRequests int, window time.Duration, logger *slog.Logger) *Limiter {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Limiter{
		maxRequests: maxRequests,
		window:      window,
		logger:      logger,
	}
}

// Acquire blocks until admitting one more request keeps the trailing-window
// count at or under the ceiling, then records the admission. It returns
// early with ctx.Err() if the context is cancelled while waiting.
//
// The lock is held only around state inspection and mutation, never across
// the wait; every waiter re-purges and re-checks after waking.
func (l *Limiter) Acquire(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := time.Now()
		l.purgeLocked(now)

		if len(l.admissions) < l.maxRequests {
			l.admissions = append(l.admissions, now)
			l.mu.Unlock()
			return nil
		}

		// At the limit: wait until the oldest admission leaves the window.
		wait := l.window - now.Sub(l.admissions[0]) + waitBuffer
		l.mu.Unlock()

		l.logger.Debug("rate limit reached, waiting",
			"wait", wait,
			"max_requests", l.maxRequests,
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// UpdateFromHeaders adopts a revised ceiling from vendor response headers.
// Missing or malformed values are ignored.
func (l *Limiter) UpdateFromHeaders(h http.Header) {
	allowed := h.Get(HeaderAllowed)
	if allowed == "" {
		return
	}
	newMax, err := strconv.Atoi(allowed)
	if err != nil || newMax <= 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if newMax != l.maxRequests {
		l.logger.Info("rate limit ceiling updated from headers",
			"old", l.maxRequests,
			"new", newMax,
		)
		l.maxRequests = newMax
	}
}

// Stats returns current limiter statistics after purging expired admissions.
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.purgeLocked(time.Now())

	available := l.maxRequests - len(l.admissions)
	if available < 0 {
		available = 0
	}
	return Stats{
		MaxRequests:      l.maxRequests,
		RequestsInWindow: len(l.admissions),
		Available:        available,
		WindowSeconds:    int(l.window / time.Second),
	}
}

// purgeLocked drops admissions older than the trailing window.
// Caller must hold l.mu.
func (l *Limiter) purgeLocked(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.admissions) && l.admissions[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		l.admissions = append(l.admissions[:0], l.admissions[i:]...)
	}
}
