// Package quota enforces a per-caller daily limit on feasibility
// computations. It is deliberately external to the calculator: the core
// stays pure while the serving layer meters usage.
package quota

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Limiter counts computations per caller per calendar day. A limit of zero
// or less disables metering.
type Limiter struct {
	limit int
	now   func() time.Time

	mu     sync.Mutex
	day    string
	counts map[string]int
}

// NewLimiter creates a daily limiter.
func NewLimiter(limit int) *Limiter {
	return &Limiter{
		limit:  limit,
		now:    time.Now,
		counts: make(map[string]int),
	}
}

// Allow records one computation for the caller and reports whether it fits
// within today's budget, along with the remaining allowance.
func (l *Limiter) Allow(key string) (bool, int) {
	if l.limit <= 0 {
		return true, -1
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	today := l.now().Format("2006-01-02")
	if l.day != today {
		l.day = today
		l.counts = make(map[string]int)
	}

	count := l.counts[key]
	if count >= l.limit {
		return false, 0
	}
	l.counts[key] = count + 1
	return true, l.limit - count - 1
}

// Limit returns the configured daily limit.
func (l *Limiter) Limit() int {
	return l.limit
}

// CallerKey derives a stable, non-reversible caller identity from transport
// metadata. The fallback keeps distinct anonymous sessions apart when both
// headers are empty.
func CallerKey(forwardedFor, userAgent, fallback string) string {
	sum := sha256.Sum256([]byte(forwardedFor + "|" + userAgent + "|" + fallback))
	return hex.EncodeToString(sum[:])[:16]
}
