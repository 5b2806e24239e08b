// Package ratelimit gates requests with token buckets from
// golang.org/x/time/rate: one global bucket and one per policy group.
package ratelimit

import (
	"sync"

	"golang.org/x/time/rate"
)

// Limiter is a single token bucket.
type Limiter struct {
	lim *rate.Limiter
}

// NewLimiter permits rps requests per second with bursts of burst.
func NewLimiter(rps float64, burst int) *Limiter {
	return &Limiter{lim: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Allow reports whether one request may proceed now. A nil Limiter allows
// everything.
func (l *Limiter) Allow() bool {
	if l == nil {
		return true
	}
	return l.lim.Allow()
}

// Set holds one lazily created Limiter per name.
type Set struct {
	mu   sync.Mutex
	byID map[string]*Limiter
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{byID: make(map[string]*Limiter)}
}

// Get returns the limiter for name, creating it with rps and burst on first
// use. Later calls ignore rps and burst.
func (s *Set) Get(name string, rps float64, burst int) *Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.byID[name]; ok {
		return l
	}
	l := NewLimiter(rps, burst)
	s.byID[name] = l
	return l
}
