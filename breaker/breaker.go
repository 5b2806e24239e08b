// Package breaker guards calls to a flaky dependency with a circuit breaker.
//
// A Closed breaker lets calls through and counts consecutive failures. Once
// FailureThreshold is reached it opens and rejects calls with [ErrOpen]
// until OpenTimeout elapses. It is then HalfOpen: up to HalfOpenMaxSuccess
// probes go through, all of them must succeed to close it again, and any
// failure reopens it.
package breaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned by [Breaker.Execute] when the call was rejected.
var ErrOpen = errors.New("breaker: open")

// State represents the current circuit breaker state.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config holds the circuit breaker parameters.
type Config struct {
	FailureThreshold   int
	OpenTimeout        time.Duration
	HalfOpenMaxSuccess int

	// IsFailure decides which errors count against the breaker. By default
	// every error counts except context cancellation, which says nothing
	// about the health of the dependency.
	IsFailure func(error) bool

	// OnStateChange, when set, is called after every transition. It runs
	// with the breaker lock held and must not call back into the breaker.
	OnStateChange func(from, to State)
}

// DefaultConfig trips after five consecutive failures and probes again
// after ten seconds.
func DefaultConfig() Config {
	return Config{
		FailureThreshold:   5,
		OpenTimeout:        10 * time.Second,
		HalfOpenMaxSuccess: 1,
	}
}

// Breaker is a circuit breaker. All methods are safe for concurrent use.
type Breaker struct {
	mu sync.Mutex

	cfg Config

	state     State
	failures  int
	successes int
	inflight  int
	openedAt  time.Time
	nowFunc   func() time.Time
}

// New creates a Breaker with the given configuration. Non-positive
// thresholds are raised to one.
func New(cfg Config) *Breaker {
	cfg.FailureThreshold = max(cfg.FailureThreshold, 1)
	cfg.HalfOpenMaxSuccess = max(cfg.HalfOpenMaxSuccess, 1)
	if cfg.IsFailure == nil {
		cfg.IsFailure = defaultIsFailure
	}
	return &Breaker{
		cfg:     cfg,
		state:   Closed,
		nowFunc: time.Now,
	}
}

func defaultIsFailure(err error) bool {
	return !errors.Is(err, context.Canceled)
}

// State returns the current state. An Open breaker whose timeout has
// elapsed reports HalfOpen.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.checkOpenTimeout()
	return b.state
}

// Allow reports whether a call may go through and, in HalfOpen, reserves a
// probe slot for it. Callers that get true must report the outcome with
// OnSuccess or OnFailure.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.checkOpenTimeout()

	switch b.state {
	case Closed:
		return true
	case HalfOpen:
		if b.successes+b.inflight >= b.cfg.HalfOpenMaxSuccess {
			return false
		}
		b.inflight++
		return true
	default:
		return false
	}
}

// OnSuccess records a successful call.
func (b *Breaker) OnSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		b.failures = 0
	case HalfOpen:
		b.release()
		b.successes++
		if b.successes >= b.cfg.HalfOpenMaxSuccess {
			b.transition(Closed)
		}
	}
}

// OnFailure records a failed call.
func (b *Breaker) OnFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.transition(Open)
		}
	case HalfOpen:
		b.release()
		b.transition(Open)
	}
}

// Execute runs fn if the breaker allows it and records the outcome. It
// returns [ErrOpen] without calling fn when the breaker rejects the call.
func (b *Breaker) Execute(fn func() error) error {
	if !b.Allow() {
		return ErrOpen
	}
	err := fn()
	switch {
	case err == nil:
		b.OnSuccess()
	case b.cfg.IsFailure(err):
		b.OnFailure()
	default:
		// Neutral outcome: give the probe slot back without counting.
		b.mu.Lock()
		if b.state == HalfOpen {
			b.release()
		}
		b.mu.Unlock()
	}
	return err
}

func (b *Breaker) release() {
	if b.inflight > 0 {
		b.inflight--
	}
}

// Must be called with b.mu held.
func (b *Breaker) checkOpenTimeout() {
	if b.state == Open && b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout {
		b.transition(HalfOpen)
	}
}

func (b *Breaker) transition(to State) {
	from := b.state
	b.state = to
	b.failures = 0
	b.successes = 0
	b.inflight = 0
	if to == Open {
		b.openedAt = b.now()
	}
	if b.cfg.OnStateChange != nil && from != to {
		b.cfg.OnStateChange(from, to)
	}
}

func (b *Breaker) now() time.Time {
	if b.nowFunc != nil {
		return b.nowFunc()
	}
	return time.Now()
}
