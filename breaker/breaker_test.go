package breaker

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestBreaker(cfg Config) (*Breaker, *time.Time) {
	b := New(cfg)
	now := time.Now()
	b.nowFunc = func() time.Time { return now }
	return b, &now
}

var errDown = errors.New("down")

func TestExecute_TripsAfterThreshold(t *testing.T) {
	b, _ := newTestBreaker(Config{FailureThreshold: 3, OpenTimeout: 5 * time.Second})

	for i := range 3 {
		if err := b.Execute(func() error { return errDown }); !errors.Is(err, errDown) {
			t.Fatalf("call %d: expected errDown, got %v", i, err)
		}
	}
	if s := b.State(); s != Open {
		t.Fatalf("expected open, got %s", s)
	}

	called := false
	err := b.Execute(func() error { called = true; return nil })
	if !errors.Is(err, ErrOpen) {
		t.Fatalf("expected ErrOpen, got %v", err)
	}
	if called {
		t.Fatal("fn must not run while open")
	}
}

func TestExecute_SuccessResetsFailureCount(t *testing.T) {
	b, _ := newTestBreaker(Config{FailureThreshold: 3, OpenTimeout: 5 * time.Second})

	_ = b.Execute(func() error { return errDown })
	_ = b.Execute(func() error { return errDown })
	_ = b.Execute(func() error { return nil })
	_ = b.Execute(func() error { return errDown })
	_ = b.Execute(func() error { return errDown })

	if s := b.State(); s != Closed {
		t.Fatalf("expected closed, got %s", s)
	}
}

func TestExecute_CanceledIsNeutral(t *testing.T) {
	b, _ := newTestBreaker(Config{FailureThreshold: 1, OpenTimeout: 5 * time.Second})

	err := b.Execute(func() error { return context.Canceled })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if s := b.State(); s != Closed {
		t.Fatalf("cancellation must not trip the breaker, got %s", s)
	}
}

func TestHalfOpen_ProbeThenClose(t *testing.T) {
	b, now := newTestBreaker(Config{
		FailureThreshold:   1,
		OpenTimeout:        5 * time.Second,
		HalfOpenMaxSuccess: 2,
	})

	_ = b.Execute(func() error { return errDown })
	*now = now.Add(6 * time.Second)

	if s := b.State(); s != HalfOpen {
		t.Fatalf("expected half-open after timeout, got %s", s)
	}

	if !b.Allow() || !b.Allow() {
		t.Fatal("expected two probe slots")
	}
	if b.Allow() {
		t.Fatal("expected third probe to be rejected while two are in flight")
	}
	b.OnSuccess()
	b.OnSuccess()

	if s := b.State(); s != Closed {
		t.Fatalf("expected closed, got %s", s)
	}
}

func TestHalfOpen_FailureReopens(t *testing.T) {
	b, now := newTestBreaker(Config{
		FailureThreshold:   1,
		OpenTimeout:        5 * time.Second,
		HalfOpenMaxSuccess: 3,
	})

	_ = b.Execute(func() error { return errDown })
	*now = now.Add(6 * time.Second)

	_ = b.Execute(func() error { return errDown })
	if s := b.State(); s != Open {
		t.Fatalf("expected open after half-open failure, got %s", s)
	}
}

func TestOnStateChange(t *testing.T) {
	var seen []string
	b, now := newTestBreaker(Config{
		FailureThreshold: 1,
		OpenTimeout:      time.Second,
		OnStateChange: func(from, to State) {
			seen = append(seen, from.String()+">"+to.String())
		},
	})

	_ = b.Execute(func() error { return errDown })
	*now = now.Add(2 * time.Second)
	_ = b.Execute(func() error { return nil })

	want := []string{"closed>open", "open>half-open", "half-open>closed"}
	if len(seen) != len(want) {
		t.Fatalf("transitions = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("transitions = %v, want %v", seen, want)
		}
	}
}
