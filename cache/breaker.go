package cache

import (
	"context"
	"errors"

	"github.com/Keksclan/rawrmenu/breaker"
)

// BreakerStore skips a failing [Store] while its breaker is open. Calls it
// rejects return [ErrStoreUnavailable] immediately, so a dead backend costs
// reads one fast miss and writes one fast failure instead of a timeout each.
type BreakerStore struct {
	inner Store
	b     *breaker.Breaker
}

// NewBreakerStore wraps inner with b.
func NewBreakerStore(inner Store, b *breaker.Breaker) *BreakerStore {
	return &BreakerStore{inner: inner, b: b}
}

func (s *BreakerStore) do(fn func() error) error {
	err := s.b.Execute(fn)
	if errors.Is(err, breaker.ErrOpen) {
		return ErrStoreUnavailable
	}
	return err
}

func (s *BreakerStore) Get(ctx context.Context, resource string, key Key) (e Entry, ok bool, err error) {
	var corrupt error
	err = s.do(func() error {
		var ierr error
		e, ok, ierr = s.inner.Get(ctx, resource, key)
		if errors.Is(ierr, ErrCorruptEntry) {
			// The backend answered; a bad payload is not an outage.
			corrupt = ierr
			return nil
		}
		return ierr
	})
	if err == nil {
		err = corrupt
	}
	return e, ok, err
}

func (s *BreakerStore) Set(ctx context.Context, resource string, key Key, entry Entry) error {
	return s.do(func() error { return s.inner.Set(ctx, resource, key, entry) })
}

func (s *BreakerStore) Exists(ctx context.Context, resource string, key Key) (ok bool, err error) {
	err = s.do(func() error {
		var ierr error
		ok, ierr = s.inner.Exists(ctx, resource, key)
		return ierr
	})
	return ok, err
}

func (s *BreakerStore) DeleteOne(ctx context.Context, resource string, key Key) error {
	return s.do(func() error { return s.inner.DeleteOne(ctx, resource, key) })
}

func (s *BreakerStore) DeleteAll(ctx context.Context, resource string) error {
	return s.do(func() error { return s.inner.DeleteAll(ctx, resource) })
}

func (s *BreakerStore) DeleteByPrefix(ctx context.Context, resource string, prefix Key) (n int, err error) {
	err = s.do(func() error {
		var ierr error
		n, ierr = s.inner.DeleteByPrefix(ctx, resource, prefix)
		return ierr
	})
	return n, err
}
