package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/Keksclan/rawrmenu/breaker"
)

func TestMemoryStore_Contract(t *testing.T) {
	testStoreContract(t, NewMemoryStore())
}

func TestMemoryStore_CopiesEntries(t *testing.T) {
	s := NewMemoryStore()
	env := NewEnvelope(testKinds)
	e := mustEncode(t, env, &widget{ID: "1"})

	if err := s.Set(t.Context(), "r", nil, e); err != nil {
		t.Fatal(err)
	}
	e.Payload[0] = 'X'

	got, _, _ := s.Get(t.Context(), "r", nil)
	if got.Payload[0] == 'X' {
		t.Fatal("store aliased the caller's payload")
	}
}

func newTiered(t *testing.T, inner Store) *Tiered {
	t.Helper()
	tc, err := NewTiered(inner, TieredConfig{MaxItems: 100, TTL: time.Minute})
	if err != nil {
		t.Fatalf("NewTiered: %v", err)
	}
	t.Cleanup(tc.Close)
	return tc
}

func TestTiered_Contract(t *testing.T) {
	testStoreContract(t, newTiered(t, NewMemoryStore()))
}

func TestTiered_ServesNearAndForgetsOnDelete(t *testing.T) {
	inner := newCountingStore()
	tc := newTiered(t, inner)
	ctx := t.Context()
	env := NewEnvelope(testKinds)
	k := key("menu_id", "m1", "submenu_id", "s1")

	if err := tc.Set(ctx, "GetSubmenu", k, mustEncode(t, env, &widget{ID: "s1"})); err != nil {
		t.Fatal(err)
	}
	for range 3 {
		if _, ok, err := tc.Get(ctx, "GetSubmenu", k); err != nil || !ok {
			t.Fatalf("Get = %v, %v", ok, err)
		}
	}
	if n := inner.n("get"); n != 0 {
		t.Fatalf("inner store read %d times, want near hits only", n)
	}

	if _, err := tc.DeleteByPrefix(ctx, "GetSubmenu", key("menu_id", "m1")); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := tc.Get(ctx, "GetSubmenu", k); ok {
		t.Fatal("near cache served an entry after its prefix was deleted")
	}
}

func TestNewTiered_RequiresTTL(t *testing.T) {
	for _, ttl := range []time.Duration{0, -time.Second} {
		if _, err := NewTiered(NewMemoryStore(), TieredConfig{MaxItems: 10, TTL: ttl}); !errors.Is(err, ErrNearTTLRequired) {
			t.Fatalf("NewTiered(ttl=%v) err = %v, want ErrNearTTLRequired", ttl, err)
		}
	}
}

func TestTiered_ReplicaCatchesUpWithinTTL(t *testing.T) {
	const ttl = 50 * time.Millisecond
	shared := NewMemoryStore()
	replica := func() *Tiered {
		tc, err := NewTiered(shared, TieredConfig{MaxItems: 100, TTL: ttl})
		if err != nil {
			t.Fatalf("NewTiered: %v", err)
		}
		t.Cleanup(tc.Close)
		return tc
	}
	a, b := replica(), replica()
	ctx := t.Context()
	env := NewEnvelope(testKinds)
	k := key("menu_id", "m1")

	if err := a.Set(ctx, "GetMenu", k, mustEncode(t, env, &widget{ID: "m1"})); err != nil {
		t.Fatal(err)
	}
	if err := b.DeleteOne(ctx, "GetMenu", k); err != nil {
		t.Fatal(err)
	}
	if ok, _ := shared.Exists(ctx, "GetMenu", k); ok {
		t.Fatal("shared store still holds the deleted entry")
	}

	deadline := time.Now().Add(20 * ttl)
	for {
		_, ok, err := a.Get(ctx, "GetMenu", k)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if !ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("replica still served the deleted entry after %v", 20*ttl)
		}
		time.Sleep(ttl / 5)
	}
}

func TestBreakerStore_OpensOnBackendFailure(t *testing.T) {
	inner := newCountingStore()
	inner.failGet = true
	s := NewBreakerStore(inner, breaker.New(breaker.Config{FailureThreshold: 2, OpenTimeout: time.Minute}))
	ctx := t.Context()

	for range 2 {
		if _, _, err := s.Get(ctx, "r", nil); !errors.Is(err, errBackend) {
			t.Fatalf("Get error = %v, want backend error", err)
		}
	}
	if _, _, err := s.Get(ctx, "r", nil); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("Get error = %v, want ErrStoreUnavailable", err)
	}
	if err := s.DeleteAll(ctx, "r"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("DeleteAll error = %v, want ErrStoreUnavailable", err)
	}
	if n := inner.n("get"); n != 2 {
		t.Fatalf("inner Get called %d times, want 2", n)
	}
	if n := inner.n("delete_all"); n != 0 {
		t.Fatalf("inner DeleteAll called %d times while open", n)
	}
}

func TestBreakerStore_Contract(t *testing.T) {
	testStoreContract(t, NewBreakerStore(NewMemoryStore(), breaker.New(breaker.DefaultConfig())))
}
