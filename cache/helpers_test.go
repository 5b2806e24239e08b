package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type widget struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (*widget) ItemKind() Kind { return "widget" }

type widgets []*widget

func (widgets) ItemKind() Kind { return "widget" }

func (w widgets) Items() []Item {
	out := make([]Item, len(w))
	for i, it := range w {
		out[i] = it
	}
	return out
}

type gadget struct {
	Serial int `json:"serial"`
}

func (*gadget) ItemKind() Kind { return "gadget" }

var testKinds = Kinds{
	"widget": {
		New: func() Item { return new(widget) },
		List: func(items []Item) List {
			out := make(widgets, len(items))
			for i, it := range items {
				out[i] = it.(*widget)
			}
			return out
		},
	},
	"gadget": {
		New:  func() Item { return new(gadget) },
		List: func([]Item) List { return EmptyList{} },
	},
}

func key(pairs ...string) Key {
	k := make(Key, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		k = append(k, Field{Name: pairs[i], Value: pairs[i+1]})
	}
	return k
}

var errBackend = errors.New("backend down")

// countingStore wraps a Store, counts every call and can be told to fail.
type countingStore struct {
	Store

	mu       sync.Mutex
	calls    map[string]int
	failGet  bool
	failSet  bool
	failDels int // number of delete calls to fail before succeeding; -1 fails forever
}

func newCountingStore() *countingStore {
	return &countingStore{Store: NewMemoryStore(), calls: make(map[string]int)}
}

func (c *countingStore) count(op string) {
	c.mu.Lock()
	c.calls[op]++
	c.mu.Unlock()
}

func (c *countingStore) n(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[op]
}

func (c *countingStore) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.calls {
		n += v
	}
	return n
}

func (c *countingStore) failDelete() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.failDels < 0:
		return true
	case c.failDels > 0:
		c.failDels--
		return true
	}
	return false
}

func (c *countingStore) Get(ctx context.Context, resource string, k Key) (Entry, bool, error) {
	c.count("get")
	if c.failGet {
		return Entry{}, false, errBackend
	}
	return c.Store.Get(ctx, resource, k)
}

func (c *countingStore) Set(ctx context.Context, resource string, k Key, e Entry) error {
	c.count("set")
	if c.failSet {
		return errBackend
	}
	return c.Store.Set(ctx, resource, k, e)
}

func (c *countingStore) Exists(ctx context.Context, resource string, k Key) (bool, error) {
	c.count("exists")
	return c.Store.Exists(ctx, resource, k)
}

func (c *countingStore) DeleteOne(ctx context.Context, resource string, k Key) error {
	c.count("delete_one")
	if c.failDelete() {
		return errBackend
	}
	return c.Store.DeleteOne(ctx, resource, k)
}

func (c *countingStore) DeleteAll(ctx context.Context, resource string) error {
	c.count("delete_all")
	if c.failDelete() {
		return errBackend
	}
	return c.Store.DeleteAll(ctx, resource)
}

func (c *countingStore) DeleteByPrefix(ctx context.Context, resource string, prefix Key) (int, error) {
	c.count("delete_prefix")
	if c.failDelete() {
		return 0, errBackend
	}
	return c.Store.DeleteByPrefix(ctx, resource, prefix)
}

func mustEncode(t *testing.T, env *Envelope, v any) Entry {
	t.Helper()
	e, err := env.Encode(v)
	if err != nil {
		t.Fatalf("Encode(%T): %v", v, err)
	}
	return e
}

// testStoreContract exercises the behaviour every Store must share.
func testStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := t.Context()
	env := NewEnvelope(testKinds)
	res := "GetWidget:" + t.Name()
	other := "GetWidgets:" + t.Name()

	e1 := mustEncode(t, env, &widget{ID: "1", Name: "one"})
	e2 := mustEncode(t, env, &widget{ID: "2", Name: "two"})

	k1 := key("menu_id", "m1", "submenu_id", "s1")
	k2 := key("menu_id", "m1", "submenu_id", "s2")
	k3 := key("menu_id", "m10", "submenu_id", "s1")
	t.Cleanup(func() {
		_ = s.DeleteAll(context.Background(), res)
		_ = s.DeleteAll(context.Background(), other)
	})

	if _, ok, err := s.Get(ctx, res, k1); err != nil || ok {
		t.Fatalf("Get on empty store = ok:%v err:%v, want miss", ok, err)
	}

	for _, k := range []Key{k1, k2, k3} {
		if err := s.Set(ctx, res, k, e1); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	if err := s.Set(ctx, res, k1, e2); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if err := s.Set(ctx, other, nil, e1); err != nil {
		t.Fatalf("Set empty key: %v", err)
	}

	got, ok, err := s.Get(ctx, res, k1)
	if err != nil || !ok {
		t.Fatalf("Get after Set = ok:%v err:%v", ok, err)
	}
	if string(got.Payload) != string(e2.Payload) {
		t.Fatalf("Get returned %s, want the overwritten %s", got.Payload, e2.Payload)
	}

	if ok, err := s.Exists(ctx, res, k2); err != nil || !ok {
		t.Fatalf("Exists(k2) = %v, %v", ok, err)
	}
	if err := s.DeleteOne(ctx, res, k2); err != nil {
		t.Fatalf("DeleteOne: %v", err)
	}
	if ok, _ := s.Exists(ctx, res, k2); ok {
		t.Fatal("k2 still present after DeleteOne")
	}
	if err := s.DeleteOne(ctx, res, k2); err != nil {
		t.Fatalf("DeleteOne on missing entry: %v", err)
	}

	// m1 must not match m10.
	if err := s.Set(ctx, res, k2, e1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	n, err := s.DeleteByPrefix(ctx, res, key("menu_id", "m1"))
	if err != nil {
		t.Fatalf("DeleteByPrefix: %v", err)
	}
	if n != 2 {
		t.Fatalf("DeleteByPrefix removed %d entries, want 2", n)
	}
	if ok, _ := s.Exists(ctx, res, k3); !ok {
		t.Fatal("prefix m1 removed the m10 entry")
	}

	if err := s.DeleteAll(ctx, res); err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	if ok, _ := s.Exists(ctx, res, k3); ok {
		t.Fatal("entry survived DeleteAll")
	}
	if ok, _ := s.Exists(ctx, other, nil); !ok {
		t.Fatal("DeleteAll cleared an unrelated resource")
	}
}
