package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// TieredConfig configures the in-process near cache of [Tiered].
type TieredConfig struct {
	// MaxItems bounds the number of entries held in process.
	MaxItems int64
	// TTL bounds how long a near entry may lag writes made by other
	// processes sharing the inner store. It must be positive.
	TTL time.Duration
}

// Tiered puts a ristretto near cache in front of another [Store]. Reads are
// served from process memory when possible, then from the inner store.
// Every delete on a resource bumps that resource's generation once the inner
// delete has returned, which makes all of its near entries unreachable at
// once, including any filled concurrently from the pre-delete value. Deletes
// issued by other processes are only seen once the near entry expires, so a
// replica lags a remote write by at most the configured TTL.
type Tiered struct {
	inner Store
	near  *ristretto.Cache[string, Entry]
	ttl   time.Duration

	mu   sync.Mutex
	gens map[string]uint64
}

// NewTiered wraps inner with a near cache. It fails with
// [ErrNearTTLRequired] when cfg.TTL is not positive.
func NewTiered(inner Store, cfg TieredConfig) (*Tiered, error) {
	if cfg.TTL <= 0 {
		return nil, ErrNearTTLRequired
	}
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = 10_000
	}
	near, err := ristretto.NewCache(&ristretto.Config[string, Entry]{
		NumCounters: cfg.MaxItems * 10,
		MaxCost:     cfg.MaxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Tiered{
		inner: inner,
		near:  near,
		ttl:   cfg.TTL,
		gens:  make(map[string]uint64),
	}, nil
}

func (t *Tiered) gen(resource string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gens[resource]
}

func (t *Tiered) bump(resource string) {
	t.mu.Lock()
	t.gens[resource]++
	t.mu.Unlock()
}

func nearKey(resource string, gen uint64, key Key) string {
	return resource + "\x00" + strconv.FormatUint(gen, 10) + "\x00" + key.Fingerprint()
}

func (t *Tiered) remember(resource string, gen uint64, key Key, e Entry) {
	t.near.SetWithTTL(nearKey(resource, gen, key), e.Clone(), 1, t.ttl)
	t.near.Wait()
}

func (t *Tiered) Get(ctx context.Context, resource string, key Key) (Entry, bool, error) {
	g := t.gen(resource)
	if e, ok := t.near.Get(nearKey(resource, g, key)); ok {
		return e.Clone(), true, nil
	}
	e, ok, err := t.inner.Get(ctx, resource, key)
	if err != nil || !ok {
		return Entry{}, false, err
	}
	t.remember(resource, g, key, e)
	return e, true, nil
}

func (t *Tiered) Set(ctx context.Context, resource string, key Key, entry Entry) error {
	g := t.gen(resource)
	if err := t.inner.Set(ctx, resource, key, entry); err != nil {
		return err
	}
	t.remember(resource, g, key, entry)
	return nil
}

func (t *Tiered) Exists(ctx context.Context, resource string, key Key) (bool, error) {
	if _, ok := t.near.Get(nearKey(resource, t.gen(resource), key)); ok {
		return true, nil
	}
	return t.inner.Exists(ctx, resource, key)
}

func (t *Tiered) DeleteOne(ctx context.Context, resource string, key Key) error {
	defer t.bump(resource)
	return t.inner.DeleteOne(ctx, resource, key)
}

func (t *Tiered) DeleteAll(ctx context.Context, resource string) error {
	defer t.bump(resource)
	return t.inner.DeleteAll(ctx, resource)
}

func (t *Tiered) DeleteByPrefix(ctx context.Context, resource string, prefix Key) (int, error) {
	defer t.bump(resource)
	return t.inner.DeleteByPrefix(ctx, resource, prefix)
}

// Close releases the near cache. It does not close the inner store.
func (t *Tiered) Close() {
	t.near.Close()
}
