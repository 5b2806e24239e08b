package cache

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Keksclan/rawrmenu/contextx"
	"github.com/Keksclan/rawrmenu/retry"
)

// Trigger evicts the entries a write operation makes stale and then runs
// the write. Evictions fail loud: each one is retried, and if it still
// fails the write is not run and [ErrEvictionFailed] is returned. With a
// [Fence] the trigger evicts once more after the write; a failure there is
// logged and counted but does not change the write's result.
type Trigger struct {
	store    Store
	table    Table
	disabled bool
	retry    retry.Config
	log      *slog.Logger
	metrics  *Metrics
	tracer   trace.Tracer
	fence    *Fence
}

// NewTrigger builds a Trigger from cfg.
func NewTrigger(cfg Config) *Trigger {
	rc := cfg.Retry
	if rc.MaxAttempts == 0 {
		rc = DefaultEvictRetry()
	}
	return &Trigger{
		store:    cfg.Store,
		table:    cfg.Table,
		disabled: cfg.Disabled || cfg.Store == nil,
		retry:    rc,
		log:      cfg.logger(),
		metrics:  cfg.Metrics,
		tracer:   cfg.tracer(),
		fence:    cfg.Fence,
	}
}

// Write evicts everything the table lists for op and, once every eviction
// has succeeded, runs mutate and returns its result unchanged.
func (t *Trigger) Write(ctx context.Context, op string, key Key, mutate func(context.Context) (any, error)) (any, error) {
	if t.disabled {
		return mutate(ctx)
	}
	if err := t.Evict(ctx, op, key); err != nil {
		return nil, err
	}
	resp, err := mutate(ctx)
	if t.fence != nil {
		if eerr := t.Evict(ctx, op, key); eerr != nil {
			contextx.LoggerOr(ctx, t.log).ErrorContext(ctx, "cache: eviction after write failed", "op", op, "err", eerr)
		}
	}
	return resp, err
}

// Evict runs every rule of op against the store, in table order.
func (t *Trigger) Evict(ctx context.Context, op string, key Key) error {
	if t.disabled {
		return nil
	}
	rules := t.table[op]
	if len(rules) == 0 {
		return nil
	}

	ctx, span := t.tracer.Start(ctx, "cache.evict "+op)
	defer span.End()
	span.SetAttributes(attribute.Int("cache.rules", len(rules)))
	t.fence.advance(targets(rules))

	for _, r := range rules {
		target, err := key.Pick(r.Fields...)
		if err != nil {
			err = fmt.Errorf("%s: %s: %w", op, r, err)
			span.RecordError(err)
			return err
		}
		if err := retry.Run(ctx, t.retry, func(ctx context.Context) error {
			return t.apply(ctx, r, target)
		}); err != nil {
			t.metrics.failure("evict")
			contextx.LoggerOr(ctx, t.log).ErrorContext(ctx, "cache: eviction failed", "op", op, "rule", r.String(), "err", err)
			err = fmt.Errorf("%w: %s: %s: %w", ErrEvictionFailed, op, r, err)
			span.RecordError(err)
			return err
		}
	}
	return nil
}

func (t *Trigger) apply(ctx context.Context, r Rule, target Key) error {
	switch {
	case r.Clears():
		if err := t.store.DeleteAll(ctx, r.Target); err != nil {
			return err
		}
		t.metrics.eviction(r.Target, "all")
		contextx.LoggerOr(ctx, t.log).DebugContext(ctx, "cache: cleared resource", "resource", r.Target)
	case r.Mode == Prefix:
		n, err := t.store.DeleteByPrefix(ctx, r.Target, target)
		if err != nil {
			return err
		}
		t.metrics.eviction(r.Target, r.Mode.String())
		contextx.LoggerOr(ctx, t.log).DebugContext(ctx, "cache: evicted by prefix", "resource", r.Target, "prefix", target.Prefix(), "removed", n)
	default:
		if err := t.store.DeleteOne(ctx, r.Target, target); err != nil {
			return err
		}
		t.metrics.eviction(r.Target, r.Mode.String())
		contextx.LoggerOr(ctx, t.log).DebugContext(ctx, "cache: evicted entry", "resource", r.Target, "key", target.Fingerprint())
	}
	return nil
}

func targets(rules []Rule) []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.Target)
	}
	return out
}

// Flush clears every resource the table targets.
func (t *Trigger) Flush(ctx context.Context) error {
	if t.store == nil {
		return nil
	}
	for _, res := range t.table.Resources() {
		if err := t.store.DeleteAll(ctx, res); err != nil {
			return fmt.Errorf("cache: flush %s: %w", res, err)
		}
	}
	return nil
}
