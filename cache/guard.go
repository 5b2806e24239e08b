package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Keksclan/rawrmenu/contextx"
)

// Guard serves read operations from the store and fills it on a miss.
//
// Store failures on the read path fail open: they are logged and counted,
// and the request is computed as if the entry were missing. An entry that
// cannot be decoded is a miss as well, and is overwritten by the fresh
// result. Log lines go to the request logger in the context, if any, and
// to the configured logger otherwise.
type Guard struct {
	store    Store
	envelope *Envelope
	disabled bool
	log      *slog.Logger
	metrics  *Metrics
	tracer   trace.Tracer
	fence    *Fence
}

// NewGuard builds a Guard from cfg.
func NewGuard(cfg Config) *Guard {
	return &Guard{
		store:    cfg.Store,
		envelope: cfg.Envelope,
		disabled: cfg.Disabled || cfg.Store == nil,
		log:      cfg.logger(),
		metrics:  cfg.Metrics,
		tracer:   cfg.tracer(),
		fence:    cfg.Fence,
	}
}

// Read returns the response of the read operation op for key, either from
// the store or by calling compute. compute runs at most once. An
// [*ErrorPayload] is cached like any other response and is returned as the
// error. Other errors from compute are returned untouched and nothing is
// stored.
func (g *Guard) Read(ctx context.Context, op string, key Key, compute func(context.Context) (any, error)) (any, error) {
	if g.disabled {
		g.metrics.lookup(op, ResultBypass)
		return compute(ctx)
	}

	ctx, span := g.tracer.Start(ctx, "cache.read "+op)
	defer span.End()
	fp := key.Fingerprint()
	span.SetAttributes(attribute.String("cache.resource", op), attribute.String("cache.key", fp))

	if resp, ok := g.lookup(ctx, op, key); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return unfold(resp)
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	since := g.fence.seq(op)
	resp, err := compute(ctx)
	if err != nil {
		var p *ErrorPayload
		if !errors.As(err, &p) {
			return nil, err
		}
		resp = p
	}

	entry, err := g.envelope.Encode(resp)
	if err != nil {
		g.metrics.failure("encode")
		contextx.LoggerOr(ctx, g.log).ErrorContext(ctx, "cache: response cannot be cached", "resource", op, "type", fmt.Sprintf("%T", resp), "err", err)
		span.RecordError(err)
		return nil, err
	}
	stored, err := g.fence.fill(op, since, func() error {
		return g.store.Set(ctx, op, key, entry)
	})
	if !stored {
		contextx.LoggerOr(ctx, g.log).DebugContext(ctx, "cache: fill dropped, a write evicted the resource meanwhile", "resource", op, "key", fp)
	}
	if err != nil {
		g.metrics.failure("set")
		contextx.LoggerOr(ctx, g.log).WarnContext(ctx, "cache: store set failed", "resource", op, "key", fp, "err", err)
	}
	return unfold(resp)
}

// lookup returns the decoded cached response, if there is a usable one.
func (g *Guard) lookup(ctx context.Context, op string, key Key) (any, bool) {
	entry, ok, err := g.store.Get(ctx, op, key)
	if err != nil {
		g.metrics.lookup(op, ResultError)
		g.metrics.failure("get")
		contextx.LoggerOr(ctx, g.log).WarnContext(ctx, "cache: store get failed", "resource", op, "key", key.Fingerprint(), "err", err)
		return nil, false
	}
	if !ok {
		g.metrics.lookup(op, ResultMiss)
		return nil, false
	}
	resp, err := g.envelope.Decode(entry)
	if err != nil {
		g.metrics.lookup(op, ResultError)
		g.metrics.failure("decode")
		contextx.LoggerOr(ctx, g.log).WarnContext(ctx, "cache: cached entry cannot be decoded", "resource", op, "key", key.Fingerprint(), "err", err)
		return nil, false
	}
	g.metrics.lookup(op, ResultHit)
	return resp, true
}

// unfold turns a cached error payload back into an error return.
func unfold(resp any) (any, error) {
	if p, ok := resp.(*ErrorPayload); ok {
		return nil, p
	}
	return resp, nil
}
