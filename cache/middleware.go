package cache

import "context"

// Handler is a single request/response operation.
type Handler func(ctx context.Context, req any) (any, error)

// Middleware wraps a Handler.
type Middleware func(Handler) Handler

// Chain composes middlewares from left to right, i.e. Chain(A, B)(h) is
// A(B(h)).
func Chain(mw ...Middleware) Middleware {
	return func(next Handler) Handler {
		for i := len(mw) - 1; i >= 0; i-- {
			next = mw[i](next)
		}
		return next
	}
}

// Middleware returns the read-through wrapper for the read operation op.
// The cache key is taken from the request via [KeyOf].
func (g *Guard) Middleware(op string) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req any) (any, error) {
			return g.Read(ctx, op, KeyOf(req), func(ctx context.Context) (any, error) {
				return next(ctx, req)
			})
		}
	}
}

// Middleware returns the invalidating wrapper for the write operation op.
func (t *Trigger) Middleware(op string) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req any) (any, error) {
			return t.Write(ctx, op, KeyOf(req), func(ctx context.Context) (any, error) {
				return next(ctx, req)
			})
		}
	}
}
