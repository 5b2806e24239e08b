package interceptors

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Keksclan/rawrmenu/contextx"
	"github.com/Keksclan/rawrmenu/policy"
	"github.com/Keksclan/rawrmenu/ratelimit"
)

var errRateLimited = status.Error(codes.ResourceExhausted, "rate limit exceeded")

// PolicyUnary resolves the method's group and applies its policy. The group
// name goes into the context and the current span. A group with a rate
// limit gets its own bucket; every other call draws from global, which may
// be nil. A group timeout bounds the handler.
func PolicyUnary(global *ratelimit.Limiter, r *policy.Resolver) grpc.UnaryServerInterceptor {
	groups := ratelimit.NewSet()
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		m, ok := r.Resolve(info.FullMethod)
		lim := global
		if ok {
			ctx = contextx.WithGroup(ctx, m.Group)
			trace.SpanFromContext(ctx).SetAttributes(attribute.String("rawrmenu.policy.group", m.Group))
			if rl := m.Policy.RateLimit; rl != nil {
				lim = groups.Get(m.Group, rl.PerSecond(), rl.Rate)
			}
		}
		if !lim.Allow() {
			return nil, errRateLimited
		}
		if ok && m.Policy.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, m.Policy.Timeout)
			defer cancel()
		}
		return handler(ctx, req)
	}
}
