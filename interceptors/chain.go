// Package interceptors holds the unary gRPC interceptors the server chains
// in front of the menu service.
package interceptors

import (
	"context"

	"google.golang.org/grpc"
)

// ChainUnary composes interceptors into one. The first one runs outermost.
func ChainUnary(interceptors []grpc.UnaryServerInterceptor) grpc.UnaryServerInterceptor {
	switch len(interceptors) {
	case 0:
		return nil
	case 1:
		return interceptors[0]
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		curr := handler
		for i := len(interceptors) - 1; i > 0; i-- {
			next, ic := curr, interceptors[i]
			curr = func(ctx context.Context, req any) (any, error) {
				return ic(ctx, req, info, next)
			}
		}
		return interceptors[0](ctx, req, info, curr)
	}
}
