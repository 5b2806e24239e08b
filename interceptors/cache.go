package interceptors

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Keksclan/rawrmenu/cache"
)

// CacheRoutes maps full method names to the cache operation they are.
type CacheRoutes struct {
	Reads  map[string]string
	Writes map[string]string
}

// CacheUnary serves methods in routes.Reads through g and runs methods in
// routes.Writes through t. Other methods pass straight through. The request
// supplies the key via [cache.Keyed].
func CacheUnary(g *cache.Guard, t *cache.Trigger, routes CacheRoutes) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		call := func(ctx context.Context) (any, error) { return handler(ctx, req) }

		var (
			resp any
			err  error
		)
		if op, ok := routes.Reads[info.FullMethod]; ok && g != nil {
			resp, err = g.Read(ctx, op, cache.KeyOf(req), call)
		} else if op, ok := routes.Writes[info.FullMethod]; ok && t != nil {
			resp, err = t.Write(ctx, op, cache.KeyOf(req), call)
		} else {
			return handler(ctx, req)
		}
		if err != nil {
			return nil, cacheStatus(err)
		}
		return resp, nil
	}
}

// cacheStatus gives cache failures a gRPC code. Errors from the handler
// already carry one and are returned as they are.
func cacheStatus(err error) error {
	switch {
	case errors.Is(err, cache.ErrEvictionFailed), errors.Is(err, cache.ErrStoreUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, cache.ErrUnsupportedShape),
		errors.Is(err, cache.ErrUnknownKind),
		errors.Is(err, cache.ErrUndeclaredField):
		return status.Error(codes.Internal, err.Error())
	}
	return err
}
