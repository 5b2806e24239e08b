package interceptors

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/Keksclan/rawrmenu/contextx"
)

const maxRequestIDLen = 128

// requestID returns the caller's x-request-id when it is usable, otherwise a
// fresh one.
func requestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(contextx.RequestIDHeader); len(v) > 0 && v[0] != "" && len(v[0]) <= maxRequestIDLen {
			return v[0]
		}
	}
	return uuid.NewString()
}

// RequestIDUnary puts a request id into the context and the response
// header, and derives a context logger from base that carries it.
func RequestIDUnary(base *slog.Logger) grpc.UnaryServerInterceptor {
	if base == nil {
		base = slog.Default()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		id := contextx.RequestIDFromContext(ctx)
		if id == "" {
			id = requestID(ctx)
			ctx = contextx.WithRequestID(ctx, id)
		}
		ctx = contextx.WithLogger(ctx, base.With("request_id", id))
		// Fails only outside a real transport, e.g. when called directly in
		// tests.
		_ = grpc.SetHeader(ctx, metadata.Pairs(contextx.RequestIDHeader, id))
		return handler(ctx, req)
	}
}
