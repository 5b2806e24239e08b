package interceptors

import (
	"context"
	"log/slog"
	"runtime/debug"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Keksclan/rawrmenu/contextx"
)

var errInternal = status.Error(codes.Internal, "internal server error")

// RecoveryUnary turns a panic in the rest of the chain into codes.Internal
// and logs it with its stack. A nil log uses the context logger.
func RecoveryUnary(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				l := log
				if l == nil {
					l = contextx.Logger(ctx)
				}
				l.ErrorContext(ctx, "panic in handler",
					"method", info.FullMethod,
					"panic", r,
					"stack", string(debug.Stack()),
				)
				resp, err = nil, errInternal
			}
		}()
		return handler(ctx, req)
	}
}
