package interceptors

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Keksclan/rawrmenu/contextx"
)

// LoggingUnary writes one line per call with the method, the resulting code
// and the duration. Server faults are logged at error, client faults at
// warn and the rest at info.
func LoggingUnary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		attrs := []any{
			"method", info.FullMethod,
			"code", code.String(),
			"duration", time.Since(start),
		}
		if g := contextx.GroupFromContext(ctx); g != "" {
			attrs = append(attrs, "group", g)
		}
		l := contextx.Logger(ctx)
		switch levelFor(code) {
		case slog.LevelError:
			l.ErrorContext(ctx, "rpc", append(attrs, "err", err)...)
		case slog.LevelWarn:
			l.WarnContext(ctx, "rpc", append(attrs, "err", err)...)
		default:
			l.InfoContext(ctx, "rpc", attrs...)
		}
		return resp, err
	}
}

func levelFor(code codes.Code) slog.Level {
	switch code {
	case codes.OK, codes.NotFound, codes.Canceled:
		return slog.LevelInfo
	case codes.Internal, codes.Unknown, codes.DataLoss, codes.Unavailable, codes.Unimplemented:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
