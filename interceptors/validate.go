package interceptors

import (
	"context"

	"google.golang.org/grpc"
)

// Validator is implemented by requests that can reject themselves.
type Validator interface {
	Validate() error
}

// ValidateUnary rejects invalid requests. It sits in front of the response
// cache; rejected requests are neither looked up nor stored. Validate may
// rewrite the request in place, and everything after it sees the rewritten
// request.
func ValidateUnary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if v, ok := req.(Validator); ok {
			if err := v.Validate(); err != nil {
				return nil, err
			}
		}
		return handler(ctx, req)
	}
}
