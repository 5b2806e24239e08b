package contextx

import "context"

// RequestIDHeader is the metadata key a caller may set to choose the request
// id; the server echoes it back in the response header.
const RequestIDHeader = "x-request-id"

// WithRequestID returns a derived context that carries id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request id stored in ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
