package contextx

import "context"

// WithGroup returns a derived context that carries the policy group name.
func WithGroup(ctx context.Context, group string) context.Context {
	return context.WithValue(ctx, groupKey, group)
}

// GroupFromContext returns the policy group stored in ctx, or "" when the
// method matched no group.
func GroupFromContext(ctx context.Context) string {
	g, _ := ctx.Value(groupKey).(string)
	return g
}
