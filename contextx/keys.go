// Package contextx carries request-scoped values: the request id, the
// policy group the method resolved to and a logger enriched with both.
package contextx

type contextKey int

const (
	requestIDKey contextKey = iota
	groupKey
	loggerKey
)
