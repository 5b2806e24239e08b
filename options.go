package rawrmenu

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"

	"github.com/Keksclan/rawrmenu/cache"
	"github.com/Keksclan/rawrmenu/policy"
	"github.com/Keksclan/rawrmenu/ratelimit"
	"github.com/Keksclan/rawrmenu/tracing"
)

// Option configures a Server.
type Option func(*config)

// WithRecovery turns panics in handlers into codes.Internal.
func WithRecovery() Option {
	return func(c *config) { c.recovery = true }
}

// WithLogger sets the base logger. Every request logs through a child of it
// that carries the request id.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithRateLimitGlobal limits every method that no policy group limits to
// rps requests per second with bursts of burst.
func WithRateLimitGlobal(rps float64, burst int) Option {
	return func(c *config) { c.limiter = ratelimit.NewLimiter(rps, burst) }
}

// WithPolicies adds method groups. The group a method resolves to is logged
// and traced, and its policy overrides the global rate limit.
func WithPolicies(groups ...*policy.GroupBuilder) Option {
	return func(c *config) { c.groups = append(c.groups, groups...) }
}

// WithOpenTelemetry traces every call. The cache spans use the same
// provider unless the cache config names its own.
func WithOpenTelemetry(cfg tracing.TracingConfig) Option {
	return func(c *config) { c.tracing = &cfg }
}

// WithResponseCache serves reads through the response cache and evicts
// before writes. Envelope and Table default to the menu ones.
func WithResponseCache(cfg cache.Config) Option {
	return func(c *config) { c.cache = &cfg }
}

// WithMetrics registers the cache metrics on reg and serves reg from
// MetricsHandler. Without it the server uses a private registry.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(c *config) { c.registry = reg }
}

// WithUnaryInterceptor appends i after the built-in interceptors.
func WithUnaryInterceptor(i grpc.UnaryServerInterceptor) Option {
	return func(c *config) { c.custom = append(c.custom, i) }
}
