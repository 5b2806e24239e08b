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

// config is what the options fill in. The interceptors are built from it by
// NewServer once every option has run.
type config struct {
	logger   *slog.Logger
	recovery bool

	limiter *ratelimit.Limiter
	groups  []*policy.GroupBuilder

	tracing *tracing.TracingConfig
	cache   *cache.Config

	registry *prometheus.Registry

	custom []grpc.UnaryServerInterceptor
}

func (c *config) log() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}
