package rawrmenu

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"

	"github.com/Keksclan/rawrmenu/cache"
	"github.com/Keksclan/rawrmenu/interceptors"
	"github.com/Keksclan/rawrmenu/internal/core"
	"github.com/Keksclan/rawrmenu/menu"
	"github.com/Keksclan/rawrmenu/policy"
	"github.com/Keksclan/rawrmenu/tracing"
)

// Server wraps a [grpc.Server] carrying the menu service and its
// interceptor chain.
type Server struct {
	grpcServer *grpc.Server
	registry   *prometheus.Registry
	trigger    *cache.Trigger
	chain      []string
}

// NewServer applies opts and builds the gRPC server. It fails when the
// response cache is configured with an invalidation table that does not fit
// the menu operations.
func NewServer(opts ...Option) (*Server, error) {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.registry == nil {
		cfg.registry = prometheus.NewRegistry()
	}
	log := cfg.log()

	var mw core.MiddlewareBuilder
	if cfg.recovery {
		mw.Add(orderRecovery, "recovery", interceptors.RecoveryUnary(log))
	}
	mw.Add(orderRequestID, "requestid", interceptors.RequestIDUnary(log))
	mw.Add(orderLogging, "logging", interceptors.LoggingUnary())
	if cfg.tracing != nil {
		mw.Add(orderTracing, "tracing", tracing.UnaryServerInterceptor(cfg.tracing))
	}
	if cfg.limiter != nil || len(cfg.groups) > 0 {
		mw.Add(orderPolicy, "policy", interceptors.PolicyUnary(cfg.limiter, policy.NewResolver(cfg.groups...)))
	}
	mw.Add(orderValidation, "validation", interceptors.ValidateUnary())

	var trigger *cache.Trigger
	if cfg.cache != nil {
		cc := *cfg.cache
		if cc.Envelope == nil {
			cc.Envelope = menu.NewEnvelope()
		}
		if cc.Table == nil {
			cc.Table = menu.InvalidationTable
		}
		if err := cc.Table.Validate(menu.Declared); err != nil {
			return nil, fmt.Errorf("rawrmenu: invalid invalidation table: %w", err)
		}
		if cc.Logger == nil {
			cc.Logger = log
		}
		if cc.Metrics == nil {
			cc.Metrics = cache.NewMetrics(cfg.registry)
		}
		if cc.Fence == nil {
			cc.Fence = cache.NewFence()
		}
		if cc.TracerProvider == nil && cfg.tracing != nil {
			cc.TracerProvider = cfg.tracing.TracerProvider
		}
		trigger = cache.NewTrigger(cc)
		mw.Add(orderCache, "cache", interceptors.CacheUnary(cache.NewGuard(cc), trigger, menuRoutes()))
	}
	for i, ic := range cfg.custom {
		mw.Add(orderCustom, fmt.Sprintf("custom-%d", i), ic)
	}

	serverOpts := core.BuildServerOptions(mw.Build(), interceptors.ChainUnary)
	return &Server{
		grpcServer: grpc.NewServer(serverOpts...),
		registry:   cfg.registry,
		trigger:    trigger,
		chain:      mw.Names(),
	}, nil
}

func menuRoutes() interceptors.CacheRoutes {
	r := interceptors.CacheRoutes{
		Reads:  make(map[string]string, len(menu.ReadOps)),
		Writes: make(map[string]string, len(menu.WriteOps)),
	}
	for _, op := range menu.ReadOps {
		r.Reads[menu.FullMethod(op)] = op
	}
	for _, op := range menu.WriteOps {
		r.Writes[menu.FullMethod(op)] = op
	}
	return r
}

// GRPC returns the underlying server, e.g. to register more services.
func (s *Server) GRPC() *grpc.Server {
	return s.grpcServer
}

// RegisterMenu registers the menu service implementation.
func (s *Server) RegisterMenu(srv menu.Server) {
	menu.Register(s.grpcServer, srv)
}

// Serve accepts connections on lis until Stop or GracefulStop.
func (s *Server) Serve(lis net.Listener) error {
	return s.grpcServer.Serve(lis)
}

// GracefulStop stops accepting calls and waits for running ones.
func (s *Server) GracefulStop() {
	s.grpcServer.GracefulStop()
}

// Stop closes every connection at once.
func (s *Server) Stop() {
	s.grpcServer.Stop()
}

// Flush drops every cached response. It is a no-op without a response
// cache.
func (s *Server) Flush(ctx context.Context) error {
	if s.trigger == nil {
		return nil
	}
	return s.trigger.Flush(ctx)
}

// MetricsHandler serves the server's Prometheus registry.
func (s *Server) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry})
}
