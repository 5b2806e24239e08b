// Command rawrmenu serves the menu service over gRPC with a response cache
// in front of its database.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Keksclan/rawrmenu"
	"github.com/Keksclan/rawrmenu/breaker"
	"github.com/Keksclan/rawrmenu/cache"
	"github.com/Keksclan/rawrmenu/internal/profile"
	"github.com/Keksclan/rawrmenu/menu"
	"github.com/Keksclan/rawrmenu/policy"
	"github.com/Keksclan/rawrmenu/store"
	"github.com/Keksclan/rawrmenu/store/db"
	"github.com/Keksclan/rawrmenu/tracing"
)

const shutdownTimeout = 10 * time.Second

var v = profile.NewViper()

var rootCmd = &cobra.Command{
	Use:          "rawrmenu",
	Short:        "A restaurant menu service with a write-invalidated response cache.",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate the database and serve the menu service",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, log, err := load()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, p, log)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, log, err := load()
		if err != nil {
			return err
		}
		st, err := openStore(cmd.Context(), p)
		if err != nil {
			return err
		}
		defer st.Close()
		log.Info("database migrated", "driver", p.Driver)
		return nil
	},
}

var flushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Drop every cached response in Redis",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, log, err := load()
		if err != nil {
			return err
		}
		if !p.UsesRedis() {
			return errors.New("flush needs redis.addr; the in-process cache lives only as long as the server")
		}
		rs := cache.NewRedisStore(redisConfig(p))
		defer rs.Close()
		if err := rs.Ping(cmd.Context()); err != nil {
			return errors.Wrap(err, "failed to reach redis")
		}
		srv, err := rawrmenu.NewServer(
			rawrmenu.WithLogger(log),
			rawrmenu.WithResponseCache(cache.Config{Store: rs}),
		)
		if err != nil {
			return err
		}
		if err := srv.Flush(cmd.Context()); err != nil {
			return err
		}
		log.Info("cache flushed", "redis", p.Redis.Addr)
		return nil
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.String("addr", v.GetString("addr"), "gRPC listen address")
	f.String("metrics-addr", v.GetString("metrics-addr"), "address serving /metrics, empty to disable")
	f.String("driver", v.GetString("driver"), "database driver, sqlite or postgres")
	f.String("dsn", v.GetString("dsn"), "database source name")
	f.String("redis.addr", "", "Redis address, empty keeps the cache in process")
	f.Bool("cache.disabled", false, "serve every read from the database")
	f.Int64("cache.l1-max-items", 0, "size of the in-process near cache in front of Redis, 0 to disable")
	f.Duration("cache.l1-ttl", v.GetDuration("cache.l1-ttl"), "how long a near cache entry may lag writes made by other servers")
	f.Float64("ratelimit.rps", 0, "global request rate limit, 0 to disable")
	f.Int("ratelimit.read-rps", 0, "rate limit of the read methods, 0 to use the global one")
	f.Int("ratelimit.write-rps", 0, "rate limit of the write methods, 0 to use the global one")
	f.Duration("ratelimit.timeout", 0, "handler timeout, 0 to disable")
	f.Bool("trace.stdout", false, "export spans to stdout")
	f.String("log.level", v.GetString("log.level"), "log level: debug, info, warn or error")
	f.String("config", "", "optional config file")

	if err := v.BindPFlags(f); err != nil {
		panic(err)
	}
	rootCmd.AddCommand(serveCmd, migrateCmd, flushCmd)
}

func load() (*profile.Profile, *slog.Logger, error) {
	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, errors.Wrapf(err, "failed to read config file %s", file)
		}
	}
	p, err := profile.FromViper(v)
	if err != nil {
		return nil, nil, err
	}
	level, _ := p.LogLevel()
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)
	return p, log, nil
}

func openStore(ctx context.Context, p *profile.Profile) (*store.Store, error) {
	driver, err := db.NewDBDriver(p)
	if err != nil {
		return nil, err
	}
	st := store.New(driver)
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, errors.Wrap(err, "failed to migrate")
	}
	return st, nil
}

func redisConfig(p *profile.Profile) cache.RedisConfig {
	return cache.RedisConfig{
		Addr:     p.Redis.Addr,
		Password: p.Redis.Password,
		DB:       p.Redis.DB,
		Prefix:   p.Redis.Prefix,
	}
}

// cacheStore picks the response cache backend. Redis is wrapped in a
// breaker, and optionally fronted by an in-process tier.
func cacheStore(ctx context.Context, p *profile.Profile, log *slog.Logger) (cache.Store, func(), error) {
	if !p.UsesRedis() {
		log.Info("response cache kept in process")
		return cache.NewMemoryStore(), func() {}, nil
	}
	rs := cache.NewRedisStore(redisConfig(p))
	if err := rs.Ping(ctx); err != nil {
		log.Warn("redis is not reachable yet, reads fall through to the database", "redis", p.Redis.Addr, "err", err)
	}
	var s cache.Store = cache.NewBreakerStore(rs, breaker.New(breaker.Config{
		FailureThreshold: 5,
		OpenTimeout:      5 * time.Second,
	}))
	closers := []func(){func() { _ = rs.Close() }}
	if p.Cache.L1MaxItems > 0 {
		t, err := cache.NewTiered(s, cache.TieredConfig{MaxItems: p.Cache.L1MaxItems, TTL: p.Cache.L1TTL})
		if err != nil {
			_ = rs.Close()
			return nil, nil, err
		}
		s = t
		closers = append(closers, t.Close)
	}
	log.Info("response cache kept in redis", "redis", p.Redis.Addr, "l1_max_items", p.Cache.L1MaxItems, "l1_ttl", p.Cache.L1TTL)
	return s, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}, nil
}

func groupPolicy(rps int, timeout time.Duration) policy.Policy {
	pol := policy.Policy{Timeout: timeout}
	if rps > 0 {
		pol.RateLimit = &policy.RateLimitRule{Rate: rps, Window: time.Second}
	}
	return pol
}

func serve(ctx context.Context, p *profile.Profile, log *slog.Logger) error {
	st, err := openStore(ctx, p)
	if err != nil {
		return err
	}
	defer st.Close()

	cs, closeCache, err := cacheStore(ctx, p, log)
	if err != nil {
		return err
	}
	defer closeCache()

	opts := append(rawrmenu.DefaultOptions(),
		rawrmenu.WithLogger(log),
		rawrmenu.WithResponseCache(cache.Config{Store: cs, Disabled: p.Cache.Disabled}),
	)
	if p.RateLimit.RPS > 0 {
		opts = append(opts, rawrmenu.WithRateLimitGlobal(p.RateLimit.RPS, p.RateLimit.Burst))
	}
	opts = append(opts, rawrmenu.WithPolicies(rawrmenu.MenuPolicies(
		groupPolicy(p.RateLimit.ReadRPS, p.RateLimit.Timeout),
		groupPolicy(p.RateLimit.WriteRPS, p.RateLimit.Timeout),
	)...))
	if p.Trace.Stdout {
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return errors.Wrap(err, "failed to create stdout exporter")
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
		defer func() { _ = tp.Shutdown(context.Background()) }()
		opts = append(opts, rawrmenu.WithOpenTelemetry(tracing.TracingConfig{
			TracerProvider: tp,
			Propagators:    propagation.TraceContext{},
		}))
	}

	srv, err := rawrmenu.NewServer(opts...)
	if err != nil {
		return err
	}
	srv.RegisterMenu(menu.NewService(st))

	lis, err := net.Listen("tcp", p.Addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", p.Addr)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("serving grpc", "addr", lis.Addr().String(), "cache_disabled", p.Cache.Disabled)
		return srv.Serve(lis)
	})

	var metrics *http.Server
	if p.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", srv.MetricsHandler())
		metrics = &http.Server{Addr: p.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			log.Info("serving metrics", "addr", p.MetricsAddr)
			if err := metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		if metrics != nil {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = metrics.Shutdown(sctx)
		}
		srv.GracefulStop()
		return nil
	})
	return g.Wait()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
