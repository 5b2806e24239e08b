package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/Keksclan/rawrmenu/retry"
)

const tracerName = "github.com/Keksclan/rawrmenu/cache"

// Config holds what a [Guard] and a [Trigger] share. Disabled is read once
// here; flipping it later has no effect on values already built.
type Config struct {
	Store    Store
	Envelope *Envelope

	// Table is only used by the trigger.
	Table Table

	// Disabled turns the guard into a passthrough and the trigger into a
	// passthrough that issues no store calls.
	Disabled bool

	Logger         *slog.Logger
	Metrics        *Metrics
	TracerProvider trace.TracerProvider

	// Retry governs evictions. The zero value uses [DefaultEvictRetry].
	Retry retry.Config

	// Fence, when shared by the guard and the trigger, keeps fills computed
	// before a write from landing after its eviction. Nil disables it.
	Fence *Fence
}

// DefaultEvictRetry makes three attempts with a short exponential backoff.
// Context errors are not retried.
func DefaultEvictRetry() retry.Config {
	return retry.Config{
		MaxAttempts: 3,
		BaseDelay:   20 * time.Millisecond,
		MaxDelay:    200 * time.Millisecond,
		Jitter:      0.2,
		RetryIf: func(err error) bool {
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		},
	}
}

func (c *Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func (c *Config) tracer() trace.Tracer {
	tp := c.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(tracerName)
}
