// Package retry retries a fallible call with exponential backoff and
// jitter. The cache trigger uses it around evictions; clients may use it
// around gRPC invocations with [OnCodes].
package retry

import (
	"math"
	"math/rand/v2"
	"time"
)

// backoff returns the delay before retry number attempt+1, capped at
// cfg.MaxDelay when MaxDelay is set.
func backoff(cfg Config, attempt int) time.Duration {
	delay := float64(cfg.BaseDelay) * math.Pow(2, float64(attempt))
	if cfg.MaxDelay > 0 {
		delay = math.Min(delay, float64(cfg.MaxDelay))
	}
	if cfg.Jitter > 0 {
		delay += delay * cfg.Jitter * (rand.Float64()*2 - 1)
	}
	return time.Duration(math.Max(delay, 0))
}
