package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lookup results recorded by the guard.
const (
	ResultHit    = "hit"
	ResultMiss   = "miss"
	ResultError  = "error"
	ResultBypass = "bypass"
)

// Metrics are the Prometheus counters of the guard and the trigger. A nil
// *Metrics records nothing.
type Metrics struct {
	lookups   *prometheus.CounterVec
	evictions *prometheus.CounterVec
	errors    *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg. A nil reg
// creates unregistered counters.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		lookups: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "rawrmenu_cache_lookups_total",
			Help: "Cache lookups by resource and result (hit, miss, error, bypass).",
		}, []string{"resource", "result"}),
		evictions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "rawrmenu_cache_evictions_total",
			Help: "Evictions issued by write operations, by target resource and match mode.",
		}, []string{"resource", "mode"}),
		errors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "rawrmenu_cache_errors_total",
			Help: "Cache store and codec failures by operation.",
		}, []string{"op"}),
	}
}

func (m *Metrics) lookup(resource, result string) {
	if m != nil {
		m.lookups.WithLabelValues(resource, result).Inc()
	}
}

func (m *Metrics) eviction(resource, mode string) {
	if m != nil {
		m.evictions.WithLabelValues(resource, mode).Inc()
	}
}

func (m *Metrics) failure(op string) {
	if m != nil {
		m.errors.WithLabelValues(op).Inc()
	}
}
