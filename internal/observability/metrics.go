package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the application's Prometheus instruments.
type Metrics struct {
	// Registry owns these metrics. Exposed so the /metrics endpoint can
	// serve it.
	Registry *prometheus.Registry

	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
	storageWrites  *prometheus.CounterVec
	errorsReported *prometheus.CounterVec

	requestDuration *prometheus.HistogramVec
}

// NewMetrics creates a dedicated registry and registers all metrics in it.
// A private registry avoids duplicate-collector panics when NewMetrics is
// called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caja_storage_cache_hits_total",
				Help: "Collection reads served from the parse cache.",
			},
			[]string{"key"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caja_storage_cache_misses_total",
				Help: "Collection reads that parsed the stored blob.",
			},
			[]string{"key"},
		),
		storageWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caja_storage_writes_total",
				Help: "Successful writes per storage key.",
			},
			[]string{"key"},
		),
		errorsReported: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caja_errors_reported_total",
				Help: "Errors reported on the application error bus.",
			},
			[]string{"type"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "caja_http_request_duration_seconds",
				Help:    "HTTP request latency by method and status.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "status"},
		),
	}
}

func (m *Metrics) CacheHit(key string)      { m.cacheHits.WithLabelValues(key).Inc() }
func (m *Metrics) CacheMiss(key string)     { m.cacheMisses.WithLabelValues(key).Inc() }
func (m *Metrics) StorageWrite(key string)  { m.storageWrites.WithLabelValues(key).Inc() }
func (m *Metrics) ErrorReported(typ string) { m.errorsReported.WithLabelValues(typ).Inc() }

func (m *Metrics) ObserveRequest(method string, status int, d time.Duration) {
	m.requestDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(d.Seconds())
}
