// Package metrics exposes the application's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cleo"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	simulationToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "toggles_total",
			Help:      "Simulation toggle requests by requested state and outcome.",
		},
		[]string{"active", "result"},
	)

	sessionCacheSource atomic.Pointer[func() (hits, misses uint64)]

	sessionCacheHits = prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session_cache",
			Name:      "hits_total",
			Help:      "Session lookups served from the cache.",
		},
		func() float64 { h, _ := sessionCacheCounts(); return float64(h) },
	)

	sessionCacheMisses = prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session_cache",
			Name:      "misses_total",
			Help:      "Session lookups that went to the session store or joined a load in flight.",
		},
		func() float64 { _, m := sessionCacheCounts(); return float64(m) },
	)

	simulatedRequests = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "requests_total",
			Help:      "Authenticated requests served under an active simulation window.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		simulationToggles,
		simulatedRequests,
		sessionCacheHits,
		sessionCacheMisses,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordSimulationToggle counts one toggle attempt.
func RecordSimulationToggle(active bool, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	simulationToggles.WithLabelValues(strconv.FormatBool(active), result).Inc()
}

// RecordSimulatedRequest counts one request served with a simulated clock.
func RecordSimulatedRequest() {
	simulatedRequests.Inc()
}

// ObserveSessionCache sets the source of the session cache counters. A nil
// source reports zero.
func ObserveSessionCache(src func() (hits, misses uint64)) {
	if src == nil {
		sessionCacheSource.Store(nil)
		return
	}
	sessionCacheSource.Store(&src)
}

func sessionCacheCounts() (uint64, uint64) {
	src := sessionCacheSource.Load()
	if src == nil {
		return 0, 0
	}
	return (*src)()
}
