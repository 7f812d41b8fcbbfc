package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DispatchRequests counts dispatched requests by operation, table and outcome code.
	DispatchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "denuncias_dispatch_requests_total",
		Help: "Total number of dispatched requests",
	}, []string{"operation", "table", "code"})

	// DispatchLatency records dispatch latency by operation and table.
	DispatchLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "denuncias_dispatch_latency_seconds",
		Help:    "Dispatch latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// AuthEvents counts session lifecycle events by kind and outcome code.
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "denuncias_auth_events_total",
		Help: "Total number of sign-up, sign-in and sign-out attempts",
	}, []string{"event", "code"})

	// ActiveSessions is the number of live sessions.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "denuncias_active_sessions",
		Help: "Number of live sessions",
	})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "denuncias_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CachePublishes counts derived views pushed to cache observers.
	CachePublishes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "denuncias_cache_publishes_total",
		Help: "Total number of derived views published to cache observers",
	}, []string{"observer"})
)

// TrackDispatch returns a function that records latency when called (e.g. defer).
func TrackDispatch(operation, table string) func() {
	start := time.Now()
	return func() {
		DispatchLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RecordDispatch counts one dispatched request. An empty code means success.
func RecordDispatch(operation, table, code string) {
	if code == "" {
		code = "OK"
	}
	DispatchRequests.WithLabelValues(operation, table, code).Inc()
}

// RecordAuthEvent counts one session lifecycle event.
func RecordAuthEvent(event, code string) {
	if code == "" {
		code = "OK"
	}
	AuthEvents.WithLabelValues(event, code).Inc()
}
