package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// TaskFlow metrics
var (
	// HTTP request counters (gateway)
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taskflow",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "taskflow",
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Guard denials
	GuardDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taskflow",
			Subsystem: "gateway",
			Name:      "guard_denials_total",
			Help:      "Authorization pipeline denials by stage",
		},
		[]string{"stage"},
	)

	// Outbound RPCs
	RPCRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taskflow",
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "Total outbound RPC requests by command and outcome",
		},
		[]string{"command", "outcome"},
	)

	// Cache effectiveness
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taskflow",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache-aside lookups by result (hit, miss, bypass, invalid)",
		},
		[]string{"result"},
	)

	// Events
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taskflow",
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Domain events published by topic",
		},
		[]string{"topic"},
	)
)

// RecordRequest records a completed HTTP request.
func RecordRequest(method, endpoint, status string, duration float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordRPC records an outbound RPC outcome ("ok", "business", "transport", "unknown").
func RecordRPC(command, outcome string) {
	RPCRequestsTotal.WithLabelValues(command, outcome).Inc()
}

// RecordCacheLookup records a cache lookup result: "hit", "miss", "bypass"
// for an unavailable backend, "invalid" for an undecodable entry.
func RecordCacheLookup(result string) {
	CacheLookupsTotal.WithLabelValues(result).Inc()
}
