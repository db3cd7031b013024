// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ranking metrics
	RankingRunsTotal  *prometheus.CounterVec
	RankingDuration   prometheus.Histogram
	RankedWallets     prometheus.Gauge
	RankingGeneration prometheus.Gauge
	PlaceholderServed prometheus.Counter
	EndpointRotations prometheus.Counter

	// Event metrics
	EventsGenerated  *prometheus.CounterVec
	EventsStored     prometheus.Counter
	EventStoreErrors prometheus.Counter
	MonitoredWallets prometheus.Gauge

	// Broadcast metrics
	HubSubscribers    prometheus.Gauge
	MessagesBroadcast *prometheus.CounterVec
	MessagesDropped   prometheus.Counter

	// RPC metrics
	RPCCallLatency *prometheus.HistogramVec
	RPCErrors      *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "tokenwise"
	}

	return &Metrics{
		// Ranking metrics
		RankingRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ranking",
			Name:      "runs_total",
			Help:      "Total number of ranking runs by status",
		}, []string{"status"}),
		RankingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ranking",
			Name:      "duration_seconds",
			Help:      "Ranking run duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		RankedWallets: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ranking",
			Name:      "wallets",
			Help:      "Number of wallets in the current ranking",
		}),
		RankingGeneration: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ranking",
			Name:      "generation",
			Help:      "Generation counter of the current ranking",
		}),
		PlaceholderServed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ranking",
			Name:      "placeholder_served_total",
			Help:      "Total number of placeholder rankings served",
		}),
		EndpointRotations: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "endpoint_rotations_total",
			Help:      "Total number of RPC endpoint rotations",
		}),

		// Event metrics
		EventsGenerated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "events_generated_total",
			Help:      "Total number of transaction events generated by type",
		}, []string{"type"}),
		EventsStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "events_stored_total",
			Help:      "Total number of transaction events stored",
		}),
		EventStoreErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "event_store_errors_total",
			Help:      "Total number of event persistence failures",
		}),
		MonitoredWallets: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "wallets",
			Help:      "Current number of monitored wallets",
		}),

		// Broadcast metrics
		HubSubscribers: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "hub",
			Name:      "subscribers",
			Help:      "Current number of broadcast subscribers",
		}),
		MessagesBroadcast: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hub",
			Name:      "messages_broadcast_total",
			Help:      "Total number of messages broadcast by kind",
		}, []string{"kind"}),
		MessagesDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hub",
			Name:      "messages_dropped_total",
			Help:      "Total number of messages dropped for slow subscribers",
		}),

		// RPC metrics
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		RPCErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_errors_total",
			Help:      "Total number of RPC errors by class",
		}, []string{"class"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordRankingRun records one ranking run.
func RecordRankingRun(placeholder bool, generation uint64, wallets int, durationSeconds float64) {
	status := "ok"
	if placeholder {
		status = "placeholder"
		DefaultMetrics.PlaceholderServed.Inc()
	}
	DefaultMetrics.RankingRunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.RankingDuration.Observe(durationSeconds)
	DefaultMetrics.RankedWallets.Set(float64(wallets))
	DefaultMetrics.RankingGeneration.Set(float64(generation))
}

// RecordEventGenerated increments the events generated counter.
func RecordEventGenerated(eventType string) {
	DefaultMetrics.EventsGenerated.WithLabelValues(eventType).Inc()
}

// RecordEventStored records one persisted event, or a persistence failure.
func RecordEventStored(err error) {
	if err != nil {
		DefaultMetrics.EventStoreErrors.Inc()
		return
	}
	DefaultMetrics.EventsStored.Inc()
}

// UpdateMonitoredWallets updates the monitored wallet gauge.
func UpdateMonitoredWallets(n int) {
	DefaultMetrics.MonitoredWallets.Set(float64(n))
}

// UpdateHubSubscribers updates the subscriber gauge.
func UpdateHubSubscribers(n int) {
	DefaultMetrics.HubSubscribers.Set(float64(n))
}

// RecordBroadcast records one broadcast message and any drops.
func RecordBroadcast(kind string, delivered, subscribers int) {
	DefaultMetrics.MessagesBroadcast.WithLabelValues(kind).Inc()
	if dropped := subscribers - delivered; dropped > 0 {
		DefaultMetrics.MessagesDropped.Add(float64(dropped))
	}
}

// RecordEndpointRotation increments the rotation counter.
func RecordEndpointRotation() {
	DefaultMetrics.EndpointRotations.Inc()
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordRPCError records one RPC failure by class.
func RecordRPCError(class string) {
	DefaultMetrics.RPCErrors.WithLabelValues(class).Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
