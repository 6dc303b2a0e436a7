package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RetryAttempts tracks every physical attempt made by the retry executor
	RetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suiwork_retry_attempts_total",
			Help: "Total number of attempts made by the retry executor",
		},
		[]string{"operation", "outcome"},
	)

	// RetryBackoff tracks the delays slept between attempts
	RetryBackoff = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "suiwork_retry_backoff_seconds",
			Help:    "Backoff delay before a retry in seconds",
			Buckets: []float64{0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"operation"},
	)

	// ClassifiedErrors tracks surfaced failures per category
	ClassifiedErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suiwork_classified_errors_total",
			Help: "Total number of failures surfaced to callers by category",
		},
		[]string{"operation", "category"},
	)

	// Submissions tracks wallet submissions
	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suiwork_submissions_total",
			Help: "Total number of transaction submissions",
		},
		[]string{"adapter", "kind", "status"},
	)

	// RPCCallsTotal tracks JSON-RPC calls per provider and method
	RPCCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suiwork_rpc_calls_total",
			Help: "Total number of RPC calls",
		},
		[]string{"provider", "method"},
	)

	// RPCErrorsTotal tracks RPC errors per provider
	RPCErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suiwork_rpc_errors_total",
			Help: "Total number of RPC errors",
		},
		[]string{"provider", "method"},
	)

	// RPCLatency tracks RPC call latency
	RPCLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "suiwork_rpc_latency_seconds",
			Help:    "RPC call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "method"},
	)

	// RPCFailovers tracks router fallbacks from one endpoint to the next
	RPCFailovers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suiwork_rpc_failovers_total",
			Help: "Total number of fullnode failovers",
		},
		[]string{"router", "from", "to"},
	)

	// Connectivity exposes the platform online flag (1 online, 0 offline)
	Connectivity = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "suiwork_platform_online",
			Help: "Platform connectivity flag",
		},
	)

	// Reachability exposes the last remote probe result (1 reachable)
	Reachability = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "suiwork_remote_reachable",
			Help: "Result of the last fullnode reachability probe",
		},
	)

	// LatestCheckpoint tracks the checkpoint seen by the last probe
	LatestCheckpoint = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "suiwork_latest_checkpoint",
			Help: "Latest checkpoint sequence number seen by the probe",
		},
	)

	// DBConnectionPoolUsage tracks record store pool usage percentage
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "suiwork_db_connection_pool_usage_percent",
			Help: "Database connection pool usage percentage",
		},
	)
)
