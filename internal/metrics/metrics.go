// Package metrics exposes Prometheus collectors for ledger interaction.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Registry holds the raffler-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	ledgerCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "raffler",
			Subsystem: "ledger",
			Name:      "calls_total",
			Help:      "Total number of ledger calls issued.",
		},
		[]string{"method", "kind", "status"},
	)

	ledgerCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "raffler",
			Subsystem: "ledger",
			Name:      "call_duration_seconds",
			Help:      "Duration of ledger calls.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
		[]string{"method", "kind"},
	)

	cacheResets = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "raffler",
			Subsystem: "cache",
			Name:      "resets_total",
			Help:      "Total number of store resets (logouts).",
		},
	)
)

func init() {
	Registry.MustRegister(ledgerCalls, ledgerCallDuration, cacheResets)
}

// ObserveLedgerCall records a completed ledger call. kind is "view" or
// "change".
func ObserveLedgerCall(method, kind string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	ledgerCalls.WithLabelValues(method, kind, status).Inc()
	ledgerCallDuration.WithLabelValues(method, kind).Observe(time.Since(start).Seconds())
}

// ObserveCacheReset records a store reset.
func ObserveCacheReset() {
	cacheResets.Inc()
}
