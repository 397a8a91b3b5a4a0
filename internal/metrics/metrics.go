// Package metrics exposes the service's Prometheus collectors. Delivery
// failures and connection churn never surface to ingest callers, so these
// counters are where they become visible.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "storepulse_ws_connections",
		Help: "Number of live websocket subscribers.",
	})

	ObservationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storepulse_observations_total",
		Help: "Observations processed by the ingestion pipeline, by outcome.",
	}, []string{"outcome"})

	AlertsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storepulse_alerts_total",
		Help: "High-risk alerts raised.",
	})

	BroadcastFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storepulse_broadcast_failures_total",
		Help: "Subscriber sends that failed and forced a disconnect.",
	})

	LogsDeletedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storepulse_logs_deleted_total",
		Help: "Log records removed by the retention sweeper, by kind.",
	}, []string{"kind"})
)
