// Package monitoring exposes Prometheus metrics for the order pipeline.
package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ordersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_total",
			Help: "Orders processed, by terminal status and workflow.",
		},
		[]string{"status", "workflow"},
	)

	stageLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stage_latency_seconds",
			Help:    "Per-stage saga latency.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"stage", "workflow"},
	)

	riskScores = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "risk_score",
			Help:    "Distribution of computed risk scores.",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_errors_total",
			Help: "Stage failures, by error kind.",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(ordersTotal, stageLatency, riskScores, errorsTotal)
}

// RecordOrder counts a terminal order outcome.
func RecordOrder(status, workflow string) {
	ordersTotal.WithLabelValues(status, workflow).Inc()
}

// RecordStageLatency observes one stage duration.
func RecordStageLatency(stage, workflow string, d time.Duration) {
	stageLatency.WithLabelValues(stage, workflow).Observe(d.Seconds())
}

// RecordRiskScore observes a computed risk score.
func RecordRiskScore(score float64) {
	riskScores.Observe(score)
}

// RecordError counts a stage failure by kind.
func RecordError(kind string) {
	errorsTotal.WithLabelValues(kind).Inc()
}

// Handler serves the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
