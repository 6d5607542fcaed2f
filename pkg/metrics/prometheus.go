package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	scansIngested *prometheus.CounterVec
	decisions     *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	bestProfit    *prometheus.GaugeVec
	latency       *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		scansIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shelfscout_scans_ingested_total",
				Help: "Total number of scan events ingested per backend",
			},
			[]string{"backend", "location"},
		),
		decisions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shelfscout_decisions_total",
				Help: "Total number of buy decisions by verdict",
			},
			[]string{"verdict"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shelfscout_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		bestProfit: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "shelfscout_best_profit",
				Help: "Last computed best net profit per channel",
			},
			[]string{"channel"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shelfscout_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordScanIngested records one ingested scan event.
func (r *Recorder) RecordScanIngested(backend, location string) {
	r.scansIngested.WithLabelValues(backend, location).Inc()
}

// RecordDecision records one decision outcome.
func (r *Recorder) RecordDecision(verdict string) {
	r.decisions.WithLabelValues(verdict).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordBestProfit records the best net profit of the latest evaluation.
func (r *Recorder) RecordBestProfit(channel string, profit float64) {
	r.bestProfit.WithLabelValues(channel).Set(profit)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
