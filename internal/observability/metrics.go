// Package observability provides Prometheus metrics for the application.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics. A nil *Metrics is valid and
// records nothing, which keeps tests free of global registry collisions.
type Metrics struct {
	// Request metrics
	RequestsTotal      *prometheus.CounterVec
	RequestsInProgress prometheus.Gauge
	RequestDuration    prometheus.Histogram

	// Strategy metrics
	StrategyOutcomes  *prometheus.CounterVec
	FallbackAdvances  prometheus.Counter
	DownloadBytes     prometheus.Counter

	// Delivery metrics
	FilesDelivered    *prometheus.CounterVec
	OversizeRejected  prometheus.Counter
	CleanupFilesTotal prometheus.Counter
}

// New creates and registers all application metrics.
func New() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "botdl",
			Subsystem: "requests",
			Name:      "total",
			Help:      "Total number of download requests by platform",
		}, []string{"platform"}),
		RequestsInProgress: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "botdl",
			Subsystem: "requests",
			Name:      "in_progress",
			Help:      "Number of requests currently being processed",
		}),
		RequestDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "botdl",
			Subsystem: "requests",
			Name:      "duration_seconds",
			Help:      "Histogram of request duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),

		StrategyOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "botdl",
			Subsystem: "strategy",
			Name:      "outcomes_total",
			Help:      "Total number of strategy runs by strategy and result",
		}, []string{"strategy", "result"}),
		FallbackAdvances: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "botdl",
			Subsystem: "strategy",
			Name:      "fallback_advances_total",
			Help:      "Total number of times the chain advanced to a lower-priority strategy",
		}),
		DownloadBytes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "botdl",
			Subsystem: "strategy",
			Name:      "download_bytes_total",
			Help:      "Total bytes downloaded across all requests",
		}),

		FilesDelivered: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "botdl",
			Subsystem: "delivery",
			Name:      "files_total",
			Help:      "Total number of files delivered by media kind",
		}, []string{"kind"}),
		OversizeRejected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "botdl",
			Subsystem: "delivery",
			Name:      "oversize_rejected_total",
			Help:      "Total number of files rejected by the size limit",
		}),
		CleanupFilesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "botdl",
			Subsystem: "delivery",
			Name:      "cleanup_files_total",
			Help:      "Total number of files removed after delivery",
		}),
	}
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RequestTimer returns a function to record request duration.
func (m *Metrics) RequestTimer() func() {
	if m == nil {
		return func() {}
	}

	start := time.Now()

	return func() {
		m.RequestDuration.Observe(time.Since(start).Seconds())
	}
}

// RecordRequest records an accepted request.
func (m *Metrics) RecordRequest(platform string) {
	if m == nil {
		return
	}

	m.RequestsTotal.WithLabelValues(platform).Inc()
	m.RequestsInProgress.Inc()
}

// RecordRequestDone decrements the in-progress gauge.
func (m *Metrics) RecordRequestDone() {
	if m == nil {
		return
	}

	m.RequestsInProgress.Dec()
}

// RecordStrategyOutcome records a strategy run result.
func (m *Metrics) RecordStrategyOutcome(strategy, result string) {
	if m == nil {
		return
	}

	m.StrategyOutcomes.WithLabelValues(strategy, result).Inc()
}

// RecordFallbackAdvance records the chain moving past a failed strategy.
func (m *Metrics) RecordFallbackAdvance() {
	if m == nil {
		return
	}

	m.FallbackAdvances.Inc()
}

// RecordDownloadBytes adds to the total downloaded byte counter.
func (m *Metrics) RecordDownloadBytes(n int64) {
	if m == nil || n <= 0 {
		return
	}

	m.DownloadBytes.Add(float64(n))
}

// RecordFileDelivered records a delivered file by media kind.
func (m *Metrics) RecordFileDelivered(kind string) {
	if m == nil {
		return
	}

	m.FilesDelivered.WithLabelValues(kind).Inc()
}

// RecordOversizeRejected records a file rejected by the size limit.
func (m *Metrics) RecordOversizeRejected() {
	if m == nil {
		return
	}

	m.OversizeRejected.Inc()
}

// RecordCleanup records removed files.
func (m *Metrics) RecordCleanup(files int) {
	if m == nil {
		return
	}

	m.CleanupFilesTotal.Add(float64(files))
}
