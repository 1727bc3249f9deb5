package monitoring

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	requestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"path", "method", "status"},
	)
	latencyHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)
	bufferSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "device_logs_buffer_size",
			Help: "Entries currently held in the tile log buffer",
		},
	)
	ingestedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "device_logs_ingested_total",
			Help: "External records merged into the buffer",
		},
		[]string{"source"},
	)
	ingestFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "device_logs_ingest_failures_total",
			Help: "Failed external fetches by reason",
		},
		[]string{"source", "reason"},
	)
	fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "device_logs_fetch_duration_seconds",
			Help:    "External source fetch latency",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"source"},
	)
)

// Init registers custom collectors; repeated calls are no-ops.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(requestCounter, latencyHistogram, bufferSize, ingestedTotal, ingestFailures, fetchDuration)
	})
}

// ObserveRequest records metrics.
func ObserveRequest(path, method, status string, seconds float64) {
	requestCounter.WithLabelValues(path, method, status).Inc()
	latencyHistogram.WithLabelValues(path, method).Observe(seconds)
}

// SetBufferSize publishes the current buffer length.
func SetBufferSize(n int) {
	bufferSize.Set(float64(n))
}

// ObserveFetch records one external fetch and how many entries it added.
func ObserveFetch(source string, seconds float64, added int) {
	fetchDuration.WithLabelValues(source).Observe(seconds)
	ingestedTotal.WithLabelValues(source).Add(float64(added))
}

// ObserveFetchFailure counts a failed fetch.
func ObserveFetchFailure(source, reason string, seconds float64) {
	fetchDuration.WithLabelValues(source).Observe(seconds)
	ingestFailures.WithLabelValues(source, reason).Inc()
}
