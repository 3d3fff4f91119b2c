// Package metrics provides Prometheus metrics for the enrichment service.
// It exports HTTP request metrics plus counters and gauges tracking the
// outcome of enrichment runs:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//   - enrichment_runs_total: Counter with a result label
//   - enrichment_run_duration_seconds: Histogram of full-run latency
//   - enrichment_records: Gauge per record outcome class
//
// All metrics are automatically registered with the Prometheus default
// registry during package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (IPs seen recently)",
		},
	)

	EnrichmentRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_runs_total",
			Help: "Total enrichment runs by result",
		},
		[]string{"result"},
	)

	EnrichmentRunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "enrichment_run_duration_seconds",
			Help:    "Full enrichment run latency",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	EnrichmentRecords = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "enrichment_records",
			Help: "Record counts of the last enrichment run by outcome class",
		},
		[]string{"class"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(EnrichmentRunsTotal)
	prometheus.MustRegister(EnrichmentRunDuration)
	prometheus.MustRegister(EnrichmentRecords)
}
