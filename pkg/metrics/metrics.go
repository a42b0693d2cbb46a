// Package metrics defines the Prometheus metric collectors used by the
// recommender and the résumé ranker and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestsInFlight  prometheus.Gauge
	RecommendationsTotal  *prometheus.CounterVec
	RecommendationLatency *prometheus.HistogramVec
	RecommendationResults prometheus.Histogram
	CacheHitsTotal        prometheus.Counter
	CacheMissesTotal      prometheus.Counter
	RefreshesTotal        *prometheus.CounterVec
	RefreshFailuresTotal  prometheus.Counter
	RefreshDuration       prometheus.Histogram
	CorpusSize            prometheus.Gauge
	ModelReady            prometheus.Gauge
	SnapshotBuiltAt       prometheus.Gauge
	ResumesScoredTotal    *prometheus.CounterVec
	ResumesExcludedTotal  prometheus.Counter
}

// New creates all collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, route, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		RecommendationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recommendations_total",
				Help: "Recommendation requests by outcome (matched, empty, not_ready, error).",
			},
			[]string{"outcome"},
		),
		RecommendationLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "recommendation_latency_seconds",
				Help:    "Recommendation latency in seconds.",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"cache_status"},
		),
		RecommendationResults: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "recommendation_results_count",
				Help:    "Number of jobs returned per recommendation request.",
				Buckets: []float64{0, 1, 2, 3, 5, 10, 25},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "recommendation_cache_hits_total",
				Help: "Total number of result cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "recommendation_cache_misses_total",
				Help: "Total number of result cache misses.",
			},
		),
		RefreshesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "model_refreshes_total",
				Help: "Corpus snapshot rebuilds by trigger and status.",
			},
			[]string{"trigger", "status"},
		),
		RefreshFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "refresh_failures_total",
				Help: "Failed refresh cycles. The previous snapshot keeps serving.",
			},
		),
		RefreshDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "model_refresh_duration_seconds",
				Help:    "Time to fetch the corpus and build a snapshot.",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
			},
		),
		CorpusSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "corpus_jobs",
				Help: "Number of jobs in the published snapshot.",
			},
		),
		ModelReady: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "model_ready",
				Help: "1 when the published snapshot carries a usable model.",
			},
		),
		SnapshotBuiltAt: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "snapshot_built_timestamp_seconds",
				Help: "Unix time the published snapshot was built.",
			},
		),
		ResumesScoredTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resumes_scored_total",
				Help: "Résumés scored by method.",
			},
			[]string{"method"},
		),
		ResumesExcludedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "resumes_excluded_total",
				Help: "Résumés excluded because no text could be extracted.",
			},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.RecommendationsTotal,
		m.RecommendationLatency,
		m.RecommendationResults,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.RefreshesTotal,
		m.RefreshFailuresTotal,
		m.RefreshDuration,
		m.CorpusSize,
		m.ModelReady,
		m.SnapshotBuiltAt,
		m.ResumesScoredTotal,
		m.ResumesExcludedTotal,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
