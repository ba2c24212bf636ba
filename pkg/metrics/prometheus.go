// Package metrics provides Prometheus metrics for the podium judging service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the judging service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Core business metrics - score submission and aggregation
	scoresSubmitted      prometheus.Counter
	scoreResubmissions   prometheus.Counter
	validationRejections *prometheus.CounterVec
	submissionLatency    prometheus.Histogram

	// Read-path metrics
	leaderboardQueries prometheus.Counter
	aggregateQueries   prometheus.Counter
	progressQueries    prometheus.Counter

	// Project status feed metrics
	feedUpdatesApplied prometheus.Counter
	feedDuplicates     prometheus.Counter
	feedQueueSize      prometheus.Gauge
	feedQueueCapacity  prometheus.Gauge
	workerCount        prometheus.Gauge
	workerErrors       prometheus.Counter

	// Repository metrics
	repositoryWriteLatency prometheus.Histogram
	repositoryQueryLatency prometheus.Histogram

	// Operational gauges
	projectsTracked prometheus.Gauge
	scoresStored    prometheus.Gauge

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System performance metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "podium",
		subsystem:        "judging",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.scoresSubmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scores_submitted_total",
		Help:      "Total number of score submissions accepted",
	})

	m.scoreResubmissions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "score_resubmissions_total",
		Help:      "Total number of submissions that updated an existing (judge, project) score",
	})

	m.validationRejections = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "validation_rejections_total",
		Help:      "Total number of score submissions rejected by validation, by reason",
	}, []string{"reason"})

	m.submissionLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submission_latency_milliseconds",
		Help:      "Histogram of end-to-end score submission latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.leaderboardQueries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_queries_total",
		Help:      "Total number of leaderboard reads",
	})

	m.aggregateQueries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "aggregate_queries_total",
		Help:      "Total number of per-project aggregate reads",
	})

	m.progressQueries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "progress_queries_total",
		Help:      "Total number of judge progress reads",
	})

	m.feedUpdatesApplied = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_updates_applied_total",
		Help:      "Total number of project status feed updates applied to the read model",
	})

	m.feedDuplicates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_duplicates_total",
		Help:      "Total number of duplicate feed deliveries dropped",
	})

	m.feedQueueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_queue_size",
		Help:      "Current number of feed updates waiting to be applied",
	})

	m.feedQueueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_queue_capacity",
		Help:      "Configured capacity of the feed update queue",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Number of feed worker goroutines",
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Total number of feed updates that failed to apply",
	})

	m.repositoryWriteLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_write_latency_milliseconds",
		Help:      "Histogram of repository write latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.repositoryQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_query_latency_milliseconds",
		Help:      "Histogram of repository query latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.projectsTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "projects_tracked",
		Help:      "Number of projects currently in the status read model",
	})

	m.scoresStored = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scores_stored",
		Help:      "Number of score rows currently stored",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Histogram of HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current heap memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})
}

// RecordScoreSubmitted increments the accepted submissions counter.
func RecordScoreSubmitted() {
	globalManager.scoresSubmitted.Inc()
}

// RecordScoreResubmission increments the resubmission (upsert-update) counter.
func RecordScoreResubmission() {
	globalManager.scoreResubmissions.Inc()
}

// RecordValidationRejection counts a rejected submission by reason.
func RecordValidationRejection(reason string) {
	globalManager.validationRejections.WithLabelValues(reason).Inc()
}

// RecordSubmissionLatency records end-to-end submission latency in milliseconds.
func RecordSubmissionLatency(latencyMs float64) {
	globalManager.submissionLatency.Observe(latencyMs)
}

// RecordLeaderboardQuery increments the leaderboard reads counter.
func RecordLeaderboardQuery() {
	globalManager.leaderboardQueries.Inc()
}

// RecordAggregateQuery increments the aggregate reads counter.
func RecordAggregateQuery() {
	globalManager.aggregateQueries.Inc()
}

// RecordProgressQuery increments the progress reads counter.
func RecordProgressQuery() {
	globalManager.progressQueries.Inc()
}

// RecordFeedUpdateApplied increments the applied feed updates counter.
func RecordFeedUpdateApplied() {
	globalManager.feedUpdatesApplied.Inc()
}

// RecordFeedDuplicate increments the duplicate feed deliveries counter.
func RecordFeedDuplicate() {
	globalManager.feedDuplicates.Inc()
}

// UpdateFeedQueueSize sets the current feed queue size.
func UpdateFeedQueueSize(size int) {
	globalManager.feedQueueSize.Set(float64(size))
}

// UpdateFeedQueueCapacity sets the configured feed queue capacity.
func UpdateFeedQueueCapacity(capacity int) {
	globalManager.feedQueueCapacity.Set(float64(capacity))
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerError increments the failed feed updates counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordRepositoryWriteLatency records repository write latency in milliseconds.
func RecordRepositoryWriteLatency(latencyMs float64) {
	globalManager.repositoryWriteLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records repository query latency in milliseconds.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// UpdateProjectsTracked sets the projects read-model gauge.
func UpdateProjectsTracked(count int) {
	globalManager.projectsTracked.Set(float64(count))
}

// UpdateScoresStored sets the stored score rows gauge.
func UpdateScoresStored(count int) {
	globalManager.scoresStored.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateSystemMemoryUsage sets the heap memory gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom registry used for metrics exposition.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
