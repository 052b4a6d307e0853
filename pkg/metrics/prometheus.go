// Package metrics provides Prometheus metrics for the ranklist service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Manager manages all Prometheus metrics for the ranklist service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// Ingest metrics - what flows into the record store
	recordsIngested  prometheus.Counter
	recordsDuplicate prometheus.Counter
	recordsRejected  prometheus.Counter
	aggregateLatency prometheus.Histogram

	// Query metrics - ranklist evaluation
	ranklistQueries *prometheus.CounterVec
	queryLatency    prometheus.Histogram
	queryErrors     prometheus.Counter

	// Pipeline health
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueues    prometheus.Counter
	queueDequeues    prometheus.Counter
	queueErrors      prometheus.Counter
	workerCount      prometheus.Gauge
	workerErrors     prometheus.Counter

	// Store
	storeRecords prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemoryBytes prometheus.Gauge
	systemGoroutines  prometheus.Gauge
	systemGCPauseMs   prometheus.Histogram
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem sets the subsystem for all metrics.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithHistogramBuckets sets custom histogram buckets for latency metrics.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithRegistry sets a custom Prometheus registry.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// NewManager creates a metrics manager and registers all collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "usar",
		subsystem:        "ranklist",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help}
	}
	gaugeOpts := func(name, help string) prometheus.GaugeOpts {
		return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help}
	}
	histOpts := func(name, help string) prometheus.HistogramOpts {
		return prometheus.HistogramOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
			Buckets: m.histogramBuckets,
		}
	}

	m.recordsIngested = prometheus.NewCounter(factory("records_ingested_total", "Student records accepted into the store"))
	m.recordsDuplicate = prometheus.NewCounter(factory("records_duplicate_total", "Resubmitted roll numbers skipped by the deduper"))
	m.recordsRejected = prometheus.NewCounter(factory("records_rejected_total", "Records rejected by validation during ingest"))
	m.aggregateLatency = prometheus.NewHistogram(histOpts("aggregate_latency_ms", "Latency of per-record aggregation in milliseconds"))

	m.ranklistQueries = prometheus.NewCounterVec(factory("ranklist_queries_total", "Ranklist queries evaluated, by ranking metric"), []string{"metric"})
	m.queryLatency = prometheus.NewHistogram(histOpts("query_latency_ms", "Latency of ranklist query evaluation in milliseconds"))
	m.queryErrors = prometheus.NewCounter(factory("query_errors_total", "Ranklist queries that failed"))

	m.queueSize = prometheus.NewGauge(gaugeOpts("queue_size", "Records currently queued for ingestion"))
	m.queueCapacity = prometheus.NewGauge(gaugeOpts("queue_capacity", "Configured ingest queue capacity"))
	m.queueUtilization = prometheus.NewGauge(gaugeOpts("queue_utilization", "Ingest queue fill ratio 0..1"))
	m.queueEnqueues = prometheus.NewCounter(factory("queue_enqueues_total", "Successful ingest queue enqueues"))
	m.queueDequeues = prometheus.NewCounter(factory("queue_dequeues_total", "Ingest queue dequeues"))
	m.queueErrors = prometheus.NewCounter(factory("queue_errors_total", "Failed enqueues (backpressure or closed queue)"))
	m.workerCount = prometheus.NewGauge(gaugeOpts("worker_count", "Configured ingest worker count"))
	m.workerErrors = prometheus.NewCounter(factory("worker_errors_total", "Ingest worker processing failures"))

	m.storeRecords = prometheus.NewGauge(gaugeOpts("store_records", "Student records currently in the store"))

	m.httpRequests = prometheus.NewCounterVec(factory("http_requests_total", "HTTP requests by endpoint, method and status"), []string{"endpoint", "method", "status"})
	m.httpRequestDuration = prometheus.NewHistogramVec(histOpts("http_request_duration_ms", "HTTP request duration in milliseconds"), []string{"endpoint", "method"})

	m.systemMemoryBytes = prometheus.NewGauge(gaugeOpts("system_memory_bytes", "Allocated heap bytes"))
	m.systemGoroutines = prometheus.NewGauge(gaugeOpts("system_goroutines", "Number of goroutines"))
	m.systemGCPauseMs = prometheus.NewHistogram(histOpts("system_gc_pause_ms", "Average GC pause in milliseconds"))

	m.registry.MustRegister(
		m.recordsIngested, m.recordsDuplicate, m.recordsRejected, m.aggregateLatency,
		m.ranklistQueries, m.queryLatency, m.queryErrors,
		m.queueSize, m.queueCapacity, m.queueUtilization,
		m.queueEnqueues, m.queueDequeues, m.queueErrors,
		m.workerCount, m.workerErrors,
		m.storeRecords,
		m.httpRequests, m.httpRequestDuration,
		m.systemMemoryBytes, m.systemGoroutines, m.systemGCPauseMs,
	)
}

// defaultManager backs the package-level helpers.
var defaultManager = NewManager()

// RecordIngested counts a record accepted into the store.
func RecordIngested() {
	defaultManager.recordsIngested.Inc()
}

// RecordDuplicate counts a resubmitted roll number.
func RecordDuplicate() {
	defaultManager.recordsDuplicate.Inc()
}

// RecordRejected counts a record rejected during ingest validation.
func RecordRejected() {
	defaultManager.recordsRejected.Inc()
}

// RecordAggregateLatency observes one aggregation pass.
func RecordAggregateLatency(latencyMs float64) {
	defaultManager.aggregateLatency.Observe(latencyMs)
}

// RecordRanklistQuery counts an evaluated query by ranking metric.
func RecordRanklistQuery(metric string) {
	defaultManager.ranklistQueries.WithLabelValues(metric).Inc()
}

// RecordQueryLatency observes one query evaluation.
func RecordQueryLatency(latencyMs float64) {
	defaultManager.queryLatency.Observe(latencyMs)
}

// RecordQueryError counts a failed query.
func RecordQueryError() {
	defaultManager.queryErrors.Inc()
}

// UpdateQueueSize sets the current ingest queue depth.
func UpdateQueueSize(size int) {
	defaultManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the configured ingest queue capacity.
func UpdateQueueCapacity(capacity int) {
	defaultManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue fill ratio.
func UpdateQueueUtilization(utilization float64) {
	defaultManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue counts a successful enqueue.
func RecordQueueEnqueue() {
	defaultManager.queueEnqueues.Inc()
}

// RecordQueueDequeue counts a dequeue.
func RecordQueueDequeue() {
	defaultManager.queueDequeues.Inc()
}

// RecordQueueError counts a failed enqueue.
func RecordQueueError() {
	defaultManager.queueErrors.Inc()
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	defaultManager.workerCount.Set(float64(count))
}

// RecordWorkerError counts an ingest worker failure.
func RecordWorkerError() {
	defaultManager.workerErrors.Inc()
}

// UpdateStoreRecords sets the current record count in the store.
func UpdateStoreRecords(count int) {
	defaultManager.storeRecords.Set(float64(count))
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	defaultManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes an HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method string, durationMs float64) {
	defaultManager.httpRequestDuration.WithLabelValues(endpoint, method).Observe(durationMs)
}

// UpdateSystemMemoryUsage sets allocated heap bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	defaultManager.systemMemoryBytes.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	defaultManager.systemGoroutines.Set(float64(count))
}

// RecordSystemGCPauseTime observes an average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	defaultManager.systemGCPauseMs.Observe(pauseMs)
}

// GetRegistry returns the registry backing the package-level helpers,
// for serving via promhttp.
func GetRegistry() *prometheus.Registry {
	return defaultManager.registry
}
