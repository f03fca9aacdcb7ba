// Package metrics provides Prometheus metrics for the accreditation engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	constLabels    prometheus.Labels
	registry       prometheus.Registerer

	// Scoring
	aggregations       prometheus.Counter
	aggregationLatency prometheus.Histogram
	skippedNodes       *prometheus.CounterVec
	rankedPrograms     prometheus.Gauge

	// Evaluation submissions
	submissions       *prometheus.CounterVec
	submissionLatency prometheus.Histogram

	// Repository
	snapshotLoadLatency prometheus.Histogram
	snapshotLoads       prometheus.Counter

	// Recompute queue
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueued          prometheus.Counter
	queueDequeued          prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueCoalesced         prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "akreditasi",
		subsystem:      "engine",
		latencyBuckets: defaultLatencyBuckets,
		registry:       prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.constLabels, Buckets: m.latencyBuckets,
	})
}

func (m *Manager) initializeMetrics() {
	m.aggregations = m.counter("aggregations_total", "Total number of program aggregations")
	m.aggregationLatency = m.histogram("aggregation_latency_milliseconds", "Program aggregation latency in milliseconds")
	m.skippedNodes = m.counterVec("skipped_nodes_total", "Hierarchy nodes skipped because of invalid data", "level")
	m.rankedPrograms = m.gauge("ranked_programs", "Programs currently held in the report cache")

	m.submissions = m.counterVec("evaluation_submissions_total", "Evaluation submissions by outcome", "outcome")
	m.submissionLatency = m.histogram("evaluation_submission_latency_milliseconds", "Evaluation submission latency in milliseconds")

	m.snapshotLoads = m.counter("snapshot_loads_total", "Total number of snapshot loads")
	m.snapshotLoadLatency = m.histogram("snapshot_load_latency_milliseconds", "Snapshot load latency in milliseconds")

	m.queueSize = m.gauge("queue_size", "Current number of queued recompute jobs")
	m.queueCapacity = m.gauge("queue_capacity", "Recompute queue capacity")
	m.queueUtilization = m.gauge("queue_utilization", "Recompute queue utilization ratio")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Recompute jobs enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "Recompute jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Recompute jobs rejected by a full or closed queue")
	m.queueCoalesced = m.counter("queue_coalesced_total", "Recompute jobs merged into an identical pending job")
	m.queueProcessingLatency = m.histogram("queue_processing_latency_milliseconds", "Time from enqueue to dequeue in milliseconds")

	m.workerCount = m.gauge("worker_count", "Configured recompute workers")
	m.workerActiveCount = m.gauge("worker_active_count", "Workers currently processing a job")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Recompute job latency in milliseconds")
	m.workerErrors = m.counter("worker_errors_total", "Recompute jobs that failed")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		ConstLabels: m.constLabels,
		Buckets:     m.latencyBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = m.counterVec("errors_total", "Errors by component and type", "component", "error_type")
}

// RecordAggregation records one program aggregation.
func RecordAggregation(latencyMs float64) {
	globalManager.aggregations.Inc()
	globalManager.aggregationLatency.Observe(latencyMs)
}

// RecordSkippedNode records a node left out of aggregation.
func RecordSkippedNode(level string) {
	globalManager.skippedNodes.WithLabelValues(level).Inc()
}

// UpdateRankedPrograms sets the number of cached program reports.
func UpdateRankedPrograms(count int) {
	globalManager.rankedPrograms.Set(float64(count))
}

// RecordSubmission records an evaluation submission outcome.
func RecordSubmission(outcome string, latencyMs float64) {
	globalManager.submissions.WithLabelValues(outcome).Inc()
	globalManager.submissionLatency.Observe(latencyMs)
}

// RecordSnapshotLoad records a snapshot load.
func RecordSnapshotLoad(latencyMs float64) {
	globalManager.snapshotLoads.Inc()
	globalManager.snapshotLoadLatency.Observe(latencyMs)
}

// UpdateQueueSize sets the recompute queue length.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the recompute queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue records an accepted job.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue records a dequeued job.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError records a rejected job.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueCoalesced records a job merged into a pending one.
func RecordQueueCoalesced() {
	globalManager.queueCoalesced.Inc()
}

// RecordQueueProcessingLatency records how long a job waited in the queue.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets how many workers are busy.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records a job's processing time.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError records a failed job.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records an HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error for a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom registry served on /metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
