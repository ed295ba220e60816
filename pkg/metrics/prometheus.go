// Package metrics provides Prometheus metrics for the club content service.
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

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Document store traffic
	documentRequests *prometheus.CounterVec
	documentLatency  *prometheus.HistogramVec

	// Views
	feedBuilds    *prometheus.CounterVec
	feedItems     *prometheus.GaugeVec
	staleResults  *prometheus.CounterVec
	refreshErrors *prometheus.CounterVec
	slideAdvances *prometheus.CounterVec

	// Forms
	submissions *prometheus.CounterVec

	// Notification queue and workers
	queueSize               prometheus.Gauge
	queueCapacity           prometheus.Gauge
	queueEnqueue            prometheus.Counter
	queueDequeue            prometheus.Counter
	queueEnqueueErrors      *prometheus.CounterVec
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	notificationsPublished  prometheus.Counter
	notificationErrors      prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "club",
		subsystem:        "content",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// RefreshInterval reports how often gauges are expected to be refreshed.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// Enabled reports whether recording is active.
func (m *Manager) Enabled() bool { return m.enabled }

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	auto := promauto.With(m.registry)

	m.documentRequests = m.counterVec("document_requests_total",
		"Document store calls by collection, operation and outcome", "collection", "op", "outcome")
	m.documentLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "document_request_duration_milliseconds",
		Help:        "Latency of document store calls",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}, []string{"collection", "op"})

	m.feedBuilds = m.counterVec("feed_builds_total", "Feed view-model builds by view", "view")
	m.feedItems = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "feed_items",
		Help:        "Items in the latest feed by view and classification",
		ConstLabels: m.customLabels,
	}, []string{"view", "status"})
	m.staleResults = m.counterVec("stale_results_total",
		"Fetch results discarded because a newer request was issued or the view closed", "view")
	m.refreshErrors = m.counterVec("refresh_errors_total", "Failed view refreshes", "view")
	m.slideAdvances = m.counterVec("slide_advances_total", "Slideshow index changes by trigger", "trigger")

	m.submissions = m.counterVec("submissions_total", "Form submissions by kind and outcome", "kind", "outcome")

	m.queueSize = m.gauge("notification_queue_size", "Notifications waiting to be published")
	m.queueCapacity = m.gauge("notification_queue_capacity", "Notification queue capacity")
	m.queueEnqueue = m.counter("notification_queue_enqueue_total", "Notifications enqueued")
	m.queueDequeue = m.counter("notification_queue_dequeue_total", "Notifications dequeued")
	m.queueEnqueueErrors = m.counterVec("notification_queue_enqueue_errors_total",
		"Rejected notification enqueues by reason", "reason")
	m.workerCount = m.gauge("notification_worker_count", "Notification workers running")
	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "notification_publish_duration_milliseconds",
		Help:        "Time spent publishing a notification",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	})
	m.notificationsPublished = m.counter("notifications_published_total", "Notifications published")
	m.notificationErrors = m.counter("notification_errors_total", "Notifications that failed to publish")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests", "endpoint", "method", "status_code")
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}, []string{"endpoint", "method", "status_code"})
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total", "HTTP errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Goroutines running")
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_time_milliseconds",
		Help:        "Average GC pause",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100},
		ConstLabels: m.customLabels,
	})
}

// RecordDocumentRequest counts a document store call.
func RecordDocumentRequest(collection, op, outcome string) {
	if !globalManager.enabled {
		return
	}
	globalManager.documentRequests.WithLabelValues(collection, op, outcome).Inc()
}

// RecordDocumentLatency records a document store call duration in milliseconds.
func RecordDocumentLatency(collection, op string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.documentLatency.WithLabelValues(collection, op).Observe(latencyMs)
}

// RecordFeedBuild counts a feed build and publishes its partition sizes.
func RecordFeedBuild(view string, upcoming, past int) {
	if !globalManager.enabled {
		return
	}
	globalManager.feedBuilds.WithLabelValues(view).Inc()
	globalManager.feedItems.WithLabelValues(view, "upcoming").Set(float64(upcoming))
	globalManager.feedItems.WithLabelValues(view, "past").Set(float64(past))
}

// RecordStaleResult counts a discarded fetch result.
func RecordStaleResult(view string) {
	if !globalManager.enabled {
		return
	}
	globalManager.staleResults.WithLabelValues(view).Inc()
}

// RecordRefreshError counts a failed view refresh.
func RecordRefreshError(view string) {
	if !globalManager.enabled {
		return
	}
	globalManager.refreshErrors.WithLabelValues(view).Inc()
}

// RecordSlideAdvance counts a slideshow index change ("tick" or "manual").
func RecordSlideAdvance(trigger string) {
	if !globalManager.enabled {
		return
	}
	globalManager.slideAdvances.WithLabelValues(trigger).Inc()
}

// RecordSubmission counts a form submission outcome.
func RecordSubmission(kind, outcome string) {
	if !globalManager.enabled {
		return
	}
	globalManager.submissions.WithLabelValues(kind, outcome).Inc()
}

// UpdateQueueSize sets the current notification queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the notification queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueue.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeue.Inc()
}

// RecordQueueEnqueueError counts a rejected enqueue.
func RecordQueueEnqueueError(reason string) {
	globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
}

// UpdateWorkerCount sets the number of running notification workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records the time a worker spent on one notification.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordNotificationPublished increments the published counter.
func RecordNotificationPublished() {
	globalManager.notificationsPublished.Inc()
}

// RecordNotificationError increments the publish failure counter.
func RecordNotificationError() {
	globalManager.notificationErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error response by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records average GC pause in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry the global manager writes to.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
