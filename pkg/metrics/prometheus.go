// Package metrics provides Prometheus metrics for the guessing game service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultNamespace = "ben"
	defaultSubsystem = "guesses"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Guess flow
	submissions     *prometheus.CounterVec
	storeLatency    *prometheus.HistogramVec
	storeErrors     *prometheus.CounterVec
	variations      prometheus.Gauge
	totalGuesses    prometheus.Gauge
	importedGuesses prometheus.Counter

	// Audit side channel
	auditWritten prometheus.Counter
	auditErrors  prometheus.Counter
	auditQueue   prometheus.Gauge
	auditBlocked prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        defaultNamespace,
		subsystem:        defaultSubsystem,
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.submissions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "submissions_total",
		Help:        "Guess submissions by outcome and rejection reason",
		ConstLabels: m.constLabels,
	}, []string{"outcome", "reason"})

	m.storeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "store_latency_milliseconds",
		Help:        "Tally store operation latency in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: m.constLabels,
	}, []string{"operation"})

	m.storeErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "store_errors_total",
		Help:        "Tally store failures by operation",
		ConstLabels: m.constLabels,
	}, []string{"operation"})

	m.variations = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "variations",
		Help:        "Number of distinct canonical guesses",
		ConstLabels: m.constLabels,
	})

	m.totalGuesses = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "total",
		Help:        "Sum of all guess counts",
		ConstLabels: m.constLabels,
	})

	m.importedGuesses = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "imported_records_total",
		Help:        "Records bulk-loaded by the importer",
		ConstLabels: m.constLabels,
	})

	m.auditWritten = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "audit",
		Name:        "entries_written_total",
		Help:        "Audit entries appended to the audit log",
		ConstLabels: m.constLabels,
	})

	m.auditErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "audit",
		Name:        "write_errors_total",
		Help:        "Audit entries that could not be written",
		ConstLabels: m.constLabels,
	})

	m.auditQueue = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "audit",
		Name:        "queue_length",
		Help:        "Audit entries waiting for the writer",
		ConstLabels: m.constLabels,
	})

	m.auditBlocked = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "audit",
		Name:        "queue_full_total",
		Help:        "Audit entries written synchronously because the queue was full",
		ConstLabels: m.constLabels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "errors_total",
		Help:        "HTTP responses with an error status by endpoint and error type",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "memory_usage_bytes",
		Help:        "System memory usage in bytes",
		ConstLabels: m.constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "goroutine_count",
		Help:        "Number of goroutines",
		ConstLabels: m.constLabels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "gc_pause_time_milliseconds",
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: m.constLabels,
	})
}

// RecordAccepted counts an accepted submission.
func (m *Manager) RecordAccepted() {
	m.submissions.WithLabelValues("accepted", "").Inc()
}

// RecordRejected counts a rejected submission with its reason.
func (m *Manager) RecordRejected(reason string) {
	m.submissions.WithLabelValues("rejected", reason).Inc()
}

// ObserveStore records the latency of a store operation and counts failures.
func (m *Manager) ObserveStore(operation string, started time.Time, err error) {
	m.storeLatency.WithLabelValues(operation).Observe(sinceMs(started))
	if err != nil {
		m.storeErrors.WithLabelValues(operation).Inc()
	}
}

// UpdateLeaderboard sets the distinct-guess and total gauges.
func (m *Manager) UpdateLeaderboard(variations int, total int64) {
	m.variations.Set(float64(variations))
	m.totalGuesses.Set(float64(total))
}

// RecordImported counts records loaded by the importer.
func (m *Manager) RecordImported(n int) {
	m.importedGuesses.Add(float64(n))
}

// RecordAuditWritten counts an appended audit entry.
func (m *Manager) RecordAuditWritten() { m.auditWritten.Inc() }

// RecordAuditError counts an audit entry that failed to write.
func (m *Manager) RecordAuditError() { m.auditErrors.Inc() }

// RecordAuditQueueFull counts an audit entry that bypassed the queue.
func (m *Manager) RecordAuditQueueFull() { m.auditBlocked.Inc() }

// UpdateAuditQueue sets the audit queue length gauge.
func (m *Manager) UpdateAuditQueue(n int) { m.auditQueue.Set(float64(n)) }

// RecordHTTPRequest records one HTTP request and its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordHTTPError counts a response with an error status.
func (m *Manager) RecordHTTPError(endpoint, errorType string) {
	m.httpErrors.WithLabelValues(endpoint, errorType).Inc()
}

// UpdateSystem sets process-level gauges.
func (m *Manager) UpdateSystem(memoryBytes uint64, goroutines int) {
	m.systemMemoryUsage.Set(float64(memoryBytes))
	m.systemGoroutineCount.Set(float64(goroutines))
}

// RecordGCPause observes an average GC pause in milliseconds.
func (m *Manager) RecordGCPause(pauseMs float64) {
	m.systemGCPauseTime.Observe(pauseMs)
}

func sinceMs(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}

// Global returns the process-wide manager registered on the custom registry.
func Global() *Manager { return globalManager }

// GetRegistry returns the custom registry served on /metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers forward to the global manager.

// RecordAccepted counts an accepted submission.
func RecordAccepted() { globalManager.RecordAccepted() }

// RecordRejected counts a rejected submission with its reason.
func RecordRejected(reason string) { globalManager.RecordRejected(reason) }

// ObserveStore records a store operation on the global manager.
func ObserveStore(operation string, started time.Time, err error) {
	globalManager.ObserveStore(operation, started, err)
}

// UpdateLeaderboard sets the leaderboard gauges.
func UpdateLeaderboard(variations int, total int64) {
	globalManager.UpdateLeaderboard(variations, total)
}

// RecordImported counts records loaded by the importer.
func RecordImported(n int) { globalManager.RecordImported(n) }

func RecordAuditWritten()    { globalManager.RecordAuditWritten() }
func RecordAuditError()      { globalManager.RecordAuditError() }
func RecordAuditQueueFull()  { globalManager.RecordAuditQueueFull() }
func UpdateAuditQueue(n int) { globalManager.UpdateAuditQueue(n) }

// RecordHTTPRequest records one HTTP request and its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordHTTPError counts a response with an error status.
func RecordHTTPError(endpoint, errorType string) { globalManager.RecordHTTPError(endpoint, errorType) }

// UpdateSystem sets process-level gauges.
func UpdateSystem(memoryBytes uint64, goroutines int) {
	globalManager.UpdateSystem(memoryBytes, goroutines)
}

// RecordGCPause observes an average GC pause in milliseconds.
func RecordGCPause(pauseMs float64) { globalManager.RecordGCPause(pauseMs) }
