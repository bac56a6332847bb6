// Package metrics provides Prometheus metrics for the kickoff simulation service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager holds every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Simulation
	fixturesSimulated     prometheus.Counter
	fixturesAlreadyPlayed prometheus.Counter
	fixturesScheduled     prometheus.Counter
	goals                 *prometheus.CounterVec
	cards                 *prometheus.CounterVec
	injuries              prometheus.Counter
	simulationLatency     prometheus.Histogram
	goalsPerMatch         prometheus.Histogram

	// Jobs
	jobs        *prometheus.CounterVec
	jobLatency  *prometheus.HistogramVec
	queueSize   prometheus.Gauge
	queueCap    prometheus.Gauge
	workerCount prometheus.Gauge

	// Storage
	storeLatency *prometheus.HistogramVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "kickoff",
		subsystem:        "sim",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one block per collector
	auto := promauto.With(m.registry)
	msBuckets := []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 1000}

	m.fixturesSimulated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "fixtures_simulated_total",
		Help: "Total number of fixtures simulated and stored",
	})
	m.fixturesAlreadyPlayed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "fixtures_already_played_total",
		Help: "Total number of simulation requests for fixtures that already had a result",
	})
	m.fixturesScheduled = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "fixtures_scheduled_total",
		Help: "Total number of fixtures created by season scheduling",
	})
	m.goals = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "goals_total",
		Help: "Total number of goals by side",
	}, []string{"side"})
	m.cards = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "cards_total",
		Help: "Total number of cards by severity",
	}, []string{"severity"})
	m.injuries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "injuries_total",
		Help: "Total number of in-match injuries",
	})
	m.simulationLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "simulation_latency_ms",
		Help:    "Time spent simulating one fixture in milliseconds",
		Buckets: msBuckets,
	})
	m.goalsPerMatch = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "goals_per_match",
		Help:    "Distribution of total goals per simulated match",
		Buckets: prometheus.LinearBuckets(0, 1, 11),
	})

	m.jobs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "jobs_total",
		Help: "Simulation jobs by kind and status",
	}, []string{"kind", "status"})
	m.jobLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "job_duration_seconds",
		Help:    "Duration of simulation jobs in seconds",
		Buckets: m.histogramBuckets,
	}, []string{"kind"})
	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_size",
		Help: "Current number of jobs waiting in the queue",
	})
	m.queueCap = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_capacity",
		Help: "Maximum number of jobs the queue accepts",
	})
	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "worker_count",
		Help: "Number of job workers",
	})

	m.storeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "store_latency_ms",
		Help:    "Storage operation latency in milliseconds",
		Buckets: msBuckets,
	}, []string{"operation"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "errors_total",
		Help: "Errors by component and type",
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "system_memory_bytes",
		Help: "Allocated heap memory in bytes",
	})
	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "system_goroutines",
		Help: "Number of goroutines",
	})
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "system_gc_pause_ms",
		Help:    "Most recent GC pause in milliseconds",
		Buckets: msBuckets,
	})
}

// RecordFixtureSimulated counts a stored simulation and its latency.
func RecordFixtureSimulated(latencyMs float64, totalGoals int) {
	globalManager.fixturesSimulated.Inc()
	globalManager.simulationLatency.Observe(latencyMs)
	globalManager.goalsPerMatch.Observe(float64(totalGoals))
}

// RecordAlreadyPlayed counts a simulation request answered as already played.
func RecordAlreadyPlayed() {
	globalManager.fixturesAlreadyPlayed.Inc()
}

// RecordFixturesScheduled counts newly created fixtures.
func RecordFixturesScheduled(n int) {
	globalManager.fixturesScheduled.Add(float64(n))
}

// RecordGoals adds goals scored by side ("home" or "away").
func RecordGoals(side string, n int) {
	globalManager.goals.WithLabelValues(side).Add(float64(n))
}

// RecordCard counts one card of the given severity.
func RecordCard(severity string) {
	globalManager.cards.WithLabelValues(severity).Inc()
}

// RecordInjury counts one injury.
func RecordInjury() {
	globalManager.injuries.Inc()
}

// RecordJob counts a job transition (queued, duplicate, rejected, done, failed).
func RecordJob(kind, status string) {
	globalManager.jobs.WithLabelValues(kind, status).Inc()
}

// RecordJobDuration records how long a job ran.
func RecordJobDuration(kind string, seconds float64) {
	globalManager.jobLatency.WithLabelValues(kind).Observe(seconds)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCap.Set(float64(capacity))
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordStoreLatency records a storage operation latency.
func RecordStoreLatency(operation string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
