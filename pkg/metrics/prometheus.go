// Package metrics provides Prometheus metrics for the triathlon game engine.
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

// Manager manages all Prometheus metrics for the triathlon service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Core Game Metrics - What really matters for a party game
	roundsResolved  *prometheus.CounterVec
	triggerReseeds  prometheus.Counter
	eventsFinished  prometheus.Counter
	loginAttempts   *prometheus.CounterVec
	participants    prometheus.Gauge
	activeSessions  prometheus.Gauge

	// Score Sync Metrics - Bridge and throttle behavior
	scorePushes        prometheus.Counter
	scorePushErrors    prometheus.Counter
	throttleLeading    prometheus.Counter
	throttleCoalesced  prometheus.Counter
	throttleSuppressed prometheus.Counter
	pushWriteLatency   prometheus.Histogram

	// Score Store Metrics - Remote store operations
	storeOps          *prometheus.CounterVec
	storeSubscribers  prometheus.Gauge
	storeNotifyFanout prometheus.Counter

	// Projection Metrics - Leaderboard rebuild timings
	projectionRebuilds        prometheus.Counter
	projectionRebuildDuration prometheus.Histogram
	projectionSize            prometheus.Gauge

	// Queue Metrics - Write-path queue performance
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker Metrics - Write-path workers
	workerCount           prometheus.Gauge
	workerProcessingError prometheus.Counter

	// Spectator Metrics - Websocket fan-out
	wsClients    prometheus.Gauge
	wsBroadcasts prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "triathlon",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Core Game Metrics
	m.roundsResolved = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rounds_resolved_total",
		Help:      "Total number of mini-game rounds resolved, by game and result",
	}, []string{"game", "result"})

	m.triggerReseeds = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "trigger_reseeds_total",
		Help:      "Total number of trigger changes forcing mini-game reselection",
	})

	m.eventsFinished = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_finished_total",
		Help:      "Total number of participants that finished an event",
	})

	m.loginAttempts = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "login_attempts_total",
		Help:      "Total login attempts, by outcome",
	}, []string{"result"})

	m.participants = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "participants",
		Help:      "Current number of registered participants",
	})

	m.activeSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active_sessions",
		Help:      "Current number of live participant sessions",
	})

	// Score Sync Metrics
	m.scorePushes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "score_pushes_total",
		Help:      "Total score snapshots written to the remote store",
	})

	m.scorePushErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "score_push_errors_total",
		Help:      "Total score writes that failed (fire-and-forget, logged only)",
	})

	m.throttleLeading = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "throttle_leading_total",
		Help:      "Total pushes fired on the leading edge of a throttle window",
	})

	m.throttleCoalesced = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "throttle_coalesced_total",
		Help:      "Total trailing-edge pushes coalesced from in-window calls",
	})

	m.throttleSuppressed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "throttle_suppressed_total",
		Help:      "Total in-window calls absorbed into a pending trailing push",
	})

	m.pushWriteLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "push_write_latency_ms",
		Help:      "Latency of remote score writes in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// Score Store Metrics
	m.storeOps = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_ops_total",
		Help:      "Total score store operations, by op (get/set/update)",
	}, []string{"op"})

	m.storeSubscribers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_subscribers",
		Help:      "Current number of active store subscriptions",
	})

	m.storeNotifyFanout = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_notify_fanout_total",
		Help:      "Total subscription notifications delivered",
	})

	// Projection Metrics
	m.projectionRebuilds = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "projection_rebuilds_total",
		Help:      "Total leaderboard projection recomputations",
	})

	m.projectionRebuildDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "projection_rebuild_duration_ms",
		Help:      "Duration of leaderboard projection rebuilds in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.projectionSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "projection_size",
		Help:      "Number of entries in the current leaderboard projection",
	})

	// Queue Metrics
	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current number of pending score writes in the queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured capacity of the write queue",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization",
		Help:      "Write queue utilization ratio (0.0 to 1.0)",
	})

	m.queueEnqueueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_total",
		Help:      "Total writes enqueued",
	})

	m.queueDequeueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeue_total",
		Help:      "Total writes dequeued",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Total enqueue failures (backpressure, closed queue)",
	})

	// Worker Metrics
	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Number of write-path workers",
	})

	m.workerProcessingError = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Total worker processing errors",
	})

	// Spectator Metrics
	m.wsClients = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ws_clients",
		Help:      "Current number of connected spectator websocket clients",
	})

	m.wsBroadcasts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ws_broadcasts_total",
		Help:      "Total leaderboard frames broadcast to spectators",
	})

	// HTTP Performance Metrics
	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests, by endpoint, method and status",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds, by endpoint and method",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method"})

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current heap allocation in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_ms",
		Help:      "GC pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// Core Game Metrics Functions.

// RecordRoundResolved increments the resolved-round counter for a game.
func RecordRoundResolved(game string, passed bool) {
	result := "fail"
	if passed {
		result = "pass"
	}
	globalManager.roundsResolved.WithLabelValues(game, result).Inc()
}

// RecordTriggerReseed increments the reseed counter.
func RecordTriggerReseed() {
	globalManager.triggerReseeds.Inc()
}

// RecordEventFinished increments the finished-event counter.
func RecordEventFinished() {
	globalManager.eventsFinished.Inc()
}

// RecordLoginAttempt records a login attempt with its outcome label.
func RecordLoginAttempt(result string) {
	globalManager.loginAttempts.WithLabelValues(result).Inc()
}

// UpdateParticipants sets the registered participant count.
func UpdateParticipants(count int) {
	globalManager.participants.Set(float64(count))
}

// UpdateActiveSessions sets the live session count.
func UpdateActiveSessions(count int) {
	globalManager.activeSessions.Set(float64(count))
}

// Score Sync Metrics Functions.

// RecordScorePush increments the score write counter.
func RecordScorePush() {
	globalManager.scorePushes.Inc()
}

// RecordScorePushError increments the score write error counter.
func RecordScorePushError() {
	globalManager.scorePushErrors.Inc()
}

// RecordThrottleLeading increments the leading-edge push counter.
func RecordThrottleLeading() {
	globalManager.throttleLeading.Inc()
}

// RecordThrottleCoalesced increments the trailing-edge push counter.
func RecordThrottleCoalesced() {
	globalManager.throttleCoalesced.Inc()
}

// RecordThrottleSuppressed increments the absorbed-call counter.
func RecordThrottleSuppressed() {
	globalManager.throttleSuppressed.Inc()
}

// RecordPushWriteLatency records remote write latency.
func RecordPushWriteLatency(latencyMs float64) {
	globalManager.pushWriteLatency.Observe(latencyMs)
}

// Score Store Metrics Functions.

// RecordStoreOp increments the store operation counter for op.
func RecordStoreOp(op string) {
	globalManager.storeOps.WithLabelValues(op).Inc()
}

// UpdateStoreSubscribers sets the active subscription count.
func UpdateStoreSubscribers(count int) {
	globalManager.storeSubscribers.Set(float64(count))
}

// RecordStoreNotify increments the notification fan-out counter.
func RecordStoreNotify() {
	globalManager.storeNotifyFanout.Inc()
}

// Projection Metrics Functions.

// RecordProjectionRebuild records one projection recomputation and its duration.
func RecordProjectionRebuild(durationMs float64) {
	globalManager.projectionRebuilds.Inc()
	globalManager.projectionRebuildDuration.Observe(durationMs)
}

// UpdateProjectionSize sets the projection entry count.
func UpdateProjectionSize(count int) {
	globalManager.projectionSize.Set(float64(count))
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue length.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the configured queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// Worker Metrics Functions.

// UpdateWorkerCount sets the number of write-path workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerProcessingError.Inc()
}

// Spectator Metrics Functions.

// UpdateWSClients sets the connected spectator count.
func UpdateWSClients(count int) {
	globalManager.wsClients.Set(float64(count))
}

// RecordWSBroadcast increments the broadcast counter.
func RecordWSBroadcast() {
	globalManager.wsBroadcasts.Inc()
}

// HTTP Performance Metrics Functions.

// RecordHTTPRequest records an HTTP request with endpoint, method, and status labels.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method string, durationSeconds float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method).Observe(durationSeconds)
}

// System Performance Metrics Functions.

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
