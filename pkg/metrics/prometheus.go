// Package metrics provides Prometheus metrics for the agora feed service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the agora service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ledger metrics
	messagesIngested  prometheus.Counter
	messagesDuplicate prometheus.Counter
	ledgerSize        prometheus.Gauge

	// Ingestion metrics per source
	fetchErrors  *prometheus.CounterVec
	fetchLatency *prometheus.HistogramVec
	fetchedTotal *prometheus.CounterVec

	// Catalog metrics
	catalogUpdates prometheus.Counter
	catalogSize    prometheus.Gauge

	// Recommendation metrics
	extractionLatency prometheus.Histogram
	recommendErrors   prometheus.Counter

	// Notification hub metrics
	observerPanics *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	wsClients           prometheus.Gauge
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
		namespace:        "agora",
		subsystem:        "feed",
		histogramBuckets: prometheus.DefBuckets,
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

	m.messagesIngested = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "messages_ingested_total",
		Help:      "Total number of messages accepted into the ledger",
	})

	m.messagesDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "messages_duplicate_total",
		Help:      "Total number of duplicate messages rejected by the ledger",
	})

	m.ledgerSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_size",
		Help:      "Current number of messages held by the ledger",
	})

	m.fetchErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "fetch_errors_total",
			Help:      "Total number of failed fetch cycles by source",
		},
		[]string{"source"},
	)

	m.fetchLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "fetch_latency_milliseconds",
			Help:      "Fetch cycle latency in milliseconds by source",
			Buckets:   m.histogramBuckets,
		},
		[]string{"source"},
	)

	m.fetchedTotal = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "messages_fetched_total",
			Help:      "Total number of messages fetched from sources before deduplication",
		},
		[]string{"source"},
	)

	m.catalogUpdates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "catalog_updates_total",
		Help:      "Total number of catalog ranking replacements",
	})

	m.catalogSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "catalog_size",
		Help:      "Current number of entries held by the catalog",
	})

	m.extractionLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "keyword_extraction_latency_milliseconds",
		Help:      "Keyword extraction latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.recommendErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recommendation_errors_total",
		Help:      "Total number of recommendation passes skipped due to errors",
	})

	m.observerPanics = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "observer_panics_total",
			Help:      "Total number of observer callbacks recovered from panic, by hub",
		},
		[]string{"hub"},
	)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.wsClients = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "websocket_clients",
		Help:      "Current number of connected websocket clients",
	})
}

// Ledger metrics functions.

// RecordMessageIngested increments the accepted-message counter.
func RecordMessageIngested() {
	globalManager.messagesIngested.Inc()
}

// RecordMessageDuplicate increments the duplicate-message counter.
func RecordMessageDuplicate() {
	globalManager.messagesDuplicate.Inc()
}

// UpdateLedgerSize sets the current ledger size.
func UpdateLedgerSize(size int) {
	globalManager.ledgerSize.Set(float64(size))
}

// Ingestion metrics functions.

// RecordFetchError increments the failed-cycle counter for a source.
func RecordFetchError(source string) {
	globalManager.fetchErrors.WithLabelValues(source).Inc()
}

// RecordFetchLatency records one fetch cycle's latency for a source.
func RecordFetchLatency(source string, latencyMs float64) {
	globalManager.fetchLatency.WithLabelValues(source).Observe(latencyMs)
}

// RecordMessagesFetched adds fetched messages (pre-dedup) for a source.
func RecordMessagesFetched(source string, n int) {
	globalManager.fetchedTotal.WithLabelValues(source).Add(float64(n))
}

// Catalog metrics functions.

// RecordCatalogUpdate increments the catalog replacement counter.
func RecordCatalogUpdate() {
	globalManager.catalogUpdates.Inc()
}

// UpdateCatalogSize sets the current catalog size.
func UpdateCatalogSize(size int) {
	globalManager.catalogSize.Set(float64(size))
}

// Recommendation metrics functions.

// RecordExtractionLatency records one keyword-extraction pass latency.
func RecordExtractionLatency(latencyMs float64) {
	globalManager.extractionLatency.Observe(latencyMs)
}

// RecordRecommendError increments the skipped-recommendation counter.
func RecordRecommendError() {
	globalManager.recommendErrors.Inc()
}

// Hub metrics functions.

// RecordObserverPanic increments the recovered-panic counter for a hub.
func RecordObserverPanic(hub string) {
	globalManager.observerPanics.WithLabelValues(hub).Inc()
}

// HTTP metrics functions.

// RecordHTTPRequest increments the request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// UpdateWebsocketClients sets the connected websocket client count.
func UpdateWebsocketClients(count int) {
	globalManager.wsClients.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
