// Package metrics provides Prometheus metrics for the lead analytics service.
package metrics

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval    = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

var latencyBucketsMs = []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500}

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Ingest Metrics - dataset loads
	ingests         prometheus.Counter
	ingestRows      prometheus.Counter
	ingestSkipped   prometheus.Counter
	ingestErrors    *prometheus.CounterVec
	datasetSize     prometheus.Gauge
	replaceLatency  prometheus.Histogram
	datasetLoadedAt prometheus.Gauge

	// Report Metrics - pipeline runs
	reportRuns    *prometheus.CounterVec
	reportLatency prometheus.Histogram
	filteredSize  prometheus.Gauge
	invalidParams *prometheus.CounterVec
	exports       *prometheus.CounterVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "labx",
		subsystem:        "leads",
		histogramBuckets: latencyBucketsMs,
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

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	m.ingests = auto.NewCounter(m.counterOpts("ingests_total", "Total number of datasets loaded"))
	m.ingestRows = auto.NewCounter(m.counterOpts("ingest_rows_total", "Total number of rows accepted across loads"))
	m.ingestSkipped = auto.NewCounter(m.counterOpts("ingest_skipped_rows_total", "Total number of malformed rows skipped"))
	m.ingestErrors = auto.NewCounterVec(m.counterOpts("ingest_errors_total", "Failed loads by error kind"), []string{"kind"})
	m.datasetSize = auto.NewGauge(m.gaugeOpts("dataset_records", "Number of leads in the loaded dataset"))
	m.datasetLoadedAt = auto.NewGauge(m.gaugeOpts("dataset_loaded_unix", "Unix time of the last dataset load"))
	m.replaceLatency = auto.NewHistogram(m.histogramOpts("dataset_replace_milliseconds",
		"Time to swap the dataset in the store", m.histogramBuckets))

	m.reportRuns = auto.NewCounterVec(m.counterOpts("report_runs_total", "Report runs by outcome"), []string{"outcome"})
	m.reportLatency = auto.NewHistogram(m.histogramOpts("report_latency_milliseconds",
		"End to end report latency in milliseconds", m.histogramBuckets))
	m.filteredSize = auto.NewGauge(m.gaugeOpts("report_filtered_records", "Filtered set size of the last report"))
	m.invalidParams = auto.NewCounterVec(m.counterOpts("report_invalid_params_total", "Rejected report requests by reason"), []string{"reason"})
	m.exports = auto.NewCounterVec(m.counterOpts("report_exports_total", "Exported reports by format"), []string{"format"})

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Errors by component and type"),
		[]string{"component", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Errors by type and severity"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Errors by HTTP endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorLatency = auto.NewHistogramVec(
		m.histogramOpts("error_latency_milliseconds", "Latency of failed operations in milliseconds", m.histogramBuckets),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_milliseconds",
		"Average GC pause in milliseconds", []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50}))
}

// Enabled reports whether the manager records observations.
func (m *Manager) Enabled() bool { return m.enabled }

// RecordIngest counts a successful load of loaded rows with skipped rows dropped.
func (m *Manager) RecordIngest(loaded, skipped int) {
	if !m.enabled {
		return
	}
	m.ingests.Inc()
	m.ingestRows.Add(float64(loaded))
	m.ingestSkipped.Add(float64(skipped))
	m.datasetLoadedAt.Set(float64(time.Now().Unix()))
}

// RecordIngestError counts a failed load by kind.
func (m *Manager) RecordIngestError(kind string) {
	if m.enabled {
		m.ingestErrors.WithLabelValues(kind).Inc()
	}
}

// UpdateDatasetSize sets the loaded dataset size.
func (m *Manager) UpdateDatasetSize(n int) {
	if m.enabled {
		m.datasetSize.Set(float64(n))
	}
}

// RecordReplaceLatency observes a store swap in milliseconds.
func (m *Manager) RecordReplaceLatency(ms float64) {
	if m.enabled {
		m.replaceLatency.Observe(ms)
	}
}

// RecordReport counts a report run and its latency.
func (m *Manager) RecordReport(outcome string, latencyMs float64, filtered int) {
	if !m.enabled {
		return
	}
	m.reportRuns.WithLabelValues(outcome).Inc()
	m.reportLatency.Observe(latencyMs)
	if outcome == OutcomeOK {
		m.filteredSize.Set(float64(filtered))
	}
}

// RecordInvalidParams counts a rejected report request.
func (m *Manager) RecordInvalidParams(reason string) {
	if m.enabled {
		m.invalidParams.WithLabelValues(reason).Inc()
	}
}

// RecordExport counts an exported report.
func (m *Manager) RecordExport(format string) {
	if m.enabled {
		m.exports.WithLabelValues(format).Inc()
	}
}

// RecordHTTPRequest records an HTTP request and its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordError records an error by component, type and severity.
func (m *Manager) RecordError(component, errorType, severity string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.errorRateByComponent.WithLabelValues(component, errorType).Inc()
	m.errorRateByType.WithLabelValues(errorType, severity).Inc()
	m.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// RecordErrorByEndpoint records an error for an HTTP endpoint.
func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	if m.enabled {
		m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// SampleSystem reads runtime statistics into the system gauges.
func (m *Manager) SampleSystem() {
	if !m.enabled {
		return
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.systemMemoryUsage.Set(float64(ms.Alloc))
	m.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
	if ms.NumGC > 0 {
		m.systemGCPauseTime.Observe(float64(ms.PauseTotalNs) / float64(ms.NumGC) / nanosecondsPerMillisecond)
	}
}

// RunSystemCollector samples runtime statistics every refresh interval until
// ctx is done.
func (m *Manager) RunSystemCollector(ctx context.Context) {
	ticker := time.NewTicker(m.refreshInterval)
	defer ticker.Stop()

	m.SampleSystem()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.SampleSystem()
		}
	}
}
