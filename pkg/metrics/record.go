package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// Report outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid_params"
	OutcomeError   = "error"
)

// Ingest Metrics Functions.

// RecordIngest counts a successful dataset load.
func RecordIngest(loaded, skipped int) { globalManager.RecordIngest(loaded, skipped) }

// RecordIngestError counts a failed dataset load.
func RecordIngestError(kind string) { globalManager.RecordIngestError(kind) }

// UpdateDatasetSize sets the loaded dataset size.
func UpdateDatasetSize(n int) { globalManager.UpdateDatasetSize(n) }

// RecordRepositoryReplaceLatency observes a store swap in milliseconds.
func RecordRepositoryReplaceLatency(ms float64) { globalManager.RecordReplaceLatency(ms) }

// Report Metrics Functions.

// RecordReport counts a report run.
func RecordReport(outcome string, latencyMs float64, filtered int) {
	globalManager.RecordReport(outcome, latencyMs, filtered)
}

// RecordInvalidParams counts a rejected report request.
func RecordInvalidParams(reason string) { globalManager.RecordInvalidParams(reason) }

// RecordExport counts an exported report.
func RecordExport(format string) { globalManager.RecordExport(format) }

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordErrorByEndpoint records an error for an HTTP endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.RecordErrorByEndpoint(endpoint, method, errorType)
}

// Error Metrics Functions.

// RecordError records an error by component, type and severity.
func RecordError(component, errorType, severity string, latencyMs float64) {
	globalManager.RecordError(component, errorType, severity, latencyMs)
}

// RecordErrorByComponent records a medium severity error with no latency.
func RecordErrorByComponent(component, errorType string) {
	globalManager.RecordError(component, errorType, "medium", 0)
}

// System Metrics Functions.

// RunSystemCollector samples runtime statistics until ctx is done.
func RunSystemCollector(ctx context.Context) { globalManager.RunSystemCollector(ctx) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
