// ABOUTME: Prometheus metrics for Ask, Smartify, embedding, and HTTP traffic
// ABOUTME: One collector registered on a caller-owned registry
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// bucketStart10ms covers fast store calls up to ~40s model calls
	bucketStart10ms = 0.01
	bucketFactor2   = 2
	bucketCount12   = 12
)

// Metrics implements the core Recorder and HTTP request metrics
type Metrics struct {
	registry *prometheus.Registry

	operationsTotal   *prometheus.CounterVec
	errorsTotal       *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates the collector and registers it on registry
func NewMetrics(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// NewRegistry returns a registry carrying the Go runtime and process collectors
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return registry
}

func (m *Metrics) initMetrics() {
	m.operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voicenotes_operations_total",
			Help: "Total number of core operations by outcome",
		},
		[]string{"operation", "status"}, // status: success, error, degraded
	)

	m.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voicenotes_errors_total",
			Help: "Total number of core errors by type",
		},
		[]string{"operation", "error_type"},
	)

	m.operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "voicenotes_operation_duration_seconds",
			Help:    "Time taken by core operations and their stages",
			Buckets: prometheus.ExponentialBuckets(bucketStart10ms, bucketFactor2, bucketCount12),
		},
		[]string{"operation"},
	)

	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voicenotes_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status_code"},
	)

	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "voicenotes_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.ExponentialBuckets(bucketStart10ms, bucketFactor2, bucketCount12),
		},
		[]string{"route", "method"},
	)
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Describe implements prometheus.Collector
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.operationsTotal.Describe(ch)
	m.errorsTotal.Describe(ch)
	m.operationDuration.Describe(ch)
	m.httpRequestsTotal.Describe(ch)
	m.httpRequestDuration.Describe(ch)
}

// Collect implements prometheus.Collector
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.operationsTotal.Collect(ch)
	m.errorsTotal.Collect(ch)
	m.operationDuration.Collect(ch)
	m.httpRequestsTotal.Collect(ch)
	m.httpRequestDuration.Collect(ch)
}

// RecordOperation records an operation outcome
func (m *Metrics) RecordOperation(operation, status string) {
	m.operationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordDuration records an operation's duration in seconds
func (m *Metrics) RecordDuration(operation string, seconds float64) {
	m.operationDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordError records an error occurrence
func (m *Metrics) RecordError(operation, errorType string) {
	m.errorsTotal.WithLabelValues(operation, errorType).Inc()
}

// RecordHTTPRequest records one served request
func (m *Metrics) RecordHTTPRequest(route, method, statusCode string, seconds float64) {
	m.httpRequestsTotal.WithLabelValues(route, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(seconds)
}
