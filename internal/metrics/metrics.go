// internal/metrics/metrics.go
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation results
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics holds the acquisition collectors
type Metrics struct {
	registry prometheus.Gatherer

	operations   *prometheus.CounterVec
	captures     *prometheus.CounterVec
	bytes        prometheus.Counter
	segments     prometheus.Counter
	waitLatency  prometheus.Histogram
	opLatency    *prometheus.HistogramVec
	sessionOpen  prometheus.Gauge
	queueDepth   prometheus.Gauge
	driverErrors *prometheus.CounterVec
}

// New creates the collectors and registers them on reg. A nil reg uses a
// fresh private registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "digitizer_operations_total",
		Help: "Session operations by name and result.",
	}, []string{"operation", "result"})
	captures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "digitizer_captures_total",
		Help: "Capture sequences by final status.",
	}, []string{"status"})
	bytes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "digitizer_harvested_bytes_total",
		Help: "Downsampled bytes written into the capture buffer.",
	})
	segments := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "digitizer_harvested_segments_total",
		Help: "Segments retrieved from the instrument.",
	})
	waitLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "digitizer_acquisition_wait_seconds",
		Help:    "Time from run start until the instrument reported ready.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
	})
	opLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "digitizer_operation_duration_seconds",
		Help:    "Wall time of session operations including queueing.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	}, []string{"operation"})
	sessionOpen := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "digitizer_session_open",
		Help: "1 while a unit is open.",
	})
	queueDepth := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "digitizer_worker_queue_length",
		Help: "Operations waiting on the session worker.",
	})
	driverErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "digitizer_driver_errors_total",
		Help: "Failed operations by driver status.",
	}, []string{"status"})

	reg.MustRegister(operations, captures, bytes, segments, waitLatency, opLatency, sessionOpen, queueDepth, driverErrors)

	return &Metrics{
		registry:     reg,
		operations:   operations,
		captures:     captures,
		bytes:        bytes,
		segments:     segments,
		waitLatency:  waitLatency,
		opLatency:    opLatency,
		sessionOpen:  sessionOpen,
		queueDepth:   queueDepth,
		driverErrors: driverErrors,
	}
}

// ObserveOperation counts one operation and records its duration
func (m *Metrics) ObserveOperation(operation string, err error, d time.Duration) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	m.operations.WithLabelValues(operation, result).Inc()
	m.opLatency.WithLabelValues(operation).Observe(d.Seconds())
}

// DriverError counts a failure carrying a driver status
func (m *Metrics) DriverError(status string) {
	m.driverErrors.WithLabelValues(status).Inc()
}

// ObserveWait records acquisition wait latency
func (m *Metrics) ObserveWait(d time.Duration) {
	m.waitLatency.Observe(d.Seconds())
}

// ObserveCapture counts a capture sequence and, on success, its payload
func (m *Metrics) ObserveCapture(status string, bytes int, segments uint32) {
	m.captures.WithLabelValues(status).Inc()
	if bytes > 0 {
		m.bytes.Add(float64(bytes))
	}
	if segments > 0 {
		m.segments.Add(float64(segments))
	}
}

// SetSessionOpen updates the session gauge
func (m *Metrics) SetSessionOpen(open bool) {
	if open {
		m.sessionOpen.Set(1)
		return
	}
	m.sessionOpen.Set(0)
}

// SetQueueDepth updates the worker backlog gauge
func (m *Metrics) SetQueueDepth(n int) {
	m.queueDepth.Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
