package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics.
//
// Every recorder method is safe on a nil *Metrics, so components can be
// built without metrics in tests.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics (host link server)
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Surface metrics
	SurfacesActive prometheus.Gauge
	SurfacesTotal  prometheus.Counter

	// Bridge metrics
	IPCMessages      *prometheus.CounterVec
	ResourceRequests *prometheus.CounterVec
	PendingCalls     prometheus.Gauge
	InvokeDuration   *prometheus.HistogramVec
	InputEvents      *prometheus.CounterVec

	// Host link metrics
	HostlinkSessions prometheus.Gauge
	HostlinkFrames   *prometheus.CounterVec

	// Network fetches made by headless views
	WebRequests *prometheus.HistogramVec
}

// NewMetrics creates a new metrics collector backed by its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bridge_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		SurfacesActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "bridge_surfaces_active",
				Help: "Number of attached surfaces",
			},
		),
		SurfacesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "bridge_surfaces_total",
				Help: "Total number of surfaces attached",
			},
		),

		IPCMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_ipc_messages_total",
				Help: "Inbound IPC traffic by classification",
			},
			[]string{"kind"},
		),
		ResourceRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_resource_requests_total",
				Help: "Resource protocol resolutions by status",
			},
			[]string{"status"},
		),
		PendingCalls: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "bridge_pending_calls",
				Help: "Invoke requests awaiting a host response",
			},
		),
		InvokeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bridge_invoke_duration_seconds",
				Help:    "Time from invoke arrival to completion",
				Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 30, 120},
			},
			[]string{"outcome"},
		),
		InputEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_input_events_total",
				Help: "Synthetic input events injected into the host",
			},
			[]string{"type"},
		),

		HostlinkSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "bridge_hostlink_sessions",
				Help: "Number of connected host link sessions",
			},
		),
		HostlinkFrames: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_hostlink_frames_total",
				Help: "Host link frames by direction and type",
			},
			[]string{"direction", "type"},
		),

		WebRequests: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bridge_web_request_duration_seconds",
				Help:    "Headless http(s) fetches by outcome",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"outcome"},
		),
	}
}

// Registry returns the registry metrics are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus exposition handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// SurfaceAttached records a surface entering the attached state
func (m *Metrics) SurfaceAttached() {
	if m == nil {
		return
	}
	m.SurfacesActive.Inc()
	m.SurfacesTotal.Inc()
}

// SurfaceDestroyed records a surface leaving the attached state
func (m *Metrics) SurfaceDestroyed() {
	if m == nil {
		return
	}
	m.SurfacesActive.Dec()
}

// RecordIPC records one classified inbound IPC payload
func (m *Metrics) RecordIPC(kind string) {
	if m == nil {
		return
	}
	m.IPCMessages.WithLabelValues(kind).Inc()
}

// RecordResource records one resource protocol resolution
func (m *Metrics) RecordResource(status int) {
	if m == nil {
		return
	}
	m.ResourceRequests.WithLabelValues(strconv.Itoa(status)).Inc()
}

// SetPendingCalls sets the number of outstanding invoke calls
func (m *Metrics) SetPendingCalls(n int) {
	if m == nil {
		return
	}
	m.PendingCalls.Set(float64(n))
}

// RecordInvoke records how an invoke call finished and how long it took
func (m *Metrics) RecordInvoke(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.InvokeDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordInput records one injected synthetic input event
func (m *Metrics) RecordInput(eventType string) {
	if m == nil {
		return
	}
	m.InputEvents.WithLabelValues(eventType).Inc()
}

// IncHostlinkSessions increments connected host link sessions
func (m *Metrics) IncHostlinkSessions() {
	if m == nil {
		return
	}
	m.HostlinkSessions.Inc()
}

// DecHostlinkSessions decrements connected host link sessions
func (m *Metrics) DecHostlinkSessions() {
	if m == nil {
		return
	}
	m.HostlinkSessions.Dec()
}

// RecordHostlinkFrame records a host link frame
func (m *Metrics) RecordHostlinkFrame(direction, frameType string) {
	if m == nil {
		return
	}
	m.HostlinkFrames.WithLabelValues(direction, frameType).Inc()
}

// RecordWebRequest records one network fetch
func (m *Metrics) RecordWebRequest(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.WebRequests.WithLabelValues(outcome).Observe(duration.Seconds())
}
