package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics for the telemetry pipeline.
type Metrics struct {
	config MetricsConfig

	// Log metrics
	logsEmitted *prometheus.CounterVec

	// Generator metrics
	heartbeats      prometheus.Counter
	syntheticEvents prometheus.Counter
	eventDelay      prometheus.Histogram

	// Monitor metrics
	monitorActions   *prometheus.CounterVec
	monitorErrors    *prometheus.CounterVec
	openViewSessions prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		// No-op metrics instance
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DelayBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		logsEmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "logs_emitted_total",
				Help:      "Total number of log messages emitted through the facade",
			},
			[]string{"level"},
		),
		heartbeats: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "heartbeats_total",
				Help:      "Total number of heartbeat ticks emitted",
			},
		),
		syntheticEvents: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "synthetic_events_total",
				Help:      "Total number of synthetic events emitted",
			},
		),
		eventDelay: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "event_delay_seconds",
				Help:      "Sampled delay between synthetic events in seconds",
				Buckets:   buckets,
			},
		),
		monitorActions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "monitor_actions_total",
				Help:      "Total number of monitoring actions recorded",
			},
			[]string{"type"},
		),
		monitorErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "monitor_errors_total",
				Help:      "Total number of monitoring errors recorded",
			},
			[]string{"source"},
		),
		openViewSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "open_view_sessions",
				Help:      "Current number of open view sessions",
			},
		),
	}

	registry.MustRegister(
		m.logsEmitted,
		m.heartbeats,
		m.syntheticEvents,
		m.eventDelay,
		m.monitorActions,
		m.monitorErrors,
		m.openViewSessions,
	)

	return m, nil
}

// RecordLogEmitted increments the per-level log counter.
func (m *Metrics) RecordLogEmitted(level Level) {
	if m == nil || m.logsEmitted == nil {
		return
	}
	m.logsEmitted.WithLabelValues(level.String()).Inc()
}

// RecordHeartbeat increments the heartbeat counter.
func (m *Metrics) RecordHeartbeat() {
	if m == nil || m.heartbeats == nil {
		return
	}
	m.heartbeats.Inc()
}

// RecordSyntheticEvent records one synthetic event and the delay that was
// sampled before it.
func (m *Metrics) RecordSyntheticEvent(delay time.Duration) {
	if m == nil || m.syntheticEvents == nil {
		return
	}
	m.syntheticEvents.Inc()
	m.eventDelay.Observe(delay.Seconds())
}

// RecordAction increments the monitor action counter.
func (m *Metrics) RecordAction(actionType string) {
	if m == nil || m.monitorActions == nil {
		return
	}
	m.monitorActions.WithLabelValues(actionType).Inc()
}

// RecordMonitorError increments the monitor error counter.
func (m *Metrics) RecordMonitorError(source string) {
	if m == nil || m.monitorErrors == nil {
		return
	}
	m.monitorErrors.WithLabelValues(source).Inc()
}

// RecordViewStarted bumps the open-session gauge.
func (m *Metrics) RecordViewStarted() {
	if m == nil || m.openViewSessions == nil {
		return
	}
	m.openViewSessions.Inc()
}

// RecordViewStopped drops the open-session gauge.
func (m *Metrics) RecordViewStopped() {
	if m == nil || m.openViewSessions == nil {
		return
	}
	m.openViewSessions.Dec()
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// StartMetricsServer starts an HTTP server to expose metrics.
func (m *Metrics) StartMetricsServer() error {
	if !m.config.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(m.config.Path, m.Handler())

	server := &http.Server{
		Addr:              m.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server error: %v\n", err)
		}
	}()

	return nil
}
