package telemetry

import (
	"context"
)

// Telemetry bundles the full pipeline: structured logging, the span-backed
// monitor, metrics, and the transcript event publisher. Built once at
// startup and passed to consumers explicitly.
type Telemetry struct {
	Logger  *Logger
	Tracer  *Tracer
	Monitor Monitor
	Metrics *Metrics
	Events  *EventPublisher
	Config  *Config
}

// telemetryContextKey is the context key for telemetry instances.
type telemetryContextKey struct{}

// NewTelemetry creates a new telemetry instance from configuration. The
// tracer is fully initialized before any logger or facade is constructed, so
// consumers never observe a half-built pipeline.
func NewTelemetry(cfg *Config) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Intake credentials ride on the exporter as headers. The caller's
	// config stays untouched; the headers map is copied before the
	// credentials are added.
	tracing := cfg.Tracing
	if cfg.ClientToken != "" {
		headers := make(map[string]string, len(tracing.Headers)+2)
		for k, v := range tracing.Headers {
			headers[k] = v
		}
		headers["dd-client-token"] = cfg.ClientToken
		if cfg.Site != "" {
			headers["dd-site"] = cfg.Site
		}
		tracing.Headers = headers
	}

	tracer, err := NewTracer(tracing, cfg.ServiceName, cfg.ServiceVersion, cfg.Environment, cfg.ApplicationID)
	if err != nil {
		return nil, err
	}

	logger, err := NewLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}
	logger = logger.WithFields(map[string]interface{}{
		"service": cfg.ServiceName,
		"env":     cfg.Environment,
	})

	metrics, err := NewMetrics(cfg.Metrics)
	if err != nil {
		return nil, err
	}

	monitor := NewMonitor(tracer, cfg.Monitoring, metrics)
	events := NewEventPublisher(cfg.Events)

	return &Telemetry{
		Logger:  logger,
		Tracer:  tracer,
		Monitor: monitor,
		Metrics: metrics,
		Events:  events,
		Config:  cfg,
	}, nil
}

// WithContext adds the telemetry instance to the context.
func (t *Telemetry) WithContext(ctx context.Context) context.Context {
	ctx = context.WithValue(ctx, telemetryContextKey{}, t)
	ctx = t.Logger.WithContext(ctx)
	return ctx
}

// FromTelemetryContext retrieves the telemetry instance from the context, or
// nil when none is attached.
func FromTelemetryContext(ctx context.Context) *Telemetry {
	if t, ok := ctx.Value(telemetryContextKey{}).(*Telemetry); ok {
		return t
	}
	return nil
}

// Shutdown gracefully shuts down all telemetry components, in reverse order
// of initialization.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if err := t.Events.Shutdown(ctx); err != nil {
		return err
	}

	return t.Tracer.Shutdown(ctx)
}

// Flush forces all pending spans to be exported immediately.
func (t *Telemetry) Flush(ctx context.Context) error {
	return t.Tracer.ForceFlush(ctx)
}

// StartMetricsServer starts the metrics HTTP server if metrics are enabled.
func (t *Telemetry) StartMetricsServer() error {
	return t.Metrics.StartMetricsServer()
}
