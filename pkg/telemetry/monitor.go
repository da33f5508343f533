package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Monitor records user-monitoring signals: named view sessions, discrete
// actions, and errors. Session identity is by key; sessions with distinct
// keys never interfere.
type Monitor interface {
	// StartView opens a monitoring session for the view identified by key.
	StartView(key, name string, attrs map[string]interface{})

	// StopView closes the session previously opened for key. Stopping an
	// unknown key is a no-op.
	StopView(key string)

	// AddAction records a discrete user-visible action.
	AddAction(actionType, name string, attrs map[string]interface{})

	// AddError records an application error with its source.
	AddError(err error, source string, attrs map[string]interface{})
}

// openView is one in-flight view session.
type openView struct {
	span      trace.Span
	startedAt time.Time
}

// spanMonitor implements Monitor on top of the Tracer: each view session is
// a span held open between StartView and StopView; actions and errors become
// span events on the session they belong to, or root spans when no session
// is open.
type spanMonitor struct {
	tracer  *Tracer
	config  MonitoringConfig
	metrics *Metrics

	mu    sync.Mutex
	views map[string]openView
	// lastKey tracks the most recently opened view so keyless actions and
	// errors attach to it.
	lastKey string
}

// NewMonitor creates a Monitor backed by the given tracer.
func NewMonitor(tracer *Tracer, cfg MonitoringConfig, metrics *Metrics) Monitor {
	return &spanMonitor{
		tracer:  tracer,
		config:  cfg,
		metrics: metrics,
		views:   make(map[string]openView),
	}
}

func (m *spanMonitor) StartView(key, name string, attrs map[string]interface{}) {
	if !m.config.Enabled {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Re-opening an already-open key is undefined upstream; close the stale
	// session first so the span table never leaks.
	if prev, ok := m.views[key]; ok {
		prev.span.End()
		m.metrics.RecordViewStopped()
	}

	_, span := m.tracer.StartSpan(context.Background(), "view",
		append(attrKeyValues(attrs),
			AttrViewKey.String(key),
			AttrViewName.String(name),
		)...,
	)

	m.views[key] = openView{span: span, startedAt: time.Now()}
	m.lastKey = key
	m.metrics.RecordViewStarted()
}

func (m *spanMonitor) StopView(key string) {
	if !m.config.Enabled {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	view, ok := m.views[key]
	if !ok {
		return
	}
	delete(m.views, key)

	elapsed := time.Since(view.startedAt)
	if m.config.LongTaskThreshold > 0 && elapsed > m.config.LongTaskThreshold {
		view.span.SetAttributes(attribute.Bool("view.long_task", true))
	}
	view.span.SetAttributes(attribute.Float64("view.duration_seconds", elapsed.Seconds()))
	RecordSuccess(view.span)
	view.span.End()
	m.metrics.RecordViewStopped()
}

func (m *spanMonitor) AddAction(actionType, name string, attrs map[string]interface{}) {
	if !m.config.Enabled {
		return
	}

	kvs := append(attrKeyValues(attrs),
		AttrActionType.String(actionType),
		AttrActionName.String(name),
	)

	m.mu.Lock()
	defer m.mu.Unlock()

	if view, ok := m.views[m.lastKey]; ok {
		view.span.AddEvent("action", trace.WithAttributes(kvs...))
	} else {
		_, span := m.tracer.StartSpan(context.Background(), "action", kvs...)
		span.End()
	}
	m.metrics.RecordAction(actionType)
}

func (m *spanMonitor) AddError(err error, source string, attrs map[string]interface{}) {
	if !m.config.Enabled || err == nil {
		return
	}

	kvs := append(attrKeyValues(attrs),
		AttrErrorSource.String(source),
	)

	m.mu.Lock()
	defer m.mu.Unlock()

	if view, ok := m.views[m.lastKey]; ok {
		view.span.AddEvent("error", trace.WithAttributes(kvs...))
		RecordError(view.span, err)
	} else {
		_, span := m.tracer.StartSpan(context.Background(), "error", kvs...)
		RecordError(span, err)
		span.End()
	}
	m.metrics.RecordMonitorError(source)
}

// attrKeyValues converts a loose attribute map to otel key-values.
func attrKeyValues(attrs map[string]interface{}) []attribute.KeyValue {
	kvs := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		switch val := v.(type) {
		case string:
			kvs = append(kvs, attribute.String(k, val))
		case bool:
			kvs = append(kvs, attribute.Bool(k, val))
		case int:
			kvs = append(kvs, attribute.Int(k, val))
		case int64:
			kvs = append(kvs, attribute.Int64(k, val))
		case float64:
			kvs = append(kvs, attribute.Float64(k, val))
		case time.Time:
			kvs = append(kvs, attribute.String(k, val.Format(time.RFC3339Nano)))
		default:
			kvs = append(kvs, attribute.String(k, stringify(val)))
		}
	}
	return kvs
}
