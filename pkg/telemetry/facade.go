package telemetry

import (
	"fmt"
	"sync"
	"time"
)

// messageSource is the fixed source attribute attached to every message
// logged through the facade.
const messageSource = "ui_scroll_view"

// sentMarker prefixes the observer line emitted after each log.
const sentMarker = "Log sent ✓"

// Facade is the single entry point for emitting structured log lines and
// mirroring them as monitoring actions and errors. Every call is
// best-effort, at-most-once: delivery, batching, and retry are owned by the
// exporters underneath.
type Facade struct {
	tel     *Telemetry
	logger  *Logger
	monitor Monitor
	events  *EventPublisher
	metrics *Metrics

	mu        sync.RWMutex
	onLogSent func(string)
}

// NewFacade constructs a facade over an already-built telemetry pipeline.
func NewFacade(tel *Telemetry) *Facade {
	return &Facade{
		tel:     tel,
		logger:  tel.Logger,
		monitor: tel.Monitor,
		events:  tel.Events,
		metrics: tel.Metrics,
	}
}

// Pipeline exposes the underlying telemetry pipeline, mainly so drivers can
// shut it down.
func (f *Facade) Pipeline() *Telemetry {
	return f.tel
}

var (
	sharedOnce   sync.Once
	sharedFacade *Facade
	sharedErr    error
)

// Init builds the process-wide shared facade exactly once. Subsequent calls
// return the same instance regardless of the config passed.
func Init(cfg *Config) (*Facade, error) {
	sharedOnce.Do(func() {
		tel, err := NewTelemetry(cfg)
		if err != nil {
			sharedErr = err
			return
		}
		sharedFacade = NewFacade(tel)
	})
	return sharedFacade, sharedErr
}

// Shared returns the process-wide facade, or nil before Init has succeeded.
func Shared() *Facade {
	return sharedFacade
}

// SetOnLogSent registers the observer invoked after each emission. A nil
// observer disables the callback.
func (f *Facade) SetOnLogSent(fn func(string)) {
	f.mu.Lock()
	f.onLogSent = fn
	f.mu.Unlock()
}

// LogMessage emits one structured log line at the given level, notifies the
// observer, and records a "message_displayed" monitoring action. The three
// side effects are independent; none is rolled back if another misbehaves.
func (f *Facade) LogMessage(message string, level Level) {
	now := time.Now()

	f.logger.Log(level, message, map[string]interface{}{
		"source":    messageSource,
		"timestamp": now.Format(time.RFC3339Nano),
	})
	f.metrics.RecordLogEmitted(level)

	f.notifyLogSent(level, now)

	f.monitor.AddAction("custom", "message_displayed", map[string]interface{}{
		"message": message,
		"level":   level.String(),
	})

	_ = f.events.PublishLogEmitted(message, level, messageSource, nil)
}

// LogError emits an error-level log for err and separately records a
// monitoring error tagged with the same context. Both are always attempted.
func (f *Facade) LogError(err error, context string) {
	if err == nil {
		return
	}
	now := time.Now()
	message := fmt.Sprintf("Error occurred: %v", err)

	f.logger.Log(LevelError, message, map[string]interface{}{
		"context":    context,
		"error_type": fmt.Sprintf("%T", err),
		"timestamp":  now.Format(time.RFC3339Nano),
	})
	f.metrics.RecordLogEmitted(LevelError)

	f.monitor.AddError(err, "custom", map[string]interface{}{
		"context": context,
	})

	_ = f.events.PublishErrorLogged(message, context)
}

// StartViewTracking opens a monitoring session for the named view. The name
// doubles as the session key.
func (f *Facade) StartViewTracking(name string) {
	f.monitor.StartView(name, name, nil)
}

// StopViewTracking closes the monitoring session for the named view.
func (f *Facade) StopViewTracking(name string) {
	f.monitor.StopView(name)
}

// Events exposes the transcript publisher so drivers can subscribe.
func (f *Facade) Events() *EventPublisher {
	return f.events
}

// Metrics exposes the metrics collector.
func (f *Facade) Metrics() *Metrics {
	return f.metrics
}

// notifyLogSent invokes the observer exactly once per emission.
func (f *Facade) notifyLogSent(level Level, at time.Time) {
	f.mu.RLock()
	observer := f.onLogSent
	f.mu.RUnlock()

	if observer == nil {
		return
	}
	observer(fmt.Sprintf("%s [%s] - Level: %s", sentMarker, at.Format("15:04:05"), level))
}
