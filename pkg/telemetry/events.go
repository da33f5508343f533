package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is one entry in the transcript stream: an immutable record of a log
// emission or a generator state change. Events are created at the publishing
// site and consumed immediately; nothing in this package persists them.
type Event struct {
	// ID is the unique identifier for this event.
	ID string `json:"id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Type is the event type.
	Type string `json:"type"`

	// Source identifies where the event originated.
	Source string `json:"source"`

	// Message is a human-readable event message.
	Message string `json:"message"`

	// Level is the severity the underlying log was emitted at.
	Level Level `json:"level"`

	// Attributes contains additional event-specific data.
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// EventType constants for transcript event types.
const (
	EventTypeLogEmitted       = "log.emitted"
	EventTypeErrorLogged      = "log.error"
	EventTypeGeneratorStarted = "generator.started"
	EventTypeGeneratorStopped = "generator.stopped"
)

// EventSubscriber is a function that handles events.
type EventSubscriber func(event Event)

// EventFilter determines if an event should be delivered.
type EventFilter func(event Event) bool

// EventPublisher fans transcript events out to subscribers. Delivery is
// inline by default so the transcript stays ordered; async mode trades
// ordering at the subscriber boundary for a non-blocking publish.
type EventPublisher struct {
	config      EventsConfig
	buffer      chan Event
	subscribers []subscriberEntry
	filters     []EventFilter
	wg          sync.WaitGroup
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
}

type subscriberEntry struct {
	subscriber EventSubscriber
	filter     EventFilter
}

// NewEventPublisher creates a new event publisher with the given configuration.
func NewEventPublisher(cfg EventsConfig) *EventPublisher {
	if !cfg.Enabled {
		return &EventPublisher{config: cfg}
	}

	ctx, cancel := context.WithCancel(context.Background())

	ep := &EventPublisher{
		config: cfg,
		ctx:    ctx,
		cancel: cancel,
	}

	if cfg.EnableAsync {
		ep.buffer = make(chan Event, cfg.BufferSize)
		ep.wg.Add(1)
		go ep.processEvents()
	}

	return ep
}

// Publish publishes an event to all subscribers. ID and timestamp are filled
// in when the publishing site left them empty.
func (ep *EventPublisher) Publish(event Event) error {
	if !ep.config.Enabled {
		return nil
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	ep.mu.RLock()
	for _, filter := range ep.filters {
		if !filter(event) {
			ep.mu.RUnlock()
			return nil
		}
	}
	ep.mu.RUnlock()

	if ep.config.EnableAsync {
		select {
		case ep.buffer <- event:
			return nil
		case <-ep.ctx.Done():
			return fmt.Errorf("event publisher stopped")
		default:
			return fmt.Errorf("event buffer full, event dropped")
		}
	}

	ep.deliverEvent(event)
	return nil
}

// PublishLogEmitted publishes the transcript event for one emitted log line.
func (ep *EventPublisher) PublishLogEmitted(message string, level Level, source string, attrs map[string]interface{}) error {
	return ep.Publish(Event{
		Type:       EventTypeLogEmitted,
		Source:     source,
		Message:    message,
		Level:      level,
		Attributes: attrs,
	})
}

// PublishErrorLogged publishes the transcript event for a logged error.
func (ep *EventPublisher) PublishErrorLogged(message, errContext string) error {
	return ep.Publish(Event{
		Type:    EventTypeErrorLogged,
		Source:  errContext,
		Message: message,
		Level:   LevelError,
	})
}

// PublishGeneratorStarted publishes a generator start transition.
func (ep *EventPublisher) PublishGeneratorStarted() error {
	return ep.Publish(Event{
		Type:    EventTypeGeneratorStarted,
		Source:  "generator",
		Message: "Starting.",
		Level:   LevelInfo,
	})
}

// PublishGeneratorStopped publishes a generator stop transition.
func (ep *EventPublisher) PublishGeneratorStopped() error {
	return ep.Publish(Event{
		Type:    EventTypeGeneratorStopped,
		Source:  "generator",
		Message: "Stopped.",
		Level:   LevelInfo,
	})
}

// Subscribe adds a new event subscriber. A nil filter receives every event.
func (ep *EventPublisher) Subscribe(subscriber EventSubscriber, filter EventFilter) {
	ep.mu.Lock()
	defer ep.mu.Unlock()

	ep.subscribers = append(ep.subscribers, subscriberEntry{
		subscriber: subscriber,
		filter:     filter,
	})
}

// AddFilter adds a global event filter applied before any delivery.
func (ep *EventPublisher) AddFilter(filter EventFilter) {
	ep.mu.Lock()
	defer ep.mu.Unlock()

	ep.filters = append(ep.filters, filter)
}

// processEvents drains the buffer in async mode.
func (ep *EventPublisher) processEvents() {
	defer ep.wg.Done()

	for {
		select {
		case event := <-ep.buffer:
			ep.deliverEvent(event)
		case <-ep.ctx.Done():
			// Drain whatever made it into the buffer before shutdown.
			for {
				select {
				case event := <-ep.buffer:
					ep.deliverEvent(event)
				default:
					return
				}
			}
		}
	}
}

// deliverEvent delivers an event to all matching subscribers, in
// subscription order.
func (ep *EventPublisher) deliverEvent(event Event) {
	ep.mu.RLock()
	entries := make([]subscriberEntry, len(ep.subscribers))
	copy(entries, ep.subscribers)
	ep.mu.RUnlock()

	for _, entry := range entries {
		if entry.filter != nil && !entry.filter(event) {
			continue
		}
		entry.subscriber(event)
	}
}

// Shutdown gracefully shuts down the event publisher.
func (ep *EventPublisher) Shutdown(ctx context.Context) error {
	if !ep.config.Enabled || ep.cancel == nil {
		return nil
	}

	ep.cancel()

	done := make(chan struct{})
	go func() {
		ep.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event publisher shutdown timeout")
	}
}

// FilterByMinLevel creates a filter that only delivers events at or above
// the given level.
func FilterByMinLevel(minLevel Level) EventFilter {
	return func(event Event) bool {
		return event.Level >= minLevel
	}
}

// FilterByType creates a filter that only delivers events of specific types.
func FilterByType(types ...string) EventFilter {
	typeSet := make(map[string]bool)
	for _, t := range types {
		typeSet[t] = true
	}

	return func(event Event) bool {
		return typeSet[event.Type]
	}
}

// stringify renders an attribute value for string-typed sinks.
func stringify(v interface{}) string {
	return fmt.Sprintf("%v", v)
}
