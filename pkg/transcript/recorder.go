// Package transcript records the ordered stream of emitted telemetry events:
// a bounded in-memory recorder for live UIs and a SQLite-backed store for
// persistent history.
package transcript

import (
	"sync"

	"github.com/pulselog/pulselog/pkg/telemetry"
)

// Recorder is an append-only, bounded transcript of events. When capacity is
// reached the oldest entries fall off. Safe for concurrent use.
type Recorder struct {
	mu       sync.RWMutex
	capacity int
	entries  []telemetry.Event
}

// NewRecorder creates a recorder holding at most capacity events. A zero or
// negative capacity means unbounded.
func NewRecorder(capacity int) *Recorder {
	return &Recorder{capacity: capacity}
}

// Append adds one event to the transcript.
func (r *Recorder) Append(event telemetry.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, event)
	if r.capacity > 0 && len(r.entries) > r.capacity {
		// Drop the oldest overflow in one slide.
		overflow := len(r.entries) - r.capacity
		r.entries = append(r.entries[:0], r.entries[overflow:]...)
	}
}

// Events returns a copy of the recorded events in append order.
func (r *Recorder) Events() []telemetry.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]telemetry.Event, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// CountByLevel returns how many recorded events carry each severity name.
func (r *Recorder) CountByLevel() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int)
	for _, event := range r.entries {
		counts[event.Level.String()]++
	}
	return counts
}

// Attach subscribes the recorder to an event publisher.
func (r *Recorder) Attach(events *telemetry.EventPublisher) {
	events.Subscribe(r.Append, nil)
}
