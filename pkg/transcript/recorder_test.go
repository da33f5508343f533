package transcript

import (
	"fmt"
	"testing"

	"github.com/pulselog/pulselog/pkg/telemetry"
)

func TestRecorderAppendsInOrder(t *testing.T) {
	r := NewRecorder(0)

	for i := 0; i < 5; i++ {
		r.Append(telemetry.Event{ID: fmt.Sprintf("e%d", i)})
	}

	events := r.Events()
	if len(events) != 5 {
		t.Fatalf("recorded %d events, want 5", len(events))
	}
	for i, event := range events {
		if event.ID != fmt.Sprintf("e%d", i) {
			t.Errorf("event %d has ID %s", i, event.ID)
		}
	}
}

func TestRecorderCapacityDropsOldest(t *testing.T) {
	r := NewRecorder(3)

	for i := 0; i < 10; i++ {
		r.Append(telemetry.Event{ID: fmt.Sprintf("e%d", i)})
	}

	events := r.Events()
	if len(events) != 3 {
		t.Fatalf("recorded %d events, want 3", len(events))
	}
	if events[0].ID != "e7" || events[2].ID != "e9" {
		t.Errorf("kept wrong window: %v, %v, %v", events[0].ID, events[1].ID, events[2].ID)
	}
	if r.Len() != 3 {
		t.Errorf("Len = %d, want 3", r.Len())
	}
}

func TestRecorderEventsReturnsCopy(t *testing.T) {
	r := NewRecorder(0)
	r.Append(telemetry.Event{ID: "original"})

	events := r.Events()
	events[0].ID = "mutated"

	if r.Events()[0].ID != "original" {
		t.Error("Events exposed internal storage")
	}
}

func TestRecorderCountByLevel(t *testing.T) {
	r := NewRecorder(0)
	r.Append(telemetry.Event{Level: telemetry.LevelInfo})
	r.Append(telemetry.Event{Level: telemetry.LevelInfo})
	r.Append(telemetry.Event{Level: telemetry.LevelDebug})

	counts := r.CountByLevel()
	if counts["info"] != 2 || counts["debug"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestRecorderAttach(t *testing.T) {
	ep := telemetry.NewEventPublisher(telemetry.EventsConfig{Enabled: true})
	r := NewRecorder(0)
	r.Attach(ep)

	if err := ep.PublishGeneratorStarted(); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if r.Len() != 1 {
		t.Fatalf("recorded %d events, want 1", r.Len())
	}
	if r.Events()[0].Message != "Starting." {
		t.Errorf("recorded message = %q", r.Events()[0].Message)
	}
}
