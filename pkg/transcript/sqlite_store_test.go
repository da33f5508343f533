package transcript

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/pulselog/pulselog/pkg/telemetry"
)

// setupTestStore creates a migrated store backed by a temp file.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(StoreConfig{
		Path: filepath.Join(t.TempDir(), "transcript.db"),
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate store: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// seedEvents appends n events with ascending timestamps.
func seedEvents(t *testing.T, store *SQLiteStore, n int) []telemetry.Event {
	t.Helper()

	base := time.Now().Add(-time.Duration(n) * time.Minute)
	events := make([]telemetry.Event, 0, n)
	for i := 0; i < n; i++ {
		event := telemetry.Event{
			ID:        fmt.Sprintf("event-%03d", i),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Type:      telemetry.EventTypeLogEmitted,
			Source:    "test",
			Message:   fmt.Sprintf("message %d", i),
			Level:     telemetry.LevelInfo,
		}
		if err := store.Append(context.Background(), event); err != nil {
			t.Fatalf("failed to append event %d: %v", i, err)
		}
		events = append(events, event)
	}
	return events
}

func TestStoreRequiresPath(t *testing.T) {
	if _, err := NewSQLiteStore(StoreConfig{}); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestStoreAppendAndList(t *testing.T) {
	store := setupTestStore(t)
	seeded := seedEvents(t, store, 5)

	events, err := store.List(context.Background(), ListOptions{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(events) != 5 {
		t.Fatalf("listed %d events, want 5", len(events))
	}
	for i, event := range events {
		if event.ID != seeded[i].ID {
			t.Errorf("event %d has ID %s, want %s", i, event.ID, seeded[i].ID)
		}
		if event.Message != seeded[i].Message {
			t.Errorf("event %d message = %q", i, event.Message)
		}
		if event.Level != telemetry.LevelInfo {
			t.Errorf("event %d level = %v", i, event.Level)
		}
	}
}

func TestStoreListLimitReturnsMostRecent(t *testing.T) {
	store := setupTestStore(t)
	seedEvents(t, store, 10)

	events, err := store.List(context.Background(), ListOptions{Limit: 3})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(events) != 3 {
		t.Fatalf("listed %d events, want 3", len(events))
	}
	// Most recent three, oldest first.
	if events[0].ID != "event-007" || events[2].ID != "event-009" {
		t.Errorf("window = %s..%s", events[0].ID, events[2].ID)
	}
}

func TestStoreListFiltersByType(t *testing.T) {
	store := setupTestStore(t)
	seedEvents(t, store, 3)

	marker := telemetry.Event{
		ID:        "marker",
		Timestamp: time.Now(),
		Type:      telemetry.EventTypeGeneratorStopped,
		Message:   "Stopped.",
		Level:     telemetry.LevelInfo,
	}
	if err := store.Append(context.Background(), marker); err != nil {
		t.Fatalf("failed to append marker: %v", err)
	}

	events, err := store.List(context.Background(), ListOptions{Type: telemetry.EventTypeGeneratorStopped})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(events) != 1 || events[0].ID != "marker" {
		t.Errorf("filtered list = %v", events)
	}
}

func TestStoreListFiltersByMinLevel(t *testing.T) {
	store := setupTestStore(t)

	levels := []telemetry.Level{telemetry.LevelDebug, telemetry.LevelInfo, telemetry.LevelError}
	for i, level := range levels {
		event := telemetry.Event{
			ID:        fmt.Sprintf("lvl-%d", i),
			Timestamp: time.Now().Add(time.Duration(i) * time.Second),
			Type:      telemetry.EventTypeLogEmitted,
			Message:   "m",
			Level:     level,
		}
		if err := store.Append(context.Background(), event); err != nil {
			t.Fatalf("failed to append: %v", err)
		}
	}

	minLevel := telemetry.LevelWarning
	events, err := store.List(context.Background(), ListOptions{MinLevel: &minLevel})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(events) != 1 || events[0].Level != telemetry.LevelError {
		t.Errorf("filtered list = %v", events)
	}
}

func TestStoreListLimitWithMinLevel(t *testing.T) {
	store := setupTestStore(t)

	// Older errors, then a burst of newer debug noise.
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		event := telemetry.Event{
			ID:        fmt.Sprintf("err-%d", i),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Type:      telemetry.EventTypeErrorLogged,
			Message:   "Error occurred: boom",
			Level:     telemetry.LevelError,
		}
		if err := store.Append(context.Background(), event); err != nil {
			t.Fatalf("failed to append: %v", err)
		}
	}
	for i := 0; i < 10; i++ {
		event := telemetry.Event{
			ID:        fmt.Sprintf("dbg-%d", i),
			Timestamp: time.Now().Add(time.Duration(i) * time.Second),
			Type:      telemetry.EventTypeLogEmitted,
			Message:   "Tick - [15:04:05]",
			Level:     telemetry.LevelDebug,
		}
		if err := store.Append(context.Background(), event); err != nil {
			t.Fatalf("failed to append: %v", err)
		}
	}

	minLevel := telemetry.LevelError
	events, err := store.List(context.Background(), ListOptions{Limit: 5, MinLevel: &minLevel})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	// The limit window must be taken after the level filter, so the newer
	// debug events cannot starve it.
	if len(events) != 5 {
		t.Fatalf("listed %d events, want 5", len(events))
	}
	for _, event := range events {
		if event.Level != telemetry.LevelError {
			t.Errorf("event %s has level %v, want error", event.ID, event.Level)
		}
	}
}

func TestStoreAttributesRoundTrip(t *testing.T) {
	store := setupTestStore(t)

	event := telemetry.Event{
		ID:        "with-attrs",
		Timestamp: time.Now(),
		Type:      telemetry.EventTypeErrorLogged,
		Message:   "Error occurred: boom",
		Level:     telemetry.LevelError,
		Attributes: map[string]interface{}{
			"context": "sync",
		},
	}
	if err := store.Append(context.Background(), event); err != nil {
		t.Fatalf("failed to append: %v", err)
	}

	events, err := store.List(context.Background(), ListOptions{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("listed %d events", len(events))
	}
	if events[0].Attributes["context"] != "sync" {
		t.Errorf("attributes = %v", events[0].Attributes)
	}
}

func TestStoreCountAndPrune(t *testing.T) {
	store := setupTestStore(t)
	seeded := seedEvents(t, store, 6)

	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 6 {
		t.Errorf("count = %d, want 6", count)
	}

	// Prune everything older than the fourth event.
	removed, err := store.Prune(context.Background(), seeded[3].Timestamp)
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if removed != 3 {
		t.Errorf("pruned %d events, want 3", removed)
	}

	count, err = store.Count(context.Background())
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 3 {
		t.Errorf("count after prune = %d, want 3", count)
	}
}

func TestStoreAttachPersistsPublishedEvents(t *testing.T) {
	store := setupTestStore(t)

	ep := telemetry.NewEventPublisher(telemetry.EventsConfig{Enabled: true})
	var sinkErrs []error
	store.Attach(ep, func(err error) { sinkErrs = append(sinkErrs, err) })

	if err := ep.PublishLogEmitted("persisted", telemetry.LevelInfo, "test", nil); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if len(sinkErrs) != 0 {
		t.Fatalf("persistence errors: %v", sinkErrs)
	}
	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}
