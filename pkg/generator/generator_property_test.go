package generator

import (
	"testing"
	"time"

	"pgregory.net/rapid"
)

// Sampled delays always land in [min, max), whatever the configured range.
func TestSampleDelayWithinRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		minMs := rapid.Int64Range(1, 1000).Draw(t, "minMs")
		spanMs := rapid.Int64Range(1, 1000).Draw(t, "spanMs")

		min := time.Duration(minMs) * time.Millisecond
		max := min + time.Duration(spanMs)*time.Millisecond

		g := New(nil, WithDelayRange(min, max))
		for i := 0; i < 50; i++ {
			delay := g.sampleDelay()
			if delay < min || delay >= max {
				t.Fatalf("delay %v outside [%v, %v)", delay, min, max)
			}
		}
	})
}

// The default range is the documented [1s, 8s).
func TestSampleDelayDefaultRange(t *testing.T) {
	g := New(nil)
	for i := 0; i < 1000; i++ {
		delay := g.sampleDelay()
		if delay < DefaultMinEventDelay || delay >= DefaultMaxEventDelay {
			t.Fatalf("delay %v outside [%v, %v)", delay, DefaultMinEventDelay, DefaultMaxEventDelay)
		}
	}
}

func TestDegenerateRangeReturnsMin(t *testing.T) {
	g := New(nil, WithDelayRange(time.Second, time.Second))
	if got := g.sampleDelay(); got != time.Second {
		t.Errorf("degenerate range sampled %v, want 1s", got)
	}
}
