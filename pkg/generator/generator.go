// Package generator drives the telemetry pipeline with synthetic activity:
// a fixed-period heartbeat stream and a randomly spaced event stream, both
// logged through the telemetry facade.
package generator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pulselog/pulselog/pkg/telemetry"
)

// State is the run state of the generator.
type State int

const (
	// StateIdle means no streams are armed.
	StateIdle State = iota
	// StateRunning means both streams are armed.
	StateRunning
)

// String returns the state name.
func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "idle"
}

// Stream timing defaults.
const (
	DefaultHeartbeatPeriod = 5 * time.Second
	DefaultMinEventDelay   = 1 * time.Second
	DefaultMaxEventDelay   = 8 * time.Second
)

// messageCatalog holds the templates a synthetic event is drawn from. The
// last entry interpolates the current time.
var messageCatalog = []string{
	"Working.",
	"Operational deviation.",
	"Shifted.",
	"Work Completed - %s",
}

// Generator emits synthetic activity while running. All transitions go
// through Start and Stop; the generator never stops itself.
type Generator struct {
	facade *telemetry.Facade

	heartbeatPeriod time.Duration
	minDelay        time.Duration
	maxDelay        time.Duration

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Generator.
type Option func(*Generator)

// WithHeartbeatPeriod overrides the fixed heartbeat period.
func WithHeartbeatPeriod(d time.Duration) Option {
	return func(g *Generator) { g.heartbeatPeriod = d }
}

// WithDelayRange overrides the [min, max) random-event delay range.
func WithDelayRange(min, max time.Duration) Option {
	return func(g *Generator) {
		g.minDelay = min
		g.maxDelay = max
	}
}

// New creates an idle generator that logs through the given facade.
func New(facade *telemetry.Facade, opts ...Option) *Generator {
	g := &Generator{
		facade:          facade,
		heartbeatPeriod: DefaultHeartbeatPeriod,
		minDelay:        DefaultMinEventDelay,
		maxDelay:        DefaultMaxEventDelay,
		state:           StateIdle,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// State returns the current run state.
func (g *Generator) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Start arms both streams. Calling Start while already running is a no-op:
// at most one heartbeat timer and one random-event timer are live at any
// instant. The "Starting." log precedes the first armed timer.
func (g *Generator) Start(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == StateRunning {
		return
	}
	g.state = StateRunning

	g.facade.LogMessage("Starting.", telemetry.LevelInfo)
	_ = g.facade.Events().PublishGeneratorStarted()

	runCtx, cancel := context.WithCancel(ctx)
	g.cancel = cancel

	g.wg.Add(2)
	go g.heartbeatLoop(runCtx)
	go g.randomLoop(runCtx)
}

// Stop disarms both streams and waits for their goroutines to drain before
// logging "Stopped.", so no heartbeat or synthetic event is logged after
// Stop returns.
func (g *Generator) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StateRunning {
		return
	}

	g.cancel()
	g.cancel = nil
	g.wg.Wait()
	g.state = StateIdle

	g.facade.LogMessage("Stopped.", telemetry.LevelInfo)
	_ = g.facade.Events().PublishGeneratorStopped()
}

// heartbeatLoop fires on a fixed period until cancelled.
func (g *Generator) heartbeatLoop(ctx context.Context) {
	defer g.wg.Done()

	ticker := time.NewTicker(g.heartbeatPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.facade.LogMessage(fmt.Sprintf("Tick - [%s]", time.Now().Format("15:04:05")), telemetry.LevelDebug)
			g.facade.Metrics().RecordHeartbeat()
		}
	}
}

// randomLoop is a self-rescheduling single-shot stream: sample a delay,
// sleep, emit, repeat. Cancellation interrupts the pending timer so no
// further event fires after stop.
func (g *Generator) randomLoop(ctx context.Context) {
	defer g.wg.Done()

	for {
		delay := g.sampleDelay()
		timer := time.NewTimer(delay)

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			g.emitRandomEvent()
			g.facade.Metrics().RecordSyntheticEvent(delay)
		}
	}
}

// sampleDelay draws a uniform delay in [minDelay, maxDelay).
func (g *Generator) sampleDelay() time.Duration {
	if g.maxDelay <= g.minDelay {
		return g.minDelay
	}
	return g.minDelay + time.Duration(rand.Int64N(int64(g.maxDelay-g.minDelay)))
}

// emitRandomEvent logs one event drawn uniformly from the catalog, wrapped
// with a fresh event identifier.
func (g *Generator) emitRandomEvent() {
	template := messageCatalog[rand.IntN(len(messageCatalog))]
	text := template
	if template == "Work Completed - %s" {
		text = fmt.Sprintf(template, time.Now().Format("15:04:05"))
	}

	message := fmt.Sprintf("Event: [%s] - %s", uuid.New().String(), text)
	g.facade.LogMessage(message, telemetry.LevelInfo)
}
