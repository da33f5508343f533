// Package tui renders the live transcript: a scrolling feed of emitted
// events with a single start/stop toggle driving the event generator.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pulselog/pulselog/pkg/generator"
	"github.com/pulselog/pulselog/pkg/telemetry"
)

// maxLines bounds the on-screen transcript.
const maxLines = 500

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	transcriptStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	statusRunning = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	statusIdle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	levelDebug    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	levelInfo     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	levelWarning  = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	levelError    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	levelCritical = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	sentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// eventMsg carries one published transcript event into the update loop.
type eventMsg telemetry.Event

// logSentMsg carries one observer notification line.
type logSentMsg string

// Model is the bubbletea model for the transcript view. All state
// transitions happen on the update loop; events arrive as messages bridged
// from the publisher subscription.
type Model struct {
	facade *telemetry.Facade
	gen    *generator.Generator
	ctx    context.Context

	msgs chan tea.Msg

	lines      []string
	eventCount int
	width      int
	height     int
	quitting   bool
}

// New wires a model to the facade and generator. The subscription and the
// observer both funnel into one channel so the transcript stays ordered.
func New(ctx context.Context, facade *telemetry.Facade, gen *generator.Generator) *Model {
	m := &Model{
		facade: facade,
		gen:    gen,
		ctx:    ctx,
		msgs:   make(chan tea.Msg, 128),
	}

	facade.Events().Subscribe(func(event telemetry.Event) {
		select {
		case m.msgs <- eventMsg(event):
		default:
			// UI backlogged; drop the display line, never the pipeline.
		}
	}, nil)

	facade.SetOnLogSent(func(line string) {
		select {
		case m.msgs <- logSentMsg(line):
		default:
		}
	})

	return m
}

// Init starts listening for bridged messages.
func (m *Model) Init() tea.Cmd {
	return m.waitForMsg()
}

// waitForMsg blocks until the next bridged message arrives.
func (m *Model) waitForMsg() tea.Cmd {
	return func() tea.Msg {
		return <-m.msgs
	}
}

// Update handles key presses and bridged transcript messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			if m.gen.State() == generator.StateRunning {
				m.gen.Stop()
			}
			return m, tea.Quit
		case "s":
			if m.gen.State() == generator.StateRunning {
				m.gen.Stop()
			} else {
				m.gen.Start(m.ctx)
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case eventMsg:
		m.eventCount++
		m.appendLine(formatEvent(telemetry.Event(msg)))
		return m, m.waitForMsg()

	case logSentMsg:
		m.appendLine(sentStyle.Render(string(msg)))
		return m, m.waitForMsg()
	}

	return m, nil
}

// appendLine adds one rendered line, trimming the scrollback.
func (m *Model) appendLine(line string) {
	m.lines = append(m.lines, line)
	if len(m.lines) > maxLines {
		m.lines = m.lines[len(m.lines)-maxLines:]
	}
}

// View renders the transcript, status line, and help.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("PulseLog"))
	b.WriteString("\n\n")

	visible := m.visibleLines()
	body := strings.Join(visible, "\n")
	if body == "" {
		body = helpStyle.Render("No events yet. Press 's' to start the generator.")
	}
	width := m.width - 4
	if width > 0 {
		b.WriteString(transcriptStyle.Width(width).Render(body))
	} else {
		b.WriteString(transcriptStyle.Render(body))
	}
	b.WriteString("\n")

	if m.gen.State() == generator.StateRunning {
		b.WriteString(statusRunning.Render("● running"))
	} else {
		b.WriteString(statusIdle.Render("○ stopped"))
	}
	b.WriteString(helpStyle.Render(fmt.Sprintf("  %d events", m.eventCount)))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("s: start/stop · q: quit"))
	b.WriteString("\n")

	return b.String()
}

// visibleLines tails the transcript to fit the window.
func (m *Model) visibleLines() []string {
	if m.height <= 0 {
		return m.lines
	}
	// Title, borders, status, and help take 8 rows.
	budget := m.height - 8
	if budget < 1 {
		budget = 1
	}
	if len(m.lines) <= budget {
		return m.lines
	}
	return m.lines[len(m.lines)-budget:]
}

// formatEvent renders one transcript event with its level color.
func formatEvent(event telemetry.Event) string {
	style := levelInfo
	switch event.Level {
	case telemetry.LevelDebug:
		style = levelDebug
	case telemetry.LevelWarning:
		style = levelWarning
	case telemetry.LevelError:
		style = levelError
	case telemetry.LevelCritical:
		style = levelCritical
	}

	stamp := event.Timestamp.Format("15:04:05")
	label := strings.ToUpper(event.Level.String())
	return fmt.Sprintf("%s %s %s",
		helpStyle.Render(stamp),
		style.Render(fmt.Sprintf("%-8s", label)),
		event.Message,
	)
}
