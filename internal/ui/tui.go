// ABOUTME: TUI initialization and control
// ABOUTME: Wraps bubbletea program and the keyboard event channel
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// EventKind identifies a keyboard action forwarded to the application.
type EventKind int

const (
	EventGainUp EventKind = iota
	EventGainDown
	EventTogglePause
)

// Event is one keyboard action.
type Event struct {
	Kind EventKind
}

// Control carries keyboard events and the quit request from the TUI to
// the application.
type Control struct {
	Events chan Event
	Quit   chan struct{}
}

// NewControl creates a control handler
func NewControl() *Control {
	return &Control{
		Events: make(chan Event, 10),
		Quit:   make(chan struct{}, 1),
	}
}

// send forwards an event without blocking the render loop
func (c *Control) send(ev Event) {
	select {
	case c.Events <- ev:
	default:
	}
}

// RequestQuit signals the application to shut down. Safe to call more
// than once.
func (c *Control) RequestQuit() {
	select {
	case c.Quit <- struct{}{}:
	default:
	}
}

// NewModel creates a new TUI model
func NewModel(control *Control) Model {
	return Model{
		sampleRate: 44100,
		sourceGain: 1,
		control:    control,
	}
}

// Run builds the TUI program; the caller starts it with Program.Run.
func Run(control *Control) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(control), tea.WithAltScreen())
	return p, nil
}
