// ABOUTME: Bubbletea model for the engine diagnostics TUI
// ABOUTME: Defines application state and update logic
package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/earshot-audio/earshot-go/pkg/spatial"
)

// Model represents the TUI state
type Model struct {
	// Output
	backendName string
	deviceName  string
	sampleRate  int

	// Mix
	level      float64
	soundCount int
	dropped    int64

	// Scene
	listenerPos spatial.Vec3
	sourcePos   spatial.Vec3
	sourceGain  float64
	paused      bool

	// Debug
	showDebug  bool
	goroutines int
	memAlloc   uint64

	// Dimensions
	width  int
	height int

	control *Control
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderScene()
	s += m.renderMix()

	if m.showDebug {
		s += m.renderDebug()
	}

	s += m.renderHelp()

	return s
}

// renderHeader renders output device status
func (m Model) renderHeader() string {
	device := m.deviceName
	if device == "" {
		device = "default output"
	}

	return fmt.Sprintf(`┌─ Earshot ────────────────────────────────────────────┐
│ Output: %-45s │
│ Format: %dHz stereo%-34s │
├──────────────────────────────────────────────────────┤
`, fmt.Sprintf("%s (%s)", device, m.backendName), m.sampleRate, "")
}

// renderScene renders listener and source positions
func (m Model) renderScene() string {
	state := "orbiting"
	if m.paused {
		state = "paused"
	}

	dist := m.sourcePos.DistanceTo(m.listenerPos)

	s := fmt.Sprintf("│ Source: %-44s │\n",
		fmt.Sprintf("(%+.1f, %+.1f, %+.1f)  %.1fm  %s",
			m.sourcePos.X, m.sourcePos.Y, m.sourcePos.Z, dist, state))
	s += fmt.Sprintf("│ Gain:   [%s] %.2f%-27s │\n",
		renderBar(int(m.sourceGain*100), 200, 10), m.sourceGain, "")

	return s
}

// renderMix renders the level meter and live-set stats
func (m Model) renderMix() string {
	levelBar := renderBar(int(m.level*100), 100, 30)

	return fmt.Sprintf(`├──────────────────────────────────────────────────────┤
│ Level:  [%s] %3d%%%-6s │
│ Sounds: %-3d  Dropped commands: %-20d │
`, levelBar, int(m.level*100), "", m.soundCount, m.dropped)
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return `│ ↑/↓:Gain  space:Pause  d:Debug  q:Quit             │
└──────────────────────────────────────────────────────┘
`
}

// renderDebug renders runtime information
func (m Model) renderDebug() string {
	return fmt.Sprintf(`│ DEBUG:                                               │
│   Goroutines: %-38d │
│   Heap: %-44s │
`, m.goroutines, fmt.Sprintf("%.1f MiB", float64(m.memAlloc)/(1024*1024)))
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.control != nil {
			m.control.RequestQuit()
		}
		return m, tea.Quit
	case "up":
		if m.control != nil {
			m.control.send(Event{Kind: EventGainUp})
		}
	case "down":
		if m.control != nil {
			m.control.send(Event{Kind: EventGainDown})
		}
	case " ":
		if m.control != nil {
			m.control.send(Event{Kind: EventTogglePause})
		}
	case "d":
		m.showDebug = !m.showDebug
	}

	return m, nil
}

// applyStatus updates model from a status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.BackendName != "" {
		m.backendName = msg.BackendName
		m.deviceName = msg.DeviceName
		m.sampleRate = msg.SampleRate
	}
	if msg.HaveScene {
		m.listenerPos = msg.ListenerPos
		m.sourcePos = msg.SourcePos
		m.sourceGain = msg.SourceGain
		m.paused = msg.Paused
	}
	if msg.HaveMix {
		m.level = msg.Level
		m.soundCount = msg.SoundCount
		m.dropped = msg.Dropped
	}
	if msg.Goroutines != 0 {
		m.goroutines = msg.Goroutines
		m.memAlloc = msg.MemAlloc
	}
}

// StatusMsg updates TUI state
type StatusMsg struct {
	BackendName string
	DeviceName  string
	SampleRate  int

	HaveScene   bool
	ListenerPos spatial.Vec3
	SourcePos   spatial.Vec3
	SourceGain  float64
	Paused      bool

	HaveMix    bool
	Level      float64
	SoundCount int
	Dropped    int64

	Goroutines int
	MemAlloc   uint64
}

// renderBar draws a fixed-width meter, clamping overshoot
func renderBar(value, max, width int) string {
	filled := (value * width) / max
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}
