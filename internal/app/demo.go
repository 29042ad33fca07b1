// ABOUTME: Demo application orchestration
// ABOUTME: Coordinates the engine, an orbiting source, and the TUI
package app

import (
	"context"
	"fmt"
	"log"
	"math"
	"runtime"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/earshot-audio/earshot-go/internal/ui"
	"github.com/earshot-audio/earshot-go/pkg/clip"
	"github.com/earshot-audio/earshot-go/pkg/engine"
	"github.com/earshot-audio/earshot-go/pkg/spatial"
)

// Config holds demo configuration
type Config struct {
	Backend     string
	WavPath     string  // empty plays a generated tone
	OrbitRadius float64 // meters
	OrbitPeriod float64 // seconds per revolution
	SampleRate  int
	UseTUI      bool
}

// Demo drives one looping source in a circle around a static listener.
type Demo struct {
	config  Config
	engine  *engine.Engine
	inst    *engine.Instance
	control *ui.Control
	tuiProg *tea.Program
	ctx     context.Context
	cancel  context.CancelFunc

	mu     sync.Mutex
	pos    spatial.Vec3
	gain   float64
	paused bool
}

// New creates a demo application
func New(config Config) *Demo {
	if config.OrbitRadius <= 0 {
		config.OrbitRadius = 3
	}
	if config.OrbitPeriod <= 0 {
		config.OrbitPeriod = 8
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Demo{
		config: config,
		gain:   1,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start initializes the engine, loads the source, and starts the orbit
// and TUI loops. Blocks until Stop is called or the TUI quits.
func (d *Demo) Start() error {
	cfg := engine.DefaultConfig()
	if d.config.Backend != "" {
		cfg.Backend = d.config.Backend
	} else {
		d.config.Backend = cfg.Backend
	}
	if d.config.SampleRate > 0 {
		cfg.SampleRate = d.config.SampleRate
	}

	d.engine = engine.New(cfg)
	if err := d.engine.Init(); err != nil {
		return fmt.Errorf("engine init failed: %w", err)
	}

	source, err := d.loadSource(cfg.SampleRate)
	if err != nil {
		d.engine.Shutdown()
		return err
	}

	d.inst = engine.NewInstance(source, engine.InstanceParams{
		Loop:        true,
		UsePosition: true,
	})

	if d.config.UseTUI {
		d.control = ui.NewControl()
		tuiProg, err := ui.Run(d.control)
		if err != nil {
			d.engine.Shutdown()
			return fmt.Errorf("failed to start TUI: %w", err)
		}
		d.tuiProg = tuiProg

		go d.tuiProg.Run()
		go d.handleControls()
		go d.statusLoop()
	}

	d.engine.FrameUpdate(spatial.Vec3{}, spatial.Vec3{Z: 1}, spatial.Vec3{Y: 1}, true, 0)
	d.engine.Add(d.inst)

	go d.orbitLoop()

	<-d.ctx.Done()

	return nil
}

// loadSource loads the configured WAV file or falls back to a tone.
func (d *Demo) loadSource(sampleRate int) (*clip.Clip, error) {
	if d.config.WavPath != "" {
		c, err := clip.LoadWAV(d.config.WavPath, sampleRate)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", d.config.WavPath, err)
		}
		log.Printf("Loaded %s: %d frames, %d channel(s)",
			d.config.WavPath, c.Frames(), c.Channels())
		return c, nil
	}

	log.Printf("No WAV file given, playing a 330Hz tone")
	return clip.Tone(330, 2*time.Second, 0.5, sampleRate)
}

// orbitLoop moves the source in a circle on the horizontal plane.
func (d *Demo) orbitLoop() {
	const frameDT = 16 * time.Millisecond

	ticker := time.NewTicker(frameDT)
	defer ticker.Stop()

	angularSpeed := 2 * math.Pi / d.config.OrbitPeriod
	angle := 0.0

	for {
		select {
		case <-ticker.C:
			d.mu.Lock()
			paused := d.paused
			if !paused {
				angle += angularSpeed * frameDT.Seconds()
			}

			r := d.config.OrbitRadius
			pos := spatial.Vec3{X: r * math.Sin(angle), Z: r * math.Cos(angle)}
			vel := spatial.Vec3{X: r * angularSpeed * math.Cos(angle), Z: -r * angularSpeed * math.Sin(angle)}
			if paused {
				vel = spatial.Vec3{}
			}
			d.pos = pos
			d.mu.Unlock()

			d.engine.FrameUpdate(spatial.Vec3{}, spatial.Vec3{Z: 1}, spatial.Vec3{Y: 1}, false, frameDT.Seconds())
			d.engine.SetInstancePosition(d.inst, pos, vel)

		case <-d.ctx.Done():
			return
		}
	}
}

// handleControls processes keyboard events from the TUI
func (d *Demo) handleControls() {
	for {
		select {
		case ev := <-d.control.Events:
			d.mu.Lock()
			switch ev.Kind {
			case ui.EventGainUp:
				d.gain = math.Min(d.gain+0.05, 2)
				d.engine.SetInstanceGain(d.inst, d.gain)
			case ui.EventGainDown:
				d.gain = math.Max(d.gain-0.05, 0)
				d.engine.SetInstanceGain(d.inst, d.gain)
			case ui.EventTogglePause:
				d.paused = !d.paused
			}
			d.mu.Unlock()

		case <-d.control.Quit:
			d.cancel()
			return

		case <-d.ctx.Done():
			return
		}
	}
}

// statusLoop periodically updates the TUI with engine diagnostics
func (d *Demo) statusLoop() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	// Use a slower ticker for expensive runtime stats
	runtimeStatsTicker := time.NewTicker(2 * time.Second)
	defer runtimeStatsTicker.Stop()

	d.tuiProg.Send(ui.StatusMsg{
		BackendName: d.config.Backend,
		DeviceName:  d.deviceName(),
		SampleRate:  d.engine.SampleRate(),
	})

	for {
		select {
		case <-runtimeStatsTicker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			d.tuiProg.Send(ui.StatusMsg{
				Goroutines: runtime.NumGoroutine(),
				MemAlloc:   m.Alloc,
			})

		case <-ticker.C:
			d.mu.Lock()
			pos, gain, paused := d.pos, d.gain, d.paused
			d.mu.Unlock()

			d.tuiProg.Send(ui.StatusMsg{
				HaveScene:  true,
				SourcePos:  pos,
				SourceGain: gain,
				Paused:     paused,

				HaveMix:    true,
				Level:      d.engine.CurrentLevel(),
				SoundCount: d.engine.SoundCount(),
				Dropped:    d.engine.DroppedCommands(),
			})

		case <-d.ctx.Done():
			return
		}
	}
}

// deviceName reports the default playback device when the backend can
// enumerate, empty otherwise.
func (d *Demo) deviceName() string {
	devices, err := d.engine.ListAvailableOutputDevices()
	if err != nil {
		return ""
	}
	for _, dev := range devices {
		if dev.IsDefault {
			return dev.Name
		}
	}
	return ""
}

// Stop stops the demo
func (d *Demo) Stop() {
	d.cancel()

	if d.inst != nil {
		d.engine.StopInstance(d.inst)
	}

	if d.engine != nil {
		d.engine.Shutdown()
	}

	if d.tuiProg != nil {
		d.tuiProg.Quit()
	}
}

// Done reports when the demo has been asked to stop (TUI quit or Stop).
func (d *Demo) Done() <-chan struct{} {
	return d.ctx.Done()
}
