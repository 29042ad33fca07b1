// ABOUTME: Live playing-sound state owned by the audio thread
// ABOUTME: Simulation code reads the state enum and enqueues updates only
package engine

import (
	"sync/atomic"

	"github.com/earshot-audio/earshot-go/pkg/clip"
	"github.com/earshot-audio/earshot-go/pkg/spatial"
	"github.com/google/uuid"
)

// State is the lifecycle state of a playing instance.
type State int32

const (
	// Waiting: created but not yet accepted by the audio thread.
	Waiting State = iota
	// Playing: mixed every tick.
	Playing
	// Stop: requested to stop; removed on the next tick.
	Stop
	// Done: exhausted or stopped; removed from the live set.
	Done
)

func (s State) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Playing:
		return "playing"
	case Stop:
		return "stop"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// InstanceParams configures a new instance. Zero values for Gain and
// Pitch default to 1. LowPassHz/HighPassHz of 0 mean no filtering.
type InstanceParams struct {
	Loop        bool
	Gain        float64
	Pitch       float64
	Position    spatial.Vec3
	Velocity    spatial.Vec3
	UsePosition bool
	ReverbDelay float64 // seconds between taps
	ReverbCount int
	ReverbDecay float64 // in [0,1)
	LowPassHz   int
	HighPassHz  int
}

// Instance is one currently-playing sound. All fields except the state
// enum are owned by the audio thread: the simulation thread influences
// them exclusively through the engine's enqueue methods and must never
// write them directly.
type Instance struct {
	id   string
	clip *clip.Clip

	state atomic.Int32

	// Audio-thread-owned mixing state.
	cursor        float64 // fractional frame index into the clip
	loop          bool
	position      spatial.Vec3
	priorPosition spatial.Vec3
	velocity      spatial.Vec3
	gain          float64
	pitch         float64
	usePosition   bool
	reverbDelay   float64
	reverbCount   int
	reverbDecay   float64
	lowPassHz     int
	highPassHz    int
}

// NewInstance creates an instance in the Waiting state. Callers must
// validate parameters before Add: non-positive pitch is a contract
// violation the mixer does not defend against.
func NewInstance(c *clip.Clip, p InstanceParams) *Instance {
	if p.Gain == 0 {
		p.Gain = 1
	}
	if p.Pitch == 0 {
		p.Pitch = 1
	}

	inst := &Instance{
		id:            uuid.NewString(),
		clip:          c,
		loop:          p.Loop,
		position:      p.Position,
		priorPosition: p.Position,
		velocity:      p.Velocity,
		gain:          p.Gain,
		pitch:         p.Pitch,
		usePosition:   p.UsePosition,
		reverbDelay:   p.ReverbDelay,
		reverbCount:   p.ReverbCount,
		reverbDecay:   p.ReverbDecay,
		lowPassHz:     p.LowPassHz,
		highPassHz:    p.HighPassHz,
	}
	inst.state.Store(int32(Waiting))
	return inst
}

// ID returns the instance's unique identifier.
func (i *Instance) ID() string { return i.id }

// Clip returns the clip this instance plays.
func (i *Instance) Clip() *clip.Clip { return i.clip }

// State returns the current lifecycle state. Safe from any thread.
func (i *Instance) State() State {
	return State(i.state.Load())
}

func (i *Instance) setState(s State) {
	i.state.Store(int32(s))
}
