// ABOUTME: The mixing engine: audio thread loop, live set, sync protocol
// ABOUTME: Owns channels, buffers, the backend, and the public surface
package engine

import (
	"fmt"
	"log"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/earshot-audio/earshot-go/pkg/backend"
	"github.com/earshot-audio/earshot-go/pkg/spatial"
)

// Config holds engine-level parameters. Zero fields are filled from
// DefaultConfig by New.
type Config struct {
	SampleRate    int
	BufferSamples int // per-ear samples mixed per tick
	PoolSize      int // reusable buffer sets; bounds in-flight buffers
	Backend       string
	Device        *backend.Device

	Volume                 float64
	SpeedOfSound           float64 // meters per second
	HeadWidth              float64 // meters between the ears
	LinearAudioDistance    float64 // no distance falloff inside this radius
	MinDirectionalGain     float64 // floor for sounds behind an ear
	TeleportSpeedThreshold float64 // m/s; faster listener moves count as teleports

	LowPassHz  int // engine-wide filter caps, 0 = none
	HighPassHz int

	QueueLimit int // max pending sync commands
}

// DefaultConfig returns the standard configuration: stereo 44.1kHz,
// 10ms ticks.
func DefaultConfig() Config {
	return Config{
		SampleRate:             44100,
		BufferSamples:          441,
		PoolSize:               3,
		Backend:                "oto",
		Volume:                 1.0,
		SpeedOfSound:           343,
		HeadWidth:              0.18,
		LinearAudioDistance:    2,
		MinDirectionalGain:     0.25,
		TeleportSpeedThreshold: 100,
		QueueLimit:             1024,
	}
}

// Engine mixes every playing instance into two ear buffers on a
// dedicated audio thread and hands the result to an output backend.
// The simulation thread talks to it exclusively through the enqueue
// methods (Add, FrameUpdate, SetInstance*, StopInstance, SeekInstance).
type Engine struct {
	cfg     Config
	backend backend.Backend
	queue   *syncQueue

	// Audio-thread state, guarded by mu for the drain-and-mix phase.
	mu              sync.Mutex
	channels        []*Channel
	playing         []*Instance
	listener        listenerFrame
	pendingTeleport bool
	currentSet      [][]int16
	scratch         []syncUpdate
	pool            *bufferPool

	running      atomic.Bool
	done         chan struct{}
	shutdownOnce sync.Once

	level      atomic.Uint64 // Float64bits of the 0..1 peak meter
	soundCount atomic.Int32

	// Producer-side listener tracking for teleport reclassification.
	prodMu          sync.Mutex
	lastListenerPos spatial.Vec3
	haveListenerPos bool
}

// New creates an engine. Call Init to start the audio thread.
func New(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = def.SampleRate
	}
	if cfg.BufferSamples <= 0 {
		cfg.BufferSamples = def.BufferSamples
	}
	if cfg.PoolSize < 2 {
		cfg.PoolSize = def.PoolSize
	}
	if cfg.Volume == 0 {
		cfg.Volume = def.Volume
	}
	if cfg.SpeedOfSound <= 0 {
		cfg.SpeedOfSound = def.SpeedOfSound
	}
	if cfg.HeadWidth <= 0 {
		cfg.HeadWidth = def.HeadWidth
	}
	if cfg.LinearAudioDistance <= 0 {
		cfg.LinearAudioDistance = def.LinearAudioDistance
	}
	if cfg.MinDirectionalGain <= 0 {
		cfg.MinDirectionalGain = def.MinDirectionalGain
	}
	if cfg.TeleportSpeedThreshold <= 0 {
		cfg.TeleportSpeedThreshold = def.TeleportSpeedThreshold
	}
	if cfg.QueueLimit <= 0 {
		cfg.QueueLimit = def.QueueLimit
	}

	return &Engine{
		cfg:   cfg,
		queue: newSyncQueue(cfg.QueueLimit),
	}
}

// Init selects and opens the backend, builds the default left/right
// channels if none exist, pre-allocates the buffer pool, and starts
// the audio thread.
func (e *Engine) Init() error {
	if e.running.Load() {
		return fmt.Errorf("engine already initialized")
	}

	b, err := backend.New(e.cfg.Backend, backend.Config{
		SampleRate:        e.cfg.SampleRate,
		Channels:          2,
		MaxPendingBuffers: e.cfg.PoolSize,
	})
	if err != nil {
		return err
	}
	if err := b.PreInit(); err != nil {
		return fmt.Errorf("backend pre-init failed: %w", err)
	}
	if err := b.SelectDeviceAndInit(e.cfg.Device); err != nil {
		return fmt.Errorf("backend init failed: %w", err)
	}
	e.backend = b

	e.initMixer()

	e.done = make(chan struct{})
	e.running.Store(true)
	go e.run()

	log.Printf("audio engine started: %dHz, %d samples/tick, %d channels, backend=%s",
		e.cfg.SampleRate, e.cfg.BufferSamples, len(e.channels), e.cfg.Backend)

	return nil
}

// initMixer builds the default ear channels, the buffer pool, and the
// initial listener frame.
func (e *Engine) initMixer() {
	if len(e.channels) == 0 {
		e.channels = []*Channel{
			{name: "left", rotationFromForward: spatial.FromAxisAngle(canonicalUp, math.Pi/2), stereoSourceOffset: 0, eng: e},
			{name: "right", rotationFromForward: spatial.FromAxisAngle(canonicalUp, -math.Pi/2), stereoSourceOffset: 1, eng: e},
		}
	}
	e.pool = newBufferPool(e.cfg.PoolSize, len(e.channels), e.cfg.BufferSamples)
	e.listener = listenerFrame{forward: spatial.Vec3{Z: 1}, up: canonicalUp}
}

// Shutdown stops the audio thread cooperatively and waits for it to
// release backend resources. May take up to one loop period.
func (e *Engine) Shutdown() {
	if e.done == nil {
		// Never initialized; nothing to stop, and the Once must stay
		// unconsumed for a Shutdown after a later Init.
		return
	}
	e.shutdownOnce.Do(func() {
		e.running.Store(false)
		<-e.done
		log.Printf("audio engine stopped")
	})
}

// run is the dedicated audio thread. Any panic escaping a tick is
// logged and stops audio output permanently for this engine; the rest
// of the process keeps running.
func (e *Engine) run() {
	// Keep the goroutine pinned so backends with thread-affinity
	// requirements see one stable OS thread, including during their
	// Shutdown.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	defer close(e.done)
	defer e.backend.Shutdown()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("audio thread fault, output stopped until re-init: %v", r)
		}
	}()

	e.backend.MakeCurrent()

	period := time.Duration(e.cfg.BufferSamples) * time.Second / time.Duration(e.cfg.SampleRate)

	for e.running.Load() {
		start := time.Now()

		if !e.backend.PreprocessStep() {
			// Backend queue is full; back off instead of piling up.
			time.Sleep(period / 4)
			continue
		}

		e.mixTick()

		if err := e.backend.SendNextBuffer(e); err != nil {
			log.Printf("buffer submission failed, audio stopped: %v", err)
			return
		}

		// time.Since uses the monotonic clock.
		if sleep := period - time.Since(start); sleep > 0 {
			time.Sleep(sleep)
		}
	}
}

// mixTick drains the sync queue, updates ear positions, and mixes
// every playing instance into the tick's buffer set. The whole phase
// holds the engine lock so level/diagnostic readers see a consistent
// tick.
func (e *Engine) mixTick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.scratch = e.queue.drain(e.scratch)
	for i := range e.scratch {
		e.apply(&e.scratch[i])
	}

	set := e.pool.nextSet()
	e.currentSet = set
	for i, ch := range e.channels {
		ch.out = set[i]
		clear(ch.out)
		l := e.listener
		l.teleported = e.pendingTeleport
		ch.frameUpdate(l)
	}
	e.pendingTeleport = false

	tickDT := float64(e.cfg.BufferSamples) / float64(e.cfg.SampleRate)
	alive := e.playing[:0]
	for _, inst := range e.playing {
		switch inst.State() {
		case Playing:
			dead := true
			for _, ch := range e.channels {
				d := ch.AddClipToBuffer(inst)
				dead = dead && d
			}
			inst.cursor += float64(e.cfg.BufferSamples) * inst.pitch
			inst.priorPosition = inst.position
			inst.position = inst.position.Add(inst.velocity.Scale(tickDT))
			if dead {
				inst.setState(Done)
			} else {
				alive = append(alive, inst)
			}
		case Stop:
			inst.setState(Done)
		}
	}
	old := e.playing
	e.playing = alive
	for i := len(alive); i < len(old); i++ {
		old[i] = nil
	}

	e.soundCount.Store(int32(len(alive)))
	e.publishLevel(set)
}

// apply executes one drained command. Runs with the engine lock held.
func (e *Engine) apply(u *syncUpdate) {
	switch u.kind {
	case updateNewInstance:
		if u.inst.State() != Waiting {
			return
		}
		u.inst.setState(Playing)
		e.playing = append(e.playing, u.inst)
	case updateListener:
		e.listener = u.listener
		e.pendingTeleport = e.pendingTeleport || u.listener.teleported
	case updatePosition:
		u.inst.priorPosition = u.inst.position
		u.inst.position = u.position
		u.inst.velocity = u.velocity
	case updateGain:
		u.inst.gain = u.value
	case updatePitch:
		u.inst.pitch = u.value
	case updateStop:
		if u.inst.State() == Playing {
			u.inst.setState(Stop)
		}
	case updateSeek:
		u.inst.cursor = float64(u.frame)
	case updateChannelFilter:
		for _, ch := range e.channels {
			if ch.name == u.name {
				ch.lowPassHz = u.lowHz
				ch.highPassHz = u.highHz
			}
		}
	}
}

// publishLevel computes the peak across all ear buffers and stores it
// for CurrentLevel readers.
func (e *Engine) publishLevel(set [][]int16) {
	var peak int32
	for _, buf := range set {
		for _, s := range buf {
			v := int32(s)
			if v < 0 {
				v = -v
			}
			if v > peak {
				peak = v
			}
		}
	}
	e.level.Store(math.Float64bits(float64(peak) / 32768))
}

// Add schedules an instance for playback. Idempotent for instances
// already playing; never blocks.
func (e *Engine) Add(inst *Instance) {
	if inst == nil || inst.State() == Playing {
		return
	}
	e.queue.enqueue(syncUpdate{kind: updateNewInstance, inst: inst})
}

// FrameUpdate submits the listener's frame state. When the implied
// speed since the previous frame exceeds the teleport threshold the
// update is reclassified as a teleport so the interaural delay sweep
// does not whoosh across an impossible distance.
func (e *Engine) FrameUpdate(position, forward, up spatial.Vec3, teleported bool, deltaTime float64) {
	e.prodMu.Lock()
	if !teleported && deltaTime > 0 && e.haveListenerPos {
		speed := position.Sub(e.lastListenerPos).Length() / deltaTime
		if speed > e.cfg.TeleportSpeedThreshold {
			teleported = true
		}
	}
	e.lastListenerPos = position
	e.haveListenerPos = true
	e.prodMu.Unlock()

	e.queue.enqueue(syncUpdate{kind: updateListener, listener: listenerFrame{
		position:   position,
		forward:    forward,
		up:         up,
		teleported: teleported,
		deltaTime:  deltaTime,
	}})
}

// SetInstancePosition updates a playing instance's position and
// velocity on the next tick.
func (e *Engine) SetInstancePosition(inst *Instance, position, velocity spatial.Vec3) {
	e.queue.enqueue(syncUpdate{kind: updatePosition, inst: inst, position: position, velocity: velocity})
}

// SetInstanceGain updates a playing instance's gain on the next tick.
func (e *Engine) SetInstanceGain(inst *Instance, gain float64) {
	e.queue.enqueue(syncUpdate{kind: updateGain, inst: inst, value: gain})
}

// SetInstancePitch updates a playing instance's pitch on the next tick.
func (e *Engine) SetInstancePitch(inst *Instance, pitch float64) {
	e.queue.enqueue(syncUpdate{kind: updatePitch, inst: inst, value: pitch})
}

// StopInstance asks a playing instance to stop; it is removed from the
// live set on the next tick.
func (e *Engine) StopInstance(inst *Instance) {
	e.queue.enqueue(syncUpdate{kind: updateStop, inst: inst})
}

// SeekInstance moves an instance's read cursor to the given frame on
// the next tick.
func (e *Engine) SeekInstance(inst *Instance, frame int) {
	e.queue.enqueue(syncUpdate{kind: updateSeek, inst: inst, frame: frame})
}

// SetChannelFilter sets one ear channel's filter caps on the next
// tick. They combine with the engine-wide and per-instance cutoffs;
// the most restrictive wins. Zero clears a cap.
func (e *Engine) SetChannelFilter(name string, lowPassHz, highPassHz int) {
	e.queue.enqueue(syncUpdate{kind: updateChannelFilter, name: name, lowHz: lowPassHz, highHz: highPassHz})
}

// CurrentLevel returns the most recent tick's peak meter in 0..1.
func (e *Engine) CurrentLevel() float64 {
	return math.Float64frombits(e.level.Load())
}

// SoundCount returns the number of live instances after the most
// recent tick.
func (e *Engine) SoundCount() int {
	return int(e.soundCount.Load())
}

// DroppedCommands returns how many sync commands have been rejected
// because the queue was full.
func (e *Engine) DroppedCommands() int64 {
	return e.queue.droppedCount()
}

// ListAvailableOutputDevices enumerates the active backend's playback
// devices. Requires Init.
func (e *Engine) ListAvailableOutputDevices() ([]backend.Device, error) {
	if e.backend == nil {
		return nil, fmt.Errorf("engine not initialized")
	}
	return e.backend.ListAllAudioDevices()
}

// Channels returns the engine's ear channels for diagnostics.
func (e *Engine) Channels() []*Channel {
	return e.channels
}

// ChannelBuffers implements backend.BufferSource: the per-ear buffers
// mixed by the most recent tick. Audio thread only.
func (e *Engine) ChannelBuffers() [][]int16 { return e.currentSet }

// SampleRate implements backend.BufferSource.
func (e *Engine) SampleRate() int { return e.cfg.SampleRate }
