// ABOUTME: Tests for per-ear mixing: attenuation, delay, resampling, effects
// ABOUTME: Drives mixTick directly against the null backend configuration
package engine

import (
	"testing"

	"github.com/earshot-audio/earshot-go/pkg/clip"
	"github.com/earshot-audio/earshot-go/pkg/spatial"
)

// newTestEngine builds an engine with channels and pool ready but no
// audio thread, so tests can step ticks by hand.
func newTestEngine(t *testing.T, mutate func(*Config)) *Engine {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Backend = "null"
	if mutate != nil {
		mutate(&cfg)
	}
	e := New(cfg)
	e.initMixer()
	return e
}

func mustConstant(t *testing.T, value int16, frames int) *clip.Clip {
	t.Helper()
	c, err := clip.Constant(value, frames, 1, 44100)
	if err != nil {
		t.Fatalf("Constant: %v", err)
	}
	return c
}

func frontListener() (spatial.Vec3, spatial.Vec3, spatial.Vec3) {
	return spatial.Vec3{}, spatial.Vec3{Z: 1}, spatial.Vec3{Y: 1}
}

func TestDirectionalFalloff(t *testing.T) {
	e := newTestEngine(t, nil)
	left := e.channels[0]
	left.frameUpdate(listenerFrame{forward: spatial.Vec3{Z: 1}, up: spatial.Vec3{Y: 1}})

	// The left ear faces +X. All sources sit inside the linear
	// distance so only directional gain applies.
	front := left.GetPositionalData(spatial.Vec3{X: 1}, spatial.Vec3{X: 1})
	if front.Gain < 0.999 || front.Gain > 1.001 {
		t.Errorf("source in front of ear: gain %v, want 1", front.Gain)
	}

	behind := left.GetPositionalData(spatial.Vec3{X: -1}, spatial.Vec3{X: -1})
	if behind.Gain != e.cfg.MinDirectionalGain {
		t.Errorf("source behind ear: gain %v, want floor %v", behind.Gain, e.cfg.MinDirectionalGain)
	}

	side := left.GetPositionalData(spatial.Vec3{Z: 1}, spatial.Vec3{Z: 1})
	if side.Gain <= behind.Gain || side.Gain >= front.Gain {
		t.Errorf("side gain %v not between floor %v and front %v", side.Gain, behind.Gain, front.Gain)
	}

	if front.OffsetNow >= 0 {
		t.Errorf("time offset should be negative, got %v", front.OffsetNow)
	}
}

func TestDistanceAttenuation(t *testing.T) {
	// A huge speed of sound removes the propagation delay so gain can
	// be read directly off the buffer.
	e := newTestEngine(t, func(c *Config) { c.SpeedOfSound = 1e12 })

	far := NewInstance(mustConstant(t, 1000, 44100), InstanceParams{
		Position:    spatial.Vec3{Z: 20},
		UsePosition: true,
	})
	pos, fwd, up := frontListener()
	e.FrameUpdate(pos, fwd, up, true, 0.01)
	e.Add(far)
	e.mixTick()

	// Inverse square: (2/20)^2 = 0.01, directional ~0.5 straight ahead.
	got := e.currentSet[0][200]
	if got < 3 || got > 7 {
		t.Errorf("sample at 20m = %d, want ~5", got)
	}

	e2 := newTestEngine(t, func(c *Config) { c.SpeedOfSound = 1e12 })
	near := NewInstance(mustConstant(t, 1000, 44100), InstanceParams{
		Position:    spatial.Vec3{Z: 1},
		UsePosition: true,
	})
	e2.FrameUpdate(pos, fwd, up, true, 0.01)
	e2.Add(near)
	e2.mixTick()

	// Inside the linear distance gain clamps to 1; only directional
	// attenuation (~0.46 at this geometry) remains.
	gotNear := e2.currentSet[0][200]
	if gotNear < 400 || gotNear > 520 {
		t.Errorf("sample at 1m = %d, want ~455", gotNear)
	}

	if int(gotNear) < 50*int(got) {
		t.Errorf("near sample %d not ~100x far sample %d", gotNear, got)
	}
}

func TestReadSampleLoopWrap(t *testing.T) {
	samples := make([]int16, 10)
	for i := range samples {
		samples[i] = int16(i)
	}

	if v := readSample(samples, 10, 1, 0, -1, true); v != 9 {
		t.Errorf("negative wrap: got %d, want 9", v)
	}
	if v := readSample(samples, 10, 1, 0, 12, true); v != 2 {
		t.Errorf("positive wrap: got %d, want 2", v)
	}
	if v := readSample(samples, 10, 1, 0, -1, false); v != 0 {
		t.Errorf("non-loop before start: got %d, want 0", v)
	}
	if v := readSample(samples, 10, 1, 0, 10, false); v != 0 {
		t.Errorf("non-loop past end: got %d, want 0", v)
	}
}

func TestLoopingInstanceNeverExhausts(t *testing.T) {
	e := newTestEngine(t, nil)
	inst := NewInstance(mustConstant(t, 1000, 100), InstanceParams{Loop: true})
	e.Add(inst)

	for tick := 0; tick < 3; tick++ {
		e.mixTick()
	}

	if inst.State() != Playing {
		t.Fatalf("looping instance state = %v, want playing", inst.State())
	}
	if e.SoundCount() != 1 {
		t.Errorf("SoundCount = %d, want 1", e.SoundCount())
	}
	// The 100-frame clip wrapped several times inside each tick.
	for i, v := range e.currentSet[0] {
		if v != 1000 {
			t.Fatalf("sample %d = %d, want 1000 (wrap should be seamless)", i, v)
		}
	}
}

func TestStereoClipRoutesPerEar(t *testing.T) {
	// Interleaved stereo: sub-channel 0 = 1000, sub-channel 1 = 2000.
	samples := make([]int16, 2*44100)
	for i := 0; i < len(samples); i += 2 {
		samples[i] = 1000
		samples[i+1] = 2000
	}
	c, err := clip.FromSamples(samples, 2, 44100)
	if err != nil {
		t.Fatalf("FromSamples: %v", err)
	}

	e := newTestEngine(t, nil)
	e.Add(NewInstance(c, InstanceParams{}))
	e.mixTick()

	left, right := e.currentSet[0], e.currentSet[1]
	// Sample 0 interpolates from before the clip start and reads
	// silence; every later sample carries the ear's sub-channel.
	for i := 1; i < len(left); i++ {
		if left[i] != 1000 {
			t.Fatalf("left sample %d = %d, want 1000 (sub-channel 0)", i, left[i])
		}
		if right[i] != 2000 {
			t.Fatalf("right sample %d = %d, want 2000 (sub-channel 1)", i, right[i])
		}
	}
}

func TestNonLoopingInstanceExhausts(t *testing.T) {
	e := newTestEngine(t, nil)
	inst := NewInstance(mustConstant(t, 1000, 100), InstanceParams{})
	e.Add(inst)
	e.mixTick()

	if inst.State() != Done {
		t.Errorf("state = %v, want done", inst.State())
	}
	if e.SoundCount() != 0 {
		t.Errorf("SoundCount = %d, want 0", e.SoundCount())
	}
	if len(e.playing) != 0 {
		t.Errorf("live set should be empty, has %d", len(e.playing))
	}
}

func TestPitchDoublesReadRate(t *testing.T) {
	ramp := make([]int16, 2000)
	for i := range ramp {
		ramp[i] = int16(i)
	}
	c, err := clip.FromSamples(ramp, 1, 44100)
	if err != nil {
		t.Fatalf("FromSamples: %v", err)
	}

	normal := newTestEngine(t, nil)
	i1 := NewInstance(c, InstanceParams{Pitch: 1})
	normal.Add(i1)
	normal.mixTick()

	fast := newTestEngine(t, nil)
	i2 := NewInstance(c, InstanceParams{Pitch: 2})
	fast.Add(i2)
	fast.mixTick()

	if got := normal.currentSet[0][10]; got != 9 {
		t.Errorf("pitch 1 sample 10 = %d, want 9", got)
	}
	if got := fast.currentSet[0][10]; got != 19 {
		t.Errorf("pitch 2 sample 10 = %d, want 19", got)
	}

	if i1.cursor != 441 {
		t.Errorf("pitch 1 cursor = %v, want 441", i1.cursor)
	}
	if i2.cursor != 882 {
		t.Errorf("pitch 2 cursor = %v, want 882", i2.cursor)
	}
}

func TestReverbTapDecay(t *testing.T) {
	impulse := make([]int16, 2000)
	impulse[0] = 8192
	c, err := clip.FromSamples(impulse, 1, 44100)
	if err != nil {
		t.Fatalf("FromSamples: %v", err)
	}

	e := newTestEngine(t, nil)
	inst := NewInstance(c, InstanceParams{
		ReverbDelay: 100.0 / 44100.0,
		ReverbCount: 2,
		ReverbDecay: 0.5,
	})
	e.Add(inst)
	e.mixTick()

	out := e.currentSet[0]
	if out[1] != 8192 {
		t.Errorf("direct impulse = %d, want 8192", out[1])
	}
	// Tap k scales by (1-d)^(2k): 0.25 and 0.0625 for d=0.5. Float
	// rounding in the delay conversion may land a tap one sample off.
	if got := windowSum(out, 99, 102); got != 2048 {
		t.Errorf("first tap = %d, want 2048", got)
	}
	if got := windowSum(out, 199, 203); got != 512 {
		t.Errorf("second tap = %d, want 512", got)
	}
}

func windowSum(buf []int16, lo, hi int) int {
	sum := 0
	for i := lo; i < hi; i++ {
		sum += int(buf[i])
	}
	return sum
}

func TestReverbOverflowShrinksGain(t *testing.T) {
	e := newTestEngine(t, nil)
	inst := NewInstance(mustConstant(t, 20000, 44100), InstanceParams{
		ReverbDelay: 100.0 / 44100.0,
		ReverbCount: 2,
		ReverbDecay: 0.1,
	})
	e.Add(inst)
	e.mixTick()

	if inst.gain >= 1 {
		t.Errorf("overflowing reverb should shrink gain, still %v", inst.gain)
	}
	for i, v := range e.currentSet[0] {
		if v > 32767 || v < -32768 {
			t.Fatalf("sample %d out of range: %d", i, v)
		}
	}
}

func TestLowPassPassesDC(t *testing.T) {
	e := newTestEngine(t, nil)
	inst := NewInstance(mustConstant(t, 1000, 44100), InstanceParams{LowPassHz: 1000})
	e.Add(inst)
	e.mixTick() // accepts the instance
	inst.cursor = 10000
	e.mixTick()

	// DC passes a low-pass with steady-state gain 1; warm-up means no
	// ramp at buffer start.
	for i, v := range e.currentSet[0] {
		if v < 998 || v > 1001 {
			t.Fatalf("sample %d = %d, want ~1000 (DC through low-pass)", i, v)
		}
	}
}

func TestHighPassBlocksDC(t *testing.T) {
	e := newTestEngine(t, nil)
	inst := NewInstance(mustConstant(t, 1000, 44100), InstanceParams{HighPassHz: 500})
	e.Add(inst)
	e.mixTick()
	inst.cursor = 10000
	e.mixTick()

	for i, v := range e.currentSet[0] {
		if v > 3 || v < -3 {
			t.Fatalf("sample %d = %d, want ~0 (DC blocked by high-pass)", i, v)
		}
	}
}

func TestChannelTeleportSnapsPriorPosition(t *testing.T) {
	e := newTestEngine(t, nil)
	ch := e.channels[0]

	ch.frameUpdate(listenerFrame{forward: spatial.Vec3{Z: 1}, up: spatial.Vec3{Y: 1}})
	ch.frameUpdate(listenerFrame{
		position:   spatial.Vec3{X: 500},
		forward:    spatial.Vec3{Z: 1},
		up:         spatial.Vec3{Y: 1},
		teleported: true,
	})

	if ch.priorPosition != ch.currentPosition {
		t.Errorf("teleport should snap prior position: prior %+v, current %+v",
			ch.priorPosition, ch.currentPosition)
	}
}

func TestFilterCapCombination(t *testing.T) {
	if got := minPositiveHz(0, 2000, 500); got != 500 {
		t.Errorf("minPositiveHz = %d, want 500", got)
	}
	if got := minPositiveHz(0, 0, 0); got != 0 {
		t.Errorf("minPositiveHz all unset = %d, want 0", got)
	}
	if got := maxHz(100, 0, 700); got != 700 {
		t.Errorf("maxHz = %d, want 700", got)
	}
}
