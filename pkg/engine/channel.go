// ABOUTME: One ear's worth of mixing: attenuation, delay, resampling, effects
// ABOUTME: Accumulates each instance's contribution into the ear output buffer
package engine

import (
	"math"

	"github.com/earshot-audio/earshot-go/pkg/spatial"
)

// canonicalUp is the reference up axis the ear rotations are defined
// against; the listener's actual up re-orients them each frame.
var canonicalUp = spatial.Vec3{Y: 1}

// filterWarmup is the lead of samples run through an active filter
// before the buffer start so its state is not cold.
const filterWarmup = 128

// Channel is one ear. It holds the ear's orientation, its current and
// prior world position, per-channel filter caps, and the output buffer
// it accumulates into each tick. All fields are audio-thread-owned.
type Channel struct {
	name                string
	rotationFromForward spatial.Quat
	stereoSourceOffset  int

	currentPosition spatial.Vec3
	priorPosition   spatial.Vec3
	facing          spatial.Vec3

	lowPassHz  int
	highPassHz int

	out         []int16
	eng         *Engine
	initialized bool
}

// Name returns the ear identity ("left"/"right" by default).
func (ch *Channel) Name() string { return ch.name }

// frameUpdate derives the ear's world position from the listener
// frame: the ear direction is the listener forward rotated by this
// ear's offset rotation, re-oriented from the canonical up axis to the
// actual up via the shortest arc. On teleport the prior position snaps
// to the new one so the delay sweep sees no impossible velocity.
func (ch *Channel) frameUpdate(l listenerFrame) {
	up := l.up
	if up.IsZero() {
		up = canonicalUp
	}
	upAdjust := spatial.ShortestArc(canonicalUp, up)
	earDir := upAdjust.Rotate(ch.rotationFromForward.Rotate(l.forward.Normalize()))

	pos := l.position.Add(earDir.Scale(ch.eng.cfg.HeadWidth / 2))
	if l.teleported || !ch.initialized {
		ch.priorPosition = pos
	} else {
		ch.priorPosition = ch.currentPosition
	}
	ch.currentPosition = pos
	ch.facing = earDir
	ch.initialized = true
}

// PositionalData is the per-tick attenuation and delay for one source
// relative to this ear. Offsets are in output samples and negative:
// farther sounds arrive later.
type PositionalData struct {
	Gain        float64
	OffsetNow   float64
	OffsetPrior float64
}

// GetPositionalData computes directional gain (cosine falloff floored
// at the configured minimum), distance gain (inverse-square beyond the
// linear distance, clamped to 1 inside it), and the propagation-delay
// offsets for the current and prior source positions.
func (ch *Channel) GetPositionalData(sourcePos, priorSourcePos spatial.Vec3) PositionalData {
	cfg := &ch.eng.cfg

	to := sourcePos.Sub(ch.currentPosition)
	d := to.Length()

	distGain := 1.0
	if d > cfg.LinearAudioDistance {
		r := cfg.LinearAudioDistance / d
		distGain = r * r
	}

	dirGain := 1.0
	if d > 1e-9 {
		dot := ch.facing.Dot(to.Scale(1 / d))
		dirGain = (1 + dot) / 2
		if dirGain < cfg.MinDirectionalGain {
			dirGain = cfg.MinDirectionalGain
		}
	}

	rate := float64(cfg.SampleRate)
	dPrior := priorSourcePos.Sub(ch.priorPosition).Length()

	return PositionalData{
		Gain:        distGain * dirGain,
		OffsetNow:   -d / cfg.SpeedOfSound * rate,
		OffsetPrior: -dPrior / cfg.SpeedOfSound * rate,
	}
}

// AddClipToBuffer mixes one instance into this ear's output buffer for
// the current tick. It returns true when this ear's read position,
// including any reverb tail, has passed the end of a non-looping clip.
func (ch *Channel) AddClipToBuffer(inst *Instance) bool {
	c := inst.clip
	samples := c.Samples()
	chans := c.Channels()
	frames := len(samples) / chans

	srcOff := 0
	if chans == 2 {
		srcOff = ch.stereoSourceOffset
	}

	pd := PositionalData{Gain: 1}
	if inst.usePosition {
		pd = ch.GetPositionalData(inst.position, inst.priorPosition)
	}

	cfg := &ch.eng.cfg
	rate := float64(cfg.SampleRate)

	// Squared instance gain models decibel-perceived loudness; the
	// whole multiplier collapses into a 16.16 fixed-point integer.
	mult := int64(cfg.Volume * inst.gain * inst.gain * pd.Gain * 65536)

	reverb := inst.reverbCount > 0
	delayFrames := inst.reverbDelay * rate * inst.pitch
	maxTail := float64(inst.reverbCount) * delayFrames
	tapDecay := (1 - inst.reverbDecay) * (1 - inst.reverbDecay)

	lp := minPositiveHz(inst.lowPassHz, ch.lowPassHz, cfg.LowPassHz)
	hp := maxHz(inst.highPassHz, ch.highPassHz, cfg.HighPassHz)
	filtering := lp > 0 || hp > 0

	var lpFac, hpFac, lpState, hpState float64
	if lp > 0 {
		lpFac = onePoleFactor(lp, cfg.SampleRate)
	}
	if hp > 0 {
		hpFac = onePoleFactor(hp, cfg.SampleRate)
	}
	if filtering {
		// Warm the filter state on the samples leading into this
		// buffer. Reverb taps are omitted from the lead.
		for w := filterWarmup; w >= 1; w-- {
			srcPos := inst.cursor + (pd.OffsetPrior-float64(w))*inst.pitch
			s := readSample(samples, frames, chans, srcOff, int(math.Floor(srcPos)), inst.loop)
			x := float64((int64(s) * mult) >> 16)
			if lp > 0 {
				lpState += lpFac * (x - lpState)
				x = lpState
			}
			if hp > 0 {
				hpState += hpFac * (x - hpState)
			}
		}
	}

	n := len(ch.out)
	dead := false

	for i := 0; i < n; i++ {
		// Sweep the propagation delay across the tick so source or
		// listener movement glides instead of stepping.
		t := float64(i) / float64(n)
		offset := pd.OffsetPrior + (pd.OffsetNow-pd.OffsetPrior)*t
		srcPos := inst.cursor + (float64(i)+offset)*inst.pitch

		if !inst.loop && srcPos-maxTail >= float64(frames) {
			dead = true
			break
		}

		base := int(math.Floor(srcPos))
		frac := srcPos - float64(base)

		cur := readSample(samples, frames, chans, srcOff, base, inst.loop)
		prev := readSample(samples, frames, chans, srcOff, base-1, inst.loop)
		sum := int64(float64(prev) + frac*float64(cur-prev))

		if reverb {
			tapGain := 1.0
			for k := 1; k <= inst.reverbCount; k++ {
				tapGain *= tapDecay
				tb := int(math.Floor(srcPos - float64(k)*delayFrames))
				tap := readSample(samples, frames, chans, srcOff, tb, inst.loop)
				sum += int64(float64(tap) * tapGain)
			}
		}

		scaled := (sum * mult) >> 16

		if reverb && (scaled > 32767 || scaled < -32768) {
			// Reverb pushed the combined signal past full scale:
			// permanently shrink the instance gain so subsequent
			// ticks fit. The sample itself still clamps below.
			excess := math.Abs(float64(scaled)) / 32767
			inst.gain /= math.Sqrt(excess)
			mult = int64(cfg.Volume * inst.gain * inst.gain * pd.Gain * 65536)
		}

		out := scaled
		if filtering {
			x := float64(scaled)
			if lp > 0 {
				lpState += lpFac * (x - lpState)
				x = lpState
			}
			if hp > 0 {
				hpState += hpFac * (x - hpState)
				x = x - hpState
			}
			out = int64(x)
		}

		mixed := int64(ch.out[i]) + out
		if mixed > 32767 {
			mixed = 32767
		} else if mixed < -32768 {
			mixed = -32768
		}
		ch.out[i] = int16(mixed)
	}

	return dead
}

// readSample fetches one source sample for this ear's interleave
// offset. Looping wraps modulo clip length (negative included);
// otherwise out-of-range reads are silence.
func readSample(samples []int16, frames, chans, srcOff, frame int, loop bool) int32 {
	if loop {
		frame %= frames
		if frame < 0 {
			frame += frames
		}
	} else if frame < 0 || frame >= frames {
		return 0
	}
	return int32(samples[frame*chans+srcOff])
}

// onePoleFactor converts a cutoff frequency to the feedback
// coefficient of the one-pole filter y += f*(x-y).
func onePoleFactor(cutoffHz, sampleRate int) float64 {
	return 1 - math.Exp(-2*math.Pi*float64(cutoffHz)/float64(sampleRate))
}

// minPositiveHz returns the lowest positive cutoff, or 0 when none is
// set. Lower low-pass cutoffs are more restrictive.
func minPositiveHz(vals ...int) int {
	min := 0
	for _, v := range vals {
		if v > 0 && (min == 0 || v < min) {
			min = v
		}
	}
	return min
}

// maxHz returns the highest cutoff. Higher high-pass cutoffs are more
// restrictive; 0 means none is set.
func maxHz(vals ...int) int {
	max := 0
	for _, v := range vals {
		if v > max {
			max = v
		}
	}
	return max
}
