// ABOUTME: Immutable PCM clip resource consumed by the mixing engine
// ABOUTME: Holds interleaved 16-bit samples plus channel count and rate
package clip

import "time"

// Clip is an immutable chunk of decoded 16-bit PCM audio. The mixer
// reads it concurrently from the audio thread, so the sample data must
// never be modified after construction.
type Clip struct {
	samples    []int16
	channels   int
	sampleRate int
}

// FromSamples wraps interleaved 16-bit samples as a Clip. The sample
// slice is retained as-is; callers must not modify it afterwards.
func FromSamples(samples []int16, channels, sampleRate int) (*Clip, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	if channels != 1 && channels != 2 {
		return nil, ErrBadChannelCount
	}
	if len(samples)%channels != 0 {
		return nil, ErrUnalignedSamples
	}
	if sampleRate <= 0 {
		return nil, ErrBadSampleRate
	}
	return &Clip{samples: samples, channels: channels, sampleRate: sampleRate}, nil
}

// Samples returns the interleaved sample data. Read-only.
func (c *Clip) Samples() []int16 { return c.samples }

// Channels returns the interleaved channel count (1 or 2).
func (c *Clip) Channels() int { return c.channels }

// SampleRate returns the clip's sample rate in Hz.
func (c *Clip) SampleRate() int { return c.sampleRate }

// Frames returns the number of per-channel sample frames.
func (c *Clip) Frames() int { return len(c.samples) / c.channels }

// Duration returns the playback length at the clip's native rate.
func (c *Clip) Duration() time.Duration {
	return time.Duration(c.Frames()) * time.Second / time.Duration(c.sampleRate)
}
