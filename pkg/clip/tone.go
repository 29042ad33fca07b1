// ABOUTME: Procedural clip generators for tests and the demo binary
// ABOUTME: Sine tone and constant-value clips
package clip

import (
	"math"
	"time"
)

// Tone generates a mono sine-wave clip. Amplitude is in [0,1] of
// full scale.
func Tone(frequency float64, duration time.Duration, amplitude float64, sampleRate int) (*Clip, error) {
	frames := int(duration.Seconds() * float64(sampleRate))
	if frames < 1 {
		frames = 1
	}
	samples := make([]int16, frames)
	for i := range samples {
		t := float64(i) / float64(sampleRate)
		samples[i] = int16(math.Sin(2*math.Pi*frequency*t) * 32767.0 * amplitude)
	}
	return FromSamples(samples, 1, sampleRate)
}

// Constant generates a clip holding value on every sample. Useful for
// verifying gain and filter behavior.
func Constant(value int16, frames, channels, sampleRate int) (*Clip, error) {
	samples := make([]int16, frames*channels)
	for i := range samples {
		samples[i] = value
	}
	return FromSamples(samples, channels, sampleRate)
}
