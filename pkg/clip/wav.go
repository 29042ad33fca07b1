// ABOUTME: WAV file loading into Clip values
// ABOUTME: PCM-16 only; foreign sample rates are converted at load time
package clip

import (
	"fmt"
	"log"
	"os"

	"github.com/go-audio/wav"
)

// LoadWAV reads a 16-bit PCM WAV file and returns it as a Clip at
// targetRate. Files recorded at a different rate are converted with
// linear interpolation. Compressed or non-16-bit files are rejected.
func LoadWAV(path string, targetRate int) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decoding %q: %w", path, err)
	}
	if dec.BitDepth != 16 || dec.WavAudioFormat != 1 {
		return nil, fmt.Errorf("%q (%d-bit, format %d): %w",
			path, dec.BitDepth, dec.WavAudioFormat, ErrUnsupportedFormat)
	}

	channels := buf.Format.NumChannels
	sourceRate := buf.Format.SampleRate

	samples := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = int16(v)
	}

	if sourceRate != targetRate {
		log.Printf("clip: resampling %q from %dHz to %dHz", path, sourceRate, targetRate)
		samples = Resample(samples, channels, sourceRate, targetRate)
	}

	return FromSamples(samples, channels, targetRate)
}
