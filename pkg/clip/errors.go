// ABOUTME: Sentinel errors for clip construction and loading
// ABOUTME: Small fixed vocabulary checked by callers with errors.Is
package clip

import "errors"

var (
	// ErrNoSamples is returned when a clip would contain no audio.
	ErrNoSamples = errors.New("clip: no samples")

	// ErrBadChannelCount is returned for channel counts other than 1 or 2.
	ErrBadChannelCount = errors.New("clip: channel count must be 1 or 2")

	// ErrUnalignedSamples is returned when the sample count is not a
	// multiple of the channel count.
	ErrUnalignedSamples = errors.New("clip: sample count not aligned to channel count")

	// ErrBadSampleRate is returned for non-positive sample rates.
	ErrBadSampleRate = errors.New("clip: sample rate must be positive")

	// ErrUnsupportedFormat is returned for WAV files that are not 16-bit PCM.
	ErrUnsupportedFormat = errors.New("clip: only 16-bit PCM WAV is supported")
)
