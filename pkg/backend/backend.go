// ABOUTME: Output-device contract between the mixing engine and the platform
// ABOUTME: Defines Backend, Device, the buffer source, and the factory
package backend

import (
	"errors"
	"fmt"
)

// Device describes one playback device reported by a backend.
type Device struct {
	ID        string
	Name      string
	IsDefault bool
}

// BufferSource is the engine-side handle SendNextBuffer pulls from:
// one finished mono buffer per ear, all the same length.
type BufferSource interface {
	// ChannelBuffers returns the per-ear output buffers for the tick
	// that just finished mixing. Backends must copy out of them.
	ChannelBuffers() [][]int16

	// SampleRate returns the engine's output rate in Hz.
	SampleRate() int
}

// Backend abstracts a platform audio output. Call order: PreInit,
// optionally ListAllAudioDevices, SelectDeviceAndInit, then MakeCurrent
// from the audio thread followed by PreprocessStep/SendNextBuffer
// cycles until Shutdown.
type Backend interface {
	// PreInit performs one-time setup before device selection.
	PreInit() error

	// SelectDeviceAndInit opens dev, or the platform default when dev
	// is nil, and starts playback.
	SelectDeviceAndInit(dev *Device) error

	// ListAllAudioDevices enumerates playback devices.
	ListAllAudioDevices() ([]Device, error)

	// MakeCurrent binds the calling thread to the backend. A no-op for
	// backends without thread-affinity requirements.
	MakeCurrent()

	// PreprocessStep reports whether the backend can accept another
	// buffer without exceeding its queue depth.
	PreprocessStep() bool

	// SendNextBuffer interleaves the source's ear buffers and submits
	// them to the device.
	SendNextBuffer(src BufferSource) error

	// Shutdown stops playback and releases device resources.
	Shutdown()
}

// Config holds the output format and queue depth shared by all
// backend implementations.
type Config struct {
	SampleRate        int
	Channels          int
	MaxPendingBuffers int
}

// DefaultConfig returns the standard stereo 44.1kHz configuration.
func DefaultConfig() Config {
	return Config{
		SampleRate:        44100,
		Channels:          2,
		MaxPendingBuffers: 3,
	}
}

// ErrUnknownBackend is returned by New for unrecognized backend names.
var ErrUnknownBackend = errors.New("backend: unknown backend name")

// New creates a backend by name: "oto" (default), "malgo", or "null".
func New(name string, cfg Config) (Backend, error) {
	switch name {
	case "", "oto":
		return NewOto(cfg), nil
	case "malgo":
		return NewMalgo(cfg), nil
	case "null":
		return NewNull(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// interleave16 packs the per-ear buffers into little-endian 16-bit
// interleaved frames, reusing dst when it is large enough.
func interleave16(dst []byte, ears [][]int16) []byte {
	if len(ears) == 0 {
		return dst[:0]
	}
	frames := len(ears[0])
	need := frames * len(ears) * 2
	if cap(dst) < need {
		dst = make([]byte, need)
	}
	dst = dst[:need]

	for i := 0; i < frames; i++ {
		for ch, buf := range ears {
			s := buf[i]
			off := (i*len(ears) + ch) * 2
			dst[off] = byte(s)
			dst[off+1] = byte(s >> 8)
		}
	}
	return dst
}
