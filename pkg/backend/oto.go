// ABOUTME: Oto-based output backend, the cross-platform default
// ABOUTME: Feeds a persistent oto player from the pending-buffer queue
package backend

import (
	"fmt"
	"log"

	"github.com/ebitengine/oto/v3"
)

// Oto plays through the oto library. Device selection is not supported
// by oto; the platform default output is always used.
type Oto struct {
	cfg     Config
	otoCtx  *oto.Context
	player  *oto.Player
	queue   *chunkQueue
	scratch []byte
	ready   bool
}

// NewOto creates an oto backend with the given output format.
func NewOto(cfg Config) *Oto {
	return &Oto{
		cfg:   cfg,
		queue: newChunkQueue(),
	}
}

// PreInit is a no-op; oto performs setup at context creation.
func (o *Oto) PreInit() error { return nil }

// SelectDeviceAndInit opens the default output and starts playback.
// Requests for a specific device are logged and ignored.
func (o *Oto) SelectDeviceAndInit(dev *Device) error {
	if dev != nil && !dev.IsDefault {
		log.Printf("oto backend cannot select device %q, using platform default", dev.Name)
	}

	op := &oto.NewContextOptions{
		SampleRate:   o.cfg.SampleRate,
		ChannelCount: o.cfg.Channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	o.otoCtx = ctx
	o.player = ctx.NewPlayer(o.queue)
	o.player.Play()
	o.ready = true

	log.Printf("Audio output initialized: %dHz, %d channels (oto)",
		o.cfg.SampleRate, o.cfg.Channels)

	return nil
}

// ListAllAudioDevices reports the single platform-default device.
func (o *Oto) ListAllAudioDevices() ([]Device, error) {
	return []Device{{ID: "default", Name: "System Default", IsDefault: true}}, nil
}

// MakeCurrent is a no-op; oto has no thread-affinity requirement.
func (o *Oto) MakeCurrent() {}

// PreprocessStep reports whether another buffer fits in the queue.
func (o *Oto) PreprocessStep() bool {
	return o.queue.pending() < o.cfg.MaxPendingBuffers
}

// SendNextBuffer interleaves the ear buffers and queues them for the
// player.
func (o *Oto) SendNextBuffer(src BufferSource) error {
	if !o.ready {
		return fmt.Errorf("oto backend not initialized")
	}
	o.scratch = interleave16(o.scratch, src.ChannelBuffers())
	o.queue.enqueue(o.scratch)
	return nil
}

// Shutdown stops the player and suspends the context. An oto context
// cannot be destroyed, only suspended.
func (o *Oto) Shutdown() {
	if o.player != nil {
		_ = o.player.Close()
		o.player = nil
	}
	if o.otoCtx != nil {
		_ = o.otoCtx.Suspend()
	}
	o.ready = false
}
