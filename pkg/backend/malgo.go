// ABOUTME: Malgo/miniaudio output backend with real device enumeration
// ABOUTME: Callback-driven playback pulling from the pending-buffer queue
package backend

import (
	"fmt"
	"log"

	"github.com/gen2brain/malgo"
)

// Malgo plays through miniaudio. Unlike oto it can enumerate playback
// devices and open a specific one.
type Malgo struct {
	cfg      Config
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	infos    []malgo.DeviceInfo
	queue    *chunkQueue
	scratch  []byte
	ready    bool
}

// NewMalgo creates a malgo backend with the given output format.
func NewMalgo(cfg Config) *Malgo {
	return &Malgo{
		cfg:   cfg,
		queue: newChunkQueue(),
	}
}

// PreInit initializes the miniaudio context used for enumeration and
// device creation.
func (m *Malgo) PreInit() error {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	m.malgoCtx = ctx
	return nil
}

// ListAllAudioDevices enumerates playback devices.
func (m *Malgo) ListAllAudioDevices() ([]Device, error) {
	if m.malgoCtx == nil {
		return nil, fmt.Errorf("malgo backend not pre-initialized")
	}
	infos, err := m.malgoCtx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("enumerating playback devices: %w", err)
	}
	m.infos = infos

	devices := make([]Device, 0, len(infos))
	for _, info := range infos {
		devices = append(devices, Device{
			ID:        info.ID.String(),
			Name:      info.Name(),
			IsDefault: info.IsDefault != 0,
		})
	}
	return devices, nil
}

// SelectDeviceAndInit opens dev (nil for the default) and starts the
// playback callback.
func (m *Malgo) SelectDeviceAndInit(dev *Device) error {
	if m.malgoCtx == nil {
		if err := m.PreInit(); err != nil {
			return err
		}
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(m.cfg.Channels)
	deviceConfig.SampleRate = uint32(m.cfg.SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	if dev != nil {
		info, ok := m.lookup(dev)
		if !ok {
			return fmt.Errorf("playback device %q not found", dev.Name)
		}
		deviceConfig.Playback.DeviceID = info.ID.Pointer()
	}

	onSamples := func(pOutput, pInput []byte, frameCount uint32) {
		_, _ = m.queue.Read(pOutput)
	}

	device, err := malgo.InitDevice(m.malgoCtx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onSamples,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("failed to start playback device: %w", err)
	}

	m.device = device
	m.ready = true

	log.Printf("Audio output initialized: %dHz, %d channels (malgo)",
		m.cfg.SampleRate, m.cfg.Channels)

	return nil
}

// lookup finds the enumerated device matching dev, refreshing the
// enumeration when needed.
func (m *Malgo) lookup(dev *Device) (malgo.DeviceInfo, bool) {
	if len(m.infos) == 0 {
		if _, err := m.ListAllAudioDevices(); err != nil {
			return malgo.DeviceInfo{}, false
		}
	}
	for _, info := range m.infos {
		if info.ID.String() == dev.ID || info.Name() == dev.Name {
			return info, true
		}
	}
	return malgo.DeviceInfo{}, false
}

// MakeCurrent is a no-op; miniaudio manages its own device thread.
func (m *Malgo) MakeCurrent() {}

// PreprocessStep reports whether another buffer fits in the queue.
func (m *Malgo) PreprocessStep() bool {
	return m.queue.pending() < m.cfg.MaxPendingBuffers
}

// SendNextBuffer interleaves the ear buffers and queues them for the
// device callback.
func (m *Malgo) SendNextBuffer(src BufferSource) error {
	if !m.ready {
		return fmt.Errorf("malgo backend not initialized")
	}
	m.scratch = interleave16(m.scratch, src.ChannelBuffers())
	m.queue.enqueue(m.scratch)
	return nil
}

// Shutdown stops the device and releases the miniaudio context.
func (m *Malgo) Shutdown() {
	if m.device != nil {
		m.device.Uninit()
		m.device = nil
	}
	if m.malgoCtx != nil {
		_ = m.malgoCtx.Uninit()
		m.malgoCtx.Free()
		m.malgoCtx = nil
	}
	m.ready = false
}
