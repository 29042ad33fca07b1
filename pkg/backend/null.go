// ABOUTME: Null backend for tests and headless runs
// ABOUTME: Records submitted buffers instead of playing them
package backend

import "sync"

// Null is a no-device backend. It accepts buffers, records them, and
// discards the audio. Tests use it to observe exactly what the engine
// submits; headless runs use it to keep the engine loop alive without
// an audio device.
type Null struct {
	cfg Config

	mu          sync.Mutex
	submissions int
	last        [][]int16
	hasRoom     bool
	failNext    error
}

// NewNull creates a null backend.
func NewNull(cfg Config) *Null {
	return &Null{cfg: cfg, hasRoom: true}
}

// PreInit is a no-op.
func (n *Null) PreInit() error { return nil }

// SelectDeviceAndInit is a no-op.
func (n *Null) SelectDeviceAndInit(dev *Device) error { return nil }

// ListAllAudioDevices reports a single virtual device.
func (n *Null) ListAllAudioDevices() ([]Device, error) {
	return []Device{{ID: "null", Name: "Null Output", IsDefault: true}}, nil
}

// MakeCurrent is a no-op.
func (n *Null) MakeCurrent() {}

// PreprocessStep reports the configured room state (defaults to true).
func (n *Null) PreprocessStep() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.hasRoom
}

// SendNextBuffer records a copy of the submitted ear buffers.
func (n *Null) SendNextBuffer(src BufferSource) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.failNext != nil {
		err := n.failNext
		n.failNext = nil
		return err
	}

	ears := src.ChannelBuffers()
	n.last = make([][]int16, len(ears))
	for i, buf := range ears {
		c := make([]int16, len(buf))
		copy(c, buf)
		n.last[i] = c
	}
	n.submissions++
	return nil
}

// Shutdown is a no-op.
func (n *Null) Shutdown() {}

// SetRoom controls what PreprocessStep reports, simulating device
// backpressure in tests.
func (n *Null) SetRoom(hasRoom bool) {
	n.mu.Lock()
	n.hasRoom = hasRoom
	n.mu.Unlock()
}

// FailNextSubmit makes the next SendNextBuffer return err.
func (n *Null) FailNextSubmit(err error) {
	n.mu.Lock()
	n.failNext = err
	n.mu.Unlock()
}

// Submissions returns how many buffers have been accepted.
func (n *Null) Submissions() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.submissions
}

// LastBuffers returns a copy of the most recently submitted ear
// buffers, or nil when nothing has been submitted.
func (n *Null) LastBuffers() [][]int16 {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.last == nil {
		return nil
	}
	out := make([][]int16, len(n.last))
	for i, buf := range n.last {
		c := make([]int16, len(buf))
		copy(c, buf)
		out[i] = c
	}
	return out
}
