// ABOUTME: Tests for clip construction and procedural generators
// ABOUTME: Covers validation rules, tone shape, and constant clips
package clip

import (
	"errors"
	"testing"
	"time"
)

func TestFromSamplesValidation(t *testing.T) {
	cases := []struct {
		name     string
		samples  []int16
		channels int
		rate     int
		wantErr  error
	}{
		{"valid mono", []int16{1, 2, 3}, 1, 44100, nil},
		{"valid stereo", []int16{1, 2, 3, 4}, 2, 44100, nil},
		{"empty", nil, 1, 44100, ErrNoSamples},
		{"bad channels", []int16{1, 2}, 3, 44100, ErrBadChannelCount},
		{"unaligned", []int16{1, 2, 3}, 2, 44100, ErrUnalignedSamples},
		{"bad rate", []int16{1, 2}, 1, 0, ErrBadSampleRate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromSamples(tc.samples, tc.channels, tc.rate)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("got err %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestClipFramesAndDuration(t *testing.T) {
	c, err := FromSamples(make([]int16, 44100*2), 2, 44100)
	if err != nil {
		t.Fatalf("FromSamples: %v", err)
	}
	if c.Frames() != 44100 {
		t.Errorf("expected 44100 frames, got %d", c.Frames())
	}
	if c.Duration() != time.Second {
		t.Errorf("expected 1s duration, got %v", c.Duration())
	}
}

func TestToneStartsAtZeroAndStaysInRange(t *testing.T) {
	c, err := Tone(440, 100*time.Millisecond, 0.5, 44100)
	if err != nil {
		t.Fatalf("Tone: %v", err)
	}
	s := c.Samples()
	if s[0] != 0 {
		t.Errorf("sine should start at zero, got %d", s[0])
	}
	var peak int16
	for _, v := range s {
		if v > peak {
			peak = v
		}
	}
	if peak < 15000 || peak > 16500 {
		t.Errorf("expected peak near half scale, got %d", peak)
	}
}

func TestConstant(t *testing.T) {
	c, err := Constant(1000, 10, 2, 44100)
	if err != nil {
		t.Fatalf("Constant: %v", err)
	}
	if c.Frames() != 10 || c.Channels() != 2 {
		t.Fatalf("unexpected shape: %d frames, %d channels", c.Frames(), c.Channels())
	}
	for i, v := range c.Samples() {
		if v != 1000 {
			t.Fatalf("sample %d = %d, want 1000", i, v)
		}
	}
}
