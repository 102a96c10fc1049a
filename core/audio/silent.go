package audio

import (
	"fmt"
	"io"
	"sync"
	"time"

	"SpectraFM/model"

	"github.com/gopxl/beep/v2/mp3"
)

// SilentEngine decodes tracks but plays them against the wall clock instead
// of an audio device. It keeps the whole control surface usable on machines
// without an output device (CI, headless servers).
type SilentEngine struct{}

// NewSilentEngine creates a device-less engine.
func NewSilentEngine() *SilentEngine {
	return &SilentEngine{}
}

// Open decodes r for its duration and returns a clock-driven handle.
func (e *SilentEngine) Open(r io.ReadCloser, onEnd func()) (Handle, error) {
	streamer, format, err := mp3.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMediaDecode, err)
	}
	duration := format.SampleRate.D(streamer.Len())
	streamer.Close()
	return NewClockHandle(duration, onEnd), nil
}

func (e *SilentEngine) Close() error { return nil }

// ClockHandle advances its position with the wall clock while "playing".
// It backs the silent engine and stands in for a real handle in tests.
type ClockHandle struct {
	mu        sync.Mutex
	duration  time.Duration
	base      time.Duration // position at the last play/pause/seek
	startedAt time.Time
	playing   bool
	volume    float64
	timer     *time.Timer
	onEnd     func()
	closed    bool
}

// NewClockHandle creates a handle of the given duration, positioned at zero
// and paused.
func NewClockHandle(duration time.Duration, onEnd func()) *ClockHandle {
	return &ClockHandle{duration: duration, onEnd: onEnd, volume: 1}
}

func (h *ClockHandle) Play() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || h.playing {
		return
	}
	h.playing = true
	h.startedAt = time.Now()
	h.armTimer()
}

func (h *ClockHandle) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || !h.playing {
		return
	}
	h.base = h.positionLocked()
	h.playing = false
	h.stopTimer()
}

func (h *ClockHandle) Seek(d time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	if d < 0 {
		d = 0
	}
	if d > h.duration {
		d = h.duration
	}
	h.base = d
	if h.playing {
		h.startedAt = time.Now()
		h.armTimer()
	}
	return nil
}

func (h *ClockHandle) Position() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.positionLocked()
}

func (h *ClockHandle) positionLocked() time.Duration {
	pos := h.base
	if h.playing {
		pos += time.Since(h.startedAt)
	}
	if pos > h.duration {
		pos = h.duration
	}
	return pos
}

func (h *ClockHandle) Duration() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.duration
}

func (h *ClockHandle) SetVolume(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.volume = clamp01(v)
}

// Volume returns the last applied volume.
func (h *ClockHandle) Volume() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.volume
}

// Samples returns nil: there is no signal to tap. The sampler treats an
// absent tap as a no-op.
func (h *ClockHandle) Samples(n int) []float64 { return nil }

func (h *ClockHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	h.playing = false
	h.stopTimer()
	return nil
}

// armTimer schedules the natural-end callback for the remaining duration.
// Callers hold h.mu.
func (h *ClockHandle) armTimer() {
	h.stopTimer()
	remaining := h.duration - h.positionLocked()
	h.timer = time.AfterFunc(remaining, h.fireEnd)
}

func (h *ClockHandle) stopTimer() {
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
}

func (h *ClockHandle) fireEnd() {
	h.mu.Lock()
	if h.closed || !h.playing {
		h.mu.Unlock()
		return
	}
	h.base = h.duration
	h.playing = false
	onEnd := h.onEnd
	h.mu.Unlock()
	if onEnd != nil {
		onEnd()
	}
}
