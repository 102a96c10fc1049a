package audio

import (
	"fmt"
	"io"
	"sync"
	"time"

	"SpectraFM/logger"
	"SpectraFM/model"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
)

const (
	outputRate    = beep.SampleRate(44100)
	tapBufferSize = 4096
)

// BeepEngine plays tracks through the machine's audio output via beep.
// The speaker is initialized lazily on the first Open and released by Close.
type BeepEngine struct {
	mu          sync.Mutex
	initialized bool
}

// NewBeepEngine creates an engine. No device is touched until the first Open.
func NewBeepEngine() *BeepEngine {
	return &BeepEngine{}
}

// Open decodes r as MP3 and attaches it to the output, initially paused.
// Anything previously attached is dropped first, so two tracks can never
// sound at once.
func (e *BeepEngine) Open(r io.ReadCloser, onEnd func()) (Handle, error) {
	streamer, format, err := mp3.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMediaDecode, err)
	}

	if err := e.ensureSpeaker(); err != nil {
		streamer.Close()
		return nil, fmt.Errorf("%w: %v", model.ErrPlaybackRejected, err)
	}

	resampled := beep.Resample(4, format.SampleRate, outputRate, streamer)
	tap := NewTap(resampled, tapBufferSize)
	ctrl := &beep.Ctrl{Streamer: tap, Paused: true}
	vol := &effects.Volume{Streamer: ctrl, Base: 2, Volume: 0}

	h := &beepHandle{
		streamer: streamer,
		format:   format,
		ctrl:     ctrl,
		vol:      vol,
		tap:      tap,
	}

	// One chain on the mixer at a time.
	speaker.Clear()
	speaker.Play(beep.Seq(vol, beep.Callback(func() {
		if onEnd != nil {
			// Detached so the callback can re-enter the controller without
			// holding the speaker lock.
			go onEnd()
		}
	})))

	return h, nil
}

func (e *BeepEngine) ensureSpeaker() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.initialized {
		return nil
	}
	if err := speaker.Init(outputRate, outputRate.N(time.Second/10)); err != nil {
		return err
	}
	e.initialized = true
	return nil
}

// Close releases the audio output.
func (e *BeepEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return nil
	}
	speaker.Clear()
	speaker.Close()
	e.initialized = false
	logger.Debug("audio output released")
	return nil
}

// beepHandle is one decoded track on the output chain.
type beepHandle struct {
	mu       sync.Mutex
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	vol      *effects.Volume
	tap      *Tap
	closed   bool
}

func (h *beepHandle) Play() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	speaker.Lock()
	h.ctrl.Paused = false
	speaker.Unlock()
}

func (h *beepHandle) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	speaker.Lock()
	h.ctrl.Paused = true
	speaker.Unlock()
}

func (h *beepHandle) Seek(d time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}

	speaker.Lock()
	defer speaker.Unlock()

	n := h.format.SampleRate.N(d)
	if max := h.streamer.Len() - 1; n > max {
		n = max
	}
	if n < 0 {
		n = 0
	}
	return h.streamer.Seek(n)
}

func (h *beepHandle) Position() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0
	}
	speaker.Lock()
	pos := h.streamer.Position()
	speaker.Unlock()
	return h.format.SampleRate.D(pos)
}

func (h *beepHandle) Duration() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0
	}
	return h.format.SampleRate.D(h.streamer.Len())
}

func (h *beepHandle) SetVolume(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	volume, silent := gain(v)
	speaker.Lock()
	h.vol.Volume = volume
	h.vol.Silent = silent
	speaker.Unlock()
}

func (h *beepHandle) Samples(n int) []float64 {
	h.mu.Lock()
	tap := h.tap
	h.mu.Unlock()
	if tap == nil {
		return nil
	}
	return tap.Samples(n)
}

// Close pauses the chain and releases the decoder. The engine drops the
// chain from the mixer on the next Open.
func (h *beepHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	speaker.Lock()
	h.ctrl.Paused = true
	speaker.Unlock()
	return h.streamer.Close()
}
