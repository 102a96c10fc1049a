// Package audio owns the output device and the per-track playback chain:
// decoder → resampler → analysis tap → pause control → volume → speaker.
package audio

import (
	"io"
	"math"
	"time"
)

// Handle is one opened track on the output chain. A Handle belongs to the
// playback controller; closing it detaches the track from the output.
type Handle interface {
	Play()
	Pause()
	Seek(d time.Duration) error
	Position() time.Duration
	Duration() time.Duration
	SetVolume(v float64) // 0.0..1.0, clamped

	// Samples returns the most recent n mono samples seen by the analysis
	// tap, oldest first. Returns nil when the handle has no tap.
	Samples(n int) []float64

	Close() error
}

// Engine opens handles and owns the lifetime of the audio output. It is
// created with the controller and released on controller teardown; there is
// no package-global output state.
type Engine interface {
	// Open decodes r and attaches it to the output, initially paused.
	// onEnd fires once if the track plays to its natural end.
	Open(r io.ReadCloser, onEnd func()) (Handle, error)
	Close() error
}

// gain maps a linear volume in [0,1] onto the exponential scale the volume
// effect uses (base 2). Silent is reported separately because log2(0) is not
// a usable exponent.
func gain(v float64) (volume float64, silent bool) {
	v = clamp01(v)
	if v == 0 {
		return 0, true
	}
	return math.Log2(v), false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
