// Package spectrum turns the playback tap into fixed-size frequency
// snapshots at frame cadence.
package spectrum

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

const (
	// WindowSize is the number of samples fed to one transform.
	WindowSize = 128
	// BinCount is the analysis resolution: WindowSize/2 frequency bins.
	BinCount = WindowSize / 2
	// SnapshotBins is the published width: the lower half of the bins,
	// which is where the musical content lives.
	SnapshotBins = BinCount / 2
)

// Snapshot is one frame of per-bin magnitudes, each scaled to 0..255.
// It is ephemeral: overwritten every frame, never persisted.
type Snapshot [SnapshotBins]byte

// Analyzer computes snapshots from raw mono samples.
type Analyzer struct {
	window []float64 // Hann coefficients, precomputed
}

// NewAnalyzer creates an analyzer with a Hann window.
func NewAnalyzer() *Analyzer {
	window := make([]float64, WindowSize)
	for i := range window {
		window[i] = 0.5 * (1.0 - math.Cos(2.0*math.Pi*float64(i)/float64(WindowSize-1)))
	}
	return &Analyzer{window: window}
}

// Analyze transforms the most recent WindowSize samples into a snapshot.
// Shorter input is zero-padded at the front; the result is always full
// width with every value in [0,255].
func (a *Analyzer) Analyze(samples []float64) Snapshot {
	buf := make([]float64, WindowSize)
	if n := len(samples); n >= WindowSize {
		copy(buf, samples[n-WindowSize:])
	} else {
		copy(buf[WindowSize-n:], samples)
	}
	for i := range buf {
		buf[i] *= a.window[i]
	}

	spectrum := fft.FFTReal(buf)

	// A full-scale sine on an exact bin lands at WindowSize/4 after Hann
	// weighting; that is the 255 reference.
	const fullScale = float64(WindowSize) / 4

	var snap Snapshot
	for i := 0; i < SnapshotBins; i++ {
		mag := cmplx.Abs(spectrum[i]) / fullScale
		v := mag * 255
		if v > 255 {
			v = 255
		}
		snap[i] = byte(v)
	}
	return snap
}
