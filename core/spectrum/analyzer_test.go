package spectrum

import (
	"math"
	"testing"
)

// sine generates n samples of a sine landing exactly on FFT bin k.
func sine(n, k int, amplitude float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*float64(k)*float64(i)/float64(n))
	}
	return out
}

func TestAnalyzeSnapshotShape(t *testing.T) {
	if SnapshotBins != 32 {
		t.Fatalf("SnapshotBins = %d, want 32", SnapshotBins)
	}
	snap := NewAnalyzer().Analyze(sine(WindowSize, 3, 1))
	if len(snap) != SnapshotBins {
		t.Errorf("snapshot length = %d, want %d", len(snap), SnapshotBins)
	}
}

func TestAnalyzeSineConcentratesInItsBin(t *testing.T) {
	a := NewAnalyzer()
	const bin = 8
	snap := a.Analyze(sine(WindowSize, bin, 1))

	if snap[bin] < 200 {
		t.Errorf("bin %d magnitude = %d, want near full scale", bin, snap[bin])
	}
	for i, v := range snap {
		if i >= bin-1 && i <= bin+1 {
			continue // Hann leakage into neighbours
		}
		if v > 20 {
			t.Errorf("bin %d magnitude = %d, want near zero away from the tone", i, v)
		}
	}
}

func TestAnalyzeSilenceIsAllZero(t *testing.T) {
	snap := NewAnalyzer().Analyze(make([]float64, WindowSize))
	for i, v := range snap {
		if v != 0 {
			t.Errorf("bin %d = %d for silence, want 0", i, v)
		}
	}
}

func TestAnalyzeOverdrivenInputStaysInRange(t *testing.T) {
	a := NewAnalyzer()
	snap := a.Analyze(sine(WindowSize, 4, 100))
	// Every byte is in range by type; the hot bin must saturate, not wrap.
	if snap[4] != 255 {
		t.Errorf("overdriven bin = %d, want clamped 255", snap[4])
	}
}

func TestAnalyzeShortAndNilInput(t *testing.T) {
	a := NewAnalyzer()

	snap := a.Analyze(nil)
	for i, v := range snap {
		if v != 0 {
			t.Errorf("nil input bin %d = %d, want 0", i, v)
		}
	}

	// Short input zero-pads; must not panic and must stay in range.
	a.Analyze(sine(WindowSize/4, 2, 1))
}

func TestAnalyzeUsesMostRecentWindow(t *testing.T) {
	a := NewAnalyzer()

	// Old silence followed by a fresh tone: the tone wins.
	samples := make([]float64, WindowSize*2)
	copy(samples[WindowSize:], sine(WindowSize, 8, 1))
	snap := a.Analyze(samples)
	if snap[8] < 200 {
		t.Errorf("bin 8 = %d, want the recent tone to dominate", snap[8])
	}

	// Old tone followed by fresh silence: nothing left.
	copy(samples, sine(WindowSize, 8, 1))
	for i := WindowSize; i < len(samples); i++ {
		samples[i] = 0
	}
	snap = a.Analyze(samples)
	if snap[8] != 0 {
		t.Errorf("bin 8 = %d after the tone scrolled out, want 0", snap[8])
	}
}
