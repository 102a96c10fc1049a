// Package viz maps spectrum snapshots to renderable bars. It holds no state
// and never fails: an empty or all-zero snapshot renders as a floor of
// minimum-height bars.
package viz

import (
	"strings"

	"SpectraFM/core/spectrum"
)

// MinHeightPercent is the collapsed bar height. Bars never drop below it,
// and all bars are forced to it while playback is stopped.
const MinHeightPercent = 4.0

const (
	minOpacity = 0.3
	maxOpacity = 1.0
)

// Bar is one rendered bar of the visualizer.
type Bar struct {
	HeightPercent float64 `json:"height"`  // MinHeightPercent..100
	Opacity       float64 `json:"opacity"` // 0.3..1.0
}

// Bars renders a snapshot. Pure function of its inputs.
func Bars(snap spectrum.Snapshot, playing bool) []Bar {
	out := make([]Bar, len(snap))
	for i, v := range snap {
		if !playing {
			out[i] = Bar{HeightPercent: MinHeightPercent, Opacity: minOpacity}
			continue
		}
		norm := float64(v) / 255
		h := norm * 100
		if h < MinHeightPercent {
			h = MinHeightPercent
		}
		out[i] = Bar{
			HeightPercent: h,
			Opacity:       minOpacity + (maxOpacity-minOpacity)*norm,
		}
	}
	return out
}

var barChars = []rune(" ▁▂▃▄▅▆▇█")

// Rows renders bars as terminal lines of block characters, top row first.
// Used by the meter diagnostic command.
func Rows(bars []Bar, height int) string {
	if height < 1 {
		height = 1
	}
	rows := make([]string, height)
	for row := 0; row < height; row++ {
		var line strings.Builder
		for _, bar := range bars {
			level := bar.HeightPercent / 100 * float64(height)
			rowFromBottom := float64(height - 1 - row)
			idx := 0
			if level > rowFromBottom+1 {
				idx = len(barChars) - 1
			} else if level > rowFromBottom {
				idx = int((level - rowFromBottom) * float64(len(barChars)-1))
			}
			line.WriteRune(barChars[idx])
		}
		rows[row] = line.String()
	}
	return strings.Join(rows, "\n")
}
