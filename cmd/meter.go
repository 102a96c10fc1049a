package cmd

import (
	"fmt"
	"log"
	"os"
	"time"

	"SpectraFM/core/spectrum"
	"SpectraFM/core/viz"

	"github.com/gopxl/beep/v2/mp3"
	"github.com/spf13/cobra"
)

var (
	meterAt     float64
	meterHeight int
)

var meterCmd = &cobra.Command{
	Use:   "meter <file.mp3>",
	Short: "Print a one-shot spectrum of a local MP3",
	Long:  `Decode a local MP3 offline, analyze one window at the given offset, and print the visualizer bars to the terminal. Exercises the analyzer and renderer without a browser.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		f, err := os.Open(args[0])
		if err != nil {
			log.Fatalf("Cannot open file: %v", err)
		}
		defer f.Close()

		streamer, format, err := mp3.Decode(f)
		if err != nil {
			log.Fatalf("Cannot decode MP3: %v", err)
		}
		defer streamer.Close()

		duration := format.SampleRate.D(streamer.Len())
		offset := time.Duration(meterAt * float64(time.Second))
		if offset > duration {
			offset = duration
		}
		if err := streamer.Seek(format.SampleRate.N(offset)); err != nil {
			log.Fatalf("Cannot seek: %v", err)
		}

		// One analysis window of mono samples from the seek point.
		buf := make([][2]float64, spectrum.WindowSize)
		n, _ := streamer.Stream(buf)
		mono := make([]float64, n)
		for i := 0; i < n; i++ {
			mono[i] = (buf[i][0] + buf[i][1]) / 2
		}

		snap := spectrum.NewAnalyzer().Analyze(mono)
		bars := viz.Bars(snap, true)

		fmt.Printf("%s  (%.1fs of %.1fs)\n", args[0], offset.Seconds(), duration.Seconds())
		fmt.Println(viz.Rows(bars, meterHeight))
	},
}

func init() {
	rootCmd.AddCommand(meterCmd)

	meterCmd.Flags().Float64VarP(&meterAt, "at", "a", 0, "offset into the track, in seconds")
	meterCmd.Flags().IntVarP(&meterHeight, "height", "H", 8, "bar height in terminal rows")
}
