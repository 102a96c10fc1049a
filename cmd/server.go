package cmd

import (
	"SpectraFM/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the SpectraFM server",
	Long:  `Run the HTTP server: track uploads, playback control, and the WebSocket feed driving the visualizer.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
