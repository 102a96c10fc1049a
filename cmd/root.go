package cmd

import (
	"fmt"
	"log"
	"os"

	"SpectraFM/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "spectrafm",
	Short: "SpectraFM is a browser-controlled MP3 deck with a spectrum visualizer.",
	Run: func(cmd *cobra.Command, args []string) {
		log.Println("Starting SpectraFM server...")
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
