package cmd

import (
	"fmt"
	"os"

	"github.com/Garicore01/PlayBeat-Backend/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "playbeat",
	Short: "PlayBeat is an audio and playlist backend.",
	Run: func(cmd *cobra.Command, args []string) {
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
