package cmd

import (
	"github.com/Garicore01/PlayBeat-Backend/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the PlayBeat HTTP server",
	Long:  `Start the PlayBeat backend: audio upload/streaming, list management and the follower event stream.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
