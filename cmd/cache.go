package cmd

import (
	"log"

	"github.com/Garicore01/PlayBeat-Backend/config"
	"github.com/Garicore01/PlayBeat-Backend/db"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Cache diagnostics",
}

var cacheCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the Redis connection",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		if err := db.ConnectRedis(cfg); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer db.CloseRedis()

		if err := db.TestRedis(); err != nil {
			log.Fatalf("Redis check failed: %v", err)
		}
		log.Println("Redis connection OK")
	},
}

func init() {
	cacheCmd.AddCommand(cacheCheckCmd)
	rootCmd.AddCommand(cacheCmd)
}
