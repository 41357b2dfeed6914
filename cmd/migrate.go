package cmd

import (
	"log"

	"github.com/Garicore01/PlayBeat-Backend/config"
	"github.com/Garicore01/PlayBeat-Backend/db"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long:  `Connect to the configured MySQL database and migrate the full schema, including join tables.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		if err := db.ConnectGormDB(cfg); err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.CloseGormDB()

		if err := db.AutoMigrate(db.GormDB); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migration completed")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
