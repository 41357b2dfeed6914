package cmd

import (
	"context"
	"log"
	"os"

	"github.com/Garicore01/PlayBeat-Backend/config"
	"github.com/Garicore01/PlayBeat-Backend/db"
	"github.com/Garicore01/PlayBeat-Backend/repository"
	"github.com/Garicore01/PlayBeat-Backend/storage"

	"github.com/spf13/cobra"
)

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Object storage diagnostics and maintenance",
}

var storageCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the object storage connection",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		store, err := storage.NewStore(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize object storage: %v", err)
		}
		if err := store.Check(context.Background()); err != nil {
			log.Fatalf("Storage check failed: %v", err)
		}
		log.Println("Object storage OK")
	},
}

var storageReconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Replay failed object-storage side effects",
	Long:  `Replay the pending reconciliation entries recorded when an object delete or promote failed after its store commit.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		ctx := context.Background()

		if err := db.ConnectGormDB(cfg); err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.CloseGormDB()

		store, err := storage.NewStore(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize object storage: %v", err)
		}

		reconRepo := repository.NewGormReconciliationRepository(db.GormDB)
		pending, err := reconRepo.Pending(ctx)
		if err != nil {
			log.Fatalf("Failed to load pending entries: %v", err)
		}

		replayed := 0
		for _, rec := range pending {
			switch rec.Action {
			case "delete_object":
				if err := store.RemoveObject(ctx, rec.ObjectKey); err != nil {
					log.Printf("Failed to delete %s: %v", rec.ObjectKey, err)
					continue
				}
			case "promote_object":
				// Reason carries the spool path of the stranded upload.
				if _, err := os.Stat(rec.Reason); err != nil {
					log.Printf("Spool file for %s is gone, manual cleanup needed", rec.ObjectKey)
					continue
				}
				if err := store.PromoteFile(ctx, rec.Reason, rec.ObjectKey, ""); err != nil {
					log.Printf("Failed to promote %s: %v", rec.ObjectKey, err)
					continue
				}
			default:
				log.Printf("Unknown reconciliation action %q, skipping", rec.Action)
				continue
			}

			if err := reconRepo.Resolve(ctx, rec.ID); err != nil {
				log.Printf("Failed to mark entry %d resolved: %v", rec.ID, err)
				continue
			}
			replayed++
		}
		log.Printf("Reconciliation finished: %d/%d entries replayed", replayed, len(pending))
	},
}

func init() {
	storageCmd.AddCommand(storageCheckCmd)
	storageCmd.AddCommand(storageReconcileCmd)
	rootCmd.AddCommand(storageCmd)
}
