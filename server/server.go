package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Garicore01/PlayBeat-Backend/config"
	"github.com/Garicore01/PlayBeat-Backend/core/auth"
	"github.com/Garicore01/PlayBeat-Backend/core/notify"
	"github.com/Garicore01/PlayBeat-Backend/core/relation"
	"github.com/Garicore01/PlayBeat-Backend/db"
	"github.com/Garicore01/PlayBeat-Backend/logger"
	"github.com/Garicore01/PlayBeat-Backend/repository"
	"github.com/Garicore01/PlayBeat-Backend/storage"
)

// Start initializes dependencies and runs the HTTP server until interrupted.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.InfoLevel,
		OutputPath: "logs/playbeat.log",
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if err := db.ConnectGormDB(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.CloseGormDB()

	if err := db.AutoMigrate(db.GormDB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	if err := db.ConnectRedis(cfg); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer db.CloseRedis()
	log.Println("Successfully connected to Redis")

	store, err := storage.NewStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}

	spool, err := storage.NewSpool(cfg.UploadSpoolDir)
	if err != nil {
		log.Fatalf("Failed to initialize upload spool: %v", err)
	}

	userRepo := repository.NewGormUserRepository(db.GormDB)
	audioRepo := repository.NewGormAudioRepository(db.GormDB)
	listRepo := repository.NewGormListRepository(db.GormDB)
	tagRepo := repository.NewGormTagRepository(db.GormDB)
	reconRepo := repository.NewGormReconciliationRepository(db.GormDB)
	sync := relation.NewSynchronizer(db.GormDB)
	hub := notify.NewHub()
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)

	apiHandler := NewAPIHandler(userRepo, audioRepo, listRepo, tagRepo, reconRepo,
		sync, store, spool, hub, tokens, cfg)

	router := NewRouter(apiHandler)

	server.Handler = router

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s...", cfg.HTTPAddr)
		log.Println("Manage audios via /api/audio endpoints")
		log.Println("Manage lists via /api/list endpoints")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
