package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/KevinKickass/OpenIOLink/internal/config"
	"github.com/KevinKickass/OpenIOLink/internal/logger"
	"github.com/KevinKickass/OpenIOLink/internal/storage"
	"github.com/KevinKickass/OpenIOLink/internal/system"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML config")
	flag.Parse()

	// Config laden
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Logger initialisieren
	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zl.Sync()

	zl.Info("Config loaded successfully", zap.String("path", *configPath))

	ctx := context.Background()

	// PostgreSQL verbinden, wenn konfiguriert
	var db *storage.PostgresClient
	if cfg.Database.Enabled() {
		db, err = storage.NewPostgresClient(ctx, cfg.Database)
		if err != nil {
			zl.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			zl.Fatal("Failed to migrate database", zap.Error(err))
		}
		zl.Info("Database connected successfully")
	} else {
		zl.Info("No database configured, registered specs are kept in memory only")
	}

	lifecycle, err := system.NewLifecycleManager(db, cfg, zl)
	if err != nil {
		zl.Fatal("Failed to create lifecycle manager", zap.Error(err))
	}

	if err := lifecycle.Start(ctx); err != nil {
		zl.Fatal("Failed to start system", zap.Error(err))
	}

	// Graceful Shutdown auf Signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	zl.Info("Shutdown signal received")

	if err := lifecycle.Shutdown(ctx); err != nil {
		zl.Error("Shutdown failed", zap.Error(err))
		os.Exit(1)
	}

	zl.Info("OpenIOLink stopped successfully")
}
