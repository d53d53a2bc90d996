package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cccbbbaaaa/culture-china/internal/cache"
	"github.com/cccbbbaaaa/culture-china/internal/config"
	"github.com/cccbbbaaaa/culture-china/internal/db"
	"github.com/cccbbbaaaa/culture-china/internal/importer"
	"github.com/cccbbbaaaa/culture-china/internal/logger"
	"github.com/cccbbbaaaa/culture-china/internal/media"
	"github.com/cccbbbaaaa/culture-china/internal/queue"
	"github.com/cccbbbaaaa/culture-china/internal/storage"
	"github.com/cccbbbaaaa/culture-china/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.WithService("import-worker")
	log := logger.Get()

	log.Info().Str("version", cfg.App.Version).Int("workers", cfg.Workers.Import.Count).Msg("Starting import worker")

	database, err := db.NewConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if sqlDB, err := database.DB(); err == nil {
		defer sqlDB.Close()
	}

	repo := db.NewRepository(database)

	redisClient, err := queue.NewRedisClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	store, err := storage.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("Failed to initialize storage")
	}

	// The worker never enqueues, so the importer gets no producer.
	alumni := importer.NewAlumniImporter(
		cfg,
		repo,
		store,
		media.NewWriter(store, repo, nil),
		nil,
		cache.New(redisClient, cfg.Cache),
	)

	importWorker := worker.NewImportWorker(queue.NewConsumer(redisClient, cfg), alumni, cfg.Workers.Import.Count)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumerDone := make(chan error, 1)
	go func() {
		consumerDone <- importWorker.Start(ctx)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var failed bool
	select {
	case <-quit:
		log.Info().Msg("Shutting down import worker...")
		cancel()
		if err := <-consumerDone; err != nil {
			log.Error().Err(err).Msg("Queue consumer stopped with error")
		}
	case err := <-consumerDone:
		if err != nil {
			log.Error().Err(err).Msg("Import worker failed")
			failed = true
		}
		cancel()
	}

	// The consumer has returned, so nothing submits to the pool any more.
	importWorker.Stop()

	log.Info().Msg("Import worker exited")
	if failed {
		os.Exit(1)
	}
}
