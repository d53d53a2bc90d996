package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cccbbbaaaa/culture-china/internal/admin"
	"github.com/cccbbbaaaa/culture-china/internal/api"
	"github.com/cccbbbaaaa/culture-china/internal/auth"
	"github.com/cccbbbaaaa/culture-china/internal/cache"
	"github.com/cccbbbaaaa/culture-china/internal/config"
	"github.com/cccbbbaaaa/culture-china/internal/db"
	"github.com/cccbbbaaaa/culture-china/internal/importer"
	"github.com/cccbbbaaaa/culture-china/internal/logger"
	"github.com/cccbbbaaaa/culture-china/internal/media"
	"github.com/cccbbbaaaa/culture-china/internal/queue"
	"github.com/cccbbbaaaa/culture-china/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.WithService("api")
	log := logger.Get()

	log.Info().Str("version", cfg.App.Version).Str("env", cfg.App.Env).Msg("Starting API server")

	// Initialize database
	database, err := db.NewConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if sqlDB, err := database.DB(); err == nil {
		defer sqlDB.Close()
	}
	if cfg.Database.AutoMigrate {
		if err := db.Migrate(database); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}
	}

	repo := db.NewRepository(database)

	store, err := storage.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("Failed to initialize storage")
	}

	// Redis backs both the listing cache and the import queue
	redisClient, err := queue.NewRedisClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	producer := queue.NewProducer(redisClient, cfg)
	listings := cache.New(redisClient, cfg.Cache)

	authenticator, err := auth.NewAuthenticator(cfg.Admin.Users)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid admin users")
	}
	tokens, err := auth.NewTokens(cfg.Admin.SessionSecret, cfg.Admin.SessionTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid session settings")
	}

	images := media.NewWriter(store, repo, nil)

	handler := api.NewHandler(cfg, api.Deps{
		Repo:          repo,
		Storage:       store,
		Cache:         listings,
		Authenticator: authenticator,
		Tokens:        tokens,
		Alumni:        importer.NewAlumniImporter(cfg, repo, store, images, producer, listings),
		Resources:     importer.NewResourceImporter(cfg, repo, listings),
		AlumniAdmin:   admin.NewAlumniService(cfg, repo, images, listings),
		ResourceAdmin: admin.NewResourceService(repo, listings),
		MediaAdmin:    admin.NewMediaService(cfg, repo, images, listings),
		QueueStats: func(ctx context.Context) (int64, int64, error) {
			return queue.QueueDepth(ctx, redisClient, cfg)
		},
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
