package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/cache"
	"github.com/pageza/recipebox/backend/internal/database"
	"github.com/pageza/recipebox/backend/internal/logging"
	"github.com/pageza/recipebox/backend/internal/middleware"
	"github.com/pageza/recipebox/backend/internal/router"
	"github.com/pageza/recipebox/backend/internal/server"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/storage"
	"github.com/pageza/recipebox/backend/internal/telemetry"
	"github.com/pageza/recipebox/backend/internal/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(config.GetEnvironment(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTelServiceName, cfg.OTelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("failed to flush traces", zap.Error(err))
		}
	}()

	db, err := database.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := database.RunMigrations(db.Gorm, cfg.MigrationsDir, logger); err != nil {
			return err
		}
	}

	var rdb redis.UniversalClient
	if cfg.RedisEnabled() {
		client, err := database.NewRedisClient(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer client.Close()
		rdb = client
	}

	recipeCache, err := cache.Open[types.RecipeSnapshot](ctx, "recipe", cfg, rdb, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := recipeCache.Close(context.Background()); err != nil {
			logger.Warn("failed to close cache", zap.Error(err))
		}
	}()

	s3cfg, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		return err
	}
	objects, err := storage.NewFromConfig(s3cfg, logger)
	if err != nil {
		return err
	}

	users := service.NewUserService(db.Gorm, cfg.BcryptCost, logger)
	deps := router.Dependencies{
		Users:              users,
		Recipes:            service.NewRecipeService(db.Gorm, recipeCache, objects, logger),
		Images:             service.NewImageService(db.Gorm, objects, cfg.ImageMaxBytes, logger),
		DB:                 db,
		Redis:              rdb,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		ImageMaxBytes:      cfg.ImageMaxBytes,
		Logger:             logger,
	}
	if rdb != nil && cfg.ImageUploadsPerHour > 0 {
		deps.Limiter = middleware.NewImageUploadRateLimiter(rdb, cfg.ImageUploadsPerHour, logger)
	}

	srv := server.New(cfg, router.SetupRouter(deps), logger)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		logger.Info("received signal", zap.String("signal", sig.String()))
	}

	return srv.Shutdown(context.Background())
}
