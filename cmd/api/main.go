package main

import (
	"context"
	"log"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/server"
	"github.com/pageza/foodgram/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	db, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Warn("failed to close database", zap.Error(err))
		}
	}()
	if err := database.Migrate(db); err != nil {
		return err
	}

	// Redis only backs rate limiting; without it requests are not limited.
	redisClient, err := database.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn("redis unavailable, rate limiting disabled", zap.Error(err))
		redisClient = nil
	} else {
		defer func() { _ = redisClient.Close() }()
	}

	images, err := newImageStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := service.NewMetrics(registry)

	auth := service.NewAuthService(db, cfg.JWTSecret, cfg.JWTTTL)
	membership := service.NewMembershipService(db, metrics, logger)
	handler := api.NewHandler(api.Services{
		Auth:          auth,
		Users:         service.NewUserService(db),
		Catalog:       service.NewCatalogService(db),
		Recipes:       service.NewRecipeService(db, membership, images, metrics, logger),
		Membership:    membership,
		Subscriptions: service.NewSubscriptionService(db, metrics, logger),
		ShoppingList:  service.NewShoppingListService(db, metrics, logger),
	}, api.RateLimiters{
		Auth:               middleware.NewAuthRateLimiter(redisClient, logger),
		RecipeCreation:     middleware.NewRecipeCreationRateLimiter(redisClient, logger),
		RecipeModification: middleware.NewRecipeModificationRateLimiter(redisClient, logger),
	}, db, registry, logger)

	srv := server.New(cfg, logger, handler)
	if _, local := images.(*service.LocalImageStore); local {
		srv.Router().Static(cfg.MediaURL, cfg.MediaDir)
	}
	return srv.Run(ctx)
}

func newImageStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (service.ImageStore, error) {
	if strings.TrimSpace(cfg.S3Bucket) == "" {
		logger.Info("storing recipe images on disk", zap.String("dir", cfg.MediaDir))
		return service.NewLocalImageStore(cfg.MediaDir, cfg.MediaURL), nil
	}
	s3cfg, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("storing recipe images in S3", zap.String("bucket", s3cfg.BucketName))
	return service.NewS3ImageStore(s3cfg), nil
}
