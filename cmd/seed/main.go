package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/seed"
	"github.com/pageza/foodgram/backend/internal/service"
)

func main() {
	ingredientsPath := flag.String("ingredients", "", "JSON file of {name, measurement_unit}; defaults to the bundled catalog")
	tagsPath := flag.String("tags", "", "JSON file of {name, color, slug}; defaults to the bundled tags")
	demoUsers := flag.Bool("demo-users", false, "also create demo accounts")
	demoPassword := flag.String("demo-password", "testpassword123", "password for demo accounts")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	db, err := database.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()
	if err := database.Migrate(db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	ingredients, err := loadFixtures(*ingredientsPath, seed.LoadIngredients, seed.DefaultIngredients)
	if err != nil {
		logger.Fatal("failed to load ingredients", zap.Error(err))
	}
	tags, err := loadFixtures(*tagsPath, seed.LoadTags, seed.DefaultTags)
	if err != nil {
		logger.Fatal("failed to load tags", zap.Error(err))
	}

	seeder := seed.New(
		service.NewCatalogService(db),
		service.NewAuthService(db, cfg.JWTSecret, cfg.JWTTTL),
		logger,
	)
	if _, err := seeder.Ingredients(ctx, ingredients); err != nil {
		logger.Fatal("failed to seed ingredients", zap.Error(err))
	}
	if _, err := seeder.Tags(ctx, tags); err != nil {
		logger.Fatal("failed to seed tags", zap.Error(err))
	}
	if *demoUsers {
		if _, err := seeder.Users(ctx, seed.DemoUsers, *demoPassword); err != nil {
			logger.Fatal("failed to seed users", zap.Error(err))
		}
	}
}

func loadFixtures[T any](path string, load func(io.Reader) ([]T, error), fallback func() ([]T, error)) ([]T, error) {
	if path == "" {
		return fallback()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return load(f)
}
