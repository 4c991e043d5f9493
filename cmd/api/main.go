package main

// @title Audioguide Discovery API
// @version 1.0.0
// @description Finds audio guides near a point in a chosen language, lists their tags, media and cities,
// @description searches places, and counts plays.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:3001
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/audioguide-discovery/docs"
	"github.com/audioguide-discovery/internal/config"
	httpDelivery "github.com/audioguide-discovery/internal/delivery/http"
	"github.com/audioguide-discovery/internal/delivery/http/handler"
	"github.com/audioguide-discovery/internal/domain/repository"
	"github.com/audioguide-discovery/internal/infrastructure/mapbox"
	"github.com/audioguide-discovery/internal/pkg/logger"
	"github.com/audioguide-discovery/internal/pkg/ratelimit"
	"github.com/audioguide-discovery/internal/repository/cache"
	"github.com/audioguide-discovery/internal/repository/postgres"
	redisRepo "github.com/audioguide-discovery/internal/repository/redis"
	"github.com/audioguide-discovery/internal/usecase"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Audioguide Discovery API")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.Float64("search_radius_km", cfg.Guides.SearchRadiusKm),
		zap.Int("max_results", cfg.Guides.MaxResults),
	)

	// 3. Connect to PostgreSQL
	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}()

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 5. Initialize repositories
	guideRepo := postgres.NewGuideRepository(db)
	mediaRepo := postgres.NewMediaRepository(db)
	locationRepo := postgres.NewLocationRepository(db)
	statsRepo := postgres.NewStatsRepository(db, log)
	cacheRepo := cache.NewCacheRepository(redisClient)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log, 0)

	// Place search falls back to the local table only
	var geocoder repository.Geocoder
	if cfg.Mapbox.AccessToken != "" {
		geocoder = mapbox.NewMapboxClient(&cfg.Mapbox, log)
		log.Info("Mapbox geocoding enabled")
	}

	log.Info("Repositories initialized")

	// 6. Initialize use cases
	limiter := ratelimit.New(cfg.Plays.RateInterval, cfg.Plays.RateBurst, cfg.Plays.RateIdleTTL)

	guideUC := usecase.NewGuideUseCase(
		guideRepo,
		cacheRepo,
		cfg.Guides.SearchRadiusKm,
		cfg.Guides.MaxResults,
		cfg.Cache.GuidesCacheTTL,
		log,
	)
	playUC := usecase.NewPlayUseCase(guideRepo, streamRepo, cacheRepo, limiter, log)
	tagUC := usecase.NewTagUseCase(guideRepo, cacheRepo, cfg.Cache.TagsCacheTTL, log)
	locationUC := usecase.NewLocationUseCase(locationRepo, geocoder, log)
	mediaUC := usecase.NewMediaUseCase(guideRepo, mediaRepo, log)
	statsUC := usecase.NewStatsUseCase(statsRepo, cacheRepo, cfg.Cache.AvailableCacheTTL, log)

	log.Info("Use cases initialized")

	// 7. Initialize HTTP handlers
	guideHandler := handler.NewGuideHandler(guideUC, playUC, log)
	catalogHandler := handler.NewCatalogHandler(tagUC, locationUC, mediaUC, statsUC, log)

	// 8. Initialize HTTP server
	server := httpDelivery.NewServer(
		cfg,
		log,
		guideHandler,
		catalogHandler,
		map[string]httpDelivery.HealthChecker{
			"postgres": db,
			"redis":    redisClient,
		},
	)

	// 9. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 10. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
