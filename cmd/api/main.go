package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/cache"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/router"
	"github.com/pageza/foodgram/backend/internal/server"
	"github.com/pageza/foodgram/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Setup("info", true)
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Setup(cfg.LogLevel, !cfg.Env.IsProduction())
	if cfg.Env.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := database.RunMigrations(db, "migrations"); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Redis is optional; without it links are not cached, logout only ends
	// the client session and recipe creation is not rate limited.
	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("Continuing without Redis")
		redisClient = nil
	}

	s3Config, err := config.NewS3Config(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize S3")
	}

	recipes := repository.NewRecipeRepository(db)
	users := repository.NewUserRepository(db)
	catalog := repository.NewCatalogRepository(db)

	images := service.NewImageService(s3Config)
	links := service.NewLinkService(recipes, cache.New(redisClient, "shortlink:"), cfg.PublicBaseURL)
	authService := service.NewAuthService(users, cache.New(redisClient, "jwt:denylist:"), cfg.JWTSecret)

	deps := api.Dependencies{
		DB:              db,
		AuthService:     authService,
		UserService:     service.NewUserService(users, recipes, images),
		RecipeService:   service.NewRecipeService(recipes, users, catalog, images, links),
		ShoppingService: service.NewShoppingService(recipes),
		LinkService:     links,
		CatalogService:  service.NewCatalogService(catalog),
		CreateLimiter:   middleware.NewRecipeCreationRateLimiter(redisClient, cfg.RecipeCreateLimit),
		PageSize:        cfg.PageSize,
	}
	srv := server.New(cfg, router.SetupRouter(deps, cfg.Origins()))

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Received signal")
	}

	log.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
	if redisClient != nil {
		redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info().Msg("Server stopped")
}
