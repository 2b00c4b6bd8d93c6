package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-species-social-backend/config"
	_ "go-species-social-backend/docs" // swagger spec registration
	v1 "go-species-social-backend/internal/delivery/http/v1"
	"go-species-social-backend/internal/repository/postgres"
	"go-species-social-backend/internal/usecase"
	"go-species-social-backend/pkg/auth"
	"go-species-social-backend/pkg/database"
	"go-species-social-backend/pkg/geocode"
	"go-species-social-backend/pkg/logger"
	"go-species-social-backend/pkg/redis"
	"go-species-social-backend/pkg/security"
	"go-species-social-backend/pkg/validation"
)

// @title           Species Social Backend API
// @version         1.0
// @description     Profiles, friendships and friend recommendations for a wildlife community.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init()
	logger.Log.Info("Starting species social backend", "port", cfg.Port)
	secLogger := security.InitSecurityLogger("species-social-backend", cfg.Environment())
	defer func() { _ = secLogger.Sync() }()

	ctx := context.Background()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (optional; rate limiting falls back to memory)
	var cachePing usecase.PingFunc
	if err := redis.Initialize(ctx, redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}); err != nil {
		if !errors.Is(err, redis.ErrNotConfigured) {
			logger.Log.Warn("Redis unavailable, using in-memory rate limiting", "error", err)
		}
	} else {
		cachePing = redis.HealthCheck
		defer func() { _ = redis.Close() }()
	}

	// 5. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	friendshipRepo := postgres.NewFriendshipRepository(dbPool)

	// 6. Setup Geocoder
	geocoder := geocode.NewClient(geocode.Config{
		BaseURL:       cfg.GeocoderURL,
		APIKey:        cfg.GeocoderAPIKey,
		UserAgent:     cfg.GeocoderUserAgent,
		Timeout:       cfg.GeocoderTimeout,
		RatePerSecond: cfg.GeocoderRatePerSecond,
		Burst:         cfg.GeocoderBurst,
	})

	// 7. Setup UseCases
	validate := validation.New()
	userUC := usecase.NewUserUsecase(userRepo, friendshipRepo, validate)
	friendshipUC := usecase.NewFriendshipUsecase(friendshipRepo, userRepo)
	recommendationUC := usecase.NewRecommendationUsecase(userRepo, friendshipRepo, geocoder)
	healthUC := usecase.NewHealthUsecase(dbPool.Ping, cachePing)

	// 8. Setup Auth Provider (JWKS, optional)
	var jwksProvider *auth.Provider
	if cfg.JWKSURL != "" {
		jwksProvider = auth.NewProvider(cfg.JWKSURL)
	}

	// 9. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		UserUC:           userUC,
		FriendshipUC:     friendshipUC,
		RecommendationUC: recommendationUC,
		HealthUC:         healthUC,
		Validate:         validate,
		JWKSProvider:     jwksProvider,
		Config:           cfg,
	})

	// 10. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
