package v1

import (
	"net/http"
	"time"

	"go-species-social-backend/config"
	"go-species-social-backend/internal/delivery/http/middleware"
	"go-species-social-backend/internal/delivery/http/response"
	"go-species-social-backend/internal/domain"
	"go-species-social-backend/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	UserUC           domain.UserUsecase
	FriendshipUC     domain.FriendshipUsecase
	RecommendationUC domain.RecommendationUsecase
	HealthUC         domain.HealthUsecase
	Validate         *validator.Validate
	JWKSProvider     *auth.Provider
	Config           *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second

	r := gin.New()

	// CORS must be first so preflights short-circuit
	r.Use(middleware.CORSMiddleware(cfg.FrontendURL))
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	v1.Use(middleware.RateLimitMiddleware(middleware.GlobalRateLimitConfig(cfg.RateLimitGlobalThreshold, window)))

	v1.GET("/health", func(c *gin.Context) {
		if deps.HealthUC == nil {
			response.Success(c, http.StatusOK, "System operational", nil)
			return
		}
		status, err := deps.HealthUC.Check(c.Request.Context())
		if err != nil {
			response.Error(c, http.StatusServiceUnavailable, "Service degraded", status)
			return
		}
		response.Success(c, http.StatusOK, "System operational", status)
	})

	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(middleware.AuthConfig{Secret: cfg.JWTSecret, JWKS: deps.JWKSProvider}))
	{
		recLimiter := middleware.RateLimitMiddleware(middleware.RecommendationRateLimitConfig(cfg.RateLimitRecommendationThreshold, window))
		NewRecommendationHandler(protected, deps.RecommendationUC, cfg.RecommendationDefaultLimit, recLimiter)
		NewUserHandler(protected, deps.UserUC)
		NewFriendshipHandler(protected, deps.FriendshipUC, deps.Validate)
	}

	return r
}
