package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	DBUrl       string
	FrontendURL string
	// Auth: HS256 shared secret and/or RS256 keys from a JWKS endpoint
	JWTSecret string
	JWKSURL   string
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds           int
	RateLimitGlobalThreshold         int
	RateLimitRecommendationThreshold int
	// Geocoding collaborator
	GeocoderURL           string
	GeocoderAPIKey        string
	GeocoderUserAgent     string
	GeocoderTimeout       time.Duration
	GeocoderRatePerSecond float64
	GeocoderBurst         int
	// Recommendations
	RecommendationDefaultLimit int
}

func LoadConfig() (*Config, error) {
	// Load .env file when present (local development only)
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		DBUrl:       getEnv("DATABASE_URL", ""),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		JWKSURL:     getEnv("JWKS_URL", ""),
		// Redis/Upstash Configuration
		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
		// Rate Limiting Configuration (with sensible defaults)
		RateLimitWindowSeconds:           getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitGlobalThreshold:         getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
		RateLimitRecommendationThreshold: getEnvInt("RATE_LIMIT_RECOMMENDATION_THRESHOLD", 20),
		// Geocoding (Nominatim-compatible search endpoint)
		GeocoderURL:           strings.TrimRight(getEnv("GEOCODER_URL", "https://nominatim.openstreetmap.org"), "/"),
		GeocoderAPIKey:        getEnv("GEOCODER_API_KEY", ""),
		GeocoderUserAgent:     getEnv("GEOCODER_USER_AGENT", "species-social-backend/1.0"),
		GeocoderTimeout:       time.Duration(getEnvInt("GEOCODER_TIMEOUT_SECONDS", 5)) * time.Second,
		GeocoderRatePerSecond: getEnvFloat("GEOCODER_RATE_PER_SECOND", 1),
		GeocoderBurst:         getEnvInt("GEOCODER_BURST", 1),
		// Recommendations
		RecommendationDefaultLimit: getEnvInt("RECOMMENDATION_DEFAULT_LIMIT", 10),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}

	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	if cfg.JWTSecret == "" && cfg.JWKSURL == "" {
		log.Println("WARNING: neither JWT_SECRET nor JWKS_URL is set. All protected routes will reject requests.")
	}

	if cfg.RecommendationDefaultLimit < 1 {
		cfg.RecommendationDefaultLimit = 10
	}

	return cfg, nil
}

// Environment is the deployment label used in security logs.
func (c *Config) Environment() string {
	if c.GinMode == "release" {
		return "production"
	}
	return "development"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}
