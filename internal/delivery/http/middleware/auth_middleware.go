package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go-species-social-backend/internal/delivery/http/response"
	"go-species-social-backend/internal/domain"
	"go-species-social-backend/pkg/auth"
	"go-species-social-backend/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthConfig selects how bearer tokens are verified. HS256 tokens need
// Secret; RS256 tokens need a JWKS provider.
type AuthConfig struct {
	Secret string
	JWKS   *auth.Provider
}

// AuthMiddleware verifies the bearer token and stores the subject as the
// current user id under domain.KeyUserID.
func AuthMiddleware(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			rejectUnauthorized(c, "missing_token", "Authorization header required")
			return
		}

		token, err := jwt.Parse(tokenString, cfg.keyFunc, jwt.WithValidMethods([]string{"HS256", "RS256"}))
		if err != nil || !token.Valid {
			rejectUnauthorized(c, "invalid_token", "Invalid token")
			return
		}

		sub, err := token.Claims.GetSubject()
		if err != nil || !domain.UserID(sub).Valid() {
			rejectUnauthorized(c, "invalid_subject", "Invalid token subject")
			return
		}

		c.Set(string(domain.KeyUserID), sub)
		ctx := context.WithValue(c.Request.Context(), domain.KeyUserID, sub)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (cfg AuthConfig) keyFunc(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if cfg.Secret == "" {
			return nil, errors.New("HS256 token received but JWT_SECRET is not configured")
		}
		return []byte(cfg.Secret), nil
	case *jwt.SigningMethodRSA:
		if cfg.JWKS == nil {
			return nil, errors.New("RS256 token received but JWKS_URL is not configured")
		}
		return cfg.JWKS.KeyFunc(token)
	}
	return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func rejectUnauthorized(c *gin.Context, reason, message string) {
	security.DefaultLogger().LogUnauthorized(
		c.Request.Context(),
		c.ClientIP(),
		c.GetHeader("User-Agent"),
		c.GetString("RequestID"),
		reason,
	)
	response.Error(c, http.StatusUnauthorized, message, nil)
	c.Abort()
}

// CurrentUserID returns the id stored by AuthMiddleware.
func CurrentUserID(c *gin.Context) domain.UserID {
	return domain.UserID(c.GetString(string(domain.KeyUserID)))
}
