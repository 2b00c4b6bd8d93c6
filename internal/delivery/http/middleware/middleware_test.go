package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-species-social-backend/internal/domain"
	"go-species-social-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) {
		fromCtx, _ := c.Request.Context().Value(domain.KeyRequestID).(string)
		c.String(http.StatusOK, c.GetString("RequestID")+"|"+fromCtx)
	})

	t.Run("mints an id when absent", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/ping", nil)
		id := w.Header().Get("X-Request-ID")
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, id+"|"+id, w.Body.String())
	})

	t.Run("reuses a valid inbound id", func(t *testing.T) {
		in := uuid.NewString()
		w := perform(r, http.MethodGet, "/ping", map[string]string{"X-Request-ID": in})
		assert.Equal(t, in, w.Header().Get("X-Request-ID"))
	})

	t.Run("replaces a malformed inbound id", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/ping", map[string]string{"X-Request-ID": "<script>"})
		assert.NotEqual(t, "<script>", w.Header().Get("X-Request-ID"))
	})
}

func signHS256(t *testing.T, secret, sub string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": exp.Unix(),
	})
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestAuthMiddleware(t *testing.T) {
	const secret = "test-secret"
	r := gin.New()
	r.Use(RequestID(), AuthMiddleware(AuthConfig{Secret: secret}))
	r.GET("/me", func(c *gin.Context) {
		fromCtx, _ := c.Request.Context().Value(domain.KeyUserID).(string)
		assert.Equal(t, string(CurrentUserID(c)), fromCtx)
		c.String(http.StatusOK, string(CurrentUserID(c)))
	})

	userID := uuid.NewString()

	t.Run("accepts a valid token", func(t *testing.T) {
		tok := signHS256(t, secret, userID, time.Now().Add(time.Hour))
		w := perform(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer " + tok})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, userID, w.Body.String())
	})

	t.Run("rejects a missing header", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/me", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects a wrong secret", func(t *testing.T) {
		tok := signHS256(t, "other", userID, time.Now().Add(time.Hour))
		w := perform(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer " + tok})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		tok := signHS256(t, secret, userID, time.Now().Add(-time.Hour))
		w := perform(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer " + tok})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects a non-uuid subject", func(t *testing.T) {
		tok := signHS256(t, secret, "alice", time.Now().Add(time.Hour))
		w := perform(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer " + tok})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects a malformed token", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer a.b.c"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRateLimitMiddleware_InMemoryFallback(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(RateLimitConfig{Limit: 2, Window: time.Minute, KeyPrefix: "rl:test:"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	headers := map[string]string{"X-Forwarded-For": "203.0.113.7"}
	w1 := perform(r, http.MethodGet, "/x", headers)
	w2 := perform(r, http.MethodGet, "/x", headers)
	w3 := perform(r, http.MethodGet, "/x", headers)

	assert.Equal(t, http.StatusOK, w1.Code)
	assert.Equal(t, "1", w1.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, http.StatusTooManyRequests, w3.Code)
	assert.NotEmpty(t, w3.Header().Get("Retry-After"))
	assert.Equal(t, "0", w3.Header().Get("X-RateLimit-Remaining"))
}

func TestMemoryWindow_ResetsAfterWindow(t *testing.T) {
	m := newMemoryWindow()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	count, _ := m.incr("k", time.Minute, now)
	assert.Equal(t, 1, count)
	count, _ = m.incr("k", time.Minute, now.Add(30*time.Second))
	assert.Equal(t, 2, count)
	count, resetAt := m.incr("k", time.Minute, now.Add(61*time.Second))
	assert.Equal(t, 1, count)
	assert.Equal(t, now.Add(121*time.Second), resetAt)

	other, _ := m.incr("other", time.Minute, now)
	assert.Equal(t, 1, other)
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/missing", func(c *gin.Context) { _ = c.Error(apperror.NotFound("User not found")) })
	r.GET("/boom", func(c *gin.Context) { _ = c.Error(errors.New("pq: connection refused")) })
	r.GET("/internal", func(c *gin.Context) { _ = c.Error(apperror.Internal(errors.New("secret detail"))) })

	w := perform(r, http.MethodGet, "/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "User not found")

	w = perform(r, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")

	w = perform(r, http.MethodGet, "/internal", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret detail")
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware("https://app.example.com, https://www.example.com/"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodOptions, "/x", map[string]string{"Origin": "https://www.example.com"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://www.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = perform(r, http.MethodOptions, "/x", map[string]string{"Origin": "https://evil.example.net"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = perform(r, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
