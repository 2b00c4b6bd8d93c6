package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go-species-social-backend/internal/delivery/http/response"
	"go-species-social-backend/pkg/redis"
	"go-species-social-backend/pkg/security"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

type RateLimitConfig struct {
	Limit     int
	Window    time.Duration
	KeyPrefix string
	// KeyFunc defaults to the client IP
	KeyFunc func(*gin.Context) string
}

// INCR with a TTL set on the first hit of each window.
// Returns {count, ttl_seconds}.
var rateLimitScript = goredis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return {count, redis.call('TTL', KEYS[1])}
`)

// GlobalRateLimitConfig limits every route per client IP.
func GlobalRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:     limit,
		Window:    window,
		KeyPrefix: "rl:ip:",
	}
}

// RecommendationRateLimitConfig limits the recommendation route per
// authenticated user, since each call may fan out to the geocoder.
func RecommendationRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:     limit,
		Window:    window,
		KeyPrefix: "rl:recs:",
		KeyFunc: func(c *gin.Context) string {
			if id := CurrentUserID(c); id != "" {
				return string(id)
			}
			return c.ClientIP()
		},
	}
}

// RateLimitMiddleware counts requests in Redis when a client is available
// and falls back to a process-local fixed window otherwise.
func RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	if config.KeyFunc == nil {
		config.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	local := newMemoryWindow()

	return func(c *gin.Context) {
		key := config.KeyPrefix + config.KeyFunc(c)
		now := time.Now()

		var count int
		var resetAt time.Time
		var err error
		if client := redis.Client(); client != nil {
			count, resetAt, err = incrRedis(c.Request.Context(), client, key, config.Window)
			if err != nil {
				logRateLimitBackendError(c, err)
				count, resetAt = local.incr(key, config.Window, now)
			}
		} else {
			count, resetAt = local.incr(key, config.Window, now)
		}

		remaining := config.Limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", resetAt.UTC().Format(time.RFC3339))

		if count > config.Limit {
			retryAfter := int(resetAt.Sub(now).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			security.DefaultLogger().LogRateLimitTriggered(
				c.Request.Context(),
				c.ClientIP(),
				c.GetHeader("User-Agent"),
				c.GetString("RequestID"),
				c.FullPath(),
			)
			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func incrRedis(ctx context.Context, client *goredis.Client, key string, window time.Duration) (int, time.Time, error) {
	res, err := rateLimitScript.Run(ctx, client, []string{key}, int(window.Seconds())).Int64Slice()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit: %w", err)
	}
	if len(res) < 2 {
		return 0, time.Time{}, fmt.Errorf("redis rate limit: unexpected result %v", res)
	}
	return int(res[0]), time.Now().Add(time.Duration(res[1]) * time.Second), nil
}

type windowEntry struct {
	count   int
	resetAt time.Time
}

// memoryWindow is a fixed-window counter keyed by client. Expired entries
// are swept lazily on writes.
type memoryWindow struct {
	mu        sync.Mutex
	entries   map[string]*windowEntry
	lastSweep time.Time
}

func newMemoryWindow() *memoryWindow {
	return &memoryWindow{entries: make(map[string]*windowEntry)}
}

func (m *memoryWindow) incr(key string, window time.Duration, now time.Time) (int, time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastSweep) > 5*time.Minute {
		for k, e := range m.entries {
			if now.After(e.resetAt) {
				delete(m.entries, k)
			}
		}
		m.lastSweep = now
	}

	e, ok := m.entries[key]
	if !ok || now.After(e.resetAt) {
		e = &windowEntry{resetAt: now.Add(window)}
		m.entries[key] = e
	}
	e.count++
	return e.count, e.resetAt
}

func logRateLimitBackendError(c *gin.Context, err error) {
	security.DefaultLogger().Log(c.Request.Context(), security.SecurityEvent{
		Event:       security.EventRateLimitTriggered,
		SubjectType: "system",
		IP:          c.ClientIP(),
		RequestID:   c.GetString("RequestID"),
		Details: map[string]interface{}{
			"error_type": "redis_error",
			"error":      err.Error(),
		},
	})
}
