package redis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	mu     sync.RWMutex
	client *redis.Client
)

// ErrNotConfigured is returned by Initialize when no URL was provided.
var ErrNotConfigured = errors.New("redis: REDIS_URL not configured")

type Config struct {
	URL      string // redis://host:port or rediss://host:port for TLS
	Password string // overrides any password embedded in URL
}

// Client returns the shared client, or nil when Redis is not in use.
// Callers must handle nil by falling back to in-process state.
func Client() *redis.Client {
	mu.RLock()
	defer mu.RUnlock()
	return client
}

// Initialize connects and pings. On failure the shared client stays nil.
func Initialize(ctx context.Context, cfg Config) error {
	if cfg.URL == "" {
		return ErrNotConfigured
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return fmt.Errorf("redis: invalid URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if opts.TLSConfig != nil {
		opts.TLSConfig.MinVersion = tls.VersionTLS12
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolSize = 10
	opts.MinIdleConns = 2

	c := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx).Err(); err != nil {
		_ = c.Close()
		return fmt.Errorf("redis: connection failed: %w", err)
	}

	SetClient(c)
	return nil
}

// SetClient swaps the shared client. Passing nil disables Redis.
func SetClient(c *redis.Client) {
	mu.Lock()
	client = c
	mu.Unlock()
}

func HealthCheck(ctx context.Context) error {
	c := Client()
	if c == nil {
		return errors.New("redis: client not initialized")
	}
	return c.Ping(ctx).Err()
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if client == nil {
		return nil
	}
	err := client.Close()
	client = nil
	return err
}
