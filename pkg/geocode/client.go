package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go-species-social-backend/internal/domain"
	"go-species-social-backend/pkg/logger"
	"go-species-social-backend/pkg/metrics"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const breakerName = "geocoder"

type Config struct {
	BaseURL       string
	APIKey        string
	UserAgent     string
	Timeout       time.Duration
	RatePerSecond float64 // <= 0 disables client-side throttling
	Burst         int
}

// Client forward-geocodes addresses against a Nominatim-compatible search
// endpoint. Calls are throttled client-side and guarded by a circuit breaker
// so a failing provider does not slow every recommendation request.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	userAgent  string
	limiter    *rate.Limiter
	cb         *gobreaker.CircuitBreaker[*domain.Coordinates]
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[*domain.Coordinates](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		// Open after 5 consecutive failures, or >= 50% failures over 10+ requests
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= 5 {
				return true
			}
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.L().Warn("Geocoder circuit breaker state change", "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
		// Context cancellation is the caller's doing, not the provider's
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		userAgent:  cfg.UserAgent,
		limiter:    rate.NewLimiter(limit, burst),
		cb:         cb,
	}
}

// ForwardGeocode returns (nil, nil) when the provider has no match.
func (c *Client) ForwardGeocode(ctx context.Context, address string) (*domain.Coordinates, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		metrics.GeocodeRequests.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("geocode: rate limiter: %w", err)
	}

	coords, err := c.cb.Execute(func() (*domain.Coordinates, error) {
		return c.search(ctx, address)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.GeocodeRequests.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("geocode: %w", err)
	case err != nil:
		metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return nil, err
	case coords == nil:
		metrics.GeocodeRequests.WithLabelValues("unresolved").Inc()
		return nil, nil
	}
	metrics.GeocodeRequests.WithLabelValues("resolved").Inc()
	return coords, nil
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (c *Client) search(ctx context.Context, address string) (*domain.Coordinates, error) {
	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "jsonv2")
	q.Set("limit", "1")
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("geocode: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("geocode: unexpected status %d", resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&results); err != nil {
		return nil, fmt.Errorf("geocode: decode response: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode: invalid latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode: invalid longitude %q: %w", results[0].Lon, err)
	}
	return &domain.Coordinates{Latitude: lat, Longitude: lon}, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
