// Package sonarr provides the HTTP fetch capability for the
// wanted-missing listing, with rate limiting, caching, retry and error
// classification.
package sonarr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/arrfetch/sonarr-wanted/pkg/cache"
	"github.com/arrfetch/sonarr-wanted/pkg/wanted"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Prometheus metrics for Sonarr API operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sonarr_requests_total",
		Help: "Total Sonarr API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sonarr_request_duration_seconds",
		Help:    "Sonarr API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sonarr_errors_total",
		Help: "Total Sonarr API errors by class",
	}, []string{"class"})
)

const (
	missingEndpoint = "/api/wanted/missing"
	statusEndpoint  = "/api/system/status"

	// The listing is requested sorted by series title ascending; record
	// order within a page is the server's and is preserved downstream.
	sortKey = "series.title"
	sortDir = "asc"
)

// Client fetches wanted-missing pages from a Sonarr server.
// It implements wanted.PageFetcher.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	config     Config
	limiter    *rate.Limiter
	cache      *cache.Manager
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the Sonarr server URL, e.g. "http://sonarr.local".
	// A path prefix is preserved; any port in the URL is overridden by Port.
	BaseURL string

	// Port the Sonarr API listens on.
	Port int

	// APIKey is sent as the X-Api-Key header (required).
	APIKey string

	// OnlyMonitored restricts the listing to monitored episodes.
	OnlyMonitored bool

	// RequestTimeout bounds a single HTTP request.
	RequestTimeout time.Duration

	// RateLimit is the client-side request rate in requests per second.
	RateLimit float64
	RateBurst int

	// Retry policy for transient failures.
	Retry RetryConfig

	// Cache is an optional page cache; nil disables caching.
	Cache *cache.Manager
}

// DefaultConfig returns a safe default configuration for the given
// server and API key.
func DefaultConfig(baseURL, apiKey string) Config {
	return Config{
		BaseURL:        baseURL,
		Port:           80,
		APIKey:         apiKey,
		OnlyMonitored:  true,
		RequestTimeout: 30 * time.Second,
		RateLimit:      5,
		RateBurst:      2,
		Retry:          DefaultRetryConfig(),
	}
}

// New creates a new Sonarr client. Configuration errors surface here,
// before any request is made.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", cfg.BaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must use http or https", cfg.BaseURL)
	}
	if parsed.Hostname() == "" {
		return nil, fmt.Errorf("base url %q has no host", cfg.BaseURL)
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port must be in 1..65535 (got %d)", cfg.Port)
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 5
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 1
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryConfig()
	}

	base := &url.URL{
		Scheme: parsed.Scheme,
		Host:   parsed.Hostname() + ":" + strconv.Itoa(cfg.Port),
		Path:   parsed.Path,
	}

	logger := log.With().Str("component", "sonarr-client").Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL: base,
		config:  cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		cache:   cfg.Cache,
		logger:  logger,
	}, nil
}

// missingURL builds the wanted-missing listing URL for one page.
func (c *Client) missingURL(page, pageSize int) string {
	u := *c.baseURL
	u.Path += missingEndpoint

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))
	q.Set("sortKey", sortKey)
	q.Set("sortdir", sortDir)
	if c.config.OnlyMonitored {
		q.Set("monitored", "true")
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// FetchMissing retrieves one page of the wanted-missing listing.
// It implements wanted.PageFetcher.
func (c *Client) FetchMissing(ctx context.Context, page, pageSize int) (*wanted.MissingPage, error) {
	if page < 1 {
		return nil, fmt.Errorf("page must be >= 1 (got %d)", page)
	}
	if pageSize < 1 {
		return nil, fmt.Errorf("page size must be >= 1 (got %d)", pageSize)
	}

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(missingEndpoint).Observe(time.Since(startTime).Seconds())
	}()

	key := cache.PageKey{
		Host:      c.baseURL.Host,
		Monitored: c.config.OnlyMonitored,
		Page:      page,
		PageSize:  pageSize,
	}

	if c.cache != nil {
		cached, err := c.cache.GetPage(ctx, key)
		if err != nil && err != cache.ErrCacheMiss {
			c.logger.Warn().Err(err).Int("page", page).Msg("Cache get error")
		}
		if cached != nil {
			c.logger.Debug().Int("page", page).Msg("Serving page from cache")
			requestsTotal.WithLabelValues(missingEndpoint, "cache_hit").Inc()
			return cached, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	body, err := c.get(ctx, c.missingURL(page, pageSize), missingEndpoint)
	if err != nil {
		return nil, err
	}

	var result wanted.MissingPage
	if err := json.Unmarshal(body, &result); err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassServer)).Inc()
		return nil, fmt.Errorf("decode page %d: %w", page, err)
	}

	if c.cache != nil {
		if err := c.cache.SetPage(ctx, key, &result); err != nil {
			c.logger.Warn().Err(err).Int("page", page).Msg("Failed to cache page")
		}
	}

	return &result, nil
}

// Ping verifies connectivity and API key validity against the
// system-status endpoint.
func (c *Client) Ping(ctx context.Context) error {
	u := *c.baseURL
	u.Path += statusEndpoint

	_, err := c.get(ctx, u.String(), statusEndpoint)
	if err != nil {
		return fmt.Errorf("unable to connect to Sonarr at %s: %w", c.baseURL, err)
	}
	return nil
}

// get performs an authenticated GET with retry and error classification
// and returns the response body.
func (c *Client) get(ctx context.Context, rawURL, endpoint string) ([]byte, error) {
	var body []byte
	var errClass ErrorClass

	retryErr := retryWithBackoff(ctx, c.config.Retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			errClass = ErrorClassClient
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("X-Api-Key", c.config.APIKey)
		req.Header.Set("Accept", "application/json")

		resp, reqErr := c.httpClient.Do(req)
		if reqErr != nil {
			c.logger.Error().Err(reqErr).Str("endpoint", endpoint).Msg("HTTP request failed")
			errClass = classifyError(nil, reqErr)
			errorsTotal.WithLabelValues(string(errClass)).Inc()
			requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			return reqErr
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			errClass = classifyError(resp, nil)
			errorsTotal.WithLabelValues(string(errClass)).Inc()
			requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", resp.StatusCode).
				Str("error_class", string(errClass)).
				Msg("Sonarr request error")

			return &APIError{
				StatusCode: resp.StatusCode,
				ErrorClass: errClass,
				Endpoint:   endpoint,
				Message:    resp.Status,
			}
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			errClass = ErrorClassNetwork
			errorsTotal.WithLabelValues(string(errClass)).Inc()
			return fmt.Errorf("read response body: %w", err)
		}

		requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
		return nil
	}, func() ErrorClass {
		return errClass
	})

	if retryErr != nil {
		return nil, retryErr
	}
	return body, nil
}

// classifyError categorizes an error for observability and retry handling.
func classifyError(resp *http.Response, err error) ErrorClass {
	if err != nil {
		return ErrorClassNetwork
	}

	switch {
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return ErrorClassClient
	case resp.StatusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// BaseURL returns the resolved server address (for diagnostics).
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
