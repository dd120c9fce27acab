// Package config loads and validates the run configuration: a TOML file
// with environment variable overrides.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/arrfetch/sonarr-wanted/pkg/wanted"
	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

// Config is the validated run configuration.
type Config struct {
	// BaseURL is the Sonarr server URL (required).
	BaseURL string `env:"SONARR_BASE_URL"`

	// Port the Sonarr API listens on.
	Port int `env:"SONARR_PORT"`

	// APIKey authenticates against the Sonarr API (required).
	APIKey string `env:"SONARR_API_KEY"`

	// IncludeEnded keeps episodes of ended series in the output.
	IncludeEnded bool `env:"SONARR_INCLUDE_ENDED"`

	// OnlyMonitored restricts the listing to monitored episodes.
	OnlyMonitored bool `env:"SONARR_ONLY_MONITORED"`

	// PageSize is the number of records requested per API call. Higher
	// values mean bigger responses, lower values mean more calls.
	PageSize int `env:"SONARR_PAGE_SIZE"`

	// Limit caps emitted records per series; accepts an integer >= 1,
	// "true" (same as 1) or "false" (no cap).
	Limit wanted.Limit `env:"SONARR_LIMIT"`

	// RedisAddr enables the page cache when set ("host:port").
	RedisAddr string `env:"SONARR_REDIS_ADDR"`

	// CacheTTL is the page cache entry lifetime.
	CacheTTL time.Duration `env:"SONARR_CACHE_TTL"`
}

// fileConfig mirrors Config for TOML decoding. Pointer fields
// distinguish an absent key from an explicit zero so file values can
// override defaults without clobbering them.
type fileConfig struct {
	BaseURL       *string `toml:"base_url"`
	Port          *int    `toml:"port"`
	APIKey        *string `toml:"api_key"`
	IncludeEnded  *bool   `toml:"include_ended"`
	OnlyMonitored *bool   `toml:"only_monitored"`
	PageSize      *int    `toml:"page_size"`
	Limit         any     `toml:"limit"`
	RedisAddr     *string `toml:"redis_addr"`
	CacheTTL      *string `toml:"cache_ttl"`
}

// Default returns the configuration defaults.
func Default() Config {
	return Config{
		Port:          80,
		IncludeEnded:  true,
		OnlyMonitored: true,
		PageSize:      50,
		Limit:         wanted.MustFinite(1),
		CacheTTL:      60 * time.Second,
	}
}

// Load builds a configuration from defaults, an optional TOML file and
// environment overrides, then validates it. path may be empty to skip
// the file layer.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}

		var fc fileConfig
		if err := toml.Unmarshal(data, &fc); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
		if err := fc.apply(&cfg); err != nil {
			return Config{}, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// apply overlays the file values onto cfg.
func (fc *fileConfig) apply(cfg *Config) error {
	if fc.BaseURL != nil {
		cfg.BaseURL = *fc.BaseURL
	}
	if fc.Port != nil {
		cfg.Port = *fc.Port
	}
	if fc.APIKey != nil {
		cfg.APIKey = *fc.APIKey
	}
	if fc.IncludeEnded != nil {
		cfg.IncludeEnded = *fc.IncludeEnded
	}
	if fc.OnlyMonitored != nil {
		cfg.OnlyMonitored = *fc.OnlyMonitored
	}
	if fc.PageSize != nil {
		cfg.PageSize = *fc.PageSize
	}
	if fc.Limit != nil {
		limit, err := wanted.ParseLimit(fc.Limit)
		if err != nil {
			return err
		}
		cfg.Limit = limit
	}
	if fc.RedisAddr != nil {
		cfg.RedisAddr = *fc.RedisAddr
	}
	if fc.CacheTTL != nil {
		ttl, err := time.ParseDuration(*fc.CacheTTL)
		if err != nil {
			return fmt.Errorf("parse cache_ttl: %w", err)
		}
		cfg.CacheTTL = ttl
	}
	return nil
}

// Validate checks the configuration before any fetch happens.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	parsed, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("parse base_url %q: %w", c.BaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("base_url %q must use http or https", c.BaseURL)
	}
	if c.APIKey == "" {
		return fmt.Errorf("api_key is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be in 1..65535 (got %d)", c.Port)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("page_size must be >= 1 (got %d)", c.PageSize)
	}
	if c.Limit.IsZero() {
		return fmt.Errorf("limit must be an integer >= 1, true or false")
	}
	return nil
}
