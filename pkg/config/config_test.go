package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arrfetch/sonarr-wanted/pkg/wanted"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sonarr-wanted.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Port != 80 {
		t.Errorf("Port = %d, want 80", cfg.Port)
	}
	if !cfg.IncludeEnded || !cfg.OnlyMonitored {
		t.Errorf("IncludeEnded = %v, OnlyMonitored = %v, want both true", cfg.IncludeEnded, cfg.OnlyMonitored)
	}
	if cfg.PageSize != 50 {
		t.Errorf("PageSize = %d, want 50", cfg.PageSize)
	}
	if cfg.Limit.String() != "1" {
		t.Errorf("Limit = %v, want 1", cfg.Limit)
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfigFile(t, `
base_url = "http://sonarr.local"
port = 8989
api_key = "secret"
include_ended = false
page_size = 25
limit = 3
redis_addr = "localhost:6379"
cache_ttl = "90s"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.BaseURL != "http://sonarr.local" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Port != 8989 {
		t.Errorf("Port = %d, want 8989", cfg.Port)
	}
	if cfg.IncludeEnded {
		t.Error("IncludeEnded = true, want false (explicit file value)")
	}
	if !cfg.OnlyMonitored {
		t.Error("OnlyMonitored = false, want true (default untouched)")
	}
	if cfg.PageSize != 25 {
		t.Errorf("PageSize = %d, want 25", cfg.PageSize)
	}
	if cfg.Limit.String() != "3" {
		t.Errorf("Limit = %v, want 3", cfg.Limit)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q", cfg.RedisAddr)
	}
	if cfg.CacheTTL != 90*time.Second {
		t.Errorf("CacheTTL = %v, want 90s", cfg.CacheTTL)
	}
}

func TestLoad_BooleanLimitForms(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "false means unlimited", value: "false", want: "unlimited"},
		{name: "true means one", value: "true", want: "1"},
		{name: "integer stays", value: "7", want: "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, `
base_url = "http://sonarr.local"
api_key = "secret"
limit = `+tt.value+`
`)
			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if got := cfg.Limit.String(); got != tt.want {
				t.Errorf("Limit = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
base_url = "http://sonarr.local"
port = 8989
api_key = "from-file"
limit = 2
`)

	t.Setenv("SONARR_API_KEY", "from-env")
	t.Setenv("SONARR_PAGE_SIZE", "10")
	t.Setenv("SONARR_LIMIT", "false")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.APIKey != "from-env" {
		t.Errorf("APIKey = %q, want env override", cfg.APIKey)
	}
	if cfg.PageSize != 10 {
		t.Errorf("PageSize = %d, want 10", cfg.PageSize)
	}
	if !cfg.Limit.IsUnlimited() {
		t.Errorf("Limit = %v, want unlimited from env", cfg.Limit)
	}
	// File value survives where no env override exists.
	if cfg.Port != 8989 {
		t.Errorf("Port = %d, want 8989", cfg.Port)
	}
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("SONARR_BASE_URL", "http://sonarr.local")
	t.Setenv("SONARR_API_KEY", "secret")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.BaseURL != "http://sonarr.local" || cfg.APIKey != "secret" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidLimitInFile(t *testing.T) {
	path := writeConfigFile(t, `
base_url = "http://sonarr.local"
api_key = "secret"
limit = 0
`)
	if _, err := Load(path); err == nil {
		t.Error("Load() expected error for limit = 0, got nil")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := Default()
		cfg.BaseURL = "http://sonarr.local"
		cfg.APIKey = "secret"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing base url",
			mutate:  func(c *Config) { c.BaseURL = "" },
			wantMsg: "base_url",
		},
		{
			name:    "bad scheme",
			mutate:  func(c *Config) { c.BaseURL = "sonarr.local" },
			wantMsg: "base_url",
		},
		{
			name:    "missing api key",
			mutate:  func(c *Config) { c.APIKey = "" },
			wantMsg: "api_key",
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Port = -1 },
			wantMsg: "port",
		},
		{
			name:    "zero page size",
			mutate:  func(c *Config) { c.PageSize = 0 },
			wantMsg: "page_size",
		},
		{
			name:    "uninitialized limit",
			mutate:  func(c *Config) { c.Limit = wanted.Limit{} },
			wantMsg: "limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantMsg == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Validate() error = %q, want mention of %q", err, tt.wantMsg)
			}
		})
	}
}
