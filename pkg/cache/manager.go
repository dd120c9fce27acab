// Package cache provides a short-lived Redis cache for wanted-missing
// listing pages. Listings change whenever an episode downloads, so the
// TTL should stay small; the cache exists to absorb repeated runs against
// the same server, not to make pages durable.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/arrfetch/sonarr-wanted/pkg/wanted"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// DefaultTTL is the page entry lifetime when none is configured.
const DefaultTTL = 60 * time.Second

// pageEntry wraps a cached page with its storage timestamp.
type pageEntry struct {
	Page     wanted.MissingPage `json:"page"`
	CachedAt time.Time          `json:"cached_at"`
}

// Manager handles page caching operations with a Redis backend.
type Manager struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewManager creates a new cache manager with a Redis backend.
// ttl <= 0 selects DefaultTTL.
func NewManager(redisClient *redis.Client, ttl time.Duration) *Manager {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		redis: redisClient,
		ttl:   ttl,
	}
}

// GetPage retrieves a cached page by key.
// Returns ErrCacheMiss if the key doesn't exist.
func (m *Manager) GetPage(ctx context.Context, key PageKey) (*wanted.MissingPage, error) {
	data, err := m.redis.Get(ctx, key.String()).Bytes()
	if err != nil {
		if err == redis.Nil {
			CacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry pageEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	CacheHits.Inc()
	return &entry.Page, nil
}

// SetPage stores a page under the configured TTL.
func (m *Manager) SetPage(ctx context.Context, key PageKey, page *wanted.MissingPage) error {
	if page == nil {
		return fmt.Errorf("page cannot be nil")
	}

	entry := pageEntry{
		Page:     *page,
		CachedAt: time.Now(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := m.redis.Set(ctx, key.String(), data, m.ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Delete removes a cached page.
func (m *Manager) Delete(ctx context.Context, key PageKey) error {
	if err := m.redis.Del(ctx, key.String()).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}

// TTL returns the configured entry lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}
