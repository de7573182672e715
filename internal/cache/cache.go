package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/code-geek/ai-project-template/internal/config"
)

// ErrNotFound is returned when a key is absent or expired
var ErrNotFound = errors.New("cache: key not found")

// Store is a minimal key-value cache with per-entry TTL
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Close() error
}

// New selects the cache backend from configuration
func New(cfg config.CacheConfig) (Store, error) {
	switch cfg.Backend {
	case "redis":
		return NewRedisStore(cfg.RedisURL)
	case "memory", "":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
