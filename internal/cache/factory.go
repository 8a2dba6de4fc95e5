package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/pageza/recipebox/backend/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	BackendRedis     = "redis"
	BackendRistretto = "ristretto"
	BackendBigCache  = "bigcache"
)

const (
	redisGenTTL       = 24 * time.Hour
	bigCacheHardMaxMB = 256
)

// Open builds the cache selected by cfg.CacheBackend. rdb may be nil unless
// the backend is redis; the caller keeps ownership of it.
func Open[V any](ctx context.Context, namespace string, cfg *config.Config, rdb redis.UniversalClient, logger *zap.Logger) (*Cache[V], error) {
	codec, err := NewCodec[V](cfg.CacheCodec)
	if err != nil {
		return nil, err
	}
	opts := Options[V]{
		Namespace: namespace,
		Codec:     codec,
		TTL:       cfg.CacheTTL,
		Disabled:  cfg.CacheDisabled,
		Logger:    logger,
	}
	if cfg.CacheDisabled {
		return New(opts)
	}

	switch cfg.CacheBackend {
	case BackendRedis:
		p, err := NewRedisProvider(rdb, false)
		if err != nil {
			return nil, err
		}
		opts.Provider = p
		opts.GenStore = NewRedisGenStore(rdb, redisGenTTL)
	case BackendRistretto:
		p, err := NewRistrettoProvider(DefaultRistrettoConfig())
		if err != nil {
			return nil, fmt.Errorf("ristretto provider: %w", err)
		}
		opts.Provider = p
	case BackendBigCache:
		p, err := NewBigCacheProvider(ctx, cfg.CacheTTL, bigCacheHardMaxMB)
		if err != nil {
			return nil, fmt.Errorf("bigcache provider: %w", err)
		}
		opts.Provider = p
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
	return New(opts)
}
