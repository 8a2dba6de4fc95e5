package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pageza/recipebox/backend/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient creates a Redis client and pings it. Sentinel settings yield
// a failover client that follows the current master.
func NewRedisClient(ctx context.Context, cfg *config.Config, log *zap.Logger) (redis.UniversalClient, error) {
	opts, err := cfg.RedisOptions()
	if err != nil {
		return nil, err
	}

	client := redis.NewUniversalClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	fields := []zap.Field{zap.String("addrs", strings.Join(opts.Addrs, ","))}
	if opts.MasterName != "" {
		fields = append(fields, zap.String("master", opts.MasterName))
	}
	log.Info("successfully connected to redis", fields...)
	return client, nil
}
