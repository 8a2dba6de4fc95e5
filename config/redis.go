package config

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisOptions builds the client options for the configured Redis deployment.
// Sentinel settings win over REDIS_URL, which wins over REDIS_HOST/REDIS_PORT.
// With a master name set, redis.NewUniversalClient returns a failover client.
func (c *Config) RedisOptions() (*redis.UniversalOptions, error) {
	if len(c.RedisSentinelAddrs) > 0 {
		if c.RedisMasterName == "" {
			return nil, errors.New("REDIS_MASTER_NAME is required with REDIS_SENTINEL_ADDRS")
		}
		return &redis.UniversalOptions{
			Addrs:            c.RedisSentinelAddrs,
			MasterName:       c.RedisMasterName,
			Password:         c.RedisPassword,
			SentinelPassword: c.RedisSentinelPassword,
			DB:               c.RedisDB,
		}, nil
	}

	if c.RedisURL != "" {
		opts, err := redis.ParseURL(c.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		return &redis.UniversalOptions{
			Addrs:     []string{opts.Addr},
			Username:  opts.Username,
			Password:  opts.Password,
			DB:        opts.DB,
			TLSConfig: opts.TLSConfig,
		}, nil
	}

	return &redis.UniversalOptions{
		Addrs:    []string{fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)},
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}, nil
}
