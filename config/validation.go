package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	validDrivers       = []string{"postgres", "sqlite"}
	validCacheBackends = []string{"redis", "ristretto", "bigcache"}
	validCacheCodecs   = []string{"json", "msgpack", "cbor"}
	validLogLevels     = []string{"debug", "info", "warn", "error"}
)

// ValidateConfig checks every setting and reports all problems at once
func ValidateConfig(cfg *Config) error {
	var errors []ValidationError

	if cfg.ServerPort == "" {
		errors = append(errors, ValidationError{"SERVER_PORT", "is required"})
	}

	if !contains(validDrivers, cfg.DBDriver) {
		errors = append(errors, ValidationError{"DB_DRIVER", fmt.Sprintf("must be one of %s", strings.Join(validDrivers, ", "))})
	}
	if cfg.DBDriver == "postgres" {
		if cfg.DBHost == "" {
			errors = append(errors, ValidationError{"DB_HOST", "is required for postgres"})
		}
		if cfg.DBName == "" {
			errors = append(errors, ValidationError{"DB_NAME", "is required for postgres"})
		}
		if cfg.DBUser == "" {
			errors = append(errors, ValidationError{"db_user", "secret or DB_USER is required for postgres"})
		}
		if cfg.DBPassword == "" {
			errors = append(errors, ValidationError{"db_password", "secret or DB_PASSWORD is required for postgres"})
		}
	}
	if cfg.DBDriver == "sqlite" && cfg.SQLitePath == "" {
		errors = append(errors, ValidationError{"SQLITE_PATH", "is required for sqlite"})
	}

	if !contains(validCacheBackends, cfg.CacheBackend) {
		errors = append(errors, ValidationError{"CACHE_BACKEND", fmt.Sprintf("must be one of %s", strings.Join(validCacheBackends, ", "))})
	}
	if cfg.CacheBackend == "redis" && !cfg.RedisEnabled() {
		errors = append(errors, ValidationError{"REDIS_URL", "REDIS_URL, REDIS_HOST or REDIS_SENTINEL_ADDRS is required for the redis cache backend"})
	}
	if len(cfg.RedisSentinelAddrs) > 0 && cfg.RedisMasterName == "" {
		errors = append(errors, ValidationError{"REDIS_MASTER_NAME", "is required with REDIS_SENTINEL_ADDRS"})
	}
	if cfg.RedisMasterName != "" && len(cfg.RedisSentinelAddrs) == 0 {
		errors = append(errors, ValidationError{"REDIS_SENTINEL_ADDRS", "is required with REDIS_MASTER_NAME"})
	}
	if !contains(validCacheCodecs, cfg.CacheCodec) {
		errors = append(errors, ValidationError{"CACHE_CODEC", fmt.Sprintf("must be one of %s", strings.Join(validCacheCodecs, ", "))})
	}
	if cfg.CacheTTL <= 0 {
		errors = append(errors, ValidationError{"CACHE_TTL", "must be positive"})
	}

	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		errors = append(errors, ValidationError{"BCRYPT_COST", "must be between 4 and 31"})
	}
	if cfg.ImageMaxBytes <= 0 {
		errors = append(errors, ValidationError{"IMAGE_MAX_BYTES", "must be positive"})
	}
	if cfg.ImageUploadsPerHour < 0 {
		errors = append(errors, ValidationError{"IMAGE_UPLOADS_PER_HOUR", "must not be negative"})
	}
	if cfg.Environment == Production && cfg.S3BucketName == "" {
		errors = append(errors, ValidationError{"S3_BUCKET_NAME", "is required in production"})
	}
	if !contains(validLogLevels, strings.ToLower(cfg.LogLevel)) {
		errors = append(errors, ValidationError{"LOG_LEVEL", fmt.Sprintf("must be one of %s", strings.Join(validLogLevels, ", "))})
	}

	if len(errors) > 0 {
		msgs := make([]string, len(errors))
		for i, e := range errors {
			msgs[i] = e.Error()
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(msgs, "\n"))
	}

	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
