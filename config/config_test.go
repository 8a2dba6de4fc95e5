package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV", "test")
	t.Setenv("CI", "")
	t.Setenv("SECRETS_DIR", t.TempDir())
	t.Setenv("DB_USER", "postgres")
	t.Setenv("DB_PASSWORD", "postgres")
}

func TestLoadConfig(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "recipes")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("CACHE_CODEC", "msgpack")
	t.Setenv("CACHE_TTL", "2m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Test, cfg.Environment)
	assert.Equal(t, "db", cfg.DBHost)
	assert.Equal(t, "recipes", cfg.DBName)
	assert.Equal(t, "redis", cfg.CacheBackend)
	assert.Equal(t, "msgpack", cfg.CacheCodec)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "host=db port=5432 user=postgres password=postgres dbname=recipes sslmode=disable", cfg.DSN())
}

func TestLoadConfigWithDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "ristretto", cfg.CacheBackend)
	assert.Equal(t, "json", cfg.CacheCodec)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, int64(10<<20), cfg.ImageMaxBytes)
	assert.False(t, cfg.RedisEnabled())
}

func TestLoadConfigReadsSecrets(t *testing.T) {
	setBaseEnv(t)
	dir := os.Getenv("SECRETS_DIR")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "db_password"), []byte("from-secret\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "redis_url"), []byte("redis://cache:6379/1"), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "from-secret", cfg.DBPassword)
	assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)
	assert.True(t, cfg.RedisEnabled())
}

func TestLoadConfigSkipsSecretsInCI(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CI", "true")
	dir := os.Getenv("SECRETS_DIR")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "db_password"), []byte("from-secret"), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, CI, cfg.Environment)
	assert.Equal(t, "postgres", cfg.DBPassword)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			ServerPort:    "8080",
			DBDriver:      "sqlite",
			SQLitePath:    ":memory:",
			CacheBackend:  "ristretto",
			CacheCodec:    "json",
			CacheTTL:      time.Minute,
			BcryptCost:    10,
			ImageMaxBytes: 1024,
			LogLevel:      "info",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.DBDriver = "mysql" }, wantErr: "DB_DRIVER"},
		{name: "postgres without password", mutate: func(c *Config) {
			c.DBDriver = "postgres"
			c.DBHost = "localhost"
			c.DBName = "recipes"
			c.DBUser = "postgres"
		}, wantErr: "db_password"},
		{name: "redis backend without redis", mutate: func(c *Config) { c.CacheBackend = "redis" }, wantErr: "REDIS_URL"},
		{name: "redis backend over sentinel", mutate: func(c *Config) {
			c.CacheBackend = "redis"
			c.RedisSentinelAddrs = []string{"sentinel:26379"}
			c.RedisMasterName = "mymaster"
		}},
		{name: "sentinel without master", mutate: func(c *Config) { c.RedisSentinelAddrs = []string{"sentinel:26379"} }, wantErr: "REDIS_MASTER_NAME"},
		{name: "master without sentinels", mutate: func(c *Config) { c.RedisMasterName = "mymaster" }, wantErr: "REDIS_SENTINEL_ADDRS"},
		{name: "unknown codec", mutate: func(c *Config) { c.CacheCodec = "gob" }, wantErr: "CACHE_CODEC"},
		{name: "zero ttl", mutate: func(c *Config) { c.CacheTTL = 0 }, wantErr: "CACHE_TTL"},
		{name: "bcrypt cost too high", mutate: func(c *Config) { c.BcryptCost = 40 }, wantErr: "BCRYPT_COST"},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: "LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRedisOptions(t *testing.T) {
	tests := []struct {
		name       string
		cfg        Config
		wantAddrs  []string
		wantMaster string
		wantDB     int
		wantErr    bool
	}{
		{
			name:      "host and port",
			cfg:       Config{RedisHost: "cache", RedisPort: "6380", RedisDB: 2},
			wantAddrs: []string{"cache:6380"},
			wantDB:    2,
		},
		{
			name:      "url wins over host",
			cfg:       Config{RedisURL: "redis://:pw@redis.internal:6379/3", RedisHost: "ignored", RedisPort: "1"},
			wantAddrs: []string{"redis.internal:6379"},
			wantDB:    3,
		},
		{
			name: "sentinel wins over url",
			cfg: Config{
				RedisURL:           "redis://redis.internal:6379/0",
				RedisSentinelAddrs: []string{"s1:26379", "s2:26379"},
				RedisMasterName:    "mymaster",
			},
			wantAddrs:  []string{"s1:26379", "s2:26379"},
			wantMaster: "mymaster",
		},
		{name: "sentinel without master", cfg: Config{RedisSentinelAddrs: []string{"s1:26379"}}, wantErr: true},
		{name: "bad url", cfg: Config{RedisURL: "://nope"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := tt.cfg.RedisOptions()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAddrs, opts.Addrs)
			assert.Equal(t, tt.wantMaster, opts.MasterName)
			assert.Equal(t, tt.wantDB, opts.DB)
		})
	}
}

func TestRedisOptionsPasswords(t *testing.T) {
	cfg := Config{
		RedisSentinelAddrs:    []string{"s1:26379"},
		RedisMasterName:       "mymaster",
		RedisPassword:         "master-pass",
		RedisSentinelPassword: "sentinel-pass",
	}
	opts, err := cfg.RedisOptions()
	require.NoError(t, err)
	assert.Equal(t, "master-pass", opts.Password)
	assert.Equal(t, "sentinel-pass", opts.SentinelPassword)

	opts, err = (&Config{RedisURL: "redis://:url-pass@localhost:6379/0"}).RedisOptions()
	require.NoError(t, err)
	assert.Equal(t, "url-pass", opts.Password)
}

func TestLoadConfigSentinel(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("REDIS_SENTINEL_ADDRS", "s1:26379,s2:26379")
	t.Setenv("REDIS_MASTER_NAME", "mymaster")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, []string{"s1:26379", "s2:26379"}, cfg.RedisSentinelAddrs)
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "https://bucket.s3.amazonaws.com", publicBaseURL(&Config{S3BucketName: "bucket"}))
	assert.Equal(t, "http://minio:9000/bucket", publicBaseURL(&Config{
		S3BucketName:   "bucket",
		S3Endpoint:     "http://minio:9000/",
		S3UsePathStyle: true,
	}))
	assert.Equal(t, "https://cdn.test", publicBaseURL(&Config{S3PublicBaseURL: "https://cdn.test/"}))
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DOTENV_FROM_FILE=file\nDOTENV_PRESET=file\n"), 0o600))

	t.Setenv("DOTENV_FROM_FILE", "")
	require.NoError(t, os.Unsetenv("DOTENV_FROM_FILE"))
	t.Setenv("DOTENV_PRESET", "env")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "file", os.Getenv("DOTENV_FROM_FILE"))
	assert.Equal(t, "env", os.Getenv("DOTENV_PRESET"), "existing variables win")

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}
