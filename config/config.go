package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort         string        `env:"SERVER_PORT" envDefault:"8080"`
	ServerHost         string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	ShutdownTimeout    time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`

	// Database configuration
	DBDriver       string        `env:"DB_DRIVER" envDefault:"postgres"`
	DBHost         string        `env:"DB_HOST" envDefault:"localhost"`
	DBPort         string        `env:"DB_PORT" envDefault:"5432"`
	DBUser         string        `env:"DB_USER"`
	DBPassword     string        `env:"DB_PASSWORD"`
	DBName         string        `env:"DB_NAME" envDefault:"recipebox"`
	DBSSLMode      string        `env:"DB_SSL_MODE" envDefault:"disable"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"25"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	SQLitePath     string        `env:"SQLITE_PATH" envDefault:"recipebox.db"`
	MigrationsDir  string        `env:"MIGRATIONS_DIR"`
	AutoMigrate    bool          `env:"DB_AUTO_MIGRATE" envDefault:"true"`

	// Redis configuration
	RedisURL      string `env:"REDIS_URL"`
	RedisHost     string `env:"REDIS_HOST"`
	RedisPort     string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Sentinel deployments
	RedisSentinelAddrs    []string `env:"REDIS_SENTINEL_ADDRS" envSeparator:","`
	RedisMasterName       string   `env:"REDIS_MASTER_NAME"`
	RedisSentinelPassword string   `env:"REDIS_SENTINEL_PASSWORD"`

	// Recipe cache configuration
	CacheBackend  string        `env:"CACHE_BACKEND" envDefault:"ristretto"`
	CacheCodec    string        `env:"CACHE_CODEC" envDefault:"json"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"10m"`
	CacheDisabled bool          `env:"CACHE_DISABLED" envDefault:"false"`

	// Object storage configuration
	S3BucketName    string `env:"S3_BUCKET_NAME" envDefault:"recipebox-images"`
	AWSRegion       string `env:"AWS_REGION" envDefault:"us-east-1"`
	S3Endpoint      string `env:"S3_ENDPOINT"`
	S3UsePathStyle  bool   `env:"S3_USE_PATH_STYLE" envDefault:"false"`
	S3PublicBaseURL string `env:"S3_PUBLIC_BASE_URL"`

	// Users and images
	BcryptCost          int   `env:"BCRYPT_COST" envDefault:"10"`
	ImageMaxBytes       int64 `env:"IMAGE_MAX_BYTES" envDefault:"10485760"`
	ImageUploadsPerHour int   `env:"IMAGE_UPLOADS_PER_HOUR" envDefault:"20"`

	// Observability
	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`
	OTelEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"recipebox"`
}

// secretFields maps docker secret file names to the config values they override.
func (c *Config) secretFields() map[string]*string {
	return map[string]*string{
		"db_user":        &c.DBUser,
		"db_password":    &c.DBPassword,
		"redis_password": &c.RedisPassword,
		"redis_url":      &c.RedisURL,

		"redis_sentinel_password": &c.RedisSentinelPassword,
	}
}

// LoadConfig reads the environment, overlays docker secrets and validates the result.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{Environment: env}

	if env == Development {
		if err := LoadDotEnv(); err != nil {
			return nil, err
		}
	}

	if err := ParseEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// CI injects secrets as plain environment variables
	if env != CI {
		loadSecrets(cfg)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// DSN returns the lib/pq connection string for the configured database.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// RedisEnabled reports whether any Redis connection settings are present.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != "" || len(c.RedisSentinelAddrs) > 0
}

// loadSecrets overrides sensitive values with docker secrets when the files exist
func loadSecrets(cfg *Config) {
	for name, field := range cfg.secretFields() {
		if value := readSecret(name); value != "" {
			*field = value
		}
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
