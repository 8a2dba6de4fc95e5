package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/pageza/recipebox/backend/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DB represents the database connection
type DB struct {
	*sql.DB
	Gorm *gorm.DB
}

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*DB, error) {
	gormCfg := &gorm.Config{Logger: gormLogger(cfg), TranslateError: true}

	switch cfg.DBDriver {
	case DriverPostgres:
		log.Info("connecting to database",
			zap.String("host", cfg.DBHost),
			zap.String("port", cfg.DBPort),
			zap.String("user", cfg.DBUser),
			zap.String("name", cfg.DBName),
		)

		sqlDB, err := sql.Open("postgres", cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("error opening database: %w", err)
		}
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.DBConnLifetime)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := sqlDB.PingContext(pingCtx); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("error connecting to the database: %w", err)
		}

		gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormCfg)
		if err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("error initializing gorm: %w", err)
		}
		log.Info("successfully connected to database")
		return &DB{DB: sqlDB, Gorm: gdb}, nil

	case DriverSQLite:
		db, err := OpenSQLite(cfg.SQLitePath, gormCfg)
		if err != nil {
			return nil, err
		}
		log.Info("opened sqlite database", zap.String("path", cfg.SQLitePath))
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

// OpenSQLite opens a SQLite database. In-memory databases are limited to a
// single connection so every query sees the same data. Driver errors are
// always translated, so unique violations surface as gorm.ErrDuplicatedKey.
func OpenSQLite(path string, gormCfg *gorm.Config) (*DB, error) {
	if gormCfg == nil {
		gormCfg = &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	}
	gormCfg.TranslateError = true
	gdb, err := gorm.Open(sqlite.Open(path), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("error opening sqlite database: %w", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("error getting sqlite handle: %w", err)
	}
	if path == ":memory:" || strings.Contains(path, "mode=memory") {
		sqlDB.SetMaxOpenConns(1)
	}
	return &DB{DB: sqlDB, Gorm: gdb}, nil
}

// HealthCheck checks if the database is accessible
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.PingContext(ctx)
}

func gormLogger(cfg *config.Config) logger.Interface {
	if cfg.Environment == config.Development {
		return logger.Default.LogMode(logger.Info)
	}
	return logger.Default.LogMode(logger.Warn)
}
