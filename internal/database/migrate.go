package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pageza/recipebox/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RunMigrations executes all SQL migration files in the migrations directory.
// SQLite, or an empty directory, falls back to gorm auto-migration.
func RunMigrations(db *gorm.DB, migrationsDir string, log *zap.Logger) error {
	if db.Dialector.Name() == DriverSQLite || migrationsDir == "" {
		log.Info("using gorm auto-migration", zap.String("dialect", db.Dialector.Name()))
		if err := db.AutoMigrate(models.All()...); err != nil {
			return fmt.Errorf("failed to auto-migrate: %w", err)
		}
		return nil
	}

	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Name() < files[j].Name()
	})

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, file := range files {
		name := file.Name()
		if file.IsDir() || !isForwardMigration(name) {
			continue
		}

		var count int64
		if err := db.Table("migrations").Where("name = ?", name).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if count > 0 {
			log.Debug("skipping migration (already applied)", zap.String("name", name))
			continue
		}

		content, err := os.ReadFile(filepath.Join(migrationsDir, name))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", name, err)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(content)).Error; err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", name, err)
			}
			if err := tx.Exec("INSERT INTO migrations (name) VALUES (?)", name).Error; err != nil {
				return fmt.Errorf("failed to record migration %s: %w", name, err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		log.Info("applied migration", zap.String("name", name))
	}

	return nil
}

// RollbackLast reverts the most recently applied migration using its
// <name>_rollback.sql companion file.
func RollbackLast(db *gorm.DB, migrationsDir string, log *zap.Logger) (string, error) {
	var last struct{ Name string }
	res := db.Table("migrations").Select("name").Order("id DESC").Limit(1).Scan(&last)
	if res.Error != nil {
		return "", fmt.Errorf("failed to get last migration: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return "", errors.New("no migrations to roll back")
	}

	rollbackFile := strings.TrimSuffix(last.Name, ".sql") + rollbackSuffix
	content, err := os.ReadFile(filepath.Join(migrationsDir, rollbackFile))
	if err != nil {
		return "", fmt.Errorf("failed to read rollback file %s: %w", rollbackFile, err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(string(content)).Error; err != nil {
			return fmt.Errorf("failed to execute rollback %s: %w", rollbackFile, err)
		}
		if err := tx.Exec("DELETE FROM migrations WHERE name = ?", last.Name).Error; err != nil {
			return fmt.Errorf("failed to remove migration record %s: %w", last.Name, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	log.Info("rolled back migration", zap.String("name", last.Name))
	return last.Name, nil
}

const rollbackSuffix = "_rollback.sql"

func isForwardMigration(name string) bool {
	return strings.HasSuffix(name, ".sql") && !strings.HasSuffix(name, rollbackSuffix)
}
