package main

import (
	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/database"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(_ *config.Config, db *database.DB, logger *zap.Logger) error {
			if err := database.RunMigrations(db.Gorm, migrationsDir, logger); err != nil {
				return err
			}
			logger.Info("migrations complete")
			return nil
		})
	},
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Roll back the most recently applied migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(_ *config.Config, db *database.DB, logger *zap.Logger) error {
			name, err := database.RollbackLast(db.Gorm, migrationsDir, logger)
			if err != nil {
				return err
			}
			cmd.Printf("rolled back %s\n", name)
			return nil
		})
	},
}
