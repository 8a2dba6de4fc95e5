package main

import (
	"context"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/database"
	"github.com/pageza/recipebox/backend/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrationsDir string

var rootCmd = &cobra.Command{
	Use:           "recipeboxctl",
	Short:         "recipeboxctl manages the recipebox database",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&migrationsDir, "migrations", "migrations", "Directory holding the SQL migration files")
	rootCmd.AddCommand(migrateCmd, rollbackCmd, seedCmd)
}

// withDB loads the configuration and opens the database for one command.
func withDB(ctx context.Context, fn func(cfg *config.Config, db *database.DB, logger *zap.Logger) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger, err := logging.New(config.GetEnvironment(), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(cfg, db, logger)
}
