package main

import (
	"context"
	"testing"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/database"
	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestSeed_Idempotent(t *testing.T) {
	db, err := database.OpenSQLite(":memory:", &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{BcryptCost: bcrypt.MinCost}
	ctx := context.Background()

	require.NoError(t, seed(ctx, cfg, db, zap.NewNop()))
	require.NoError(t, seed(ctx, cfg, db, zap.NewNop()))

	var users, recipes, steps int64
	db.Gorm.Model(&models.User{}).Count(&users)
	db.Gorm.Model(&models.Recipe{}).Count(&recipes)
	db.Gorm.Model(&models.Step{}).Count(&steps)
	assert.EqualValues(t, len(seedUsers), users)
	assert.EqualValues(t, len(seedUsers)*len(seedRecipes), recipes)
	assert.EqualValues(t, len(seedUsers)*len(seedRecipes)*3, steps)
}

func TestRootCommand(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["migrate"])
	assert.True(t, names["rollback"])
	assert.True(t, names["seed"])
}
