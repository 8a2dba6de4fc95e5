package main

import (
	"context"
	"errors"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/apperr"
	"github.com/pageza/recipebox/backend/internal/cache"
	"github.com/pageza/recipebox/backend/internal/database"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo users and recipes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(cfg *config.Config, db *database.DB, logger *zap.Logger) error {
			return seed(cmd.Context(), cfg, db, logger)
		})
	},
}

const seedPassword = "Seed!Passw0rd"

var seedUsers = []types.CreateUserRequest{
	{Email: "john.doe@example.com", FirstName: "John", LastName: "Doe", Password: seedPassword},
	{Email: "jane.smith@example.com", FirstName: "Jane", LastName: "Smith", Password: seedPassword},
}

var seedRecipes = []string{
	`{
		"cook_time_in_min": 20, "prep_time_in_min": 10, "title": "Spaghetti Carbonara", "cuisine": "Italian",
		"servings": 2, "ingredients": ["spaghetti", "eggs", "pecorino", "guanciale", "black pepper"],
		"steps": [
			{"position": 1, "items": "boil the pasta in salted water"},
			{"position": 2, "items": "crisp the guanciale"},
			{"position": 3, "items": "toss pasta with eggs, cheese and guanciale off the heat"}
		],
		"nutrition_information": {"calories": 720, "cholesterol_in_mg": 210, "sodium_in_mg": 900, "carbohydrates_in_grams": 80, "protein_in_grams": 32}
	}`,
	`{
		"cook_time_in_min": 30, "prep_time_in_min": 15, "title": "Chicken Tikka Masala", "cuisine": "Indian",
		"servings": 4, "ingredients": ["chicken thighs", "yogurt", "garam masala", "tomato", "cream"],
		"steps": [
			{"position": 1, "items": "marinate the chicken in yogurt and spices"},
			{"position": 2, "items": "grill the chicken"},
			{"position": 3, "items": "simmer in the tomato and cream sauce"}
		],
		"nutrition_information": {"calories": 540, "cholesterol_in_mg": 150, "sodium_in_mg": 1100, "carbohydrates_in_grams": 18, "protein_in_grams": 45}
	}`,
}

func seed(ctx context.Context, cfg *config.Config, db *database.DB, logger *zap.Logger) error {
	if err := database.RunMigrations(db.Gorm, migrationsDir, logger); err != nil {
		return err
	}

	// Seeding writes straight to the store; a running server's cache will
	// pick the rows up on its first read.
	noCache, err := cache.New(cache.Options[types.RecipeSnapshot]{Namespace: "recipe", Disabled: true})
	if err != nil {
		return err
	}
	users := service.NewUserService(db.Gorm, cfg.BcryptCost, logger)
	recipes := service.NewRecipeService(db.Gorm, noCache, nil, logger)

	for i := range seedUsers {
		req := seedUsers[i]
		user, err := users.Create(ctx, &req)
		if apperr.IsValidation(err) {
			logger.Info("user already seeded", zap.String("email", req.Email))
			continue
		}
		if err != nil {
			return err
		}

		for _, body := range seedRecipes {
			recipeReq, err := types.ParseCreateRecipeRequest([]byte(body))
			if err != nil {
				return errors.Join(errors.New("invalid seed recipe"), err)
			}
			recipe, err := recipes.Create(ctx, user.ID, recipeReq)
			if err != nil {
				return err
			}
			logger.Info("seeded recipe", zap.String("title", recipe.Title), zap.String("author", user.Email))
		}
	}
	return nil
}
