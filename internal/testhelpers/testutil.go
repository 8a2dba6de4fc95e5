package testhelpers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/recipebox/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword satisfies the account password rules.
const TestPassword = "Passw0rd!23"

// CreateTestUser inserts a user whose password is TestPassword.
func CreateTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	now := models.Now()
	user := &models.User{
		ID:             uuid.New(),
		Email:          email,
		FirstName:      "Test",
		LastName:       "User",
		PasswordHash:   string(hash),
		AccountCreated: now,
		AccountUpdated: now,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestRecipe inserts a recipe with two steps and nutrition for authorID.
func CreateTestRecipe(t *testing.T, db *gorm.DB, authorID uuid.UUID, title string) *models.Recipe {
	t.Helper()
	now := models.Now()
	recipe := &models.Recipe{
		ID:            uuid.New(),
		CreatedTS:     now,
		UpdatedTS:     now,
		AuthorID:      authorID,
		CookTimeInMin: 15,
		PrepTimeInMin: 10,
		Title:         title,
		Cuisine:       "Italian",
		Servings:      2,
		Ingredients:   models.StringArray{"pasta", "tomato"},
	}
	recipe.RecomputeTotal()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(recipe).Error; err != nil {
			return err
		}
		steps := []models.Step{
			{ID: uuid.New(), Position: 1, Items: "boil water", RecipeID: recipe.ID},
			{ID: uuid.New(), Position: 2, Items: "cook pasta", RecipeID: recipe.ID},
		}
		if err := tx.Create(&steps).Error; err != nil {
			return err
		}
		return tx.Create(&models.NutritionInformation{
			ID:                   uuid.New(),
			Calories:             500,
			CholesterolInMg:      1.5,
			SodiumInMg:           200,
			CarbohydratesInGrams: 60.5,
			ProteinInGrams:       12,
			RecipeID:             recipe.ID,
		}).Error
	})
	if err != nil {
		t.Fatalf("failed to create test recipe: %v", err)
	}
	return recipe
}

// BasicAuth returns an Authorization header value for email and password.
func BasicAuth(email, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%s:%s", email, password)))
}

// JSONMarshal is a helper function to marshal JSON for testing
func JSONMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal JSON: %v", err)
	}
	return data
}
