package types

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/backend/internal/apperr"
	"github.com/pageza/recipebox/backend/internal/models"
)

const validCreateBody = `{
	"cook_time_in_min": 15,
	"prep_time_in_min": 10,
	"title": "Pasta",
	"cuisine": "Italian",
	"servings": 2,
	"ingredients": ["pasta", "salt"],
	"steps": [{"position": 2, "items": "boil"}, {"position": 1, "items": "salt water"}],
	"nutrition_information": {
		"calories": 400,
		"cholesterol_in_mg": 1.5,
		"sodium_in_mg": 120,
		"carbohydrates_in_grams": 70.2,
		"protein_in_grams": 12
	}
}`

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	return ve.Fields
}

func TestParseCreateRecipeRequest(t *testing.T) {
	req, err := ParseCreateRecipeRequest([]byte(validCreateBody))
	require.NoError(t, err)
	assert.Equal(t, 15, *req.CookTimeInMin)
	assert.Equal(t, "Pasta", req.Title)
	assert.Len(t, req.Steps, 2)
	assert.Equal(t, 400, *req.NutritionInformation.Calories)
}

func TestParseCreateRecipeRequestRejects(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"cook time not multiple of 5", `{"cook_time_in_min": 7}`, "cook_time_in_min"},
		{"missing title", `{"cook_time_in_min": 5, "prep_time_in_min": 5, "cuisine": "x", "servings": 1, "ingredients": [], "steps": [], "nutrition_information": {"calories": 1, "cholesterol_in_mg": 1, "sodium_in_mg": 1, "carbohydrates_in_grams": 1, "protein_in_grams": 1}}`, "title"},
		{"servings too high", `{"servings": 6}`, "servings"},
		{"unknown field", `{"title": "x", "rating": 5}`, "rating"},
		{"step position zero", `{"steps": [{"position": 0, "items": "x"}]}`, "steps[0].position"},
		{"calories must be int", `{"nutrition_information": {"calories": 1.5}}`, "nutrition_information.calories"},
		{"partial nutrition", `{"nutrition_information": {"calories": 1}}`, "nutrition_information.sodium_in_mg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCreateRecipeRequest([]byte(tt.body))
			require.Error(t, err)
			assert.Contains(t, fieldsOf(t, err), tt.field)
		})
	}
}

func TestParseUpdateRecipeRequest(t *testing.T) {
	req := ParseUpdateRecipeRequest([]byte(`{"title": "Pasta Bolognese", "cook_time_in_min": 20}`))
	require.NoError(t, req.Validate())

	recipe := &models.Recipe{Title: "Pasta", CookTimeInMin: 15, PrepTimeInMin: 10, Servings: 2}
	req.Apply(recipe)
	assert.Equal(t, "Pasta Bolognese", recipe.Title)
	assert.Equal(t, 30, recipe.TotalTimeInMin)
	assert.Equal(t, 2, recipe.Servings)
}

func TestParseUpdateRecipeRequestRejects(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"empty", `{}`, "body"},
		{"blank", ``, "body"},
		{"forbidden author", `{"author_id": "x"}`, "author_id"},
		{"forbidden created_ts", `{"created_ts": "2020-01-01T00:00:00Z"}`, "created_ts"},
		{"unknown", `{"difficulty": "hard"}`, "difficulty"},
		{"servings range", `{"servings": 0}`, "servings"},
		{"prep multiple", `{"prep_time_in_min": 12}`, "prep_time_in_min"},
		{"null title", `{"title": null}`, "title"},
		{"empty title", `{"title": ""}`, "title"},
		{"bad step", `{"steps": [{"position": 1}]}`, "steps[0].items"},
		{"wrong type", `{"servings": "two"}`, "servings"},
		{"not an object", `[1,2]`, "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseUpdateRecipeRequest([]byte(tt.body)).Validate()
			require.Error(t, err)
			assert.Contains(t, fieldsOf(t, err), tt.field)
		})
	}
}

func TestParseUpdateUserRequest(t *testing.T) {
	req, err := ParseUpdateUserRequest([]byte(`{"firstname": "Ada", "password": "abcd1234"}`))
	require.NoError(t, err)
	assert.Equal(t, "Ada", *req.FirstName)
	assert.Nil(t, req.LastName)

	_, err = ParseUpdateUserRequest([]byte(`{"email": "new@example.com"}`))
	assert.Contains(t, fieldsOf(t, err), "email")

	_, err = ParseUpdateUserRequest([]byte(`{"password": "short"}`))
	assert.Contains(t, fieldsOf(t, err), "password")

	_, err = ParseUpdateUserRequest([]byte(`{"password": "has spaces 123"}`))
	assert.Contains(t, fieldsOf(t, err), "password")

	_, err = ParseUpdateUserRequest([]byte(`{}`))
	assert.Contains(t, fieldsOf(t, err), "body")
}

func TestStrongPassword(t *testing.T) {
	assert.True(t, StrongPassword("Abcdefgh1"))
	assert.True(t, StrongPassword("abcdefg1!"))
	assert.False(t, StrongPassword("Abcdefg1"), "length must exceed 8")
	assert.False(t, StrongPassword("abcdefghij"))
	assert.False(t, StrongPassword("abcdefgh_1"), "underscore is not a symbol")
}

func TestCreateUserRequestValidation(t *testing.T) {
	err := ValidateStruct(&CreateUserRequest{Email: "not-an-email", Password: "weak"})
	fields := fieldsOf(t, err)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")

	assert.NoError(t, ValidateStruct(&CreateUserRequest{Email: "cook@example.com", Password: "Str0ngPass"}))
}

func TestNewRecipeSnapshotOrdersSteps(t *testing.T) {
	id := uuid.New()
	recipe := &models.Recipe{ID: id, CreatedTS: time.Now().In(time.FixedZone("X", 3600)), Title: "Pasta"}
	steps := []models.Step{{Position: 3, Items: "c"}, {Position: 1, Items: "a"}, {Position: 2, Items: "b"}}

	snap := NewRecipeSnapshot(recipe, steps, nil)
	assert.Equal(t, []StepView{{1, "a"}, {2, "b"}, {3, "c"}}, snap.Steps)
	assert.Equal(t, []string{}, snap.Ingredients)
	assert.Nil(t, snap.NutritionInformation)
	assert.Equal(t, time.UTC, snap.CreatedTS.Location())
}

func TestCustomValidatorsRegistered(t *testing.T) {
	engine, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	for name, v := range map[string]*validator.Validate{"package": validate, "gin": engine} {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, v.Var(10, "multipleof=5"))
			assert.Error(t, v.Var(7, "multipleof=5"))
			assert.NoError(t, v.Var("Sup3rSecret!", "strongpassword"))
			assert.Error(t, v.Var("password", "strongpassword"))
		})
	}
}

func TestMustRegisterPanics(t *testing.T) {
	assert.Panics(t, func() { mustRegister(validator.New(), "", validateMultipleOf) })
}
