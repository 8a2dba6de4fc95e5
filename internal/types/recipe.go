package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/recipebox/backend/internal/apperr"
	"github.com/pageza/recipebox/backend/internal/models"
)

// StepInput is one step of a create or update payload
type StepInput struct {
	Position int    `json:"position" binding:"min=1"`
	Items    string `json:"items" binding:"required"`
}

// NutritionInput carries every nutrition value; all of them are required.
type NutritionInput struct {
	Calories             *int     `json:"calories" binding:"required"`
	CholesterolInMg      *float64 `json:"cholesterol_in_mg" binding:"required"`
	SodiumInMg           *int     `json:"sodium_in_mg" binding:"required"`
	CarbohydratesInGrams *float64 `json:"carbohydrates_in_grams" binding:"required"`
	ProteinInGrams       *float64 `json:"protein_in_grams" binding:"required"`
}

// Model converts the input to a row for recipeID.
func (n NutritionInput) Model(recipeID uuid.UUID) models.NutritionInformation {
	return models.NutritionInformation{
		ID:                   uuid.New(),
		Calories:             *n.Calories,
		CholesterolInMg:      *n.CholesterolInMg,
		SodiumInMg:           *n.SodiumInMg,
		CarbohydratesInGrams: *n.CarbohydratesInGrams,
		ProteinInGrams:       *n.ProteinInGrams,
		RecipeID:             recipeID,
	}
}

// CreateRecipeRequest represents the request body for creating a recipe
type CreateRecipeRequest struct {
	CookTimeInMin        *int            `json:"cook_time_in_min" binding:"required,min=0,multipleof=5"`
	PrepTimeInMin        *int            `json:"prep_time_in_min" binding:"required,min=0,multipleof=5"`
	Title                string          `json:"title" binding:"required"`
	Cuisine              string          `json:"cuisine" binding:"required"`
	Servings             *int            `json:"servings" binding:"required,min=1,max=5"`
	Ingredients          []string        `json:"ingredients" binding:"required"`
	Steps                []StepInput     `json:"steps" binding:"required,dive"`
	NutritionInformation *NutritionInput `json:"nutrition_information" binding:"required"`
}

// ParseCreateRecipeRequest decodes body strictly (unknown fields are rejected)
// and validates it.
func ParseCreateRecipeRequest(body []byte) (*CreateRecipeRequest, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()

	var req CreateRecipeRequest
	if err := dec.Decode(&req); err != nil {
		if field, ok := unknownField(err); ok {
			return nil, apperr.NewValidationError(field, "is not a recognized field")
		}
		return nil, translate(err, "")
	}
	if err := ValidateStruct(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

func unknownField(err error) (string, bool) {
	const prefix = "json: unknown field "
	msg := err.Error()
	if !strings.HasPrefix(msg, prefix) {
		return "", false
	}
	return strings.Trim(strings.TrimPrefix(msg, prefix), `"`), true
}

var (
	updateRecipeFields    = []string{"cook_time_in_min", "prep_time_in_min", "title", "cuisine", "servings", "ingredients", "steps", "nutrition_information"}
	updateRecipeForbidden = []string{"id", "created_ts", "updated_ts", "author_id"}
)

// UpdateRecipeRequest is a partial recipe update. Nil fields are left unchanged.
// Parsing never fails; problems are reported by Validate so that the caller
// can check existence and ownership first.
type UpdateRecipeRequest struct {
	CookTimeInMin        *int
	PrepTimeInMin        *int
	Title                *string
	Cuisine              *string
	Servings             *int
	Ingredients          *[]string
	Steps                *[]StepInput
	NutritionInformation *NutritionInput

	empty    bool
	problems apperr.ValidationError
}

// ParseUpdateRecipeRequest decodes a partial update payload.
func ParseUpdateRecipeRequest(body []byte) *UpdateRecipeRequest {
	req := &UpdateRecipeRequest{}

	raw, err := decodeObject(body)
	if err != nil {
		mergeInto(&req.problems, err)
		return req
	}
	if len(raw) == 0 {
		req.empty = true
		return req
	}

	ve := &req.problems
	checkKeys(ve, raw, updateRecipeFields, updateRecipeForbidden)

	var cook, prep, servings int
	if decodeMember(ve, raw, "cook_time_in_min", &cook) {
		checkVar(ve, "cook_time_in_min", cook, "min=0,multipleof=5")
		req.CookTimeInMin = &cook
	}
	if decodeMember(ve, raw, "prep_time_in_min", &prep) {
		checkVar(ve, "prep_time_in_min", prep, "min=0,multipleof=5")
		req.PrepTimeInMin = &prep
	}
	if decodeMember(ve, raw, "servings", &servings) {
		checkVar(ve, "servings", servings, "min=1,max=5")
		req.Servings = &servings
	}

	var title, cuisine string
	if decodeMember(ve, raw, "title", &title) {
		checkVar(ve, "title", title, "required")
		req.Title = &title
	}
	if decodeMember(ve, raw, "cuisine", &cuisine) {
		checkVar(ve, "cuisine", cuisine, "required")
		req.Cuisine = &cuisine
	}

	var ingredients []string
	if decodeMember(ve, raw, "ingredients", &ingredients) {
		req.Ingredients = &ingredients
	}

	var steps []StepInput
	if decodeMember(ve, raw, "steps", &steps) {
		for i := range steps {
			mergeInto(ve, translate(validate.Struct(&steps[i]), fmt.Sprintf("steps[%d].", i)))
		}
		req.Steps = &steps
	}

	var nutrition NutritionInput
	if decodeMember(ve, raw, "nutrition_information", &nutrition) {
		mergeInto(ve, translate(validate.Struct(&nutrition), "nutrition_information."))
		req.NutritionInformation = &nutrition
	}

	return req
}

// Validate reports an empty payload or any problem found while parsing.
func (r *UpdateRecipeRequest) Validate() error {
	if r.empty {
		return errEmptyBody()
	}
	return r.problems.OrNil()
}

// Apply merges the supplied fields into recipe and recomputes the total time.
func (r *UpdateRecipeRequest) Apply(recipe *models.Recipe) {
	if r.CookTimeInMin != nil {
		recipe.CookTimeInMin = *r.CookTimeInMin
	}
	if r.PrepTimeInMin != nil {
		recipe.PrepTimeInMin = *r.PrepTimeInMin
	}
	if r.Title != nil {
		recipe.Title = *r.Title
	}
	if r.Cuisine != nil {
		recipe.Cuisine = *r.Cuisine
	}
	if r.Servings != nil {
		recipe.Servings = *r.Servings
	}
	if r.Ingredients != nil {
		recipe.Ingredients = models.StringArray(*r.Ingredients)
	}
	recipe.RecomputeTotal()
}

func mergeInto(ve *apperr.ValidationError, err error) {
	if err == nil {
		return
	}
	if other, ok := err.(*apperr.ValidationError); ok {
		for field, msg := range other.Fields {
			ve.Add(field, msg)
		}
		return
	}
	ve.Add("body", err.Error())
}

// StepView is a step as returned to clients and cached
type StepView struct {
	Position int    `json:"position"`
	Items    string `json:"items"`
}

// NutritionView is the nutrition block as returned to clients and cached
type NutritionView struct {
	Calories             int     `json:"calories"`
	CholesterolInMg      float64 `json:"cholesterol_in_mg"`
	SodiumInMg           int     `json:"sodium_in_mg"`
	CarbohydratesInGrams float64 `json:"carbohydrates_in_grams"`
	ProteinInGrams       float64 `json:"protein_in_grams"`
}

// RecipeSnapshot is a recipe with its steps and nutrition as of one read or
// write. It is the value stored in the recipe cache and never includes images.
type RecipeSnapshot struct {
	ID                   uuid.UUID      `json:"id"`
	CreatedTS            time.Time      `json:"created_ts"`
	UpdatedTS            time.Time      `json:"updated_ts"`
	AuthorID             uuid.UUID      `json:"author_id"`
	CookTimeInMin        int            `json:"cook_time_in_min"`
	PrepTimeInMin        int            `json:"prep_time_in_min"`
	TotalTimeInMin       int            `json:"total_time_in_min"`
	Title                string         `json:"title"`
	Cuisine              string         `json:"cuisine"`
	Servings             int            `json:"servings"`
	Ingredients          []string       `json:"ingredients"`
	Steps                []StepView     `json:"steps"`
	NutritionInformation *NutritionView `json:"nutrition_information"`
}

// NewRecipeSnapshot assembles a snapshot with steps ordered by position.
func NewRecipeSnapshot(r *models.Recipe, steps []models.Step, n *models.NutritionInformation) RecipeSnapshot {
	s := RecipeSnapshot{
		ID:             r.ID,
		CreatedTS:      r.CreatedTS,
		UpdatedTS:      r.UpdatedTS,
		AuthorID:       r.AuthorID,
		CookTimeInMin:  r.CookTimeInMin,
		PrepTimeInMin:  r.PrepTimeInMin,
		TotalTimeInMin: r.TotalTimeInMin,
		Title:          r.Title,
		Cuisine:        r.Cuisine,
		Servings:       r.Servings,
		Ingredients:    append([]string{}, r.Ingredients...),
		Steps:          make([]StepView, 0, len(steps)),
	}
	for _, st := range steps {
		s.Steps = append(s.Steps, StepView{Position: st.Position, Items: st.Items})
	}
	if n != nil {
		s.NutritionInformation = &NutritionView{
			Calories:             n.Calories,
			CholesterolInMg:      n.CholesterolInMg,
			SodiumInMg:           n.SodiumInMg,
			CarbohydratesInGrams: n.CarbohydratesInGrams,
			ProteinInGrams:       n.ProteinInGrams,
		}
	}
	s.Normalize()
	return s
}

// Normalize puts a snapshot in canonical form: UTC timestamps, non-nil slices
// and steps ordered by position. Decoded cache entries go through it so hits
// and misses render identically.
func (s *RecipeSnapshot) Normalize() {
	s.CreatedTS = s.CreatedTS.UTC()
	s.UpdatedTS = s.UpdatedTS.UTC()
	if s.Ingredients == nil {
		s.Ingredients = []string{}
	}
	if s.Steps == nil {
		s.Steps = []StepView{}
	}
	sort.SliceStable(s.Steps, func(i, j int) bool {
		if s.Steps[i].Position != s.Steps[j].Position {
			return s.Steps[i].Position < s.Steps[j].Position
		}
		return s.Steps[i].Items < s.Steps[j].Items
	})
}

// ImageRef identifies an uploaded image
type ImageRef struct {
	ID  uuid.UUID `json:"id"`
	URL string    `json:"url"`
}

// NewImageRef returns nil when img is nil.
func NewImageRef(img *models.RecipeImage) *ImageRef {
	if img == nil {
		return nil
	}
	return &ImageRef{ID: img.ID, URL: img.URL}
}

// RecipeDetail is the read response: a snapshot plus the latest image or null.
type RecipeDetail struct {
	RecipeSnapshot
	Image *ImageRef `json:"image"`
}
