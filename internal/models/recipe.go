package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// StringArray is an ordered list of strings stored as a JSON document
type StringArray []string

// Value implements the driver.Valuer interface
func (a StringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringArray", value)
	}

	return json.Unmarshal(bytes, a)
}

// GormDBDataType picks jsonb on postgres and plain json elsewhere.
func (StringArray) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "json"
}

// Recipe is the parent row of a recipe. TotalTimeInMin is always cook + prep.
type Recipe struct {
	ID             uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedTS      time.Time   `gorm:"column:created_ts;not null;index" json:"created_ts"`
	UpdatedTS      time.Time   `gorm:"column:updated_ts;not null" json:"updated_ts"`
	AuthorID       uuid.UUID   `gorm:"type:uuid;not null;index" json:"author_id"`
	CookTimeInMin  int         `gorm:"column:cook_time_in_min" json:"cook_time_in_min"`
	PrepTimeInMin  int         `gorm:"column:prep_time_in_min" json:"prep_time_in_min"`
	TotalTimeInMin int         `gorm:"column:total_time_in_min" json:"total_time_in_min"`
	Title          string      `gorm:"not null" json:"title"`
	Cuisine        string      `json:"cuisine"`
	Servings       int         `json:"servings"`
	Ingredients    StringArray `gorm:"not null" json:"ingredients"`
}

func (Recipe) TableName() string { return "recipes" }

// RecomputeTotal keeps the derived total in sync with cook and prep time.
func (r *Recipe) RecomputeTotal() {
	r.TotalTimeInMin = r.CookTimeInMin + r.PrepTimeInMin
}

// Step is one ordered instruction of a recipe
type Step struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	Position int       `gorm:"not null" json:"position"`
	Items    string    `gorm:"not null" json:"items"`
	RecipeID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
}

func (Step) TableName() string { return "steps" }

// NutritionInformation is the single nutrition row attached to a recipe
type NutritionInformation struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	Calories             int       `json:"calories"`
	CholesterolInMg      float64   `gorm:"column:cholesterol_in_mg" json:"cholesterol_in_mg"`
	SodiumInMg           int       `gorm:"column:sodium_in_mg" json:"sodium_in_mg"`
	CarbohydratesInGrams float64   `gorm:"column:carbohydrates_in_grams" json:"carbohydrates_in_grams"`
	ProteinInGrams       float64   `gorm:"column:protein_in_grams" json:"protein_in_grams"`
	RecipeID             uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"-"`
}

func (NutritionInformation) TableName() string { return "nutrition_information" }

// RecipeImage records an uploaded image object. The object key is the last
// path segment of URL.
type RecipeImage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	URL       string    `gorm:"column:url;not null" json:"url"`
	MD5       string    `gorm:"column:md5" json:"-"`
	Size      int64     `json:"-"`
	RecipeID  uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	CreatedAt time.Time `json:"-"`
}

func (RecipeImage) TableName() string { return "recipe_images" }

// All lists every model in dependency order for migrations.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Recipe{},
		&Step{},
		&NutritionInformation{},
		&RecipeImage{},
	}
}
