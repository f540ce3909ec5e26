// Package gorm provides GORM model definitions for the application
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/orbitfit/mealplan/internal/domain/recipe"
)

// PlanModel represents the GORM model for weekly plans
type PlanModel struct {
	ID         uuid.UUID       `gorm:"type:char(36);primaryKey"`
	ClientID   uuid.UUID       `gorm:"type:char(36);not null;index"`
	ReviewDate *datatypes.Date `gorm:"column:review_date"`
	Active     bool            `gorm:"not null;index"`
	ArchivedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Relationships
	Days []DayModel `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE"`
}

// DayModel represents one weekday of a plan
type DayModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	PlanID    uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_plan_days_plan_dow"`
	DayOfWeek int       `gorm:"not null;uniqueIndex:idx_plan_days_plan_dow;check:chk_plan_days_dow,day_of_week BETWEEN 1 AND 7"`

	Meals []MealModel `gorm:"foreignKey:DayID;constraint:OnDelete:CASCADE"`
}

// MealModel represents a meal slot within a day
type MealModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	DayID     uuid.UUID `gorm:"type:char(36);not null;index"`
	Name      string    `gorm:"type:varchar(100);not null"`
	Position  int       `gorm:"not null"`
	IsSkipped bool      `gorm:"not null"`

	Items []ItemModel `gorm:"foreignKey:MealID;constraint:OnDelete:CASCADE"`
}

// ItemModel represents a food entry. custom_name is the entry itself when
// recipe_id is null and a display override otherwise.
type ItemModel struct {
	ID         uuid.UUID  `gorm:"type:char(36);primaryKey"`
	MealID     uuid.UUID  `gorm:"type:char(36);not null;index"`
	RecipeID   *uuid.UUID `gorm:"type:char(36);index;check:chk_plan_items_content,recipe_id IS NOT NULL OR custom_name IS NOT NULL"`
	CustomName *string    `gorm:"type:varchar(255)"`
	Portions   float64    `gorm:"not null"`
	Position   int        `gorm:"not null"`
}

// RecipeModel represents the GORM model for catalogue recipes. Per-serving
// macros fall back to the legacy macros_* columns when unset.
type RecipeModel struct {
	ID              uuid.UUID                                 `gorm:"type:char(36);primaryKey"`
	Name            string                                    `gorm:"type:varchar(255);not null;index"`
	Ingredients     datatypes.JSONSlice[recipe.IngredientRef] `gorm:"column:ingredients"`
	IngredientsData datatypes.JSONSlice[recipe.IngredientRef] `gorm:"column:ingredients_data"`
	Servings        int                                       `gorm:"not null;default:1"`

	KcalPerServing     *float64 `gorm:"column:kcal_per_serving"`
	ProteinGPerServing *float64 `gorm:"column:protein_g_per_serving"`
	CarbsGPerServing   *float64 `gorm:"column:carbs_g_per_serving"`
	FatGPerServing     *float64 `gorm:"column:fat_g_per_serving"`

	MacrosCalories *float64 `gorm:"column:macros_calories"`
	MacrosProteinG *float64 `gorm:"column:macros_protein_g"`
	MacrosCarbsG   *float64 `gorm:"column:macros_carbs_g"`
	MacrosFatG     *float64 `gorm:"column:macros_fat_g"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClientModel represents the client profile columns used for planning
type ClientModel struct {
	ID                uuid.UUID   `gorm:"type:char(36);primaryKey"`
	FullName          string      `gorm:"type:varchar(255)"`
	Allergens         StringSlice `gorm:"type:json"`
	DietaryPreference string      `gorm:"type:varchar(50)"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// StringSlice custom type for handling string slices in JSON
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// BeforeCreate hook for PlanModel
func (p *PlanModel) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for RecipeModel
func (r *RecipeModel) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Servings <= 0 {
		r.Servings = 1
	}
	return nil
}

// BeforeCreate hook for ItemModel
func (i *ItemModel) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Portions <= 0 {
		i.Portions = 1
	}
	return nil
}

// Table names

func (PlanModel) TableName() string {
	return "meal_plans"
}

func (DayModel) TableName() string {
	return "plan_days"
}

func (MealModel) TableName() string {
	return "plan_meals"
}

func (ItemModel) TableName() string {
	return "plan_items"
}

func (RecipeModel) TableName() string {
	return "recipes"
}

func (ClientModel) TableName() string {
	return "clients"
}

// AllModels lists every model for AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&ClientModel{},
		&RecipeModel{},
		&PlanModel{},
		&DayModel{},
		&MealModel{},
		&ItemModel{},
	}
}
