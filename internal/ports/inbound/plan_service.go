// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PlanService defines the use cases for weekly meal planning
type PlanService interface {
	// Commands
	CreatePlan(ctx context.Context, cmd CreatePlanCommand) (*PlanView, error)
	CopyDay(ctx context.Context, cmd CopyDayCommand) error
	UpdateReviewDate(ctx context.Context, planID uuid.UUID, date *time.Time) error
	AddItem(ctx context.Context, cmd AddItemCommand) (*ItemRef, error)
	RemoveItem(ctx context.Context, planID, itemID uuid.UUID) error
	UpdateItemPortions(ctx context.Context, planID, itemID uuid.UUID, portions float64) error
	SetMealSkipped(ctx context.Context, planID, mealID uuid.UUID, skipped bool) error
	ArchivePlan(ctx context.Context, planID uuid.UUID) error

	// Queries

	// GetPlan returns nil, nil when the client has no active plan.
	GetPlan(ctx context.Context, clientID uuid.UUID) (*PlanView, error)
}

// CreatePlanCommand creates a client's plan. Empty Slots use the configured default slots.
type CreatePlanCommand struct {
	ClientID uuid.UUID
	Slots    []string
}

// CopyDayCommand replaces the target day's content with the source day's.
type CopyDayCommand struct {
	PlanID      uuid.UUID
	SourceDayID uuid.UUID
	TargetDayID uuid.UUID
}

// AddItemCommand adds a recipe (RecipeID set) or a custom entry (CustomName set) to a meal.
type AddItemCommand struct {
	PlanID       uuid.UUID
	MealID       uuid.UUID
	RecipeID     *uuid.UUID
	CustomName   string
	NameOverride string
	Portions     float64
}

// ItemRef identifies a created item
type ItemRef struct {
	ItemID uuid.UUID `json:"item_id"`
	MealID uuid.UUID `json:"meal_id"`
}

// MacroTotals carries rounded display values
type MacroTotals struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// ViolationView flags an item's recipe as unsuitable for the client
type ViolationView struct {
	Kind string `json:"kind"`
	Tag  string `json:"tag"`
}

// PlanView is the resolved plan tree with totals and compliance flags
type PlanView struct {
	ID            uuid.UUID   `json:"id"`
	ClientID      uuid.UUID   `json:"client_id"`
	ReviewDate    *string     `json:"review_date"`
	Active        bool        `json:"active"`
	Slots         []string    `json:"slots"`
	Days          []DayView   `json:"days"`
	WeekTotal     MacroTotals `json:"week_total"`
	WeeklyAverage MacroTotals `json:"weekly_average"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// DayView is one weekday of a plan
type DayView struct {
	ID         uuid.UUID   `json:"id"`
	DayOfWeek  int         `json:"day_of_week"`
	Label      string      `json:"label"`
	HasContent bool        `json:"has_content"`
	Meals      []MealView  `json:"meals"`
	Totals     MacroTotals `json:"totals"`
}

// MealView is one slot of a day
type MealView struct {
	ID       uuid.UUID   `json:"id"`
	Slot     string      `json:"slot"`
	Position int         `json:"position"`
	Skipped  bool        `json:"is_skipped"`
	Items    []ItemView  `json:"items"`
	Totals   MacroTotals `json:"totals"`
}

// ItemView is one food entry with its resolved recipe
type ItemView struct {
	ID          uuid.UUID      `json:"id"`
	DisplayName string         `json:"display_name"`
	RecipeID    *uuid.UUID     `json:"recipe_id,omitempty"`
	RecipeName  string         `json:"recipe_name,omitempty"`
	CustomName  string         `json:"custom_name,omitempty"`
	Portions    float64        `json:"portions"`
	Position    int            `json:"position"`
	Totals      MacroTotals    `json:"totals"`
	Violation   *ViolationView `json:"violation,omitempty"`
}
