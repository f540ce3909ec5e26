package mealplan

import "errors"

var (
	// Structural errors
	ErrInvalidPlanStructure = errors.New("invalid plan structure")
	ErrInvalidSlotConfig    = errors.New("invalid meal slot configuration")

	// Lifecycle errors
	ErrPlanAlreadyExists = errors.New("client already has an active plan")
	ErrPlanNotFound      = errors.New("plan not found")
	ErrPlanArchived      = errors.New("plan is archived")

	// Editing errors
	ErrInvalidCopyTarget  = errors.New("source and target days must belong to the plan")
	ErrInvalidItemContent = errors.New("item needs a recipe reference or a custom name")
	ErrInvalidPortions    = errors.New("portions must be greater than 0")
	ErrMealNotFound       = errors.New("meal not found in plan")
	ErrItemNotFound       = errors.New("item not found in plan")
)
