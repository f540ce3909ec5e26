package recipe

import "errors"

var (
	ErrNameRequired    = errors.New("recipe name is required")
	ErrInvalidServings = errors.New("servings must be greater than 0")
	ErrNegativeMacros  = errors.New("per-serving macros must not be negative")
	ErrRecipeNotFound  = errors.New("recipe not found")
)
