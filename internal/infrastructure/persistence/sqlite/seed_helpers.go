package sqlite

import (
	"gorm.io/datatypes"

	"github.com/orbitfit/mealplan/internal/domain/recipe"
)

func plain(items ...string) datatypes.JSONSlice[recipe.IngredientRef] {
	return recipe.PlainIngredients(items...)
}

func structured(items ...map[string]any) datatypes.JSONSlice[recipe.IngredientRef] {
	refs := make([]recipe.IngredientRef, len(items))
	for i, it := range items {
		refs[i] = recipe.StructuredIngredient(it)
	}
	return refs
}

func f(v float64) *float64 {
	return &v
}
