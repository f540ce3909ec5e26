// Package recipe holds the read model of the recipe catalogue as seen by
// meal planning: a name, ingredient descriptors and per-serving macros.
package recipe

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/orbitfit/mealplan/internal/domain/nutrition"
)

// Recipe is read-only to the planning engine. Macros are normalized to one
// serving; fields missing in storage read as zero.
type Recipe struct {
	ID                uuid.UUID
	Name              string
	Ingredients       []IngredientRef
	LegacyIngredients []IngredientRef
	PerServing        nutrition.Macros
	Servings          int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// New validates and builds a catalogue recipe.
func New(name string, ingredients []IngredientRef, perServing nutrition.Macros, servings int) (*Recipe, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}
	if servings <= 0 {
		return nil, ErrInvalidServings
	}
	if perServing.Calories < 0 || perServing.ProteinG < 0 || perServing.CarbsG < 0 || perServing.FatG < 0 {
		return nil, ErrNegativeMacros
	}

	now := time.Now().UTC()
	return &Recipe{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(name),
		Ingredients: ingredients,
		PerServing:  perServing,
		Servings:    servings,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Surfaces returns the lowercased text a keyword check scans, in scan order:
// the name, then each current ingredient, then each legacy ingredient.
// Empty strings are omitted.
func (r *Recipe) Surfaces() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, 1+len(r.Ingredients)+len(r.LegacyIngredients))
	if name := strings.ToLower(r.Name); name != "" {
		out = append(out, name)
	}
	for _, list := range [][]IngredientRef{r.Ingredients, r.LegacyIngredients} {
		for _, ing := range list {
			if text := ing.normalized(); text != "" {
				out = append(out, text)
			}
		}
	}
	return out
}
