// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/orbitfit/mealplan/internal/domain/client"
	"github.com/orbitfit/mealplan/internal/domain/nutrition"
	"github.com/orbitfit/mealplan/internal/domain/recipe"
)

// RecipeFactory provides methods to create test recipes
type RecipeFactory struct {
	faker *gofakeit.Faker
}

// NewRecipeFactory creates a new recipe factory with seeded faker
func NewRecipeFactory(seed int64) *RecipeFactory {
	return &RecipeFactory{
		faker: gofakeit.New(seed),
	}
}

// Safe returns a recipe whose name and ingredients trigger no allergen or
// diet keyword
func (f *RecipeFactory) Safe() *recipe.Recipe {
	return NewRecipeBuilder().
		WithName(fmt.Sprintf("Ensalada %d", f.faker.Number(1, 9999))).
		WithIngredients("lechuga", "tomate", "aceite de oliva").
		WithMacros(f.Macros()).
		Build()
}

// Macros returns plausible per-serving macros
func (f *RecipeFactory) Macros() nutrition.Macros {
	return nutrition.Macros{
		Calories: float64(f.faker.Number(80, 900)),
		ProteinG: float64(f.faker.Number(0, 60)),
		CarbsG:   float64(f.faker.Number(0, 120)),
		FatG:     float64(f.faker.Number(0, 50)),
	}
}

// RecipeBuilder provides a fluent interface for building test recipes
type RecipeBuilder struct {
	id          uuid.UUID
	name        string
	ingredients []recipe.IngredientRef
	legacy      []recipe.IngredientRef
	macros      nutrition.Macros
	servings    int
}

// NewRecipeBuilder creates a new recipe builder with default values
func NewRecipeBuilder() *RecipeBuilder {
	return &RecipeBuilder{
		id:       uuid.New(),
		name:     gofakeit.Noun(),
		servings: 1,
	}
}

// WithID fixes the recipe ID
func (rb *RecipeBuilder) WithID(id uuid.UUID) *RecipeBuilder {
	rb.id = id
	return rb
}

// WithName sets the recipe name
func (rb *RecipeBuilder) WithName(name string) *RecipeBuilder {
	rb.name = name
	return rb
}

// WithIngredients sets plain ingredient descriptors
func (rb *RecipeBuilder) WithIngredients(texts ...string) *RecipeBuilder {
	rb.ingredients = recipe.PlainIngredients(texts...)
	return rb
}

// WithIngredientRefs sets ingredient descriptors as given
func (rb *RecipeBuilder) WithIngredientRefs(refs ...recipe.IngredientRef) *RecipeBuilder {
	rb.ingredients = refs
	return rb
}

// WithLegacyIngredients sets the legacy ingredient descriptors
func (rb *RecipeBuilder) WithLegacyIngredients(refs ...recipe.IngredientRef) *RecipeBuilder {
	rb.legacy = refs
	return rb
}

// WithMacros sets per-serving macros
func (rb *RecipeBuilder) WithMacros(m nutrition.Macros) *RecipeBuilder {
	rb.macros = m
	return rb
}

// WithServings sets the number of servings
func (rb *RecipeBuilder) WithServings(servings int) *RecipeBuilder {
	rb.servings = servings
	return rb
}

// Build constructs the recipe without validation
func (rb *RecipeBuilder) Build() *recipe.Recipe {
	return &recipe.Recipe{
		ID:                rb.id,
		Name:              rb.name,
		Ingredients:       rb.ingredients,
		LegacyIngredients: rb.legacy,
		PerServing:        rb.macros,
		Servings:          rb.servings,
	}
}

// ProfileBuilder builds client profiles
type ProfileBuilder struct {
	profile client.Profile
}

// NewProfileBuilder starts a profile with no restrictions
func NewProfileBuilder() *ProfileBuilder {
	return &ProfileBuilder{profile: client.Profile{
		ClientID:          uuid.New(),
		FullName:          gofakeit.Name(),
		DietaryPreference: client.NoRestriction,
	}}
}

// WithClientID fixes the client ID
func (pb *ProfileBuilder) WithClientID(id uuid.UUID) *ProfileBuilder {
	pb.profile.ClientID = id
	return pb
}

// WithAllergens sets the allergen tags
func (pb *ProfileBuilder) WithAllergens(tags ...string) *ProfileBuilder {
	pb.profile.Allergens = tags
	return pb
}

// WithDiet sets the dietary preference
func (pb *ProfileBuilder) WithDiet(diet string) *ProfileBuilder {
	pb.profile.DietaryPreference = diet
	return pb
}

// Build returns the profile
func (pb *ProfileBuilder) Build() *client.Profile {
	p := pb.profile
	return &p
}
