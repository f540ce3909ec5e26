package compliance

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/orbitfit/mealplan/internal/domain/client"
	"github.com/orbitfit/mealplan/internal/domain/recipe"
)

type CheckerTestSuite struct {
	suite.Suite
	checker *Checker
}

func (suite *CheckerTestSuite) SetupTest() {
	suite.checker = NewChecker(NewDefaultDictionary())
}

func newRecipe(name string, ingredients ...string) *recipe.Recipe {
	return &recipe.Recipe{
		ID:          uuid.New(),
		Name:        name,
		Ingredients: recipe.PlainIngredients(ingredients...),
	}
}

func (suite *CheckerTestSuite) TestFindAllergenViolation() {
	suite.Run("CallerOrder_ShouldReturnFirstMatchingTag", func() {
		// Arrange
		r := newRecipe("Tortilla de huevo", "huevo", "sal")

		// Act
		tag, found := suite.checker.FindAllergenViolation(r, []string{"lactosa", "huevo"})

		// Assert
		assert.True(suite.T(), found)
		assert.Equal(suite.T(), "huevo", tag)
	})

	suite.Run("EmptyTagList_ShouldFindNothing", func() {
		r := newRecipe("Tortilla de huevo", "huevo")

		tag, found := suite.checker.FindAllergenViolation(r, nil)

		assert.False(suite.T(), found)
		assert.Empty(suite.T(), tag)

		_, found = suite.checker.FindAllergenViolation(r, []string{})
		assert.False(suite.T(), found)
	})

	suite.Run("EmptyRecipe_ShouldFindNothing", func() {
		tag, found := suite.checker.FindAllergenViolation(&recipe.Recipe{}, []string{"gluten", "huevo"})

		assert.False(suite.T(), found)
		assert.Empty(suite.T(), tag)
	})

	suite.Run("NilRecipe_ShouldFindNothing", func() {
		_, found := suite.checker.FindAllergenViolation(nil, []string{"gluten"})

		assert.False(suite.T(), found)
	})

	suite.Run("IngredientMatch_ShouldBeDetected", func() {
		r := newRecipe("Budin", "harina de trigo", "azucar")

		tag, found := suite.checker.FindAllergenViolation(r, []string{"Gluten"})

		assert.True(suite.T(), found)
		assert.Equal(suite.T(), "Gluten", tag, "tag is returned as supplied")
	})

	suite.Run("LegacyIngredients_ShouldBeScannedLast", func() {
		r := &recipe.Recipe{
			Name: "Postre",
			LegacyIngredients: []recipe.IngredientRef{
				recipe.StructuredIngredient(map[string]any{"item": "Almendras tostadas", "qty": "50g"}),
			},
		}

		tag, found := suite.checker.FindAllergenViolation(r, []string{"frutos_secos"})

		assert.True(suite.T(), found)
		assert.Equal(suite.T(), "frutos_secos", tag)
	})

	suite.Run("UnknownTag_ShouldFallBackToItself", func() {
		r := newRecipe("Ensalada", "Kiwi", "lechuga")

		tag, found := suite.checker.FindAllergenViolation(r, []string{"KIWI"})

		assert.True(suite.T(), found)
		assert.Equal(suite.T(), "KIWI", tag)
	})

	suite.Run("BlankTag_ShouldBeSkipped", func() {
		r := newRecipe("Ensalada", "lechuga")

		_, found := suite.checker.FindAllergenViolation(r, []string{"", "   "})

		assert.False(suite.T(), found)
	})

	suite.Run("StructuredIngredientWithoutName_ShouldMatchOnJSON", func() {
		r := &recipe.Recipe{
			Name: "Mezcla",
			Ingredients: []recipe.IngredientRef{
				recipe.StructuredIngredient(map[string]any{"descripcion": "semillas de sesamo"}),
			},
		}

		tag, found := suite.checker.FindAllergenViolation(r, []string{"sesamo"})

		assert.True(suite.T(), found)
		assert.Equal(suite.T(), "sesamo", tag)
	})
}

func (suite *CheckerTestSuite) TestCheckDietCompliance() {
	suite.Run("ChickenSalad_ShouldViolateVegan", func() {
		r := newRecipe("Ensalada de pollo", "pollo", "lechuga")

		diet, found := suite.checker.CheckDietCompliance(r, "vegano")

		assert.True(suite.T(), found)
		assert.Equal(suite.T(), DietVegan, diet)
	})

	suite.Run("ChickenSalad_ShouldViolateVegetarian", func() {
		r := newRecipe("Ensalada de pollo", "pollo", "lechuga")

		diet, found := suite.checker.CheckDietCompliance(r, "Vegetariano")

		assert.True(suite.T(), found)
		assert.Equal(suite.T(), DietVegetarian, diet)
	})

	suite.Run("Dairy_ShouldOnlyViolateVegan", func() {
		r := newRecipe("Tostada con queso", "queso", "tomate")

		_, vegetarian := suite.checker.CheckDietCompliance(r, DietVegetarian)
		_, vegan := suite.checker.CheckDietCompliance(r, DietVegan)

		assert.False(suite.T(), vegetarian)
		assert.True(suite.T(), vegan)
	})

	// matching is by substring, so "res" inside "fresco" reads as beef
	suite.Run("QuesoFresco_IsFlaggedVegetarianBySubstring", func() {
		r := newRecipe("Tostada", "queso fresco", "tomate")

		diet, found := suite.checker.CheckDietCompliance(r, DietVegetarian)

		assert.True(suite.T(), found)
		assert.Equal(suite.T(), DietVegetarian, diet)
	})

	suite.Run("PaddedPreference_ShouldBeTrimmed", func() {
		r := newRecipe("Ensalada de pollo", "pollo")

		diet, found := suite.checker.CheckDietCompliance(r, " Vegano ")

		assert.True(suite.T(), found)
		assert.Equal(suite.T(), DietVegan, diet)
	})

	suite.Run("UnrecognizedPreference_ShouldBeNoOp", func() {
		r := newRecipe("Ensalada de pollo", "pollo")

		for _, pref := range []string{"sin_restricciones", "", "keto"} {
			_, found := suite.checker.CheckDietCompliance(r, pref)
			assert.False(suite.T(), found, pref)
		}
	})
}

func (suite *CheckerTestSuite) TestEvaluate() {
	suite.Run("AllergenTakesPrecedenceOverDiet", func() {
		r := newRecipe("Omelette de jamon", "huevo", "jamon")
		profile := client.Profile{Allergens: []string{"huevo"}, DietaryPreference: "vegetariano"}

		v := suite.checker.Evaluate(r, profile)

		if assert.NotNil(suite.T(), v) {
			assert.Equal(suite.T(), Violation{Kind: KindAllergen, Tag: "huevo"}, *v)
		}
	})

	suite.Run("DietViolation_WhenNoAllergenMatches", func() {
		r := newRecipe("Omelette de jamon", "huevo", "jamon")
		profile := client.Profile{Allergens: []string{"gluten"}, DietaryPreference: "vegetariano"}

		v := suite.checker.Evaluate(r, profile)

		if assert.NotNil(suite.T(), v) {
			assert.Equal(suite.T(), Violation{Kind: KindDiet, Tag: DietVegetarian}, *v)
		}
	})

	suite.Run("CompliantRecipe_ShouldReturnNil", func() {
		r := newRecipe("Ensalada verde", "lechuga", "pepino")

		v := suite.checker.Evaluate(r, client.Profile{Allergens: []string{"gluten"}, DietaryPreference: "vegano"})

		assert.Nil(suite.T(), v)
	})
}

func TestCheckerTestSuite(t *testing.T) {
	suite.Run(t, new(CheckerTestSuite))
}
