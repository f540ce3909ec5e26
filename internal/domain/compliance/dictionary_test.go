package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictionary_AllergenTriggers(t *testing.T) {
	dict := NewDefaultDictionary()

	assert.Contains(t, dict.AllergenTriggers("gluten"), "harina")
	assert.Contains(t, dict.AllergenTriggers("LACTOSA"), "suero")
	assert.NotContains(t, dict.AllergenTriggers("leche"), "suero")
	assert.Equal(t, []string{"kiwi"}, dict.AllergenTriggers(" Kiwi "))
	assert.Nil(t, dict.AllergenTriggers(""))
}

func TestDictionary_DietTriggers(t *testing.T) {
	dict := NewDefaultDictionary()

	vegan, ok := dict.DietTriggers("vegano")
	require.True(t, ok)
	vegetarian, ok := dict.DietTriggers("vegetariano")
	require.True(t, ok)

	for _, trigger := range vegetarian {
		if trigger == "steak" || trigger == "bife" || trigger == "asado" {
			continue
		}
		assert.Contains(t, vegan, trigger)
	}
	assert.Contains(t, vegan, "miel")
	assert.NotContains(t, vegetarian, "queso")

	_, ok = dict.DietTriggers("sin_restricciones")
	assert.False(t, ok)
}

func TestDictionary_ExtraAllergensMerge(t *testing.T) {
	dict := NewDictionary(DefaultKeywords(), map[string][]string{
		"Gluten": {"Seitan", "harina"},
		"kiwi":   {"kiwi", "actinidia"},
		"":       {"ignored"},
	})

	gluten := dict.AllergenTriggers("gluten")
	assert.Contains(t, gluten, "seitan")
	count := 0
	for _, trigger := range gluten {
		if trigger == "harina" {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, []string{"kiwi", "actinidia"}, dict.AllergenTriggers("kiwi"))
	assert.NotContains(t, dict.AllergenTags(), "")
}

func TestDictionary_IsolatedFromSource(t *testing.T) {
	base := DefaultKeywords()
	dict := NewDictionary(base, nil)

	base.Allergens["huevo"] = []string{"nada"}

	assert.Contains(t, dict.AllergenTriggers("huevo"), "yema")
}
