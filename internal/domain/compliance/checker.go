package compliance

import (
	"strings"

	"github.com/orbitfit/mealplan/internal/domain/client"
	"github.com/orbitfit/mealplan/internal/domain/recipe"
)

// ViolationKind distinguishes allergen hits from diet hits.
type ViolationKind string

const (
	KindAllergen ViolationKind = "allergen"
	KindDiet     ViolationKind = "diet"
)

// Violation flags a recipe as unsuitable for a client.
type Violation struct {
	Kind ViolationKind `json:"kind"`
	Tag  string        `json:"tag"`
}

// Checker evaluates recipes against a Dictionary. It holds no mutable state
// and is safe for concurrent use.
type Checker struct {
	dict *Dictionary
}

// NewChecker returns a checker bound to dict. A nil dict uses the defaults.
func NewChecker(dict *Dictionary) *Checker {
	if dict == nil {
		dict = NewDefaultDictionary()
	}
	return &Checker{dict: dict}
}

// FindAllergenViolation returns the first tag, in caller order, whose
// triggers occur in the recipe's name or ingredients. The tag is returned
// as supplied. Blank tags are ignored.
func (c *Checker) FindAllergenViolation(r *recipe.Recipe, allergenTags []string) (string, bool) {
	if len(allergenTags) == 0 {
		return "", false
	}
	surfaces := r.Surfaces()
	if len(surfaces) == 0 {
		return "", false
	}
	for _, tag := range allergenTags {
		if strings.TrimSpace(tag) == "" {
			continue
		}
		if matchesAny(surfaces, c.dict.AllergenTriggers(tag)) {
			return tag, true
		}
	}
	return "", false
}

// CheckDietCompliance returns the violated diet ("vegano" or "vegetariano").
// Any other preference is not checked.
func (c *Checker) CheckDietCompliance(r *recipe.Recipe, dietTag string) (string, bool) {
	triggers, ok := c.dict.DietTriggers(dietTag)
	if !ok {
		return "", false
	}
	if matchesAny(r.Surfaces(), triggers) {
		return normalizeTag(dietTag), true
	}
	return "", false
}

// Evaluate runs the allergen check and then the diet check.
func (c *Checker) Evaluate(r *recipe.Recipe, profile client.Profile) *Violation {
	if tag, found := c.FindAllergenViolation(r, profile.Allergens); found {
		return &Violation{Kind: KindAllergen, Tag: tag}
	}
	if diet, found := c.CheckDietCompliance(r, profile.DietaryPreference); found {
		return &Violation{Kind: KindDiet, Tag: diet}
	}
	return nil
}

func matchesAny(surfaces, triggers []string) bool {
	for _, s := range surfaces {
		for _, t := range triggers {
			if strings.Contains(s, t) {
				return true
			}
		}
	}
	return false
}
