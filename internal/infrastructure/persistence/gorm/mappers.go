package gorm

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/orbitfit/mealplan/internal/domain/client"
	"github.com/orbitfit/mealplan/internal/domain/mealplan"
	"github.com/orbitfit/mealplan/internal/domain/nutrition"
	"github.com/orbitfit/mealplan/internal/domain/recipe"
)

// PlanToModel converts a plan aggregate to its GORM model tree
func PlanToModel(p *mealplan.Plan) *PlanModel {
	model := &PlanModel{
		ID:         p.ID(),
		ClientID:   p.ClientID(),
		ReviewDate: toDate(p.ReviewDate()),
		Active:     p.Active(),
		ArchivedAt: p.ArchivedAt(),
		CreatedAt:  p.CreatedAt(),
		UpdatedAt:  p.UpdatedAt(),
	}

	for _, d := range p.Days() {
		model.Days = append(model.Days, DayToModel(d))
	}
	return model
}

// DayToModel converts a day with its meals and items
func DayToModel(d mealplan.Day) DayModel {
	model := DayModel{ID: d.ID, PlanID: d.PlanID, DayOfWeek: int(d.Weekday)}
	for _, m := range d.Meals {
		model.Meals = append(model.Meals, MealToModel(m))
	}
	return model
}

// MealToModel converts a meal with its items
func MealToModel(m mealplan.Meal) MealModel {
	model := MealModel{
		ID:        m.ID,
		DayID:     m.DayID,
		Name:      m.Slot,
		Position:  m.Position,
		IsSkipped: m.Skipped,
	}
	for _, it := range m.Items {
		model.Items = append(model.Items, ItemToModel(it))
	}
	return model
}

// ItemToModel converts an item, folding its content into recipe_id/custom_name
func ItemToModel(it mealplan.Item) ItemModel {
	model := ItemModel{
		ID:       it.ID,
		MealID:   it.MealID,
		Portions: it.Portions,
		Position: it.Position,
	}
	switch c := it.Content.(type) {
	case mealplan.RecipeRef:
		id := c.RecipeID
		model.RecipeID = &id
		if it.NameOverride != "" {
			override := it.NameOverride
			model.CustomName = &override
		}
	case mealplan.CustomEntry:
		name := c.Name
		model.CustomName = &name
	}
	return model
}

// ModelToPlan reconstitutes a plan. Rows that break plan invariants surface
// as mealplan.ErrInvalidPlanStructure.
func ModelToPlan(model *PlanModel) (*mealplan.Plan, error) {
	state := mealplan.PlanState{
		ID:         model.ID,
		ClientID:   model.ClientID,
		ReviewDate: fromDate(model.ReviewDate),
		Active:     model.Active,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
		ArchivedAt: model.ArchivedAt,
	}

	for _, dm := range model.Days {
		day := mealplan.Day{ID: dm.ID, PlanID: dm.PlanID, Weekday: mealplan.Weekday(dm.DayOfWeek)}
		for _, mm := range dm.Meals {
			meal := mealplan.Meal{
				ID:       mm.ID,
				DayID:    mm.DayID,
				Slot:     mm.Name,
				Position: mm.Position,
				Skipped:  mm.IsSkipped,
			}
			for _, im := range mm.Items {
				item, err := ModelToItem(im)
				if err != nil {
					return nil, fmt.Errorf("%w: item %s: %v", mealplan.ErrInvalidPlanStructure, im.ID, err)
				}
				meal.Items = append(meal.Items, item)
			}
			day.Meals = append(day.Meals, meal)
		}
		state.Days = append(state.Days, day)
	}

	return mealplan.Reconstitute(state)
}

// ModelToItem rebuilds the tagged item content from its nullable columns
func ModelToItem(model ItemModel) (mealplan.Item, error) {
	item := mealplan.Item{
		ID:       model.ID,
		MealID:   model.MealID,
		Portions: model.Portions,
		Position: model.Position,
	}
	customName := ""
	if model.CustomName != nil {
		customName = strings.TrimSpace(*model.CustomName)
	}

	switch {
	case model.RecipeID != nil && *model.RecipeID != uuid.Nil:
		item.Content = mealplan.RecipeRef{RecipeID: *model.RecipeID}
		item.NameOverride = customName
	case customName != "":
		item.Content = mealplan.CustomEntry{Name: customName}
	default:
		return mealplan.Item{}, mealplan.ErrInvalidItemContent
	}
	return item, nil
}

// RecipeToModel converts a recipe to its GORM model
func RecipeToModel(r *recipe.Recipe) *RecipeModel {
	return &RecipeModel{
		ID:                 r.ID,
		Name:               r.Name,
		Ingredients:        r.Ingredients,
		IngredientsData:    r.LegacyIngredients,
		Servings:           r.Servings,
		KcalPerServing:     floatPtr(r.PerServing.Calories),
		ProteinGPerServing: floatPtr(r.PerServing.ProteinG),
		CarbsGPerServing:   floatPtr(r.PerServing.CarbsG),
		FatGPerServing:     floatPtr(r.PerServing.FatG),
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

// ModelToRecipe converts a GORM model to a recipe. A per-serving macro that is
// null or 0 falls back to its legacy column; missing values read as 0.
func ModelToRecipe(model *RecipeModel) *recipe.Recipe {
	return &recipe.Recipe{
		ID:                model.ID,
		Name:              model.Name,
		Ingredients:       model.Ingredients,
		LegacyIngredients: model.IngredientsData,
		Servings:          model.Servings,
		PerServing: nutrition.Macros{
			Calories: firstSet(model.KcalPerServing, model.MacrosCalories),
			ProteinG: firstSet(model.ProteinGPerServing, model.MacrosProteinG),
			CarbsG:   firstSet(model.CarbsGPerServing, model.MacrosCarbsG),
			FatG:     firstSet(model.FatGPerServing, model.MacrosFatG),
		},
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// ProfileToModel converts a client profile to its GORM model
func ProfileToModel(p *client.Profile) *ClientModel {
	return &ClientModel{
		ID:                p.ClientID,
		FullName:          p.FullName,
		Allergens:         StringSlice(p.Allergens),
		DietaryPreference: p.DietaryPreference,
	}
}

// ModelToProfile converts a GORM model to a client profile
func ModelToProfile(model *ClientModel) *client.Profile {
	return &client.Profile{
		ClientID:          model.ID,
		FullName:          model.FullName,
		Allergens:         []string(model.Allergens),
		DietaryPreference: model.DietaryPreference,
	}
}

func toDate(t *time.Time) *datatypes.Date {
	if t == nil {
		return nil
	}
	d := datatypes.Date(*t)
	return &d
}

func fromDate(d *datatypes.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := time.Time(*d)
	return &t
}

func floatPtr(v float64) *float64 {
	return &v
}

// firstSet returns the first non-nil, non-zero value, or 0.
func firstSet(values ...*float64) float64 {
	for _, v := range values {
		if v != nil && *v != 0 {
			return *v
		}
	}
	return 0
}
