package nutrition

import (
	"github.com/google/uuid"

	"github.com/orbitfit/mealplan/internal/domain/mealplan"
)

// Lookup resolves a recipe's per-serving macros. ok is false for recipes
// that no longer exist.
type Lookup func(recipeID uuid.UUID) (perServing Macros, ok bool)

// MapLookup serves per-serving macros from a map.
func MapLookup(perServing map[uuid.UUID]Macros) Lookup {
	return func(id uuid.UUID) (Macros, bool) {
		m, ok := perServing[id]
		return m, ok
	}
}

// ItemMacros scales the recipe's per-serving macros by the item's portions.
// Custom entries and unresolved recipes contribute zero.
func ItemMacros(item mealplan.Item, lookup Lookup) Macros {
	recipeID, ok := item.RecipeID()
	if !ok || lookup == nil {
		return Zero
	}
	perServing, ok := lookup(recipeID)
	if !ok {
		return Zero
	}
	return perServing.Scale(item.Portions)
}

// MealMacros sums the meal's items. A skipped meal contributes zero.
func MealMacros(meal mealplan.Meal, lookup Lookup) Macros {
	if meal.Skipped {
		return Zero
	}
	total := Zero
	for _, item := range meal.Items {
		total = total.Add(ItemMacros(item, lookup))
	}
	return total
}

// DayMacros sums the day's meals.
func DayMacros(day mealplan.Day, lookup Lookup) Macros {
	total := Zero
	for _, meal := range day.Meals {
		total = total.Add(MealMacros(meal, lookup))
	}
	return total
}

// WeekSummary holds per-day totals indexed Monday..Sunday.
type WeekSummary struct {
	Days    [mealplan.DaysPerWeek]Macros
	Total   Macros
	Average Macros
}

// PlanWeekMacros totals each day and averages over all seven days, including
// empty ones. Days with an out-of-range weekday are ignored.
func PlanWeekMacros(days []mealplan.Day, lookup Lookup) WeekSummary {
	var summary WeekSummary
	for _, day := range days {
		if !day.Weekday.Valid() {
			continue
		}
		summary.Days[day.Weekday.Index()] = DayMacros(day, lookup)
	}
	for _, d := range summary.Days {
		summary.Total = summary.Total.Add(d)
	}
	summary.Average = summary.Total.Divide(mealplan.DaysPerWeek)
	return summary
}
