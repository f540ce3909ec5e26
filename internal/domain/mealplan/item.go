package mealplan

import (
	"strings"

	"github.com/google/uuid"
)

// UnnamedItem is displayed when an item has no usable label.
const UnnamedItem = "Sin nombre"

// ItemContent is what an item serves: a catalogue recipe or a free-text entry.
type ItemContent interface {
	isItemContent()
}

// RecipeRef points at a catalogue recipe.
type RecipeRef struct {
	RecipeID uuid.UUID
}

// CustomEntry is a free-text food with no nutritional data.
type CustomEntry struct {
	Name string
}

func (RecipeRef) isItemContent()   {}
func (CustomEntry) isItemContent() {}

// ValidateContent rejects nil content, nil recipe ids and blank custom names.
func ValidateContent(content ItemContent) error {
	switch c := content.(type) {
	case RecipeRef:
		if c.RecipeID == uuid.Nil {
			return ErrInvalidItemContent
		}
	case CustomEntry:
		if strings.TrimSpace(c.Name) == "" {
			return ErrInvalidItemContent
		}
	default:
		return ErrInvalidItemContent
	}
	return nil
}

// Item is one food entry within a meal.
type Item struct {
	ID     uuid.UUID
	MealID uuid.UUID
	// Content is never nil for items held by a Plan.
	Content ItemContent
	// NameOverride replaces the recipe name in displays. Only recipe items carry one.
	NameOverride string
	Portions     float64
	Position     int
}

// NewItem validates content and portions. Zero portions default to 1.
func NewItem(mealID uuid.UUID, content ItemContent, portions float64, nameOverride string) (Item, error) {
	if err := ValidateContent(content); err != nil {
		return Item{}, err
	}
	if portions == 0 {
		portions = 1
	}
	if portions < 0 {
		return Item{}, ErrInvalidPortions
	}
	if c, custom := content.(CustomEntry); custom {
		content = CustomEntry{Name: strings.TrimSpace(c.Name)}
		nameOverride = ""
	}
	return Item{
		ID:           uuid.New(),
		MealID:       mealID,
		Content:      content,
		NameOverride: strings.TrimSpace(nameOverride),
		Portions:     portions,
	}, nil
}

// RecipeID returns the referenced recipe, if any.
func (i Item) RecipeID() (uuid.UUID, bool) {
	if ref, ok := i.Content.(RecipeRef); ok {
		return ref.RecipeID, true
	}
	return uuid.Nil, false
}

// DisplayName picks the label shown for the item: the override, then the
// custom entry name, then recipeName, then UnnamedItem.
func (i Item) DisplayName(recipeName string) string {
	if i.NameOverride != "" {
		return i.NameOverride
	}
	if c, ok := i.Content.(CustomEntry); ok && c.Name != "" {
		return c.Name
	}
	if recipeName != "" {
		return recipeName
	}
	return UnnamedItem
}

// cloneInto copies the item's content under a new id and parent meal.
func (i Item) cloneInto(mealID uuid.UUID, position int) Item {
	return Item{
		ID:           uuid.New(),
		MealID:       mealID,
		Content:      i.Content,
		NameOverride: i.NameOverride,
		Portions:     i.Portions,
		Position:     position,
	}
}
