package mealplan

import (
	"sort"

	"github.com/google/uuid"
)

// Meal is a named slot within a day.
type Meal struct {
	ID       uuid.UUID
	DayID    uuid.UUID
	Slot     string
	Position int
	Skipped  bool
	Items    []Item
}

// Day is one weekday of a plan.
type Day struct {
	ID      uuid.UUID
	PlanID  uuid.UUID
	Weekday Weekday
	Meals   []Meal
}

// SlotNames returns the ordered slot labels of the day.
func (d Day) SlotNames() []string {
	names := make([]string, len(d.Meals))
	for i, m := range d.Meals {
		names[i] = m.Slot
	}
	return names
}

// HasContent reports whether any meal holds an item.
func (d Day) HasContent() bool {
	for _, m := range d.Meals {
		if len(m.Items) > 0 {
			return true
		}
	}
	return false
}

// ItemCount counts the items of all meals.
func (d Day) ItemCount() int {
	n := 0
	for _, m := range d.Meals {
		n += len(m.Items)
	}
	return n
}

func (m Meal) clone() Meal {
	out := m
	out.Items = append([]Item(nil), m.Items...)
	return out
}

func (d Day) clone() Day {
	out := d
	out.Meals = make([]Meal, len(d.Meals))
	for i, m := range d.Meals {
		out.Meals[i] = m.clone()
	}
	return out
}

func (m *Meal) renumber() {
	for i := range m.Items {
		m.Items[i].Position = i
	}
}

// sortDay orders meals and items by position.
func sortDay(d *Day) {
	sort.SliceStable(d.Meals, func(a, b int) bool { return d.Meals[a].Position < d.Meals[b].Position })
	for i := range d.Meals {
		items := d.Meals[i].Items
		sort.SliceStable(items, func(a, b int) bool { return items[a].Position < items[b].Position })
	}
}
