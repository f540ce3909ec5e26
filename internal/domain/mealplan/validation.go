package mealplan

import (
	"fmt"
	"strings"
)

// ValidateSlots checks a slot configuration supplied at plan creation.
func ValidateSlots(slots []string) error {
	if len(slots) == 0 {
		return fmt.Errorf("%w: at least one slot is required", ErrInvalidSlotConfig)
	}
	for i, s := range slots {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: slot %d is blank", ErrInvalidSlotConfig, i+1)
		}
	}
	return nil
}

// ValidateStructure checks that days holds exactly one day per weekday 1..7
// and that every day carries the same ordered slot names. Meals are expected
// in position order.
func ValidateStructure(days []Day) error {
	if len(days) != DaysPerWeek {
		return fmt.Errorf("%w: expected %d days, got %d", ErrInvalidPlanStructure, DaysPerWeek, len(days))
	}

	var seen [DaysPerWeek]bool
	for _, d := range days {
		if !d.Weekday.Valid() {
			return fmt.Errorf("%w: day_of_week %d out of range", ErrInvalidPlanStructure, int(d.Weekday))
		}
		if seen[d.Weekday.Index()] {
			return fmt.Errorf("%w: duplicate day_of_week %d", ErrInvalidPlanStructure, int(d.Weekday))
		}
		seen[d.Weekday.Index()] = true
	}

	reference := days[0].SlotNames()
	for _, d := range days[1:] {
		if !equalSlots(reference, d.SlotNames()) {
			return fmt.Errorf("%w: %s slots %v differ from %v", ErrInvalidPlanStructure, d.Weekday, d.SlotNames(), reference)
		}
	}
	return nil
}

func equalSlots(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
