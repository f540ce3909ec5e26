// Package nutrition rolls recipe macros up the plan tree: item, meal, day and week.
package nutrition

import "math"

// Macros holds calories and macronutrient grams. Values are kept unrounded
// through every aggregation level; use Rounded at presentation boundaries.
type Macros struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// Zero is the additive identity.
var Zero = Macros{}

// Add returns the field-wise sum of m and other.
func (m Macros) Add(other Macros) Macros {
	return Macros{
		Calories: m.Calories + other.Calories,
		ProteinG: m.ProteinG + other.ProteinG,
		CarbsG:   m.CarbsG + other.CarbsG,
		FatG:     m.FatG + other.FatG,
	}
}

// Scale multiplies every field by factor.
func (m Macros) Scale(factor float64) Macros {
	return Macros{
		Calories: m.Calories * factor,
		ProteinG: m.ProteinG * factor,
		CarbsG:   m.CarbsG * factor,
		FatG:     m.FatG * factor,
	}
}

// Divide divides every field by n. Dividing by zero yields Zero.
func (m Macros) Divide(n float64) Macros {
	if n == 0 {
		return Zero
	}
	return m.Scale(1 / n)
}

// IsZero reports whether every field is zero.
func (m Macros) IsZero() bool {
	return m == Zero
}

// Rounded returns a display copy: calories to the nearest whole unit and
// grams to one decimal place.
func (m Macros) Rounded() Macros {
	return Macros{
		Calories: math.Round(m.Calories),
		ProteinG: roundTo(m.ProteinG, 1),
		CarbsG:   roundTo(m.CarbsG, 1),
		FatG:     roundTo(m.FatG, 1),
	}
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
