package mealplan

import "fmt"

// Weekday numbers days 1 (Monday) to 7 (Sunday).
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// DaysPerWeek is the fixed number of days in every plan.
const DaysPerWeek = 7

var weekdayLabels = [...]string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado", "Domingo"}

// Weekdays returns Monday..Sunday in order.
func Weekdays() []Weekday {
	days := make([]Weekday, 0, DaysPerWeek)
	for d := Monday; d <= Sunday; d++ {
		days = append(days, d)
	}
	return days
}

// Valid reports whether w is within 1..7.
func (w Weekday) Valid() bool {
	return w >= Monday && w <= Sunday
}

// Index is the zero-based position of w in a week.
func (w Weekday) Index() int {
	return int(w) - 1
}

// String returns the Spanish label shown to clients.
func (w Weekday) String() string {
	if !w.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return weekdayLabels[w.Index()]
}
