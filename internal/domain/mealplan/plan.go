// Package mealplan contains the weekly plan aggregate: seven days, each with
// the same ordered meal slots, each slot holding recipe or custom items.
package mealplan

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/orbitfit/mealplan/internal/domain/shared"
)

// Meal edit actions reported by MealEditedEvent.
const (
	ActionItemAdded       = "item_added"
	ActionItemRemoved     = "item_removed"
	ActionPortionsUpdated = "portions_updated"
	ActionSkippedUpdated  = "skipped_updated"
)

// Plan is the aggregate root for a client's weekly schedule.
type Plan struct {
	shared.AggregateRoot

	id         uuid.UUID
	clientID   uuid.UUID
	reviewDate *time.Time
	active     bool
	days       []Day

	createdAt  time.Time
	updatedAt  time.Time
	archivedAt *time.Time
}

// PlanState is the stored form of a plan, used to reconstitute it.
type PlanState struct {
	ID         uuid.UUID
	ClientID   uuid.UUID
	ReviewDate *time.Time
	Active     bool
	Days       []Day
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ArchivedAt *time.Time
}

// NewPlan builds an active plan with seven empty days, one meal per slot.
func NewPlan(clientID uuid.UUID, slots []string) (*Plan, error) {
	if clientID == uuid.Nil {
		return nil, fmt.Errorf("%w: client id is required", ErrInvalidPlanStructure)
	}
	if err := ValidateSlots(slots); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &Plan{
		id:        uuid.New(),
		clientID:  clientID,
		active:    true,
		createdAt: now,
		updatedAt: now,
	}

	names := make([]string, len(slots))
	for i, s := range slots {
		names[i] = strings.TrimSpace(s)
	}

	p.days = make([]Day, 0, DaysPerWeek)
	for _, wd := range Weekdays() {
		day := Day{ID: uuid.New(), PlanID: p.id, Weekday: wd}
		day.Meals = make([]Meal, len(names))
		for i, name := range names {
			day.Meals[i] = Meal{ID: uuid.New(), DayID: day.ID, Slot: name, Position: i}
		}
		p.days = append(p.days, day)
	}

	if err := ValidateStructure(p.days); err != nil {
		return nil, err
	}

	p.AddEvent(PlanCreatedEvent{
		PlanID:    p.id,
		ClientID:  clientID,
		Slots:     names,
		CreatedAt: now,
	})

	return p, nil
}

// Reconstitute rebuilds a plan from storage. Corrupted stored structure is
// reported as ErrInvalidPlanStructure.
func Reconstitute(state PlanState) (*Plan, error) {
	days := make([]Day, len(state.Days))
	for i, d := range state.Days {
		days[i] = d.clone()
		sortDay(&days[i])
	}
	sort.SliceStable(days, func(a, b int) bool { return days[a].Weekday < days[b].Weekday })

	if err := ValidateStructure(days); err != nil {
		return nil, err
	}
	for _, d := range days {
		for _, m := range d.Meals {
			for _, it := range m.Items {
				if err := ValidateContent(it.Content); err != nil {
					return nil, fmt.Errorf("%w: item %s: %v", ErrInvalidPlanStructure, it.ID, err)
				}
			}
		}
	}

	return &Plan{
		id:         state.ID,
		clientID:   state.ClientID,
		reviewDate: normalizeDate(state.ReviewDate),
		active:     state.Active,
		days:       days,
		createdAt:  state.CreatedAt,
		updatedAt:  state.UpdatedAt,
		archivedAt: state.ArchivedAt,
	}, nil
}

// Getters

func (p *Plan) ID() uuid.UUID          { return p.id }
func (p *Plan) ClientID() uuid.UUID    { return p.clientID }
func (p *Plan) Active() bool           { return p.active }
func (p *Plan) CreatedAt() time.Time   { return p.createdAt }
func (p *Plan) UpdatedAt() time.Time   { return p.updatedAt }
func (p *Plan) ArchivedAt() *time.Time { return copyTime(p.archivedAt) }

// ReviewDate returns the next review date, if one is set.
func (p *Plan) ReviewDate() *time.Time {
	return copyTime(p.reviewDate)
}

// Days returns a copy of the seven days ordered Monday..Sunday.
func (p *Plan) Days() []Day {
	out := make([]Day, len(p.days))
	for i, d := range p.days {
		out[i] = d.clone()
	}
	return out
}

// Day returns a copy of the day for wd.
func (p *Plan) Day(wd Weekday) (Day, bool) {
	for _, d := range p.days {
		if d.Weekday == wd {
			return d.clone(), true
		}
	}
	return Day{}, false
}

// SlotNames returns the slot configuration shared by every day.
func (p *Plan) SlotNames() []string {
	if len(p.days) == 0 {
		return nil
	}
	return p.days[0].SlotNames()
}

// CopyDay replaces every meal of the target day with a clone of the source
// day's meal in the same slot position: items (content, override, portions,
// order) and the skipped flag. Both days must belong to this plan. Copying a
// day onto itself changes nothing and reports changed=false.
func (p *Plan) CopyDay(sourceDayID, targetDayID uuid.UUID) (target Day, changed bool, err error) {
	if err := p.ensureActive(); err != nil {
		return Day{}, false, err
	}

	src := p.dayIndex(sourceDayID)
	dst := p.dayIndex(targetDayID)
	if src < 0 || dst < 0 {
		return Day{}, false, ErrInvalidCopyTarget
	}
	if src == dst {
		return p.days[dst].clone(), false, nil
	}

	source := p.days[src]
	next := p.days[dst].clone()
	if len(source.Meals) != len(next.Meals) {
		return Day{}, false, fmt.Errorf("%w: slot count mismatch between %s and %s",
			ErrInvalidPlanStructure, source.Weekday, next.Weekday)
	}

	copied := 0
	for i, srcMeal := range source.Meals {
		meal := &next.Meals[i]
		meal.Skipped = srcMeal.Skipped
		meal.Items = make([]Item, len(srcMeal.Items))
		for j, it := range srcMeal.Items {
			meal.Items[j] = it.cloneInto(meal.ID, j)
		}
		copied += len(srcMeal.Items)
	}

	p.days[dst] = next
	p.touch()
	p.AddEvent(DayCopiedEvent{
		PlanID:      p.id,
		SourceDayID: sourceDayID,
		TargetDayID: targetDayID,
		ItemsCopied: copied,
		CopiedAt:    p.updatedAt,
	})

	return next.clone(), true, nil
}

// AddItem appends an item to the end of a meal.
func (p *Plan) AddItem(mealID uuid.UUID, content ItemContent, portions float64, nameOverride string) (Meal, Item, error) {
	if err := p.ensureActive(); err != nil {
		return Meal{}, Item{}, err
	}
	meal := p.meal(mealID)
	if meal == nil {
		return Meal{}, Item{}, ErrMealNotFound
	}

	item, err := NewItem(mealID, content, portions, nameOverride)
	if err != nil {
		return Meal{}, Item{}, err
	}
	item.Position = len(meal.Items)
	meal.Items = append(meal.Items, item)

	p.mealEdited(mealID, ActionItemAdded)
	return meal.clone(), item, nil
}

// RemoveItem deletes an item and closes the gap in positions.
func (p *Plan) RemoveItem(itemID uuid.UUID) (Meal, error) {
	if err := p.ensureActive(); err != nil {
		return Meal{}, err
	}
	meal, idx := p.item(itemID)
	if meal == nil {
		return Meal{}, ErrItemNotFound
	}

	meal.Items = append(meal.Items[:idx], meal.Items[idx+1:]...)
	meal.renumber()

	p.mealEdited(meal.ID, ActionItemRemoved)
	return meal.clone(), nil
}

// UpdateItemPortions changes the portion multiplier of an item.
func (p *Plan) UpdateItemPortions(itemID uuid.UUID, portions float64) (Meal, error) {
	if err := p.ensureActive(); err != nil {
		return Meal{}, err
	}
	if portions <= 0 {
		return Meal{}, ErrInvalidPortions
	}
	meal, idx := p.item(itemID)
	if meal == nil {
		return Meal{}, ErrItemNotFound
	}

	meal.Items[idx].Portions = portions

	p.mealEdited(meal.ID, ActionPortionsUpdated)
	return meal.clone(), nil
}

// SetMealSkipped marks a meal as not eaten that day. Items are kept.
func (p *Plan) SetMealSkipped(mealID uuid.UUID, skipped bool) (Meal, error) {
	if err := p.ensureActive(); err != nil {
		return Meal{}, err
	}
	meal := p.meal(mealID)
	if meal == nil {
		return Meal{}, ErrMealNotFound
	}

	meal.Skipped = skipped

	p.mealEdited(mealID, ActionSkippedUpdated)
	return meal.clone(), nil
}

// SetReviewDate sets or clears (nil) the review date. Only the calendar date
// is kept.
func (p *Plan) SetReviewDate(date *time.Time) error {
	if err := p.ensureActive(); err != nil {
		return err
	}
	p.reviewDate = normalizeDate(date)
	p.touch()
	p.AddEvent(ReviewDateUpdatedEvent{
		PlanID:     p.id,
		ReviewDate: copyTime(p.reviewDate),
		UpdatedAt:  p.updatedAt,
	})
	return nil
}

// Archive supersedes the plan. Archived plans reject every mutation.
func (p *Plan) Archive() error {
	if err := p.ensureActive(); err != nil {
		return err
	}
	now := time.Now().UTC()
	p.active = false
	p.archivedAt = &now
	p.updatedAt = now
	p.AddEvent(PlanArchivedEvent{PlanID: p.id, ClientID: p.clientID, ArchivedAt: now})
	return nil
}

// Lookups

func (p *Plan) dayIndex(dayID uuid.UUID) int {
	for i, d := range p.days {
		if d.ID == dayID {
			return i
		}
	}
	return -1
}

func (p *Plan) meal(mealID uuid.UUID) *Meal {
	for i := range p.days {
		for j := range p.days[i].Meals {
			if p.days[i].Meals[j].ID == mealID {
				return &p.days[i].Meals[j]
			}
		}
	}
	return nil
}

func (p *Plan) item(itemID uuid.UUID) (*Meal, int) {
	for i := range p.days {
		for j := range p.days[i].Meals {
			meal := &p.days[i].Meals[j]
			for k := range meal.Items {
				if meal.Items[k].ID == itemID {
					return meal, k
				}
			}
		}
	}
	return nil, -1
}

func (p *Plan) ensureActive() error {
	if !p.active {
		return ErrPlanArchived
	}
	return nil
}

func (p *Plan) touch() {
	p.updatedAt = time.Now().UTC()
}

func (p *Plan) mealEdited(mealID uuid.UUID, action string) {
	p.touch()
	p.AddEvent(MealEditedEvent{PlanID: p.id, MealID: mealID, Action: action, EditedAt: p.updatedAt})
}

// normalizeDate truncates to midnight UTC of the same calendar date.
func normalizeDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	y, m, d := t.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &date
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
