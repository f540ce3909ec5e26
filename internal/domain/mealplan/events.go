package mealplan

import (
	"time"

	"github.com/google/uuid"
)

// PlanCreatedEvent is raised when a client's plan is created
type PlanCreatedEvent struct {
	PlanID    uuid.UUID
	ClientID  uuid.UUID
	Slots     []string
	CreatedAt time.Time
}

func (e PlanCreatedEvent) EventName() string {
	return "mealplan.created"
}

func (e PlanCreatedEvent) OccurredAt() time.Time {
	return e.CreatedAt
}

// DayCopiedEvent is raised when a day's content replaces another day's
type DayCopiedEvent struct {
	PlanID      uuid.UUID
	SourceDayID uuid.UUID
	TargetDayID uuid.UUID
	ItemsCopied int
	CopiedAt    time.Time
}

func (e DayCopiedEvent) EventName() string {
	return "mealplan.day.copied"
}

func (e DayCopiedEvent) OccurredAt() time.Time {
	return e.CopiedAt
}

// MealEditedEvent is raised when items or the skipped flag of a meal change
type MealEditedEvent struct {
	PlanID   uuid.UUID
	MealID   uuid.UUID
	Action   string
	EditedAt time.Time
}

func (e MealEditedEvent) EventName() string {
	return "mealplan.meal.edited"
}

func (e MealEditedEvent) OccurredAt() time.Time {
	return e.EditedAt
}

// ReviewDateUpdatedEvent is raised when the review date is set or cleared
type ReviewDateUpdatedEvent struct {
	PlanID     uuid.UUID
	ReviewDate *time.Time
	UpdatedAt  time.Time
}

func (e ReviewDateUpdatedEvent) EventName() string {
	return "mealplan.review_date.updated"
}

func (e ReviewDateUpdatedEvent) OccurredAt() time.Time {
	return e.UpdatedAt
}

// PlanArchivedEvent is raised when a plan is superseded
type PlanArchivedEvent struct {
	PlanID     uuid.UUID
	ClientID   uuid.UUID
	ArchivedAt time.Time
}

func (e PlanArchivedEvent) EventName() string {
	return "mealplan.archived"
}

func (e PlanArchivedEvent) OccurredAt() time.Time {
	return e.ArchivedAt
}
