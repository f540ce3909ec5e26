// Package mealplan provides the application layer for weekly meal planning
// This implements the use cases defined in the inbound ports
package mealplan

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/orbitfit/mealplan/internal/domain/compliance"
	"github.com/orbitfit/mealplan/internal/domain/mealplan"
	"github.com/orbitfit/mealplan/internal/domain/recipe"
	"github.com/orbitfit/mealplan/internal/domain/shared"
	"github.com/orbitfit/mealplan/internal/ports/inbound"
	"github.com/orbitfit/mealplan/internal/ports/outbound"
	"github.com/orbitfit/mealplan/pkg/errors"
)

// Recorder receives operation counters. monitoring.Metrics implements it.
type Recorder interface {
	RecordOperation(operation string, err error)
	RecordViolation(kind string)
	RecordPlanView(items int)
}

// Config holds the service's planning settings
type Config struct {
	// DefaultSlots is used when CreatePlan gets no slots.
	DefaultSlots []string
	// Checker evaluates compliance. Nil uses the built-in keyword tables.
	Checker *compliance.Checker
	// Recorder may be nil.
	Recorder Recorder
	// Tracer may be nil.
	Tracer trace.Tracer
}

// PlanService implements the meal planning use cases
type PlanService struct {
	plans   outbound.PlanRepository
	recipes outbound.RecipeRepository
	clients outbound.ClientRepository
	events  outbound.EventPublisher

	defaultSlots []string
	checker      *compliance.Checker
	recorder     Recorder
	tracer       trace.Tracer
	logger       *zap.Logger
}

var _ inbound.PlanService = (*PlanService)(nil)

// NewPlanService creates a new plan service
func NewPlanService(
	plans outbound.PlanRepository,
	recipes outbound.RecipeRepository,
	clients outbound.ClientRepository,
	events outbound.EventPublisher,
	cfg Config,
	logger *zap.Logger,
) *PlanService {
	s := &PlanService{
		plans:        plans,
		recipes:      recipes,
		clients:      clients,
		events:       events,
		defaultSlots: append([]string(nil), cfg.DefaultSlots...),
		checker:      cfg.Checker,
		recorder:     cfg.Recorder,
		tracer:       cfg.Tracer,
		logger:       logger.Named("plan-service"),
	}
	if s.checker == nil {
		s.checker = compliance.NewChecker(nil)
	}
	if s.recorder == nil {
		s.recorder = noopRecorder{}
	}
	if s.tracer == nil {
		s.tracer = noop.NewTracerProvider().Tracer("")
	}
	return s
}

// CreatePlan creates a client's weekly plan
func (s *PlanService) CreatePlan(ctx context.Context, cmd inbound.CreatePlanCommand) (view *inbound.PlanView, err error) {
	ctx, end := s.start(ctx, "CreatePlan", attribute.String("client_id", cmd.ClientID.String()))
	defer func() { end(err) }()

	slots := cmd.Slots
	if len(slots) == 0 {
		slots = s.defaultSlots
	}

	s.logger.Info("Creating plan",
		zap.String("client_id", cmd.ClientID.String()),
		zap.Strings("slots", slots),
	)

	plan, err := mealplan.NewPlan(cmd.ClientID, slots)
	if err != nil {
		return nil, s.mapError("create plan", err, ids{client: cmd.ClientID})
	}

	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, s.mapError("create plan", err, ids{client: cmd.ClientID, plan: plan.ID()})
	}

	s.publish(ctx, plan.Events())

	s.logger.Info("Plan created successfully",
		zap.String("plan_id", plan.ID().String()),
		zap.String("client_id", cmd.ClientID.String()),
	)

	return s.buildView(ctx, plan)
}

// GetPlan returns the client's active plan with resolved items, totals and
// compliance flags
func (s *PlanService) GetPlan(ctx context.Context, clientID uuid.UUID) (view *inbound.PlanView, err error) {
	ctx, end := s.start(ctx, "GetPlan", attribute.String("client_id", clientID.String()))
	defer func() { end(err) }()

	plan, err := s.plans.FindActiveByClient(ctx, clientID)
	if err != nil {
		return nil, s.mapError("find plan", err, ids{client: clientID})
	}
	if plan == nil {
		return nil, nil
	}

	return s.buildView(ctx, plan)
}

// UpdateReviewDate sets or clears the plan's review date
func (s *PlanService) UpdateReviewDate(ctx context.Context, planID uuid.UUID, date *time.Time) (err error) {
	ctx, end := s.start(ctx, "UpdateReviewDate", attribute.String("plan_id", planID.String()))
	defer func() { end(err) }()

	return s.mutate(ctx, "update review date", planID, func(repo outbound.PlanRepository, plan *mealplan.Plan) error {
		return plan.SetReviewDate(date)
	})
}

// AddItem appends a recipe or custom entry to a meal
func (s *PlanService) AddItem(ctx context.Context, cmd inbound.AddItemCommand) (ref *inbound.ItemRef, err error) {
	ctx, end := s.start(ctx, "AddItem",
		attribute.String("plan_id", cmd.PlanID.String()),
		attribute.String("meal_id", cmd.MealID.String()),
	)
	defer func() { end(err) }()

	content, err := s.itemContent(ctx, cmd)
	if err != nil {
		return nil, err
	}

	err = s.mutate(ctx, "add item", cmd.PlanID, func(repo outbound.PlanRepository, plan *mealplan.Plan) error {
		meal, item, err := plan.AddItem(cmd.MealID, content, cmd.Portions, cmd.NameOverride)
		if err != nil {
			return err
		}
		if err := repo.SaveMeal(ctx, meal); err != nil {
			return err
		}
		ref = &inbound.ItemRef{ItemID: item.ID, MealID: meal.ID}
		return nil
	}, ids{meal: cmd.MealID})
	if err != nil {
		return nil, err
	}
	return ref, nil
}

// RemoveItem deletes an item from its meal
func (s *PlanService) RemoveItem(ctx context.Context, planID, itemID uuid.UUID) (err error) {
	ctx, end := s.start(ctx, "RemoveItem", attribute.String("plan_id", planID.String()))
	defer func() { end(err) }()

	return s.mutate(ctx, "remove item", planID, func(repo outbound.PlanRepository, plan *mealplan.Plan) error {
		meal, err := plan.RemoveItem(itemID)
		if err != nil {
			return err
		}
		return repo.SaveMeal(ctx, meal)
	}, ids{item: itemID})
}

// UpdateItemPortions changes an item's portion multiplier
func (s *PlanService) UpdateItemPortions(ctx context.Context, planID, itemID uuid.UUID, portions float64) (err error) {
	ctx, end := s.start(ctx, "UpdateItemPortions", attribute.String("plan_id", planID.String()))
	defer func() { end(err) }()

	return s.mutate(ctx, "update portions", planID, func(repo outbound.PlanRepository, plan *mealplan.Plan) error {
		meal, err := plan.UpdateItemPortions(itemID, portions)
		if err != nil {
			return err
		}
		return repo.SaveMeal(ctx, meal)
	}, ids{item: itemID})
}

// SetMealSkipped marks a meal as skipped or eaten
func (s *PlanService) SetMealSkipped(ctx context.Context, planID, mealID uuid.UUID, skipped bool) (err error) {
	ctx, end := s.start(ctx, "SetMealSkipped", attribute.String("plan_id", planID.String()))
	defer func() { end(err) }()

	return s.mutate(ctx, "set meal skipped", planID, func(repo outbound.PlanRepository, plan *mealplan.Plan) error {
		meal, err := plan.SetMealSkipped(mealID, skipped)
		if err != nil {
			return err
		}
		return repo.SaveMeal(ctx, meal)
	}, ids{meal: mealID})
}

// ArchivePlan supersedes the plan so the client can get a new one
func (s *PlanService) ArchivePlan(ctx context.Context, planID uuid.UUID) (err error) {
	ctx, end := s.start(ctx, "ArchivePlan", attribute.String("plan_id", planID.String()))
	defer func() { end(err) }()

	err = s.mutate(ctx, "archive plan", planID, func(repo outbound.PlanRepository, plan *mealplan.Plan) error {
		return plan.Archive()
	})
	if err == nil {
		s.logger.Info("Plan archived", zap.String("plan_id", planID.String()))
	}
	return err
}

// mutate loads the plan inside a transaction, applies fn and stores the plan
// metadata. Events are published after the commit. A mutation that raises no
// event changed nothing and writes nothing.
func (s *PlanService) mutate(
	ctx context.Context,
	op string,
	planID uuid.UUID,
	fn func(repo outbound.PlanRepository, plan *mealplan.Plan) error,
	extra ...ids,
) error {
	var pending []shared.DomainEvent

	err := s.plans.WithinTransaction(ctx, func(repo outbound.PlanRepository) error {
		plan, err := repo.FindByIDForUpdate(ctx, planID)
		if err != nil {
			return err
		}
		if err := fn(repo, plan); err != nil {
			return err
		}

		pending = plan.Events()
		if len(pending) == 0 {
			return nil
		}
		return repo.SavePlanMeta(ctx, plan)
	})
	if err != nil {
		target := ids{plan: planID}
		if len(extra) > 0 {
			target = extra[0]
			target.plan = planID
		}
		return s.mapError(op, err, target)
	}

	s.publish(ctx, pending)
	return nil
}

func (s *PlanService) itemContent(ctx context.Context, cmd inbound.AddItemCommand) (mealplan.ItemContent, error) {
	custom := strings.TrimSpace(cmd.CustomName)

	switch {
	case cmd.RecipeID != nil && custom != "":
		return nil, errors.NewValidationError("set either recipe_id or custom_name, not both")
	case cmd.RecipeID != nil:
		if _, err := s.recipes.FindByID(ctx, *cmd.RecipeID); err != nil {
			return nil, s.mapError("find recipe", err, ids{})
		}
		return mealplan.RecipeRef{RecipeID: *cmd.RecipeID}, nil
	case custom != "":
		return mealplan.CustomEntry{Name: custom}, nil
	default:
		return nil, errors.NewValidationError(mealplan.ErrInvalidItemContent.Error()).WithCause(mealplan.ErrInvalidItemContent)
	}
}

func (s *PlanService) publish(ctx context.Context, events []shared.DomainEvent) {
	if len(events) == 0 || s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish events",
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
}

// start opens a span and returns the function that closes it and counts the
// operation
func (s *PlanService) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := s.tracer.Start(ctx, "PlanService."+op, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		s.recorder.RecordOperation(op, err)
		span.End()
	}
}

// ids carries the identifiers reported in error metadata
type ids struct {
	plan   uuid.UUID
	client uuid.UUID
	meal   uuid.UUID
	item   uuid.UUID
}

// mapError converts domain and repository errors to application errors
func (s *PlanService) mapError(op string, err error, target ids) error {
	var appErr *errors.AppError
	switch {
	case stderrors.As(err, &appErr):
		return appErr
	case stderrors.Is(err, mealplan.ErrPlanNotFound):
		return errors.NewPlanNotFoundError(target.plan.String(), err)
	case stderrors.Is(err, mealplan.ErrPlanAlreadyExists):
		return errors.NewPlanAlreadyExistsError(target.client.String(), err)
	case stderrors.Is(err, mealplan.ErrInvalidCopyTarget):
		return errors.NewInvalidCopyTargetError(target.plan.String(), err)
	case stderrors.Is(err, mealplan.ErrInvalidPlanStructure):
		s.logger.Error("Stored plan is structurally invalid",
			zap.String("plan_id", target.plan.String()),
			zap.Error(err),
		)
		return errors.NewInvalidPlanStructureError(target.plan.String(), err)
	case stderrors.Is(err, mealplan.ErrPlanArchived):
		return errors.NewPlanArchivedError(target.plan.String(), err)
	case stderrors.Is(err, mealplan.ErrMealNotFound):
		return errors.NewMealNotFoundError(target.meal.String(), err)
	case stderrors.Is(err, mealplan.ErrItemNotFound):
		return errors.NewItemNotFoundError(target.item.String(), err)
	case stderrors.Is(err, mealplan.ErrInvalidSlotConfig),
		stderrors.Is(err, mealplan.ErrInvalidItemContent),
		stderrors.Is(err, mealplan.ErrInvalidPortions):
		return errors.NewValidationError(err.Error()).WithCause(err)
	case stderrors.Is(err, recipe.ErrRecipeNotFound):
		return errors.NewNotFoundError("Recipe").WithCause(err)
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return errors.NewAppError(errors.CodeServiceUnavailable, "Request cancelled", err.Error()).WithCause(err)
	default:
		s.logger.Error("Plan operation failed", zap.String("operation", op), zap.Error(err))
		return errors.NewDatabaseError(op, err)
	}
}

type noopRecorder struct{}

func (noopRecorder) RecordOperation(string, error) {}
func (noopRecorder) RecordViolation(string)        {}
func (noopRecorder) RecordPlanView(int)            {}
