// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/orbitfit/mealplan/internal/domain/client"
	"github.com/orbitfit/mealplan/internal/domain/mealplan"
	"github.com/orbitfit/mealplan/internal/domain/recipe"
	"github.com/orbitfit/mealplan/internal/domain/shared"
)

// ErrCacheMiss is returned by CacheRepository.Get for absent or expired keys.
var ErrCacheMiss = errors.New("cache miss")

// PlanRepository persists plan aggregates.
type PlanRepository interface {
	// Create stores a new plan with its days and meals. It returns
	// mealplan.ErrPlanAlreadyExists when the client already has an active plan.
	Create(ctx context.Context, plan *mealplan.Plan) error
	FindByID(ctx context.Context, id uuid.UUID) (*mealplan.Plan, error)
	// FindByIDForUpdate loads a plan and, where the database supports it,
	// locks the plan row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*mealplan.Plan, error)
	// FindActiveByClient returns nil, nil when the client has no active plan.
	FindActiveByClient(ctx context.Context, clientID uuid.UUID) (*mealplan.Plan, error)

	// ReplaceDay rewrites the meals' skipped flags and items of one day.
	ReplaceDay(ctx context.Context, day mealplan.Day) error
	// SaveMeal rewrites the skipped flag and items of one meal.
	SaveMeal(ctx context.Context, meal mealplan.Meal) error
	// SavePlanMeta writes review date, active flag and timestamps.
	SavePlanMeta(ctx context.Context, plan *mealplan.Plan) error

	// WithinTransaction runs fn against a repository bound to one database
	// transaction. The transaction commits when fn returns nil.
	WithinTransaction(ctx context.Context, fn func(repo PlanRepository) error) error
}

// RecipeRepository reads the recipe catalogue
type RecipeRepository interface {
	Create(ctx context.Context, r *recipe.Recipe) error
	FindByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error)
	// FindByIDs returns the recipes that exist; unknown ids are skipped.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*recipe.Recipe, error)
}

// ClientRepository reads client profiles
type ClientRepository interface {
	Create(ctx context.Context, profile *client.Profile) error
	FindProfile(ctx context.Context, clientID uuid.UUID) (*client.Profile, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)

	// Batch operations
	MGet(ctx context.Context, keys []string) (map[string][]byte, error)
	MSet(ctx context.Context, items map[string][]byte, ttl time.Duration) error
}

// EventPublisher delivers domain events after the state change is stored
type EventPublisher interface {
	Publish(ctx context.Context, events ...shared.DomainEvent) error
}
