// Package testutils provides mock implementations for testing
package testutils

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/orbitfit/mealplan/internal/domain/client"
	"github.com/orbitfit/mealplan/internal/domain/recipe"
	"github.com/orbitfit/mealplan/internal/domain/shared"
	"github.com/orbitfit/mealplan/internal/ports/outbound"
)

var (
	_ outbound.RecipeRepository = (*MockRecipeRepository)(nil)
	_ outbound.ClientRepository = (*MockClientRepository)(nil)
	_ outbound.EventPublisher   = (*MockEventPublisher)(nil)
)

// MockRecipeRepository provides a mock implementation of RecipeRepository
type MockRecipeRepository struct {
	mock.Mock
}

// Create creates a recipe
func (m *MockRecipeRepository) Create(ctx context.Context, r *recipe.Recipe) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

// FindByID finds a recipe by ID
func (m *MockRecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error) {
	args := m.Called(ctx, id)
	if r, ok := args.Get(0).(*recipe.Recipe); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByIDs finds recipes by ID
func (m *MockRecipeRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*recipe.Recipe, error) {
	args := m.Called(ctx, ids)
	if rs, ok := args.Get(0).([]*recipe.Recipe); ok {
		return rs, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockClientRepository provides a mock implementation of ClientRepository
type MockClientRepository struct {
	mock.Mock
}

// Create stores a profile
func (m *MockClientRepository) Create(ctx context.Context, profile *client.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

// FindProfile loads a profile
func (m *MockClientRepository) FindProfile(ctx context.Context, clientID uuid.UUID) (*client.Profile, error) {
	args := m.Called(ctx, clientID)
	if p, ok := args.Get(0).(*client.Profile); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
}

// Publish records events
func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// Names returns the names of every event passed to Publish, in call order
func (m *MockEventPublisher) Names() []string {
	var names []string
	for _, call := range m.Calls {
		if call.Method != "Publish" {
			continue
		}
		events, _ := call.Arguments.Get(1).([]shared.DomainEvent)
		for _, e := range events {
			names = append(names, e.EventName())
		}
	}
	return names
}

// NewAcceptingEventPublisher returns a publisher that accepts every call
func NewAcceptingEventPublisher() *MockEventPublisher {
	m := &MockEventPublisher{}
	m.On("Publish", mock.Anything, mock.Anything).Return(nil)
	return m
}
