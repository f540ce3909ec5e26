//go:build integration

// Package integration provides integration tests using real database instances
package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	app "github.com/orbitfit/mealplan/internal/application/mealplan"
	"github.com/orbitfit/mealplan/internal/domain/mealplan"
	"github.com/orbitfit/mealplan/internal/domain/nutrition"
	gormrepo "github.com/orbitfit/mealplan/internal/infrastructure/persistence/gorm"
	"github.com/orbitfit/mealplan/internal/ports/inbound"
	"github.com/orbitfit/mealplan/internal/ports/outbound"
	"github.com/orbitfit/mealplan/test/testutils"
)

// PlanRepositoryIntegrationTestSuite runs the plan store against PostgreSQL
type PlanRepositoryIntegrationTestSuite struct {
	suite.Suite
	testDB  *testutils.TestDatabase
	plans   outbound.PlanRepository
	recipes outbound.RecipeRepository
	clients outbound.ClientRepository
	service *app.PlanService
	factory *testutils.RecipeFactory
	ctx     context.Context
}

// SetupSuite starts the database container and applies migrations
func (suite *PlanRepositoryIntegrationTestSuite) SetupSuite() {
	suite.ctx = context.Background()
	suite.testDB = testutils.SetupTestDatabase(suite.T())

	suite.plans = gormrepo.NewPlanRepository(suite.testDB.GormDB)
	suite.recipes = gormrepo.NewRecipeRepository(suite.testDB.GormDB)
	suite.clients = gormrepo.NewClientRepository(suite.testDB.GormDB)
	suite.service = app.NewPlanService(
		suite.plans, suite.recipes, suite.clients, testutils.NewAcceptingEventPublisher(),
		app.Config{DefaultSlots: []string{"Desayuno", "Almuerzo", "Cena"}},
		zap.NewNop(),
	)
	suite.factory = testutils.NewRecipeFactory(time.Now().UnixNano())
}

// SetupTest prepares each test with clean database state
func (suite *PlanRepositoryIntegrationTestSuite) SetupTest() {
	require.NoError(suite.T(), suite.testDB.TruncateAllTables(), "Failed to clean database")
}

func (suite *PlanRepositoryIntegrationTestSuite) TestOneActivePlanPerClient() {
	clientID := uuid.New()
	first, err := mealplan.NewPlan(clientID, []string{"Desayuno"})
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), suite.plans.Create(suite.ctx, first))

	second, err := mealplan.NewPlan(clientID, []string{"Cena"})
	require.NoError(suite.T(), err)
	err = suite.plans.Create(suite.ctx, second)
	assert.ErrorIs(suite.T(), err, mealplan.ErrPlanAlreadyExists)

	// archiving frees the slot
	require.NoError(suite.T(), first.Archive())
	require.NoError(suite.T(), suite.plans.SavePlanMeta(suite.ctx, first))
	require.NoError(suite.T(), suite.plans.Create(suite.ctx, second))

	active, err := suite.plans.FindActiveByClient(suite.ctx, clientID)
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), active)
	assert.Equal(suite.T(), second.ID(), active.ID())
}

func (suite *PlanRepositoryIntegrationTestSuite) TestGetPlanTotals() {
	r := suite.factory.Safe()
	r.PerServing = nutrition.Macros{Calories: 300, ProteinG: 10, CarbsG: 50, FatG: 6}
	require.NoError(suite.T(), suite.recipes.Create(suite.ctx, r))

	profile := testutils.NewProfileBuilder().Build()
	require.NoError(suite.T(), suite.clients.Create(suite.ctx, profile))

	view, err := suite.service.CreatePlan(suite.ctx, inbound.CreatePlanCommand{ClientID: profile.ClientID})
	require.NoError(suite.T(), err)

	monday := view.Days[0]
	_, err = suite.service.AddItem(suite.ctx, inbound.AddItemCommand{
		PlanID: view.ID, MealID: monday.Meals[0].ID, RecipeID: &r.ID, Portions: 1.5,
	})
	require.NoError(suite.T(), err)

	got, err := suite.service.GetPlan(suite.ctx, profile.ClientID)
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), got)

	assert.Equal(suite.T(), inbound.MacroTotals{Calories: 450, ProteinG: 15, CarbsG: 75, FatG: 9}, got.Days[0].Totals)
	assert.Equal(suite.T(), 450.0, got.WeekTotal.Calories)
	assert.Nil(suite.T(), got.Days[0].Meals[0].Items[0].Violation)
}

func (suite *PlanRepositoryIntegrationTestSuite) TestConcurrentCopiesDoNotInterleave() {
	view, err := suite.service.CreatePlan(suite.ctx, inbound.CreatePlanCommand{ClientID: uuid.New()})
	require.NoError(suite.T(), err)

	monday, tuesday, sunday := view.Days[0], view.Days[1], view.Days[6]
	for i, meal := range monday.Meals {
		_, err := suite.service.AddItem(suite.ctx, inbound.AddItemCommand{
			PlanID: view.ID, MealID: meal.ID, CustomName: "Lunes " + meal.Slot, Portions: float64(i + 1),
		})
		require.NoError(suite.T(), err)
	}
	_, err = suite.service.AddItem(suite.ctx, inbound.AddItemCommand{
		PlanID: view.ID, MealID: tuesday.Meals[0].ID, CustomName: "Martes",
	})
	require.NoError(suite.T(), err)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, source := range []uuid.UUID{monday.ID, tuesday.ID} {
		wg.Add(1)
		go func(source uuid.UUID) {
			defer wg.Done()
			errs <- suite.service.CopyDay(suite.ctx, inbound.CopyDayCommand{
				PlanID: view.ID, SourceDayID: source, TargetDayID: sunday.ID,
			})
		}(source)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(suite.T(), err)
	}

	plan, err := suite.plans.FindByID(suite.ctx, view.ID)
	require.NoError(suite.T(), err)
	target, _ := plan.Day(mealplan.Sunday)
	mon, _ := plan.Day(mealplan.Monday)
	tue, _ := plan.Day(mealplan.Tuesday)

	// the target equals exactly one of the sources
	matches := func(src mealplan.Day) bool {
		for i := range src.Meals {
			if len(src.Meals[i].Items) != len(target.Meals[i].Items) {
				return false
			}
			for j := range src.Meals[i].Items {
				if src.Meals[i].Items[j].DisplayName("") != target.Meals[i].Items[j].DisplayName("") {
					return false
				}
			}
		}
		return true
	}
	assert.True(suite.T(), matches(mon) != matches(tue), "target day must be a whole copy of one source")
}

func TestPlanRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(PlanRepositoryIntegrationTestSuite))
}
