package mealplan_test

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	app "github.com/orbitfit/mealplan/internal/application/mealplan"
	"github.com/orbitfit/mealplan/internal/domain/client"
	"github.com/orbitfit/mealplan/internal/domain/mealplan"
	"github.com/orbitfit/mealplan/internal/domain/nutrition"
	"github.com/orbitfit/mealplan/internal/domain/recipe"
	gormrepo "github.com/orbitfit/mealplan/internal/infrastructure/persistence/gorm"
	"github.com/orbitfit/mealplan/internal/ports/inbound"
	"github.com/orbitfit/mealplan/internal/ports/outbound"
	"github.com/orbitfit/mealplan/pkg/errors"
	"github.com/orbitfit/mealplan/test/testutils"
)

var defaultSlots = []string{"Desayuno", "Almuerzo", "Merienda", "Cena"}

type PlanServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	plans   outbound.PlanRepository
	recipes outbound.RecipeRepository
	clients outbound.ClientRepository
	events  *testutils.MockEventPublisher
	service *app.PlanService
}

func (suite *PlanServiceTestSuite) SetupTest() {
	db := testutils.SetupSQLite(suite.T())
	suite.ctx = context.Background()
	suite.plans = gormrepo.NewPlanRepository(db)
	suite.recipes = gormrepo.NewRecipeRepository(db)
	suite.clients = gormrepo.NewClientRepository(db)
	suite.events = testutils.NewAcceptingEventPublisher()
	suite.service = app.NewPlanService(
		suite.plans, suite.recipes, suite.clients, suite.events,
		app.Config{DefaultSlots: defaultSlots},
		zap.NewNop(),
	)
}

func (suite *PlanServiceTestSuite) storeRecipe(name string, ingredients []string, m nutrition.Macros) *recipe.Recipe {
	r, err := recipe.New(name, recipe.PlainIngredients(ingredients...), m, 1)
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), suite.recipes.Create(suite.ctx, r))
	return r
}

func (suite *PlanServiceTestSuite) storeClient(allergens []string, diet string) uuid.UUID {
	profile := testutils.NewProfileBuilder().WithAllergens(allergens...).WithDiet(diet).Build()
	require.NoError(suite.T(), suite.clients.Create(suite.ctx, profile))
	return profile.ClientID
}

func (suite *PlanServiceTestSuite) createPlan(clientID uuid.UUID, slots ...string) *inbound.PlanView {
	view, err := suite.service.CreatePlan(suite.ctx, inbound.CreatePlanCommand{ClientID: clientID, Slots: slots})
	require.NoError(suite.T(), err)
	return view
}

func (suite *PlanServiceTestSuite) addRecipe(planID, mealID, recipeID uuid.UUID, portions float64) uuid.UUID {
	ref, err := suite.service.AddItem(suite.ctx, inbound.AddItemCommand{
		PlanID: planID, MealID: mealID, RecipeID: &recipeID, Portions: portions,
	})
	require.NoError(suite.T(), err)
	return ref.ItemID
}

func (suite *PlanServiceTestSuite) getPlan(clientID uuid.UUID) *inbound.PlanView {
	view, err := suite.service.GetPlan(suite.ctx, clientID)
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), view)
	return view
}

func (suite *PlanServiceTestSuite) TestCreatePlan() {
	suite.Run("EmptySlots_ShouldUseDefaults", func() {
		clientID := suite.storeClient(nil, client.NoRestriction)

		view := suite.createPlan(clientID)

		assert.Equal(suite.T(), defaultSlots, view.Slots)
		require.Len(suite.T(), view.Days, 7)
		for i, day := range view.Days {
			assert.Equal(suite.T(), i+1, day.DayOfWeek)
			assert.False(suite.T(), day.HasContent)
			require.Len(suite.T(), day.Meals, len(defaultSlots))
			for j, meal := range day.Meals {
				assert.Equal(suite.T(), defaultSlots[j], meal.Slot)
				assert.Empty(suite.T(), meal.Items)
			}
		}
		assert.Equal(suite.T(), "Lunes", view.Days[0].Label)
		assert.Nil(suite.T(), view.ReviewDate)
		assert.Contains(suite.T(), suite.events.Names(), "mealplan.created")
	})

	suite.Run("SecondActivePlan_ShouldConflict", func() {
		clientID := uuid.New()
		suite.createPlan(clientID, "Desayuno")

		_, err := suite.service.CreatePlan(suite.ctx, inbound.CreatePlanCommand{ClientID: clientID})

		require.Error(suite.T(), err)
		assert.True(suite.T(), errors.Is(err, errors.CodePlanAlreadyExists))
		assert.ErrorIs(suite.T(), err, mealplan.ErrPlanAlreadyExists)
	})

	suite.Run("BlankSlot_ShouldFailValidation", func() {
		_, err := suite.service.CreatePlan(suite.ctx, inbound.CreatePlanCommand{
			ClientID: uuid.New(), Slots: []string{"Desayuno", "  "},
		})

		assert.True(suite.T(), errors.Is(err, errors.CodeValidationFailed))
	})

	suite.Run("ArchivedPlan_ShouldAllowNewOne", func() {
		clientID := uuid.New()
		first := suite.createPlan(clientID)
		require.NoError(suite.T(), suite.service.ArchivePlan(suite.ctx, first.ID))

		second := suite.createPlan(clientID)

		assert.NotEqual(suite.T(), first.ID, second.ID)
		assert.Equal(suite.T(), second.ID, suite.getPlan(clientID).ID)
	})
}

func (suite *PlanServiceTestSuite) TestGetPlan() {
	suite.Run("NoPlan_ShouldReturnNil", func() {
		view, err := suite.service.GetPlan(suite.ctx, uuid.New())

		require.NoError(suite.T(), err)
		assert.Nil(suite.T(), view)
	})

	suite.Run("Totals_ShouldScaleAndSkip", func() {
		clientID := suite.storeClient(nil, client.NoRestriction)
		plan := suite.createPlan(clientID)
		avena := suite.storeRecipe("Avena con frutas", []string{"avena", "banana"},
			nutrition.Macros{Calories: 300, ProteinG: 10, CarbsG: 50, FatG: 6})

		monday := plan.Days[0]
		suite.addRecipe(plan.ID, monday.Meals[0].ID, avena.ID, 1.5)
		suite.addRecipe(plan.ID, monday.Meals[1].ID, avena.ID, 1)
		_, err := suite.service.AddItem(suite.ctx, inbound.AddItemCommand{
			PlanID: plan.ID, MealID: monday.Meals[2].ID, CustomName: "Batido casero",
		})
		require.NoError(suite.T(), err)
		require.NoError(suite.T(), suite.service.SetMealSkipped(suite.ctx, plan.ID, monday.Meals[1].ID, true))

		view := suite.getPlan(clientID)
		day := view.Days[0]

		assert.True(suite.T(), day.HasContent)
		assert.Equal(suite.T(), inbound.MacroTotals{Calories: 450, ProteinG: 15, CarbsG: 75, FatG: 9}, day.Meals[0].Items[0].Totals)
		assert.True(suite.T(), day.Meals[1].Skipped)
		assert.Equal(suite.T(), inbound.MacroTotals{}, day.Meals[1].Totals)
		assert.Equal(suite.T(), inbound.MacroTotals{}, day.Meals[2].Items[0].Totals)
		assert.Equal(suite.T(), "Batido casero", day.Meals[2].Items[0].DisplayName)
		assert.Equal(suite.T(), inbound.MacroTotals{Calories: 450, ProteinG: 15, CarbsG: 75, FatG: 9}, day.Totals)
		assert.Equal(suite.T(), inbound.MacroTotals{Calories: 450, ProteinG: 15, CarbsG: 75, FatG: 9}, view.WeekTotal)
		assert.Equal(suite.T(), inbound.MacroTotals{Calories: 64, ProteinG: 2.1, CarbsG: 10.7, FatG: 1.3}, view.WeeklyAverage)
	})

	suite.Run("Violations_ShouldFlagPerItem", func() {
		clientID := suite.storeClient([]string{"lactosa", "huevo"}, "vegano")
		plan := suite.createPlan(clientID)
		tortilla := suite.storeRecipe("Tortilla de huevo", []string{"huevo", "sal"}, nutrition.Macros{Calories: 200})
		pollo := suite.storeRecipe("Ensalada de pollo", []string{"pollo", "lechuga"}, nutrition.Macros{Calories: 350})
		safe := suite.storeRecipe("Ensalada verde", []string{"lechuga", "tomate"}, nutrition.Macros{Calories: 90})

		meal := plan.Days[2].Meals[1]
		suite.addRecipe(plan.ID, meal.ID, tortilla.ID, 1)
		suite.addRecipe(plan.ID, meal.ID, pollo.ID, 1)
		suite.addRecipe(plan.ID, meal.ID, safe.ID, 1)
		suite.addRecipe(plan.ID, plan.Days[4].Meals[0].ID, tortilla.ID, 2)

		view := suite.getPlan(clientID)
		items := view.Days[2].Meals[1].Items
		require.Len(suite.T(), items, 3)

		require.NotNil(suite.T(), items[0].Violation)
		assert.Equal(suite.T(), inbound.ViolationView{Kind: "allergen", Tag: "huevo"}, *items[0].Violation)
		require.NotNil(suite.T(), items[1].Violation)
		assert.Equal(suite.T(), inbound.ViolationView{Kind: "diet", Tag: "vegano"}, *items[1].Violation)
		assert.Nil(suite.T(), items[2].Violation)
		assert.Equal(suite.T(), "Ensalada verde", items[2].RecipeName)
		assert.NotNil(suite.T(), view.Days[4].Meals[0].Items[0].Violation)
	})

	suite.Run("MissingProfile_ShouldNotFlag", func() {
		clientID := uuid.New()
		plan := suite.createPlan(clientID)
		tortilla := suite.storeRecipe("Tortilla de huevo", []string{"huevo"}, nutrition.Macros{Calories: 200})
		suite.addRecipe(plan.ID, plan.Days[0].Meals[0].ID, tortilla.ID, 1)

		view := suite.getPlan(clientID)

		assert.Nil(suite.T(), view.Days[0].Meals[0].Items[0].Violation)
	})
}

func (suite *PlanServiceTestSuite) TestCopyDay() {
	suite.Run("Copy_ShouldReplaceTargetContent", func() {
		clientID := suite.storeClient(nil, client.NoRestriction)
		plan := suite.createPlan(clientID)
		r := suite.storeRecipe("Lentejas", []string{"lentejas", "zanahoria"}, nutrition.Macros{Calories: 410, ProteinG: 22})

		monday, wednesday := plan.Days[0], plan.Days[2]
		suite.addRecipe(plan.ID, monday.Meals[1].ID, r.ID, 2)
		_, err := suite.service.AddItem(suite.ctx, inbound.AddItemCommand{
			PlanID: plan.ID, MealID: monday.Meals[1].ID, CustomName: "Pan casero",
		})
		require.NoError(suite.T(), err)
		require.NoError(suite.T(), suite.service.SetMealSkipped(suite.ctx, plan.ID, monday.Meals[3].ID, true))
		suite.addRecipe(plan.ID, wednesday.Meals[0].ID, r.ID, 1)

		err = suite.service.CopyDay(suite.ctx, inbound.CopyDayCommand{
			PlanID: plan.ID, SourceDayID: monday.ID, TargetDayID: wednesday.ID,
		})
		require.NoError(suite.T(), err)

		view := suite.getPlan(clientID)
		src, dst := view.Days[0], view.Days[2]
		for i := range src.Meals {
			assert.Equal(suite.T(), src.Meals[i].Skipped, dst.Meals[i].Skipped)
			require.Len(suite.T(), dst.Meals[i].Items, len(src.Meals[i].Items))
			for j := range src.Meals[i].Items {
				assert.NotEqual(suite.T(), src.Meals[i].Items[j].ID, dst.Meals[i].Items[j].ID)
				assert.Equal(suite.T(), src.Meals[i].Items[j].DisplayName, dst.Meals[i].Items[j].DisplayName)
				assert.Equal(suite.T(), src.Meals[i].Items[j].Portions, dst.Meals[i].Items[j].Portions)
			}
		}
		assert.Equal(suite.T(), src.Totals, dst.Totals)
		assert.Contains(suite.T(), suite.events.Names(), "mealplan.day.copied")
	})

	suite.Run("CopyTwice_ShouldBeIdempotent", func() {
		clientID := uuid.New()
		plan := suite.createPlan(clientID)
		r := suite.storeRecipe("Arroz integral", []string{"arroz"}, nutrition.Macros{Calories: 220})
		suite.addRecipe(plan.ID, plan.Days[0].Meals[0].ID, r.ID, 1)

		cmd := inbound.CopyDayCommand{PlanID: plan.ID, SourceDayID: plan.Days[0].ID, TargetDayID: plan.Days[6].ID}
		require.NoError(suite.T(), suite.service.CopyDay(suite.ctx, cmd))
		once := suite.getPlan(clientID).Days[6]
		require.NoError(suite.T(), suite.service.CopyDay(suite.ctx, cmd))
		twice := suite.getPlan(clientID).Days[6]

		assert.Equal(suite.T(), once.Totals, twice.Totals)
		require.Len(suite.T(), twice.Meals[0].Items, 1)
		assert.Equal(suite.T(), "Arroz integral", twice.Meals[0].Items[0].DisplayName)
	})

	suite.Run("SelfCopy_ShouldChangeNothing", func() {
		clientID := uuid.New()
		plan := suite.createPlan(clientID)
		r := suite.storeRecipe("Quinoa", []string{"quinoa"}, nutrition.Macros{Calories: 180})
		itemID := suite.addRecipe(plan.ID, plan.Days[1].Meals[0].ID, r.ID, 1)
		before := suite.getPlan(clientID)

		err := suite.service.CopyDay(suite.ctx, inbound.CopyDayCommand{
			PlanID: plan.ID, SourceDayID: plan.Days[1].ID, TargetDayID: plan.Days[1].ID,
		})

		require.NoError(suite.T(), err)
		after := suite.getPlan(clientID)
		assert.Equal(suite.T(), itemID, after.Days[1].Meals[0].Items[0].ID)
		assert.Equal(suite.T(), before.UpdatedAt.Unix(), after.UpdatedAt.Unix())
	})

	suite.Run("ForeignDay_ShouldBeRejected", func() {
		planA := suite.createPlan(uuid.New())
		planB := suite.createPlan(uuid.New())

		err := suite.service.CopyDay(suite.ctx, inbound.CopyDayCommand{
			PlanID: planA.ID, SourceDayID: planA.Days[0].ID, TargetDayID: planB.Days[1].ID,
		})

		require.Error(suite.T(), err)
		assert.True(suite.T(), errors.Is(err, errors.CodeInvalidCopyTarget))
		var appErr *errors.AppError
		require.True(suite.T(), stderrors.As(err, &appErr))
		assert.Equal(suite.T(), 400, appErr.StatusCode())
	})

	suite.Run("UnknownPlan_ShouldBeNotFound", func() {
		err := suite.service.CopyDay(suite.ctx, inbound.CopyDayCommand{
			PlanID: uuid.New(), SourceDayID: uuid.New(), TargetDayID: uuid.New(),
		})

		assert.True(suite.T(), errors.Is(err, errors.CodePlanNotFound))
	})

	suite.Run("ConcurrentCopies_ShouldLeaveOneSourceContent", func() {
		clientID := uuid.New()
		plan := suite.createPlan(clientID)
		a := suite.storeRecipe("Sopa de calabaza", []string{"calabaza"}, nutrition.Macros{Calories: 150})
		b := suite.storeRecipe("Guiso de lentejas", []string{"lentejas"}, nutrition.Macros{Calories: 380})
		suite.addRecipe(plan.ID, plan.Days[0].Meals[0].ID, a.ID, 1)
		suite.addRecipe(plan.ID, plan.Days[1].Meals[0].ID, b.ID, 1)

		var wg sync.WaitGroup
		for _, src := range []uuid.UUID{plan.Days[0].ID, plan.Days[1].ID} {
			wg.Add(1)
			go func(src uuid.UUID) {
				defer wg.Done()
				assert.NoError(suite.T(), suite.service.CopyDay(suite.ctx, inbound.CopyDayCommand{
					PlanID: plan.ID, SourceDayID: src, TargetDayID: plan.Days[5].ID,
				}))
			}(src)
		}
		wg.Wait()

		items := suite.getPlan(clientID).Days[5].Meals[0].Items
		require.Len(suite.T(), items, 1)
		assert.Contains(suite.T(), []string{"Sopa de calabaza", "Guiso de lentejas"}, items[0].DisplayName)
	})
}

func (suite *PlanServiceTestSuite) TestEditing() {
	suite.Run("Portions_ShouldUpdateTotals", func() {
		clientID := uuid.New()
		plan := suite.createPlan(clientID)
		r := suite.storeRecipe("Yogur natural", []string{"yogur"}, nutrition.Macros{Calories: 100, ProteinG: 5})
		itemID := suite.addRecipe(plan.ID, plan.Days[0].Meals[0].ID, r.ID, 1)

		require.NoError(suite.T(), suite.service.UpdateItemPortions(suite.ctx, plan.ID, itemID, 2.5))

		item := suite.getPlan(clientID).Days[0].Meals[0].Items[0]
		assert.Equal(suite.T(), 2.5, item.Portions)
		assert.Equal(suite.T(), 250.0, item.Totals.Calories)
	})

	suite.Run("InvalidPortions_ShouldFailValidation", func() {
		plan := suite.createPlan(uuid.New())
		r := suite.storeRecipe("Manzana", []string{"manzana"}, nutrition.Macros{Calories: 80})
		itemID := suite.addRecipe(plan.ID, plan.Days[0].Meals[0].ID, r.ID, 1)

		err := suite.service.UpdateItemPortions(suite.ctx, plan.ID, itemID, 0)

		assert.True(suite.T(), errors.Is(err, errors.CodeValidationFailed))
	})

	suite.Run("RemoveItem_ShouldRenumber", func() {
		clientID := uuid.New()
		plan := suite.createPlan(clientID)
		mealID := plan.Days[3].Meals[2].ID
		var itemIDs []uuid.UUID
		for _, name := range []string{"Té", "Tostadas", "Fruta"} {
			ref, err := suite.service.AddItem(suite.ctx, inbound.AddItemCommand{PlanID: plan.ID, MealID: mealID, CustomName: name})
			require.NoError(suite.T(), err)
			itemIDs = append(itemIDs, ref.ItemID)
		}

		require.NoError(suite.T(), suite.service.RemoveItem(suite.ctx, plan.ID, itemIDs[1]))

		items := suite.getPlan(clientID).Days[3].Meals[2].Items
		require.Len(suite.T(), items, 2)
		assert.Equal(suite.T(), "Té", items[0].DisplayName)
		assert.Equal(suite.T(), 0, items[0].Position)
		assert.Equal(suite.T(), "Fruta", items[1].DisplayName)
		assert.Equal(suite.T(), 1, items[1].Position)
	})

	suite.Run("UnknownRecipe_ShouldBeNotFound", func() {
		plan := suite.createPlan(uuid.New())
		missing := uuid.New()

		_, err := suite.service.AddItem(suite.ctx, inbound.AddItemCommand{
			PlanID: plan.ID, MealID: plan.Days[0].Meals[0].ID, RecipeID: &missing,
		})

		assert.True(suite.T(), errors.Is(err, errors.CodeNotFound))
	})

	suite.Run("BothContents_ShouldFailValidation", func() {
		plan := suite.createPlan(uuid.New())
		r := suite.storeRecipe("Pera", []string{"pera"}, nutrition.Macros{Calories: 60})

		_, err := suite.service.AddItem(suite.ctx, inbound.AddItemCommand{
			PlanID: plan.ID, MealID: plan.Days[0].Meals[0].ID, RecipeID: &r.ID, CustomName: "Pera",
		})

		assert.True(suite.T(), errors.Is(err, errors.CodeValidationFailed))
	})

	suite.Run("UnknownMeal_ShouldBeNotFound", func() {
		plan := suite.createPlan(uuid.New())

		err := suite.service.SetMealSkipped(suite.ctx, plan.ID, uuid.New(), true)

		assert.True(suite.T(), errors.Is(err, errors.CodeMealNotFound))
	})

	suite.Run("Override_ShouldRenameRecipeItem", func() {
		clientID := uuid.New()
		plan := suite.createPlan(clientID)
		r := suite.storeRecipe("Pollo al horno", []string{"pollo"}, nutrition.Macros{Calories: 420})

		_, err := suite.service.AddItem(suite.ctx, inbound.AddItemCommand{
			PlanID: plan.ID, MealID: plan.Days[0].Meals[3].ID, RecipeID: &r.ID, NameOverride: "Pollo de la abuela",
		})
		require.NoError(suite.T(), err)

		item := suite.getPlan(clientID).Days[0].Meals[3].Items[0]
		assert.Equal(suite.T(), "Pollo de la abuela", item.DisplayName)
		assert.Equal(suite.T(), "Pollo al horno", item.RecipeName)
	})
}

func (suite *PlanServiceTestSuite) TestReviewDateAndArchive() {
	suite.Run("ReviewDate_ShouldBeSetAndCleared", func() {
		clientID := uuid.New()
		plan := suite.createPlan(clientID)
		date := time.Date(2026, time.March, 14, 18, 30, 0, 0, time.UTC)

		require.NoError(suite.T(), suite.service.UpdateReviewDate(suite.ctx, plan.ID, &date))
		view := suite.getPlan(clientID)
		require.NotNil(suite.T(), view.ReviewDate)
		assert.Equal(suite.T(), "2026-03-14", *view.ReviewDate)

		require.NoError(suite.T(), suite.service.UpdateReviewDate(suite.ctx, plan.ID, nil))
		assert.Nil(suite.T(), suite.getPlan(clientID).ReviewDate)
	})

	suite.Run("ArchivedPlan_ShouldRejectEdits", func() {
		clientID := uuid.New()
		plan := suite.createPlan(clientID)
		require.NoError(suite.T(), suite.service.ArchivePlan(suite.ctx, plan.ID))

		err := suite.service.SetMealSkipped(suite.ctx, plan.ID, plan.Days[0].Meals[0].ID, true)

		assert.True(suite.T(), errors.Is(err, errors.CodePlanArchived))
		view, err := suite.service.GetPlan(suite.ctx, clientID)
		require.NoError(suite.T(), err)
		assert.Nil(suite.T(), view)
	})
}

func TestPlanServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PlanServiceTestSuite))
}

func TestPlanService_GetPlanLoadsConcurrentlyAndFallsBack(t *testing.T) {
	ctx := context.Background()
	db := testutils.SetupSQLite(t)
	plans := gormrepo.NewPlanRepository(db)

	clientID := uuid.New()
	plan, err := mealplan.NewPlan(clientID, []string{"Almuerzo"})
	require.NoError(t, err)
	pescado := testutils.NewRecipeBuilder().WithName("Merluza a la plancha").WithMacros(nutrition.Macros{Calories: 240}).Build()
	meal := plan.Days()[0].Meals[0]
	_, _, err = plan.AddItem(meal.ID, mealplan.RecipeRef{RecipeID: pescado.ID}, 1, "")
	require.NoError(t, err)
	require.NoError(t, plans.Create(ctx, plan))

	recipes := &testutils.MockRecipeRepository{}
	recipes.On("FindByIDs", mock.Anything, []uuid.UUID{pescado.ID}).Return([]*recipe.Recipe{pescado}, nil).Once()
	clients := &testutils.MockClientRepository{}
	clients.On("FindProfile", mock.Anything, clientID).Return(nil, client.ErrClientNotFound).Once()

	service := app.NewPlanService(plans, recipes, clients, nil, app.Config{DefaultSlots: defaultSlots}, zap.NewNop())

	view, err := service.GetPlan(ctx, clientID)
	require.NoError(t, err)

	item := view.Days[0].Meals[0].Items[0]
	assert.Equal(t, "Merluza a la plancha", item.DisplayName)
	assert.Nil(t, item.Violation)
	assert.Equal(t, 240.0, view.WeekTotal.Calories)
	recipes.AssertExpectations(t)
	clients.AssertExpectations(t)
}

func TestPlanService_GetPlanRecipeStoreFailure(t *testing.T) {
	ctx := context.Background()
	db := testutils.SetupSQLite(t)
	plans := gormrepo.NewPlanRepository(db)

	clientID := uuid.New()
	plan, err := mealplan.NewPlan(clientID, []string{"Cena"})
	require.NoError(t, err)
	_, _, err = plan.AddItem(plan.Days()[0].Meals[0].ID, mealplan.RecipeRef{RecipeID: uuid.New()}, 1, "")
	require.NoError(t, err)
	require.NoError(t, plans.Create(ctx, plan))

	recipes := &testutils.MockRecipeRepository{}
	recipes.On("FindByIDs", mock.Anything, mock.Anything).Return(nil, stderrors.New("connection reset"))
	clients := &testutils.MockClientRepository{}
	clients.On("FindProfile", mock.Anything, clientID).Return(testutils.NewProfileBuilder().WithClientID(clientID).Build(), nil)

	service := app.NewPlanService(plans, recipes, clients, nil, app.Config{}, zap.NewNop())

	_, err = service.GetPlan(ctx, clientID)
	assert.True(t, errors.Is(err, errors.CodeDatabaseError))
}
