package mealplan

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/orbitfit/mealplan/internal/domain/client"
	"github.com/orbitfit/mealplan/internal/domain/compliance"
	"github.com/orbitfit/mealplan/internal/domain/mealplan"
	"github.com/orbitfit/mealplan/internal/domain/nutrition"
	"github.com/orbitfit/mealplan/internal/domain/recipe"
	"github.com/orbitfit/mealplan/internal/ports/inbound"
)

const reviewDateLayout = "2006-01-02"

// buildView resolves the plan's recipes, evaluates compliance once per
// distinct recipe and attaches totals at every level. The profile and the
// recipes are loaded concurrently.
func (s *PlanService) buildView(ctx context.Context, plan *mealplan.Plan) (*inbound.PlanView, error) {
	days := plan.Days()
	recipeIDs := distinctRecipeIDs(days)

	var (
		profile client.Profile
		catalog = make(map[uuid.UUID]*recipe.Recipe, len(recipeIDs))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.loadProfile(gctx, plan.ClientID())
		profile = p
		return err
	})
	g.Go(func() error {
		if len(recipeIDs) == 0 {
			return nil
		}
		found, err := s.recipes.FindByIDs(gctx, recipeIDs)
		if err != nil {
			return err
		}
		for _, r := range found {
			catalog[r.ID] = r
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, s.mapError("load plan details", err, ids{plan: plan.ID(), client: plan.ClientID()})
	}

	perServing := make(map[uuid.UUID]nutrition.Macros, len(catalog))
	violations := make(map[uuid.UUID]*compliance.Violation, len(catalog))
	for id, r := range catalog {
		perServing[id] = r.PerServing
		violations[id] = s.checker.Evaluate(r, profile)
	}
	lookup := nutrition.MapLookup(perServing)
	week := nutrition.PlanWeekMacros(days, lookup)

	view := &inbound.PlanView{
		ID:            plan.ID(),
		ClientID:      plan.ClientID(),
		Active:        plan.Active(),
		Slots:         plan.SlotNames(),
		Days:          make([]inbound.DayView, 0, len(days)),
		WeekTotal:     totals(week.Total),
		WeeklyAverage: totals(week.Average),
		CreatedAt:     plan.CreatedAt(),
		UpdatedAt:     plan.UpdatedAt(),
	}
	if date := plan.ReviewDate(); date != nil {
		formatted := date.Format(reviewDateLayout)
		view.ReviewDate = &formatted
	}

	itemCount := 0
	for _, day := range days {
		dayView := inbound.DayView{
			ID:         day.ID,
			DayOfWeek:  int(day.Weekday),
			Label:      day.Weekday.String(),
			HasContent: day.HasContent(),
			Meals:      make([]inbound.MealView, 0, len(day.Meals)),
			Totals:     totals(week.Days[day.Weekday.Index()]),
		}

		for _, meal := range day.Meals {
			mealView := inbound.MealView{
				ID:       meal.ID,
				Slot:     meal.Slot,
				Position: meal.Position,
				Skipped:  meal.Skipped,
				Items:    make([]inbound.ItemView, 0, len(meal.Items)),
				Totals:   totals(nutrition.MealMacros(meal, lookup)),
			}

			for _, item := range meal.Items {
				itemView := s.itemView(item, catalog, violations, lookup)
				mealView.Items = append(mealView.Items, itemView)
				itemCount++
			}
			dayView.Meals = append(dayView.Meals, mealView)
		}
		view.Days = append(view.Days, dayView)
	}

	s.recorder.RecordPlanView(itemCount)
	return view, nil
}

func (s *PlanService) itemView(
	item mealplan.Item,
	catalog map[uuid.UUID]*recipe.Recipe,
	violations map[uuid.UUID]*compliance.Violation,
	lookup nutrition.Lookup,
) inbound.ItemView {
	view := inbound.ItemView{
		ID:       item.ID,
		Portions: item.Portions,
		Position: item.Position,
		Totals:   totals(nutrition.ItemMacros(item, lookup)),
	}

	var recipeName string
	switch c := item.Content.(type) {
	case mealplan.RecipeRef:
		id := c.RecipeID
		view.RecipeID = &id
		if r, ok := catalog[id]; ok {
			recipeName = r.Name
			view.RecipeName = r.Name
		}
		if v := violations[id]; v != nil {
			view.Violation = &inbound.ViolationView{Kind: string(v.Kind), Tag: v.Tag}
			s.recorder.RecordViolation(string(v.Kind))
		}
	case mealplan.CustomEntry:
		view.CustomName = c.Name
	}
	view.DisplayName = item.DisplayName(recipeName)

	return view
}

// loadProfile falls back to an unrestricted profile when the client has
// none stored
func (s *PlanService) loadProfile(ctx context.Context, clientID uuid.UUID) (client.Profile, error) {
	p, err := s.clients.FindProfile(ctx, clientID)
	if err != nil && !stderrors.Is(err, client.ErrClientNotFound) {
		return client.Profile{}, err
	}
	if p == nil {
		s.logger.Warn("Client profile not found, checking without restrictions",
			zap.String("client_id", clientID.String()),
		)
		return client.EmptyProfile(clientID), nil
	}
	return *p, nil
}

func distinctRecipeIDs(days []mealplan.Day) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	var out []uuid.UUID
	for _, d := range days {
		for _, m := range d.Meals {
			for _, it := range m.Items {
				id, ok := it.RecipeID()
				if !ok {
					continue
				}
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	return out
}

func totals(m nutrition.Macros) inbound.MacroTotals {
	r := m.Rounded()
	return inbound.MacroTotals{
		Calories: r.Calories,
		ProteinG: r.ProteinG,
		CarbsG:   r.CarbsG,
		FatG:     r.FatG,
	}
}
