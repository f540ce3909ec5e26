package gorm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orbitfit/mealplan/internal/domain/mealplan"
	"github.com/orbitfit/mealplan/internal/ports/outbound"
)

// PlanRepository implements the plan repository interface using GORM
type PlanRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository
func NewPlanRepository(db *gorm.DB) outbound.PlanRepository {
	return &PlanRepository{db: db}
}

// Create stores the plan with its days, meals and items
func (r *PlanRepository) Create(ctx context.Context, plan *mealplan.Plan) error {
	model := PlanToModel(plan)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if plan.Active() {
			var count int64
			if err := tx.Model(&PlanModel{}).
				Where("client_id = ? AND active = ?", plan.ClientID(), true).
				Count(&count).Error; err != nil {
				return fmt.Errorf("count active plans: %w", err)
			}
			if count > 0 {
				return mealplan.ErrPlanAlreadyExists
			}
		}

		if err := tx.Create(model).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return mealplan.ErrPlanAlreadyExists
			}
			return fmt.Errorf("create plan: %w", err)
		}
		return nil
	})
}

// FindByID finds a plan by ID
func (r *PlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*mealplan.Plan, error) {
	return r.findOne(r.withTree(r.db.WithContext(ctx)), "id = ?", id)
}

// FindByIDForUpdate finds a plan by ID and locks its row on PostgreSQL
func (r *PlanRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*mealplan.Plan, error) {
	db := r.db.WithContext(ctx)
	if db.Dialector.Name() == "postgres" {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.findOne(r.withTree(db), "id = ?", id)
}

// FindActiveByClient finds the client's active plan
func (r *PlanRepository) FindActiveByClient(ctx context.Context, clientID uuid.UUID) (*mealplan.Plan, error) {
	plan, err := r.findOne(
		r.withTree(r.db.WithContext(ctx)).Order("created_at DESC"),
		"client_id = ? AND active = ?", clientID, true,
	)
	if errors.Is(err, mealplan.ErrPlanNotFound) {
		return nil, nil
	}
	return plan, err
}

// ReplaceDay rewrites every meal of the day
func (r *PlanRepository) ReplaceDay(ctx context.Context, day mealplan.Day) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, meal := range day.Meals {
			if err := saveMeal(tx, meal); err != nil {
				return fmt.Errorf("replace %s: %w", day.Weekday, err)
			}
		}
		return nil
	})
}

// SaveMeal rewrites one meal's skipped flag and items
func (r *PlanRepository) SaveMeal(ctx context.Context, meal mealplan.Meal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveMeal(tx, meal)
	})
}

// SavePlanMeta updates review date, active flag and timestamps
func (r *PlanRepository) SavePlanMeta(ctx context.Context, plan *mealplan.Plan) error {
	updates := map[string]interface{}{
		"review_date": nil,
		"active":      plan.Active(),
		"archived_at": plan.ArchivedAt(),
		"updated_at":  plan.UpdatedAt(),
	}
	if date := toDate(plan.ReviewDate()); date != nil {
		updates["review_date"] = *date
	}

	result := r.db.WithContext(ctx).
		Model(&PlanModel{}).
		Where("id = ?", plan.ID()).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("update plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return mealplan.ErrPlanNotFound
	}
	return nil
}

// WithinTransaction runs fn with a repository bound to one transaction
func (r *PlanRepository) WithinTransaction(ctx context.Context, fn func(repo outbound.PlanRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PlanRepository{db: tx})
	})
}

func (r *PlanRepository) withTree(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Days", func(db *gorm.DB) *gorm.DB {
			return db.Order("day_of_week ASC")
		}).
		Preload("Days.Meals", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Days.Meals.Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})
}

func (r *PlanRepository) findOne(db *gorm.DB, query string, args ...interface{}) (*mealplan.Plan, error) {
	var model PlanModel

	result := db.Where(query, args...).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, mealplan.ErrPlanNotFound
		}
		return nil, fmt.Errorf("load plan: %w", result.Error)
	}

	return ModelToPlan(&model)
}

func saveMeal(tx *gorm.DB, meal mealplan.Meal) error {
	result := tx.Model(&MealModel{}).Where("id = ?", meal.ID).Update("is_skipped", meal.Skipped)
	if result.Error != nil {
		return fmt.Errorf("update meal %s: %w", meal.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return mealplan.ErrMealNotFound
	}

	if err := tx.Where("meal_id = ?", meal.ID).Delete(&ItemModel{}).Error; err != nil {
		return fmt.Errorf("delete items of meal %s: %w", meal.ID, err)
	}

	if len(meal.Items) == 0 {
		return nil
	}
	items := make([]ItemModel, 0, len(meal.Items))
	for _, it := range meal.Items {
		model := ItemToModel(it)
		model.MealID = meal.ID
		items = append(items, model)
	}
	if err := tx.Create(&items).Error; err != nil {
		return fmt.Errorf("insert items of meal %s: %w", meal.ID, err)
	}
	return nil
}
