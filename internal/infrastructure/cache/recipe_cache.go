// Package cache provides recipe caching in front of the catalogue repository
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orbitfit/mealplan/internal/domain/nutrition"
	"github.com/orbitfit/mealplan/internal/domain/recipe"
	"github.com/orbitfit/mealplan/internal/ports/outbound"
)

const recipeKeyPrefix = "recipe:"

// CachedRecipeRepository is a cache-aside decorator over a RecipeRepository.
// Cache failures are logged and fall through to the underlying repository.
type CachedRecipeRepository struct {
	next   outbound.RecipeRepository
	cache  outbound.CacheRepository
	ttl    time.Duration
	logger *zap.Logger
}

var _ outbound.RecipeRepository = (*CachedRecipeRepository)(nil)

// cachedRecipe is the stored form of a recipe
type cachedRecipe struct {
	ID                uuid.UUID              `json:"id"`
	Name              string                 `json:"name"`
	Ingredients       []recipe.IngredientRef `json:"ingredients,omitempty"`
	LegacyIngredients []recipe.IngredientRef `json:"legacy_ingredients,omitempty"`
	PerServing        nutrition.Macros       `json:"per_serving"`
	Servings          int                    `json:"servings"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// NewCachedRecipeRepository wraps next with cache
func NewCachedRecipeRepository(next outbound.RecipeRepository, cache outbound.CacheRepository, ttl time.Duration, logger *zap.Logger) *CachedRecipeRepository {
	return &CachedRecipeRepository{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger.Named("recipe-cache"),
	}
}

// Create stores the recipe and primes the cache
func (c *CachedRecipeRepository) Create(ctx context.Context, r *recipe.Recipe) error {
	if err := c.next.Create(ctx, r); err != nil {
		return err
	}
	c.store(ctx, map[string][]byte{recipeKey(r.ID): encodeRecipe(r)})
	return nil
}

// FindByID reads through the cache
func (c *CachedRecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error) {
	data, err := c.cache.Get(ctx, recipeKey(id))
	switch {
	case err == nil:
		r, decodeErr := decodeRecipe(data)
		if decodeErr == nil {
			return r, nil
		}
		c.logger.Warn("Discarding undecodable cached recipe",
			zap.String("recipe_id", id.String()),
			zap.Error(decodeErr),
		)
	case !errors.Is(err, outbound.ErrCacheMiss):
		c.logger.Warn("Recipe cache read failed", zap.String("recipe_id", id.String()), zap.Error(err))
	}

	r, err := c.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, map[string][]byte{recipeKey(id): encodeRecipe(r)})
	return r, nil
}

// FindByIDs serves what it can from one batched cache read and loads the
// rest from the repository
func (c *CachedRecipeRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*recipe.Recipe, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = recipeKey(id)
	}

	cached, err := c.cache.MGet(ctx, keys)
	if err != nil {
		c.logger.Warn("Recipe cache batch read failed", zap.Int("keys", len(keys)), zap.Error(err))
		cached = nil
	}

	found := make([]*recipe.Recipe, 0, len(ids))
	var missing []uuid.UUID
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for i, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if data, ok := cached[keys[i]]; ok {
			if r, err := decodeRecipe(data); err == nil {
				found = append(found, r)
				continue
			}
		}
		missing = append(missing, id)
	}

	if len(missing) == 0 {
		return found, nil
	}

	loaded, err := c.next.FindByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}

	fresh := make(map[string][]byte, len(loaded))
	for _, r := range loaded {
		fresh[recipeKey(r.ID)] = encodeRecipe(r)
	}
	c.store(ctx, fresh)

	c.logger.Debug("Recipe batch lookup",
		zap.Int("requested", len(seen)),
		zap.Int("cache_hits", len(found)),
		zap.Int("loaded", len(loaded)),
	)

	return append(found, loaded...), nil
}

func (c *CachedRecipeRepository) store(ctx context.Context, items map[string][]byte) {
	for k, v := range items {
		if v == nil {
			delete(items, k)
		}
	}
	if len(items) == 0 {
		return
	}
	if err := c.cache.MSet(ctx, items, c.ttl); err != nil {
		c.logger.Warn("Recipe cache write failed", zap.Int("keys", len(items)), zap.Error(err))
	}
}

func recipeKey(id uuid.UUID) string {
	return recipeKeyPrefix + id.String()
}

func encodeRecipe(r *recipe.Recipe) []byte {
	data, err := json.Marshal(cachedRecipe{
		ID:                r.ID,
		Name:              r.Name,
		Ingredients:       r.Ingredients,
		LegacyIngredients: r.LegacyIngredients,
		PerServing:        r.PerServing,
		Servings:          r.Servings,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	})
	if err != nil {
		return nil
	}
	return data
}

func decodeRecipe(data []byte) (*recipe.Recipe, error) {
	var c cachedRecipe
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &recipe.Recipe{
		ID:                c.ID,
		Name:              c.Name,
		Ingredients:       c.Ingredients,
		LegacyIngredients: c.LegacyIngredients,
		PerServing:        c.PerServing,
		Servings:          c.Servings,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}, nil
}
