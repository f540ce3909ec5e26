// Package sqlite provides SQLite database setup and configuration
package sqlite

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	gormModels "github.com/orbitfit/mealplan/internal/infrastructure/persistence/gorm"
)

// MemoryDSN names a private in-memory database that lives as long as its
// single connection.
func MemoryDSN(name string) string {
	if name == "" {
		name = uuid.NewString()
	}
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
}

// SetupDatabase creates and configures the SQLite database
func SetupDatabase(dsn string, logLevel logger.LogLevel) (*gorm.DB, error) {
	// Use in-memory database if no path provided
	if dsn == "" {
		dsn = MemoryDSN("")
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows one writer; a single connection also keeps in-memory
	// databases and PRAGMAs alive.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run auto-migration
	if err := db.AutoMigrate(gormModels.AllModels()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// SeedDatabase populates the database with a demo catalogue and client
func SeedDatabase(db *gorm.DB) error {
	// Check if data already exists
	var recipeCount int64
	if err := db.Model(&gormModels.RecipeModel{}).Count(&recipeCount).Error; err != nil {
		return fmt.Errorf("failed to count recipes: %w", err)
	}
	if recipeCount > 0 {
		return nil // Already seeded
	}

	for _, r := range demoRecipes() {
		recipe := r
		if err := db.Create(&recipe).Error; err != nil {
			return fmt.Errorf("failed to create demo recipe: %w", err)
		}
	}

	demoClients := []gormModels.ClientModel{
		{
			ID:                uuid.MustParse("6f1c7a8e-2d4b-4c3e-9a51-0b7d2f6e8c14"),
			FullName:          "Lucía Fernández",
			Allergens:         gormModels.StringSlice{"lactosa", "frutos_secos"},
			DietaryPreference: "vegetariano",
		},
		{
			ID:                uuid.MustParse("a3e9b2d1-5f64-4e8a-b7c2-91d0e4f3a265"),
			FullName:          "Martín Gómez",
			Allergens:         gormModels.StringSlice{},
			DietaryPreference: "sin_restricciones",
		},
	}
	for _, c := range demoClients {
		client := c
		if err := db.Create(&client).Error; err != nil {
			return fmt.Errorf("failed to create demo client: %w", err)
		}
	}

	return nil
}

func demoRecipes() []gormModels.RecipeModel {
	return []gormModels.RecipeModel{
		{
			Name:               "Avena con frutas",
			Ingredients:        plain("avena", "banana", "frutillas", "leche"),
			Servings:           1,
			KcalPerServing:     f(320),
			ProteinGPerServing: f(11),
			CarbsGPerServing:   f(54),
			FatGPerServing:     f(7),
		},
		{
			Name:               "Ensalada de pollo",
			Ingredients:        plain("pollo", "lechuga", "tomate", "aceite de oliva"),
			Servings:           2,
			KcalPerServing:     f(410),
			ProteinGPerServing: f(38),
			CarbsGPerServing:   f(9),
			FatGPerServing:     f(24),
		},
		{
			Name:               "Tortilla de huevo",
			Ingredients:        plain("huevo", "sal"),
			Servings:           1,
			KcalPerServing:     f(180),
			ProteinGPerServing: f(13),
			CarbsGPerServing:   f(1),
			FatGPerServing:     f(14),
		},
		{
			Name:               "Lentejas guisadas",
			Ingredients:        plain("lentejas", "zanahoria", "cebolla", "pimentón"),
			Servings:           4,
			KcalPerServing:     f(350),
			ProteinGPerServing: f(22),
			CarbsGPerServing:   f(55),
			FatGPerServing:     f(4),
		},
		{
			// legacy row: structured ingredients_data and macros_* columns only
			Name: "Budín de almendras",
			IngredientsData: structured(
				map[string]any{"item": "harina de trigo", "qty": "200g"},
				map[string]any{"item": "almendras", "qty": "80g"},
				map[string]any{"item": "manteca", "qty": "100g"},
			),
			Servings:       8,
			MacrosCalories: f(290),
			MacrosProteinG: f(6),
			MacrosCarbsG:   f(30),
			MacrosFatG:     f(17),
		},
		{
			Name:               "Salmón al horno",
			Ingredients:        plain("salmon", "limón", "eneldo"),
			Servings:           2,
			KcalPerServing:     f(430),
			ProteinGPerServing: f(40),
			CarbsGPerServing:   f(2),
			FatGPerServing:     f(28),
		},
	}
}
