package migration

import (
	"Pantry-Planner/entities"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	models := []struct {
		name  string
		model any
	}{
		{"user", &entities.User{}},
		{"pantry item", &entities.PantryItem{}},
		{"consumption record", &entities.ConsumptionRecord{}},
		{"budget", &entities.Budget{}},
		{"shopping list", &entities.ShoppingList{}},
		{"shopping list item", &entities.ShoppingListItem{}},
		{"food waste record", &entities.FoodWasteRecord{}},
	}

	for _, m := range models {
		if err := db.AutoMigrate(m.model); err != nil {
			log.Errorf("Error migrating %s database: %v", m.name, err)
			return fmt.Errorf("migrate %s: %w", m.name, err)
		}
	}

	log.Info("Database migration complete")
	return nil
}
