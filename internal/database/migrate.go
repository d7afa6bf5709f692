package database

import (
	"errors"
	"fmt"

	"github.com/pageza/foodgram/backend/internal/models"
	"gorm.io/gorm"
)

// Models lists every persisted model in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.ShoppingListEntry{},
		&models.Subscription{},
	}
}

// Migrate creates or updates the schema. The custom recipe_tags join
// model has to be registered before the recipes table is migrated.
func Migrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("database connection is nil")
	}
	if err := db.SetupJoinTable(&models.Recipe{}, "Tags", &models.RecipeTag{}); err != nil {
		return fmt.Errorf("failed to set up recipe_tags join table: %w", err)
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
