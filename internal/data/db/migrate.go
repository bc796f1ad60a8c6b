package db

import (
	types "github.com/yungbote/aislemap-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(

		// =========================
		// Identity
		// =========================
		&types.User{},

		// =========================
		// Store directory
		// =========================
		&types.Store{},

		// =========================
		// Crowdsourced mapping core
		// =========================
		&types.Fact{},
		&types.Contribution{},
		&types.ExplorerBonus{},
		&types.Badge{},

		// =========================
		// Grocery planning
		// =========================
		&types.ShoppingList{},
		&types.ShoppingListItem{},
		&types.Recipe{},
		&types.MealPlanEntry{},
	)
}
