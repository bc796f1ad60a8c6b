package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/aislemap-backend/internal/data/repos/grocery"
	"github.com/yungbote/aislemap-backend/internal/data/repos/mapping"
	"github.com/yungbote/aislemap-backend/internal/data/repos/store"
	"github.com/yungbote/aislemap-backend/internal/data/repos/user"
	"github.com/yungbote/aislemap-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type StoreRepo = store.StoreRepo

type FactRepo = mapping.FactRepo
type ContributionRepo = mapping.ContributionRepo
type ExplorerBonusRepo = mapping.ExplorerBonusRepo
type BadgeRepo = mapping.BadgeRepo

type MergeInput = mapping.MergeInput
type PriceSource = mapping.PriceSource
type ChainSourceQuery = mapping.ChainSourceQuery
type ContributorPoints = mapping.ContributorPoints

type ShoppingListRepo = grocery.ShoppingListRepo
type RecipeRepo = grocery.RecipeRepo
type MealPlanRepo = grocery.MealPlanRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewStoreRepo(db *gorm.DB, baseLog *logger.Logger) StoreRepo {
	return store.NewStoreRepo(db, baseLog)
}

func NewFactRepo(db *gorm.DB, baseLog *logger.Logger) FactRepo {
	return mapping.NewFactRepo(db, baseLog)
}
func NewContributionRepo(db *gorm.DB, baseLog *logger.Logger) ContributionRepo {
	return mapping.NewContributionRepo(db, baseLog)
}
func NewExplorerBonusRepo(db *gorm.DB, baseLog *logger.Logger) ExplorerBonusRepo {
	return mapping.NewExplorerBonusRepo(db, baseLog)
}
func NewBadgeRepo(db *gorm.DB, baseLog *logger.Logger) BadgeRepo {
	return mapping.NewBadgeRepo(db, baseLog)
}

func NewShoppingListRepo(db *gorm.DB, baseLog *logger.Logger) ShoppingListRepo {
	return grocery.NewShoppingListRepo(db, baseLog)
}
func NewRecipeRepo(db *gorm.DB, baseLog *logger.Logger) RecipeRepo {
	return grocery.NewRecipeRepo(db, baseLog)
}
func NewMealPlanRepo(db *gorm.DB, baseLog *logger.Logger) MealPlanRepo {
	return grocery.NewMealPlanRepo(db, baseLog)
}
