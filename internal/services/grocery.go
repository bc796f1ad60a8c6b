package services

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/aislemap-backend/internal/data/repos"
	types "github.com/yungbote/aislemap-backend/internal/domain"
	"github.com/yungbote/aislemap-backend/internal/pkg/dbctx"
	"github.com/yungbote/aislemap-backend/internal/pkg/errors"
	"github.com/yungbote/aislemap-backend/internal/platform/logger"
)

type AddItemInput struct {
	Name     string
	Barcode  *string
	Quantity int
}

type CreateRecipeInput struct {
	Title        string
	Ingredients  []string
	Instructions string
	Servings     int
}

type PlanMealInput struct {
	RecipeID   uuid.UUID
	PlannedFor time.Time
	Slot       string
}

// GroceryService owns the personal planning surface: shopping lists, recipes,
// and the meal plan. Every operation is scoped to the calling user; acting on
// another user's rows reads as not-found rather than forbidden.
type GroceryService interface {
	CreateList(dbc dbctx.Context, userID uuid.UUID, name string) (*types.ShoppingList, error)
	ListLists(dbc dbctx.Context, userID uuid.UUID) ([]*types.ShoppingList, error)
	DeleteList(dbc dbctx.Context, userID, listID uuid.UUID) error
	AddItem(dbc dbctx.Context, userID, listID uuid.UUID, in AddItemInput) (*types.ShoppingListItem, error)
	ListItems(dbc dbctx.Context, userID, listID uuid.UUID) ([]*types.ShoppingListItem, error)
	SetItemChecked(dbc dbctx.Context, userID, listID, itemID uuid.UUID, checked bool) error
	DeleteItem(dbc dbctx.Context, userID, listID, itemID uuid.UUID) error

	CreateRecipe(dbc dbctx.Context, userID uuid.UUID, in CreateRecipeInput) (*types.Recipe, error)
	ListRecipes(dbc dbctx.Context, userID uuid.UUID) ([]*types.Recipe, error)
	DeleteRecipe(dbc dbctx.Context, userID, recipeID uuid.UUID) error

	PlanMeal(dbc dbctx.Context, userID uuid.UUID, in PlanMealInput) (*types.MealPlanEntry, error)
	ListMeals(dbc dbctx.Context, userID uuid.UUID, from, to time.Time) ([]*types.MealPlanEntry, error)
	DeleteMeal(dbc dbctx.Context, userID, entryID uuid.UUID) error
}

type groceryService struct {
	log          *logger.Logger
	listRepo     repos.ShoppingListRepo
	recipeRepo   repos.RecipeRepo
	mealPlanRepo repos.MealPlanRepo
}

func NewGroceryService(
	log *logger.Logger,
	listRepo repos.ShoppingListRepo,
	recipeRepo repos.RecipeRepo,
	mealPlanRepo repos.MealPlanRepo,
) GroceryService {
	return &groceryService{
		log:          log.With("service", "GroceryService"),
		listRepo:     listRepo,
		recipeRepo:   recipeRepo,
		mealPlanRepo: mealPlanRepo,
	}
}

func (s *groceryService) CreateList(dbc dbctx.Context, userID uuid.UUID, name string) (*types.ShoppingList, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Validationf("list name is required")
	}
	row, err := s.listRepo.Create(dbc, &types.ShoppingList{UserID: userID, Name: name})
	if err != nil {
		return nil, errors.Storagef("creating list: %v", err)
	}
	return row, nil
}

func (s *groceryService) ListLists(dbc dbctx.Context, userID uuid.UUID) ([]*types.ShoppingList, error) {
	rows, err := s.listRepo.ListByUser(dbc, userID)
	if err != nil {
		return nil, errors.Storagef("listing lists: %v", err)
	}
	return rows, nil
}

func (s *groceryService) DeleteList(dbc dbctx.Context, userID, listID uuid.UUID) error {
	if _, err := s.ownedList(dbc, userID, listID); err != nil {
		return err
	}
	if err := s.listRepo.Delete(dbc, listID); err != nil {
		return errors.Storagef("deleting list: %v", err)
	}
	return nil
}

func (s *groceryService) AddItem(dbc dbctx.Context, userID, listID uuid.UUID, in AddItemInput) (*types.ShoppingListItem, error) {
	if _, err := s.ownedList(dbc, userID, listID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errors.Validationf("item name is required")
	}
	qty := in.Quantity
	if qty <= 0 {
		qty = 1
	}
	row, err := s.listRepo.AddItem(dbc, &types.ShoppingListItem{
		ListID:   listID,
		Name:     name,
		Barcode:  in.Barcode,
		Quantity: qty,
	})
	if err != nil {
		return nil, errors.Storagef("adding item: %v", err)
	}
	return row, nil
}

func (s *groceryService) ListItems(dbc dbctx.Context, userID, listID uuid.UUID) ([]*types.ShoppingListItem, error) {
	if _, err := s.ownedList(dbc, userID, listID); err != nil {
		return nil, err
	}
	rows, err := s.listRepo.ListItems(dbc, listID)
	if err != nil {
		return nil, errors.Storagef("listing items: %v", err)
	}
	return rows, nil
}

func (s *groceryService) SetItemChecked(dbc dbctx.Context, userID, listID, itemID uuid.UUID, checked bool) error {
	item, err := s.ownedItem(dbc, userID, listID, itemID)
	if err != nil {
		return err
	}
	item.Checked = checked
	if err := s.listRepo.UpdateItem(dbc, item); err != nil {
		return errors.Storagef("updating item: %v", err)
	}
	return nil
}

func (s *groceryService) DeleteItem(dbc dbctx.Context, userID, listID, itemID uuid.UUID) error {
	if _, err := s.ownedItem(dbc, userID, listID, itemID); err != nil {
		return err
	}
	if err := s.listRepo.DeleteItem(dbc, itemID); err != nil {
		return errors.Storagef("deleting item: %v", err)
	}
	return nil
}

func (s *groceryService) CreateRecipe(dbc dbctx.Context, userID uuid.UUID, in CreateRecipeInput) (*types.Recipe, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, errors.Validationf("recipe title is required")
	}
	servings := in.Servings
	if servings <= 0 {
		servings = 1
	}
	raw, err := json.Marshal(in.Ingredients)
	if err != nil {
		return nil, errors.Validationf("ingredients not serializable: %v", err)
	}
	row, err := s.recipeRepo.Create(dbc, &types.Recipe{
		UserID:       userID,
		Title:        title,
		Ingredients:  datatypes.JSON(raw),
		Instructions: in.Instructions,
		Servings:     servings,
	})
	if err != nil {
		return nil, errors.Storagef("creating recipe: %v", err)
	}
	return row, nil
}

func (s *groceryService) ListRecipes(dbc dbctx.Context, userID uuid.UUID) ([]*types.Recipe, error) {
	rows, err := s.recipeRepo.ListByUser(dbc, userID)
	if err != nil {
		return nil, errors.Storagef("listing recipes: %v", err)
	}
	return rows, nil
}

func (s *groceryService) DeleteRecipe(dbc dbctx.Context, userID, recipeID uuid.UUID) error {
	recipe, err := s.recipeRepo.GetByID(dbc, recipeID)
	if err != nil {
		return errors.Storagef("loading recipe: %v", err)
	}
	if recipe == nil || recipe.UserID != userID {
		return errors.NotFoundf("recipe %s", recipeID)
	}
	if err := s.recipeRepo.Delete(dbc, recipeID); err != nil {
		return errors.Storagef("deleting recipe: %v", err)
	}
	return nil
}

func (s *groceryService) PlanMeal(dbc dbctx.Context, userID uuid.UUID, in PlanMealInput) (*types.MealPlanEntry, error) {
	switch in.Slot {
	case types.MealSlotBreakfast, types.MealSlotLunch, types.MealSlotDinner, types.MealSlotSnack:
	default:
		return nil, errors.Validationf("unknown meal slot %q", in.Slot)
	}
	if in.PlannedFor.IsZero() {
		return nil, errors.Validationf("a planned date is required")
	}
	recipe, err := s.recipeRepo.GetByID(dbc, in.RecipeID)
	if err != nil {
		return nil, errors.Storagef("loading recipe: %v", err)
	}
	if recipe == nil || recipe.UserID != userID {
		return nil, errors.NotFoundf("recipe %s", in.RecipeID)
	}
	row, err := s.mealPlanRepo.Create(dbc, &types.MealPlanEntry{
		UserID:     userID,
		RecipeID:   in.RecipeID,
		PlannedFor: in.PlannedFor,
		Slot:       in.Slot,
	})
	if err != nil {
		return nil, errors.Storagef("planning meal: %v", err)
	}
	return row, nil
}

func (s *groceryService) ListMeals(dbc dbctx.Context, userID uuid.UUID, from, to time.Time) ([]*types.MealPlanEntry, error) {
	if to.Before(from) {
		return nil, errors.Validationf("range end precedes start")
	}
	rows, err := s.mealPlanRepo.ListByUserRange(dbc, userID, from, to)
	if err != nil {
		return nil, errors.Storagef("listing meals: %v", err)
	}
	return rows, nil
}

func (s *groceryService) DeleteMeal(dbc dbctx.Context, userID, entryID uuid.UUID) error {
	entry, err := s.mealPlanRepo.GetByID(dbc, entryID)
	if err != nil {
		return errors.Storagef("loading meal plan entry: %v", err)
	}
	if entry == nil || entry.UserID != userID {
		return errors.NotFoundf("meal plan entry %s", entryID)
	}
	if err := s.mealPlanRepo.Delete(dbc, entryID); err != nil {
		return errors.Storagef("deleting meal: %v", err)
	}
	return nil
}

func (s *groceryService) ownedList(dbc dbctx.Context, userID, listID uuid.UUID) (*types.ShoppingList, error) {
	list, err := s.listRepo.GetByID(dbc, listID)
	if err != nil {
		return nil, errors.Storagef("loading list: %v", err)
	}
	if list == nil || list.UserID != userID {
		return nil, errors.NotFoundf("shopping list %s", listID)
	}
	return list, nil
}

func (s *groceryService) ownedItem(dbc dbctx.Context, userID, listID, itemID uuid.UUID) (*types.ShoppingListItem, error) {
	if _, err := s.ownedList(dbc, userID, listID); err != nil {
		return nil, err
	}
	items, err := s.listRepo.ListItems(dbc, listID)
	if err != nil {
		return nil, errors.Storagef("listing items: %v", err)
	}
	for _, it := range items {
		if it.ID == itemID {
			return it, nil
		}
	}
	return nil, errors.NotFoundf("list item %s", itemID)
}
