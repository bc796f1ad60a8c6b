package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/aislemap-backend/internal/middleware"
	"github.com/yungbote/aislemap-backend/internal/pkg/dbctx"
	"github.com/yungbote/aislemap-backend/internal/pkg/errors"
	"github.com/yungbote/aislemap-backend/internal/platform/logger"
	"github.com/yungbote/aislemap-backend/internal/services"
)

type GroceryHandler struct {
	log            *logger.Logger
	groceryService services.GroceryService
}

func NewGroceryHandler(log *logger.Logger, groceryService services.GroceryService) *GroceryHandler {
	return &GroceryHandler{log: log.With("handler", "GroceryHandler"), groceryService: groceryService}
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondServiceError(c, errors.Validationf("malformed %s", name))
		return uuid.Nil, false
	}
	return id, true
}

type createListRequest struct {
	Name string `json:"name"`
}

func (h *GroceryHandler) CreateList(c *gin.Context) {
	var req createListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_input", errors.Validationf("malformed body"))
		return
	}
	list, err := h.groceryService.CreateList(dbctx.New(c.Request.Context()), middleware.CurrentUserID(c), req.Name)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, list)
}

func (h *GroceryHandler) ListLists(c *gin.Context) {
	lists, err := h.groceryService.ListLists(dbctx.New(c.Request.Context()), middleware.CurrentUserID(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"lists": lists})
}

func (h *GroceryHandler) DeleteList(c *gin.Context) {
	listID, ok := pathID(c, "listID")
	if !ok {
		return
	}
	if err := h.groceryService.DeleteList(dbctx.New(c.Request.Context()), middleware.CurrentUserID(c), listID); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type addItemRequest struct {
	Name     string  `json:"name"`
	Barcode  *string `json:"barcode,omitempty"`
	Quantity int     `json:"quantity"`
}

func (h *GroceryHandler) AddItem(c *gin.Context) {
	listID, ok := pathID(c, "listID")
	if !ok {
		return
	}
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_input", errors.Validationf("malformed body"))
		return
	}
	item, err := h.groceryService.AddItem(dbctx.New(c.Request.Context()), middleware.CurrentUserID(c), listID, services.AddItemInput{
		Name:     req.Name,
		Barcode:  req.Barcode,
		Quantity: req.Quantity,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, item)
}

func (h *GroceryHandler) ListItems(c *gin.Context) {
	listID, ok := pathID(c, "listID")
	if !ok {
		return
	}
	items, err := h.groceryService.ListItems(dbctx.New(c.Request.Context()), middleware.CurrentUserID(c), listID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"items": items})
}

type checkItemRequest struct {
	Checked bool `json:"checked"`
}

func (h *GroceryHandler) CheckItem(c *gin.Context) {
	listID, ok := pathID(c, "listID")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemID")
	if !ok {
		return
	}
	var req checkItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_input", errors.Validationf("malformed body"))
		return
	}
	if err := h.groceryService.SetItemChecked(dbctx.New(c.Request.Context()), middleware.CurrentUserID(c), listID, itemID, req.Checked); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GroceryHandler) DeleteItem(c *gin.Context) {
	listID, ok := pathID(c, "listID")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemID")
	if !ok {
		return
	}
	if err := h.groceryService.DeleteItem(dbctx.New(c.Request.Context()), middleware.CurrentUserID(c), listID, itemID); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type createRecipeRequest struct {
	Title        string   `json:"title"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
	Servings     int      `json:"servings"`
}

func (h *GroceryHandler) CreateRecipe(c *gin.Context) {
	var req createRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_input", errors.Validationf("malformed body"))
		return
	}
	recipe, err := h.groceryService.CreateRecipe(dbctx.New(c.Request.Context()), middleware.CurrentUserID(c), services.CreateRecipeInput{
		Title:        req.Title,
		Ingredients:  req.Ingredients,
		Instructions: req.Instructions,
		Servings:     req.Servings,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, recipe)
}

func (h *GroceryHandler) ListRecipes(c *gin.Context) {
	recipes, err := h.groceryService.ListRecipes(dbctx.New(c.Request.Context()), middleware.CurrentUserID(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"recipes": recipes})
}

func (h *GroceryHandler) DeleteRecipe(c *gin.Context) {
	recipeID, ok := pathID(c, "recipeID")
	if !ok {
		return
	}
	if err := h.groceryService.DeleteRecipe(dbctx.New(c.Request.Context()), middleware.CurrentUserID(c), recipeID); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type planMealRequest struct {
	RecipeID   string `json:"recipe_id"`
	PlannedFor string `json:"planned_for"` // YYYY-MM-DD
	Slot       string `json:"slot"`
}

func (h *GroceryHandler) PlanMeal(c *gin.Context) {
	var req planMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_input", errors.Validationf("malformed body"))
		return
	}
	recipeID, err := uuid.Parse(req.RecipeID)
	if err != nil {
		RespondServiceError(c, errors.Validationf("malformed recipe id"))
		return
	}
	plannedFor, err := time.Parse("2006-01-02", req.PlannedFor)
	if err != nil {
		RespondServiceError(c, errors.Validationf("planned_for must be YYYY-MM-DD"))
		return
	}
	entry, err := h.groceryService.PlanMeal(dbctx.New(c.Request.Context()), middleware.CurrentUserID(c), services.PlanMealInput{
		RecipeID:   recipeID,
		PlannedFor: plannedFor,
		Slot:       req.Slot,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, entry)
}

func (h *GroceryHandler) ListMeals(c *gin.Context) {
	from, err := time.Parse("2006-01-02", c.DefaultQuery("from", time.Now().Format("2006-01-02")))
	if err != nil {
		RespondServiceError(c, errors.Validationf("from must be YYYY-MM-DD"))
		return
	}
	to, err := time.Parse("2006-01-02", c.DefaultQuery("to", from.AddDate(0, 0, 7).Format("2006-01-02")))
	if err != nil {
		RespondServiceError(c, errors.Validationf("to must be YYYY-MM-DD"))
		return
	}
	meals, err := h.groceryService.ListMeals(dbctx.New(c.Request.Context()), middleware.CurrentUserID(c), from, to)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"meals": meals})
}

func (h *GroceryHandler) DeleteMeal(c *gin.Context) {
	entryID, ok := pathID(c, "entryID")
	if !ok {
		return
	}
	if err := h.groceryService.DeleteMeal(dbctx.New(c.Request.Context()), middleware.CurrentUserID(c), entryID); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
