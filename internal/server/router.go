package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/aislemap-backend/internal/handlers"
	"github.com/yungbote/aislemap-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
	StoreHandler   *handlers.StoreHandler
	MappingHandler *handlers.MappingHandler
	PricingHandler *handlers.PricingHandler
	GroceryHandler *handlers.GroceryHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("aislemap-backend"))

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Stores
	protected.GET("/stores", cfg.StoreHandler.List)
	protected.POST("/stores", cfg.StoreHandler.Create)
	protected.GET("/stores/:id", cfg.StoreHandler.Get)
	protected.GET("/stores/:id/facts", cfg.MappingHandler.ListStoreFacts)
	protected.GET("/stores/:id/prices/:barcode", cfg.PricingHandler.Resolve)
	// Mapping
	protected.POST("/mapping/contributions", cfg.MappingHandler.SubmitContribution)
	protected.GET("/mapping/facts/:subjectKey", cfg.MappingHandler.GetFact)
	protected.GET("/mapping/facts/:subjectKey/history", cfg.MappingHandler.FactHistory)
	protected.GET("/mapping/leaderboard", cfg.MappingHandler.Leaderboard)
	protected.POST("/mapping/leaderboard/rebuild", cfg.MappingHandler.RebuildLeaderboard)
	// Shopping lists
	protected.GET("/lists", cfg.GroceryHandler.ListLists)
	protected.POST("/lists", cfg.GroceryHandler.CreateList)
	protected.DELETE("/lists/:listID", cfg.GroceryHandler.DeleteList)
	protected.GET("/lists/:listID/items", cfg.GroceryHandler.ListItems)
	protected.POST("/lists/:listID/items", cfg.GroceryHandler.AddItem)
	protected.PATCH("/lists/:listID/items/:itemID", cfg.GroceryHandler.CheckItem)
	protected.DELETE("/lists/:listID/items/:itemID", cfg.GroceryHandler.DeleteItem)
	// Recipes and meal plan
	protected.GET("/recipes", cfg.GroceryHandler.ListRecipes)
	protected.POST("/recipes", cfg.GroceryHandler.CreateRecipe)
	protected.DELETE("/recipes/:recipeID", cfg.GroceryHandler.DeleteRecipe)
	protected.GET("/meals", cfg.GroceryHandler.ListMeals)
	protected.POST("/meals", cfg.GroceryHandler.PlanMeal)
	protected.DELETE("/meals/:entryID", cfg.GroceryHandler.DeleteMeal)

	return router
}
