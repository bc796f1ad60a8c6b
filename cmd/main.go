package main

import (
	"context"
	"fmt"
	"os"
	"time"

	redisclient "github.com/yungbote/aislemap-backend/internal/clients/redis"
	"github.com/yungbote/aislemap-backend/internal/crowd"
	"github.com/yungbote/aislemap-backend/internal/data/db"
	"github.com/yungbote/aislemap-backend/internal/data/repos"
	"github.com/yungbote/aislemap-backend/internal/handlers"
	"github.com/yungbote/aislemap-backend/internal/middleware"
	"github.com/yungbote/aislemap-backend/internal/observability"
	"github.com/yungbote/aislemap-backend/internal/platform/envutil"
	"github.com/yungbote/aislemap-backend/internal/platform/logger"
	"github.com/yungbote/aislemap-backend/internal/server"
	"github.com/yungbote/aislemap-backend/internal/services"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := envutil.String("JWT_SECRET_KEY", "defaultsecret")
	accessTokenTTL := envutil.Int("ACCESS_TOKEN_TTL", 3600)
	crowdCfg := crowd.ConfigFromEnv()

	// Tracing
	ctx := context.Background()
	shutdownOtel := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "aislemap-backend",
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", "dev"),
	})
	if shutdownOtel != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownOtel(shutdownCtx)
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	storeRepo := repos.NewStoreRepo(thePG, log)
	factRepo := repos.NewFactRepo(thePG, log)
	contributionRepo := repos.NewContributionRepo(thePG, log)
	explorerBonusRepo := repos.NewExplorerBonusRepo(thePG, log)
	badgeRepo := repos.NewBadgeRepo(thePG, log)
	shoppingListRepo := repos.NewShoppingListRepo(thePG, log)
	recipeRepo := repos.NewRecipeRepo(thePG, log)
	mealPlanRepo := repos.NewMealPlanRepo(thePG, log)

	// Redis leaderboard (optional: submissions degrade to PointsPending)
	leaderboard, err := redisclient.NewLeaderboard(log)
	if err != nil {
		log.Warn("Leaderboard init failed, points push disabled", "error", err)
		leaderboard = nil
	}

	// Services
	log.Info("Setting up Services from main...")
	authService := services.NewAuthService(log, userRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second)
	storeService := services.NewStoreService(log, storeRepo)
	contributionService := services.NewContributionService(crowdCfg, log, factRepo, contributionRepo, explorerBonusRepo, badgeRepo, storeRepo, leaderboard)
	factService := services.NewFactService(crowdCfg, log, factRepo, storeRepo)
	pricingService := services.NewPricingService(crowdCfg, log, factRepo, contributionRepo, storeRepo)
	leaderboardService := services.NewLeaderboardService(log, leaderboard, contributionRepo, explorerBonusRepo)
	groceryService := services.NewGroceryService(log, shoppingListRepo, recipeRepo, mealPlanRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(log, authService)
	storeHandler := handlers.NewStoreHandler(log, storeService)
	mappingHandler := handlers.NewMappingHandler(log, contributionService, factService, leaderboardService)
	pricingHandler := handlers.NewPricingHandler(log, pricingService)
	groceryHandler := handlers.NewGroceryHandler(log, groceryService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:    authHandler,
		AuthMiddleware: authMiddleware,
		StoreHandler:   storeHandler,
		MappingHandler: mappingHandler,
		PricingHandler: pricingHandler,
		GroceryHandler: groceryHandler,
	})

	port := envutil.String("PORT", "8080")
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
