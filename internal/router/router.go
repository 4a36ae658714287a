// Package router wires controllers and middleware into the gin engine.
package router

import (
	"net/http"
	"time"

	"github.com/franciscosanchezn/foodgram-api/internal/auth"
	"github.com/franciscosanchezn/foodgram-api/internal/controllers"
	"github.com/franciscosanchezn/foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/franciscosanchezn/foodgram-api/internal/shoppinglist"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// Deps are the collaborators the HTTP layer needs
type Deps struct {
	DB       *gorm.DB
	OAuth    *auth.OAuthService
	Users    services.UserService
	Recipes  services.RecipeService
	Tags     services.TagService
	Ingred   services.IngredientService
	Renderer *shoppinglist.Renderer

	// Redis enables recipe creation rate limiting when set
	Redis             *redis.Client
	RecipeCreateLimit int

	PageSize           int
	CORSAllowedOrigins []string
	// MediaRoot is served under /media when images are stored locally
	MediaRoot string
}

// Setup builds the gin engine with every route registered
func Setup(deps Deps) (*gin.Engine, error) {
	if err := controllers.RegisterValidators(); err != nil {
		return nil, err
	}

	router := gin.Default()
	router.Use(middleware.Metrics())
	router.Use(cors.New(corsConfig(deps.CORSAllowedOrigins)))

	setupRoutes(router, deps)
	return router, nil
}

func corsConfig(origins []string) cors.Config {
	config := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		config.AllowAllOrigins = true
		config.AllowCredentials = false
	} else {
		config.AllowOrigins = origins
	}
	return config
}

// setupRoutes defines the routes for the Gin router
func setupRoutes(router *gin.Engine, deps Deps) {
	// Health check endpoint
	router.GET("/health", healthCheckHandler(deps.DB))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if deps.MediaRoot != "" {
		router.Static("/media", deps.MediaRoot)
	}

	recipeController := controllers.NewRecipeController(deps.Recipes, deps.Users, deps.Renderer, deps.PageSize)
	userController := controllers.NewUserController(deps.Users, deps.Recipes, deps.PageSize)
	tagController := controllers.NewTagController(deps.Tags)
	ingredientController := controllers.NewIngredientController(deps.Ingred)
	authController := controllers.NewAuthController(deps.Users, deps.OAuth)

	requireAuth := middleware.TokenAuth(deps.OAuth)
	optionalAuth := middleware.OptionalTokenAuth(deps.OAuth)
	requireAdmin := middleware.RequireRole(models.RoleAdmin)

	createRecipe := []gin.HandlerFunc{requireAuth}
	if deps.Redis != nil {
		limiter := middleware.NewRecipeCreationRateLimiter(deps.Redis, deps.RecipeCreateLimit)
		createRecipe = append(createRecipe, limiter.Middleware())
	}
	createRecipe = append(createRecipe, recipeController.CreateRecipe)

	// OAuth2 token endpoint (password grant)
	router.POST("/api/oauth/token", deps.OAuth.HandleToken)

	api := router.Group("/api")
	{
		authApi := api.Group("/auth/token")
		{
			authApi.POST("/login/", authController.Login)
			authApi.POST("/logout/", requireAuth, authController.Logout)
		}

		users := api.Group("/users")
		{
			users.GET("/", optionalAuth, userController.ListUsers)
			users.POST("/", userController.Register)
			users.GET("/me/", requireAuth, userController.Me)
			users.POST("/set_password/", requireAuth, userController.SetPassword)
			users.GET("/subscriptions/", requireAuth, userController.Subscriptions)
			users.GET("/:id/", optionalAuth, userController.GetUser)
			users.POST("/:id/subscribe/", requireAuth, userController.Subscribe)
			users.DELETE("/:id/subscribe/", requireAuth, userController.Unsubscribe)
		}

		tags := api.Group("/tags")
		{
			tags.GET("/", tagController.ListTags)
			tags.GET("/:id/", tagController.GetTag)
			tags.POST("/", requireAuth, requireAdmin, tagController.CreateTag)
			tags.PATCH("/:id/", requireAuth, requireAdmin, tagController.UpdateTag)
			tags.DELETE("/:id/", requireAuth, requireAdmin, tagController.DeleteTag)
		}

		ingredients := api.Group("/ingredients")
		{
			ingredients.GET("/", ingredientController.ListIngredients)
			ingredients.GET("/:id/", ingredientController.GetIngredient)
			ingredients.POST("/", requireAuth, requireAdmin, ingredientController.CreateIngredient)
			ingredients.DELETE("/:id/", requireAuth, requireAdmin, ingredientController.DeleteIngredient)
		}

		recipes := api.Group("/recipes")
		{
			recipes.GET("/", optionalAuth, recipeController.ListRecipes)
			recipes.POST("/", createRecipe...)
			recipes.GET("/download_shopping_cart/", requireAuth, recipeController.DownloadShoppingCart)
			recipes.GET("/:id/", optionalAuth, recipeController.GetRecipe)
			recipes.PATCH("/:id/", requireAuth, recipeController.UpdateRecipe)
			recipes.DELETE("/:id/", requireAuth, recipeController.DeleteRecipe)
			recipes.POST("/:id/favorite/", requireAuth, recipeController.AddFavorite)
			recipes.DELETE("/:id/favorite/", requireAuth, recipeController.RemoveFavorite)
			recipes.POST("/:id/shopping_cart/", requireAuth, recipeController.AddToShoppingCart)
			recipes.DELETE("/:id/shopping_cart/", requireAuth, recipeController.RemoveFromShoppingCart)
		}
	}
}

// healthCheckHandler godoc
// @Summary Health check
// @Description Check if the service and its database are reachable
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status, code = "unhealthy", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"service":   "foodgram-api",
		})
	}
}
