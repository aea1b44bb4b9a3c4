// Package router wires services, controllers and middleware into the gin engine.
package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "github.com/franciscosanchezn/gin-recipes-api/docs" // registers the swagger spec
	"github.com/franciscosanchezn/gin-recipes-api/internal/auth"
	"github.com/franciscosanchezn/gin-recipes-api/internal/config"
	"github.com/franciscosanchezn/gin-recipes-api/internal/controllers"
	"github.com/franciscosanchezn/gin-recipes-api/internal/middleware"
	"github.com/franciscosanchezn/gin-recipes-api/internal/models"
	"github.com/franciscosanchezn/gin-recipes-api/internal/services"
	"github.com/franciscosanchezn/gin-recipes-api/internal/storage"
)

// Dependencies are the long lived objects the routes are built from
type Dependencies struct {
	Config      *config.Config
	DB          *gorm.DB
	Images      storage.ImageStore
	RateLimiter *middleware.RateLimiter
}

// SetupRouter configures the application routes
func SetupRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	db := deps.DB

	users := services.NewUserService(db)
	subscriptions := services.NewSubscriptionService(db)
	oauth := auth.NewOAuthService(db, users, cfg.JWTSecret, cfg.OAuthClientID, cfg.TokenTTL)

	userController := controllers.NewUserController(users, subscriptions)
	recipeController := controllers.NewRecipeController(
		services.NewRecipeService(db, deps.Images),
		services.NewFavoriteService(db),
		services.NewShoppingCartService(db),
		services.NewShoppingListService(db),
		subscriptions,
	)
	referenceController := controllers.NewReferenceController(services.NewReferenceService(db))
	authController := controllers.NewAuthController(oauth)
	clientController := controllers.NewClientController(services.NewClientService(db))

	router := gin.New()
	router.Use(
		middleware.Recovery(),
		middleware.RequestLogger(),
		middleware.Metrics(),
		middleware.CORS(cfg.CORSOrigins),
	)

	router.GET("/health", healthCheckHandler(db))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if cfg.StorageDriver != "s3" && strings.HasPrefix(cfg.MediaURL, "/") {
		router.Static(cfg.MediaURL, cfg.MediaRoot)
	}

	secret := []byte(cfg.JWTSecret)
	limit := deps.RateLimiter.Middleware()

	api := router.Group("/api")

	// Token endpoints and catalogues need no identity
	public := api.Group("")
	public.Use(limit)
	{
		public.POST("/auth/token/login", authController.Login)
		public.POST("/oauth/token", oauth.HandleToken)
		public.POST("/users", userController.Register)

		public.GET("/tags", referenceController.ListTags)
		public.GET("/tags/:id", referenceController.GetTag)
		public.GET("/ingredients", referenceController.ListIngredients)
		public.GET("/ingredients/:id", referenceController.GetIngredient)
	}

	// Readable anonymously, personalised when a token is sent
	optional := api.Group("")
	optional.Use(middleware.OptionalAuth(secret, oauth), limit)
	{
		optional.GET("/users", userController.ListUsers)
		optional.GET("/users/:id", userController.GetUser)
		optional.GET("/recipes", recipeController.ListRecipes)
		optional.GET("/recipes/:id", recipeController.GetRecipe)
	}

	protected := api.Group("")
	protected.Use(middleware.OAuth2Auth(secret, oauth), limit)
	{
		protected.POST("/auth/token/logout", authController.Logout)

		protected.GET("/users/me", userController.Me)
		protected.POST("/users/set_password", userController.SetPassword)
		protected.GET("/users/subscriptions", userController.Subscriptions)
		protected.POST("/users/:id/subscribe", userController.Subscribe)
		protected.DELETE("/users/:id/subscribe", userController.Unsubscribe)

		protected.POST("/recipes", recipeController.CreateRecipe)
		protected.GET("/recipes/download_shopping_cart", recipeController.DownloadShoppingCart)
		protected.PATCH("/recipes/:id", recipeController.UpdateRecipe)
		protected.DELETE("/recipes/:id", recipeController.DeleteRecipe)
		protected.POST("/recipes/:id/favorite", recipeController.AddFavorite)
		protected.DELETE("/recipes/:id/favorite", recipeController.RemoveFavorite)
		protected.POST("/recipes/:id/shopping_cart", recipeController.AddToShoppingCart)
		protected.DELETE("/recipes/:id/shopping_cart", recipeController.RemoveFromShoppingCart)

		admin := protected.Group("/admin")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.POST("/clients", clientController.CreateClient)
			admin.GET("/clients", clientController.ListClients)
			admin.DELETE("/clients/:id", clientController.DeleteClient)
		}
	}

	return router
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
			"service":   "gin-recipes-api",
		})
	}
}
