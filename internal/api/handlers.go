package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// Services groups the domain services the handlers call.
type Services struct {
	Auth          service.IAuthService
	Users         service.IUserService
	Catalog       service.ICatalogService
	Recipes       service.IRecipeService
	Membership    service.IMembershipService
	Subscriptions service.ISubscriptionService
	ShoppingList  service.IShoppingListService
}

// RateLimiters are optional; nil limiters let requests through.
type RateLimiters struct {
	Auth               *middleware.RateLimiter
	RecipeCreation     *middleware.RateLimiter
	RecipeModification *middleware.RateLimiter
}

// Handler serves the REST API
type Handler struct {
	services Services
	limiters RateLimiters
	db       *gorm.DB
	metrics  prometheus.Gatherer
	logger   *zap.Logger
}

func NewHandler(services Services, limiters RateLimiters, db *gorm.DB, metrics prometheus.Gatherer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		services: services,
		limiters: limiters,
		db:       db,
		metrics:  metrics,
		logger:   logger,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.HealthCheck)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.metrics, promhttp.HandlerOpts{})))
	}

	requireAuth := middleware.AuthMiddleware(h.services.Auth)
	optionalAuth := middleware.OptionalAuth(h.services.Auth)

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth", h.limiters.Auth.Middleware())
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}

	users := v1.Group("/users")
	{
		users.GET("", optionalAuth, h.ListUsers)
		users.GET("/me", requireAuth, h.CurrentUser)
		users.POST("/me/password", requireAuth, h.ChangePassword)
		users.GET("/subscriptions", requireAuth, h.ListSubscriptions)
		users.GET("/:id", optionalAuth, h.GetUser)
		users.POST("/:id/subscribe", requireAuth, h.Subscribe)
		users.DELETE("/:id/subscribe", requireAuth, h.Unsubscribe)
	}

	v1.GET("/tags", h.ListTags)
	v1.GET("/tags/:id", h.GetTag)
	v1.GET("/ingredients", h.ListIngredients)
	v1.GET("/ingredients/:id", h.GetIngredient)

	recipes := v1.Group("/recipes")
	{
		recipes.GET("", optionalAuth, h.ListRecipes)
		recipes.GET("/download_shopping_cart", requireAuth, h.DownloadShoppingCart)
		recipes.GET("/:id", optionalAuth, h.GetRecipe)
		recipes.POST("", requireAuth, h.limiters.RecipeCreation.Middleware(), h.CreateRecipe)
		recipes.PATCH("/:id", requireAuth, h.limiters.RecipeModification.Middleware(), h.UpdateRecipe)
		recipes.DELETE("/:id", requireAuth, h.DeleteRecipe)
		recipes.POST("/:id/favorite", requireAuth, h.addToSet(service.SetFavorites))
		recipes.DELETE("/:id/favorite", requireAuth, h.removeFromSet(service.SetFavorites))
		recipes.POST("/:id/shopping_cart", requireAuth, h.addToSet(service.SetShoppingList))
		recipes.DELETE("/:id/shopping_cart", requireAuth, h.removeFromSet(service.SetShoppingList))
	}
}

// HealthCheck reports whether the API can reach its database
func (h *Handler) HealthCheck(c *gin.Context) {
	if h.db != nil {
		if err := database.HealthCheck(c.Request.Context(), h.db); err != nil {
			h.logger.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// pathID parses the :id route parameter, writing a 400 when it is malformed.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// currentUser returns the authenticated user's id. Routes using it are
// behind AuthMiddleware, so a miss means a routing mistake.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, middleware.ErrorResponse{Error: "unauthorized", Code: "not_authenticated"})
	}
	return id, ok
}

// queryInt reads an optional non-negative integer query parameter.
func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		badRequest(c, name+" must be a non-negative integer")
		return 0, false
	}
	return v, true
}

// queryBool treats "1" and "true" as set, anything else as unset.
func queryBool(c *gin.Context, name string) bool {
	v, err := strconv.ParseBool(c.Query(name))
	return err == nil && v
}
