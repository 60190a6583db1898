package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// Dependencies are the services the HTTP surface is built on.
type Dependencies struct {
	DB              *gorm.DB
	AuthService     service.IAuthService
	UserService     service.IUserService
	RecipeService   service.IRecipeService
	ShoppingService service.IShoppingService
	LinkService     service.ILinkService
	CatalogService  service.ICatalogService
	CreateLimiter   *middleware.RateLimiter
	PageSize        int
}

// HealthCheck reports whether the database answers.
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := database.HealthCheck(ctx, db); err != nil {
			log.Warn().Err(err).Msg("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	router.GET("/health", HealthCheck(deps.DB))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	NewShortLinkHandler(deps.LinkService).RegisterRoutes(router)

	v := router.Group("/api")
	NewAuthHandler(deps.AuthService).RegisterRoutes(v)
	NewUserHandler(deps.UserService, deps.AuthService, deps.PageSize).RegisterRoutes(v)
	NewCatalogHandler(deps.CatalogService).RegisterRoutes(v)
	NewRecipeHandler(
		deps.RecipeService,
		deps.ShoppingService,
		deps.LinkService,
		deps.AuthService,
		deps.CreateLimiter,
		deps.PageSize,
	).RegisterRoutes(v)
}
