package router

import (
	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/middleware"
)

// SetupRouter configures the application routes
func SetupRouter(deps api.Dependencies, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(allowedOrigins))
	router.NoRoute(middleware.NotFound())

	api.RegisterRoutes(router, deps)
	return router
}
