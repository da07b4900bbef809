package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/what-to-cook/backend/internal/middleware"
	"github.com/pageza/what-to-cook/backend/internal/service"
)

// HealthCheck returns the health status of the API
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "What To Cook API is running",
	})
}

// SetupAPI registers the v1 routes on router
func SetupAPI(router *gin.Engine, backend service.RecipeBackend, reader service.IRecipeReader, limiter *middleware.RateLimiter) {
	v1 := router.Group("/api/v1")
	{
		recipeHandler := NewRecipeHandler(backend, reader)
		quotaHandler := NewQuotaHandler(limiter)

		recipeHandler.RegisterRoutes(v1)
		quotaHandler.RegisterRoutes(v1)
	}
}
