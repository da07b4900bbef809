package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/pageza/what-to-cook/backend/config"
	"github.com/pageza/what-to-cook/backend/internal/api"
	"github.com/pageza/what-to-cook/backend/internal/database"
	"github.com/pageza/what-to-cook/backend/internal/logging"
	"github.com/pageza/what-to-cook/backend/internal/middleware"
	"github.com/pageza/what-to-cook/backend/internal/service"
	"github.com/pageza/what-to-cook/backend/internal/session"
)

// Dependencies are the collaborators the routes are built from
type Dependencies struct {
	Config   *config.Config
	Backend  service.RecipeBackend
	Reader   service.IRecipeReader
	Sessions session.Store
	// DB is pinged by /health when set
	DB *gorm.DB
}

// SetupRouter configures the application routes
func SetupRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	router := gin.New()
	router.Use(
		middleware.Recovery(),
		logging.Middleware(),
		middleware.CORS(cfg.AllowedOrigins),
		session.Middleware(deps.Sessions),
	)

	limiter := middleware.NewRateLimiter(deps.Sessions, middleware.RateLimitConfig{
		MaxRequests: cfg.RateLimitMaxRequests,
		Window:      cfg.RateLimitWindow,
	})
	router.Use(limiter.RateLimitMiddleware())

	router.GET("/health", healthCheck(deps.DB))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api.SetupAPI(router, deps.Backend, deps.Reader, limiter)

	router.NoRoute(middleware.NotFound())
	return router
}

func healthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			if err := database.HealthCheck(c.Request.Context(), db); err != nil {
				logging.FromContext(c.Request.Context()).Error("health check failed", "error", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
				return
			}
		}
		api.HealthCheck(c)
	}
}
