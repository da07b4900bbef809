package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/what-to-cook/backend/internal/logging"
	"github.com/pageza/what-to-cook/backend/internal/middleware"
	"github.com/pageza/what-to-cook/backend/internal/types"
)

// QuotaHandler reports the session's request quota
type QuotaHandler struct {
	limiter *middleware.RateLimiter
}

// NewQuotaHandler creates a new QuotaHandler
func NewQuotaHandler(limiter *middleware.RateLimiter) *QuotaHandler {
	return &QuotaHandler{limiter: limiter}
}

// RegisterRoutes registers the quota route
func (h *QuotaHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/quota", h.GetQuota)
}

// GetQuota returns the remaining requests without charging the quota
func (h *QuotaHandler) GetQuota(c *gin.Context) {
	quota, err := h.limiter.Peek(c)
	if err != nil {
		logging.FromContext(c.Request.Context()).Error("failed to read quota", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": middleware.UnexpectedErrorMessage})
		return
	}

	c.JSON(http.StatusOK, types.QuotaResponse{
		RemainingRequests: quota.Remaining(),
		MaxRequests:       quota.Max(),
		ResetInMinutes:    quota.ResetInMinutes(),
	})
}
