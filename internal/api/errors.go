package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/what-to-cook/backend/internal/logging"
	"github.com/pageza/what-to-cook/backend/internal/metrics"
	"github.com/pageza/what-to-cook/backend/internal/middleware"
	"github.com/pageza/what-to-cook/backend/internal/service"
)

// UpstreamRateLimitMessage is returned when the language model API throttles us.
const UpstreamRateLimitMessage = "API rate limit exceeded. Please try again in about an hour"

// renderError writes the JSON error response for a failed recipe request.
// The body carries the session's remaining requests when the request is gated.
func renderError(c *gin.Context, err error) {
	status, message, outcome := classifyError(err)
	body := gin.H{"error": message}

	if quota, ok := middleware.QuotaFromContext(c); ok {
		quota.Annotate(body)
		if outcome == "upstream_rate_limited" {
			quota.RetryBody(body)
		}
	}

	metrics.RecipeGenerations.WithLabelValues(outcome).Inc()
	log := logging.FromContext(c.Request.Context())
	if status >= http.StatusInternalServerError {
		log.Error("recipe request failed", "status", status, "outcome", outcome, "error", err)
	} else {
		log.Warn("recipe request rejected", "status", status, "outcome", outcome, "error", err)
	}

	c.JSON(status, body)
}

// classifyError maps a failure to its status, message and metrics outcome.
func classifyError(err error) (int, string, string) {
	var (
		inputErr    *service.InputError
		genErr      *service.GenerationError
		parseErr    *service.ParsingError
		createErr   *service.CreationError
		upstreamErr *service.UpstreamError
	)
	switch {
	case errors.As(err, &inputErr):
		return http.StatusUnprocessableEntity, inputErr.Error(), "invalid_input"
	case errors.As(err, &genErr):
		return http.StatusUnprocessableEntity, genErr.Error(), "generation_error"
	case errors.As(err, &parseErr):
		return http.StatusUnprocessableEntity, parseErr.Error(), "parsing_error"
	case errors.As(err, &createErr):
		return http.StatusUnprocessableEntity, createErr.Error(), "creation_error"
	case errors.As(err, &upstreamErr) && upstreamErr.RateLimited:
		return http.StatusTooManyRequests, UpstreamRateLimitMessage, "upstream_rate_limited"
	case errors.As(err, &upstreamErr):
		return http.StatusServiceUnavailable, "OpenAI API error: " + upstreamErr.Error(), "upstream_error"
	default:
		return http.StatusInternalServerError, middleware.UnexpectedErrorMessage, "internal"
	}
}
