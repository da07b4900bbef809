package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/what-to-cook/backend/internal/logging"
	"github.com/pageza/what-to-cook/backend/internal/metrics"
	"github.com/pageza/what-to-cook/backend/internal/middleware"
	"github.com/pageza/what-to-cook/backend/internal/model"
	"github.com/pageza/what-to-cook/backend/internal/service"
	"github.com/pageza/what-to-cook/backend/internal/types"
)

// RecipeHandler serves recipe generation and reads
type RecipeHandler struct {
	backend service.RecipeBackend
	reader  service.IRecipeReader
}

// NewRecipeHandler creates a new RecipeHandler
func NewRecipeHandler(backend service.RecipeBackend, reader service.IRecipeReader) *RecipeHandler {
	return &RecipeHandler{
		backend: backend,
		reader:  reader,
	}
}

// RegisterRoutes registers the recipe routes
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.POST("", h.CreateRecipe)
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:id", h.GetRecipe)
	}
}

// CreateRecipe generates, parses and stores a recipe from the posted ingredients.
// A successful request is charged against the session quota.
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		renderError(c, &service.InputError{Message: "Invalid request body"})
		return
	}

	ingredients, err := service.ProcessIngredients(req.Ingredients)
	if err != nil {
		renderError(c, err)
		return
	}

	ctx := c.Request.Context()
	raw, err := h.backend.Generate(ctx, ingredients)
	if err != nil {
		renderError(c, err)
		return
	}
	attrs, err := h.backend.Parse(raw)
	if err != nil {
		renderError(c, err)
		return
	}
	recipe, err := h.backend.Create(ctx, attrs)
	if err != nil {
		renderError(c, err)
		return
	}

	body := gin.H{"recipe": types.NewRecipe(recipe)}
	if quota, ok := middleware.QuotaFromContext(c); ok {
		quota.Consume()
		quota.Annotate(body)
	}

	metrics.RecipeGenerations.WithLabelValues("success").Inc()
	logging.FromContext(ctx).Info("recipe created", "recipe_id", recipe.ID, "ingredients", len(ingredients))
	c.JSON(http.StatusCreated, body)
}

// GetRecipe returns a stored recipe
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe ID"})
		return
	}

	recipe, err := h.reader.GetRecipe(c.Request.Context(), id)
	if errors.Is(err, service.ErrRecipeNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}
	if err != nil {
		logging.FromContext(c.Request.Context()).Error("failed to get recipe", "recipe_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": middleware.UnexpectedErrorMessage})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": types.NewRecipe(recipe)})
}

// ListRecipes returns the newest recipes, or the matches for q
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	limit := service.DefaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}

	ctx := c.Request.Context()
	var (
		recipes []*model.Recipe
		err     error
	)
	if q := c.Query("q"); q != "" {
		recipes, err = h.reader.SearchRecipes(ctx, q, limit)
	} else {
		recipes, err = h.reader.ListRecipes(ctx, limit)
	}
	if err != nil {
		logging.FromContext(ctx).Error("failed to fetch recipes", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recipes": types.NewRecipeList(recipes),
	})
}
