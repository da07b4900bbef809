package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/what-to-cook/backend/internal/model"
)

// DefaultListLimit caps list and search results.
const DefaultListLimit = 50

// RecipeStore handles recipe persistence
type RecipeStore struct {
	db *gorm.DB
}

// NewRecipeStore creates a new RecipeStore instance
func NewRecipeStore(db *gorm.DB) *RecipeStore {
	return &RecipeStore{db: db}
}

// Create stores a parsed recipe
func (s *RecipeStore) Create(ctx context.Context, attrs *RecipeAttributes) (*model.Recipe, error) {
	recipe := &model.Recipe{
		Title:        attrs.Title,
		Ingredients:  attrs.Ingredients,
		Instructions: attrs.Instructions,
		Embedding:    RecipeEmbedding(attrs.Title, attrs.Ingredients),
	}
	if err := recipe.Validate(); err != nil {
		return nil, &CreationError{Message: err.Error(), Err: err}
	}
	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return nil, &CreationError{Message: "Failed to create recipe", Err: err}
	}
	return recipe, nil
}

// GetRecipe retrieves a recipe by ID
func (s *RecipeStore) GetRecipe(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// ListRecipes returns the newest recipes first
func (s *RecipeStore) ListRecipes(ctx context.Context, limit int) ([]*model.Recipe, error) {
	var recipes []*model.Recipe
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(clampLimit(limit)).
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	return recipes, nil
}

// SearchRecipes matches title and ingredients. On PostgreSQL the matches are
// ordered by embedding distance to the query.
func (s *RecipeStore) SearchRecipes(ctx context.Context, query string, limit int) ([]*model.Recipe, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.ListRecipes(ctx, limit)
	}

	like := "%" + strings.ToLower(query) + "%"
	dbQuery := s.db.WithContext(ctx).
		Where("LOWER(title) LIKE ? OR LOWER(ingredients) LIKE ?", like, like).
		Limit(clampLimit(limit))

	if s.db.Dialector.Name() == "postgres" {
		dbQuery = dbQuery.Order(clause.OrderBy{Expression: clause.Expr{
			SQL:                "embedding <-> ?",
			Vars:               []interface{}{GenerateEmbedding(query)},
			WithoutParentheses: true,
		}})
	} else {
		dbQuery = dbQuery.Order("created_at DESC")
	}

	var recipes []*model.Recipe
	if err := dbQuery.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > DefaultListLimit {
		return DefaultListLimit
	}
	return limit
}
