package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pageza/what-to-cook/backend/internal/model"
)

// RecipeBackend turns ingredients into a stored recipe in three steps.
type RecipeBackend interface {
	// Generate returns raw recipe JSON. Fails with *GenerationError or *UpstreamError.
	Generate(ctx context.Context, ingredients []string) (string, error)
	// Parse validates raw output. Fails with *ParsingError.
	Parse(raw string) (*RecipeAttributes, error)
	// Create stores the recipe. Fails with *CreationError.
	Create(ctx context.Context, attrs *RecipeAttributes) (*model.Recipe, error)
}

// IRecipeReader defines read access to stored recipes
type IRecipeReader interface {
	GetRecipe(ctx context.Context, id uuid.UUID) (*model.Recipe, error)
	ListRecipes(ctx context.Context, limit int) ([]*model.Recipe, error)
	SearchRecipes(ctx context.Context, query string, limit int) ([]*model.Recipe, error)
}

// Pipeline is the production RecipeBackend.
type Pipeline struct {
	*RecipeGenerator
	*RecipeParser
	*RecipeStore
}

// NewPipeline wires the generator, parser and store together.
func NewPipeline(g *RecipeGenerator, p *RecipeParser, s *RecipeStore) *Pipeline {
	return &Pipeline{RecipeGenerator: g, RecipeParser: p, RecipeStore: s}
}

var (
	_ RecipeBackend = (*Pipeline)(nil)
	_ IRecipeReader = (*RecipeStore)(nil)
)
