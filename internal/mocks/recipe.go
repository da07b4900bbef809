package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/what-to-cook/backend/internal/model"
	"github.com/pageza/what-to-cook/backend/internal/service"
)

// MockRecipeBackend is a mock implementation of service.RecipeBackend
type MockRecipeBackend struct {
	mock.Mock
}

// Generate mocks the Generate method
func (m *MockRecipeBackend) Generate(ctx context.Context, ingredients []string) (string, error) {
	args := m.Called(ctx, ingredients)
	return args.String(0), args.Error(1)
}

// Parse mocks the Parse method
func (m *MockRecipeBackend) Parse(raw string) (*service.RecipeAttributes, error) {
	args := m.Called(raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RecipeAttributes), args.Error(1)
}

// Create mocks the Create method
func (m *MockRecipeBackend) Create(ctx context.Context, attrs *service.RecipeAttributes) (*model.Recipe, error) {
	args := m.Called(ctx, attrs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

// MockRecipeReader is a mock implementation of service.IRecipeReader
type MockRecipeReader struct {
	mock.Mock
}

// GetRecipe mocks the GetRecipe method
func (m *MockRecipeReader) GetRecipe(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

// ListRecipes mocks the ListRecipes method
func (m *MockRecipeReader) ListRecipes(ctx context.Context, limit int) ([]*model.Recipe, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Recipe), args.Error(1)
}

// SearchRecipes mocks the SearchRecipes method
func (m *MockRecipeReader) SearchRecipes(ctx context.Context, query string, limit int) ([]*model.Recipe, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Recipe), args.Error(1)
}

var (
	_ service.RecipeBackend = (*MockRecipeBackend)(nil)
	_ service.IRecipeReader = (*MockRecipeReader)(nil)
)
