package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/what-to-cook/backend/internal/model"
)

// CreateRecipeRequest is the body of POST /api/v1/recipes. Ingredients may be
// a comma separated string or an array of strings.
type CreateRecipeRequest struct {
	Ingredients json.RawMessage `json:"ingredients"`
}

// Recipe is the JSON representation of a stored recipe
type Recipe struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Ingredients  []string  `json:"ingredients"`
	Instructions []string  `json:"instructions"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewRecipe converts a stored recipe for output
func NewRecipe(r *model.Recipe) Recipe {
	return Recipe{
		ID:           r.ID,
		Title:        r.Title,
		Ingredients:  r.IngredientList(),
		Instructions: r.InstructionList(),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// NewRecipeList converts stored recipes for output
func NewRecipeList(recipes []*model.Recipe) []Recipe {
	out := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, NewRecipe(r))
	}
	return out
}

// QuotaResponse is the body of GET /api/v1/quota
type QuotaResponse struct {
	RemainingRequests int `json:"remaining_requests"`
	MaxRequests       int `json:"max_requests"`
	ResetInMinutes    int `json:"reset_in_minutes"`
}
