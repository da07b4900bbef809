package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// EmbeddingDimensions is the size of Recipe.Embedding.
const EmbeddingDimensions = 3

// Recipe is a generated recipe. Ingredients and instructions are stored as
// newline-separated text.
type Recipe struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string          `gorm:"size:255;not null" json:"title"`
	Ingredients  string          `gorm:"type:text;not null" json:"ingredients"`
	Instructions string          `gorm:"type:text;not null" json:"instructions"`
	Embedding    pgvector.Vector `gorm:"type:vector(3)" json:"-"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// IngredientList splits the stored ingredients into lines.
func (r *Recipe) IngredientList() []string {
	return splitLines(r.Ingredients)
}

// InstructionList splits the stored instructions into lines.
func (r *Recipe) InstructionList() []string {
	return splitLines(r.Instructions)
}

// Validate checks the presence of every stored field.
func (r *Recipe) Validate() error {
	var problems []string
	if strings.TrimSpace(r.Title) == "" {
		problems = append(problems, "Title can't be blank")
	}
	if strings.TrimSpace(r.Ingredients) == "" {
		problems = append(problems, "Ingredients can't be blank")
	}
	if strings.TrimSpace(r.Instructions) == "" {
		problems = append(problems, "Instructions can't be blank")
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, ", "))
	}
	return nil
}

// BeforeCreate assigns the id and validates the recipe.
func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return r.Validate()
}

func splitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}
