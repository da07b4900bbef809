package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pageza/what-to-cook/backend/internal/logging"
)

const recipeSchemaURL = "recipe.schema.json"

const recipeSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["title", "ingredients", "instructions"],
  "properties": {
    "title": {"type": "string", "minLength": 3, "pattern": "\\S"},
    "ingredients": {
      "type": "array",
      "minItems": 2,
      "items": {"type": "string", "minLength": 2, "pattern": "\\S"}
    },
    "instructions": {
      "type": "array",
      "minItems": 2,
      "items": {"type": "string", "minLength": 10, "pattern": "\\S"}
    }
  }
}`

// RecipeAttributes is a parsed recipe ready to be stored.
type RecipeAttributes struct {
	Title        string
	Ingredients  string
	Instructions string
}

type generatedRecipe struct {
	Title        string   `json:"title"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
}

// RecipeParser validates raw model output against the recipe schema.
type RecipeParser struct {
	schema   *jsonschema.Schema
	archiver Archiver
}

// NewRecipeParser compiles the recipe schema. A nil archiver discards failed output.
func NewRecipeParser(archiver Archiver) *RecipeParser {
	if archiver == nil {
		archiver = NoopArchiver{}
	}
	return &RecipeParser{
		schema:   jsonschema.MustCompileString(recipeSchemaURL, recipeSchema),
		archiver: archiver,
	}
}

// Parse extracts the recipe JSON from raw and converts it to storable attributes.
func (p *RecipeParser) Parse(raw string) (*RecipeAttributes, error) {
	attrs, err := p.parse(raw)
	if err != nil {
		p.archive(raw)
		return nil, err
	}
	return attrs, nil
}

func (p *RecipeParser) parse(raw string) (*RecipeAttributes, error) {
	content := extractJSON(raw)

	var doc interface{}
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, &ParsingError{Message: fmt.Sprintf("Invalid recipe format: %s", err), Err: err}
	}
	if err := p.schema.Validate(doc); err != nil {
		return nil, &ParsingError{Message: fmt.Sprintf("Invalid recipe format: %s", describeValidation(err)), Err: err}
	}

	var recipe generatedRecipe
	if err := json.Unmarshal([]byte(content), &recipe); err != nil {
		return nil, &ParsingError{Message: fmt.Sprintf("Invalid recipe format: %s", err), Err: err}
	}

	return &RecipeAttributes{
		Title:        strings.TrimSpace(recipe.Title),
		Ingredients:  joinLines(recipe.Ingredients),
		Instructions: joinLines(recipe.Instructions),
	}, nil
}

func (p *RecipeParser) archive(raw string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.archiver.Archive(ctx, raw); err != nil {
		logging.Logger.Warn("failed to archive unparsed recipe", "error", err)
	}
}

// extractJSON strips Markdown fences and surrounding prose from model output.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end < start {
		return s
	}
	return s[start : end+1]
}

// describeValidation returns the most specific schema violation.
func describeValidation(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	field := strings.TrimPrefix(ve.InstanceLocation, "/")
	if field == "" {
		return ve.Message
	}
	return fmt.Sprintf("%s %s", field, ve.Message)
}

func joinLines(items []string) string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		// one item per line
		out = append(out, strings.TrimSpace(strings.ReplaceAll(item, "\n", " ")))
	}
	return strings.Join(out, "\n")
}
