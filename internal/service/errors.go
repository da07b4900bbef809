package service

import (
	"errors"
	"fmt"
)

// ErrRecipeNotFound is returned when a recipe id does not exist.
var ErrRecipeNotFound = errors.New("recipe not found")

// InputError reports ingredients the user sent that cannot be used.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

// ErrEmptyIngredients is returned when no usable ingredient was sent.
var ErrEmptyIngredients = &InputError{Message: "Ingredients cannot be empty"}

// GenerationError reports that no recipe could be generated.
type GenerationError struct {
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Message == "" {
		return "Failed to generate recipe"
	}
	return e.Message
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// ParsingError reports model output that is not a usable recipe.
type ParsingError struct {
	Message string
	Err     error
}

func (e *ParsingError) Error() string {
	if e.Message == "" {
		return "Failed to parse recipe"
	}
	return e.Message
}

func (e *ParsingError) Unwrap() error {
	return e.Err
}

// CreationError reports a recipe that could not be stored.
type CreationError struct {
	Message string
	Err     error
}

func (e *CreationError) Error() string {
	if e.Message == "" {
		return "Failed to create recipe"
	}
	return e.Message
}

func (e *CreationError) Unwrap() error {
	return e.Err
}

// UpstreamError reports a failed call to the language model API.
type UpstreamError struct {
	StatusCode  int
	RateLimited bool
	Message     string
	Err         error
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
