package service

import (
	"strings"

	pgvector "github.com/pgvector/pgvector-go"
)

// GenerateEmbedding returns a small deterministic embedding for text built from
// its length, vowel count and consonant count. It is enough to order search
// results without calling an embedding model.
func GenerateEmbedding(text string) pgvector.Vector {
	text = strings.ToLower(text)
	var length, vowels, consonants float32
	for _, r := range text {
		length++
		switch {
		case strings.ContainsRune("aeiou", r):
			vowels++
		case r >= 'a' && r <= 'z':
			consonants++
		}
	}
	return pgvector.NewVector([]float32{length, vowels, consonants})
}

// RecipeEmbedding embeds the searchable text of a recipe.
func RecipeEmbedding(title, ingredients string) pgvector.Vector {
	return GenerateEmbedding(title + " " + strings.ReplaceAll(ingredients, "\n", " "))
}
