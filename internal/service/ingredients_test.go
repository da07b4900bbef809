package service

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessIngredients(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr string
	}{
		{name: "comma separated string", raw: `"chicken, rice ,  peas"`, want: []string{"chicken", "rice", "peas"}},
		{name: "array", raw: `["chicken", " rice "]`, want: []string{"chicken", "rice"}},
		{name: "blank entries dropped", raw: `"chicken,, ,rice"`, want: []string{"chicken", "rice"}},
		{name: "numbers in array", raw: `["2 eggs", 3]`, want: []string{"2 eggs", "3"}},
		{name: "escapes html", raw: `"salt & pepper"`, want: []string{"salt &amp; pepper"}},
		{name: "empty string", raw: `""`, wantErr: "Ingredients cannot be empty"},
		{name: "blank array", raw: `["  ", ""]`, wantErr: "Ingredients cannot be empty"},
		{name: "null", raw: `null`, wantErr: "Ingredients cannot be empty"},
		{name: "missing", raw: ``, wantErr: "Ingredients cannot be empty"},
		{name: "object", raw: `{"a":1}`, wantErr: "Invalid input type. Expected String or Array, got Object"},
		{name: "boolean", raw: `true`, wantErr: "Invalid input type. Expected String or Array, got Boolean"},
		{name: "number", raw: `42`, wantErr: "Invalid input type. Expected String or Array, got Number"},
		{name: "nested array", raw: `["rice", ["beans"]]`, wantErr: "Invalid ingredient at position 2"},
		{name: "invalid characters", raw: `"<script>"`, wantErr: "Input contains invalid characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProcessIngredients(json.RawMessage(tt.raw))
			if tt.wantErr != "" {
				require.Error(t, err)
				var inputErr *InputError
				require.ErrorAs(t, err, &inputErr)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeInputLength(t *testing.T) {
	_, err := SanitizeInput(strings.Repeat("a", MaxInputLength))
	assert.NoError(t, err)

	_, err = SanitizeInput(strings.Repeat("a", MaxInputLength+1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum length of 1000")
}

func TestGenerateEmbedding(t *testing.T) {
	v := GenerateEmbedding("Rice!")
	assert.Equal(t, []float32{5, 2, 2}, v.Slice())

	r := RecipeEmbedding("Soup", "leek\npotato")
	assert.Equal(t, GenerateEmbedding("soup leek potato").Slice(), r.Slice())
}
