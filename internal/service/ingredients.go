package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
)

// MaxInputLength is the longest accepted ingredient entry.
const MaxInputLength = 1000

var allowedInput = regexp.MustCompile(`\A[a-zA-Z0-9\s,.()\-+'&\n]+\z`)

// ProcessIngredients turns the request's ingredients value into a clean list.
// A string is split on commas; an array is taken item by item. Blank entries
// are dropped and every entry is sanitized.
func ProcessIngredients(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, ErrEmptyIngredients
	}

	var items []string
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, &InputError{Message: "Invalid ingredients format"}
		}
		items = strings.Split(s, ",")
	case '[':
		var values []interface{}
		if err := json.Unmarshal(raw, &values); err != nil {
			return nil, &InputError{Message: "Invalid ingredients format"}
		}
		for i, v := range values {
			s, ok := scalarString(v)
			if !ok {
				return nil, &InputError{Message: fmt.Sprintf("Invalid ingredient at position %d", i+1)}
			}
			items = append(items, s)
		}
	default:
		return nil, &InputError{Message: fmt.Sprintf("Invalid input type. Expected String or Array, got %s", jsonTypeName(raw))}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			continue
		}
		clean, err := SanitizeInput(item)
		if err != nil {
			return nil, err
		}
		out = append(out, clean)
	}
	if len(out) == 0 {
		return nil, ErrEmptyIngredients
	}
	return out, nil
}

// SanitizeInput trims s, checks its length and characters, and HTML-escapes it.
func SanitizeInput(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyIngredients
	}
	if len([]rune(s)) > MaxInputLength {
		return "", &InputError{Message: fmt.Sprintf("Input exceeds maximum length of %d characters", MaxInputLength)}
	}
	if !allowedInput.MatchString(s) {
		return "", &InputError{Message: "Input contains invalid characters"}
	}
	return html.EscapeString(s), nil
}

func scalarString(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

func jsonTypeName(raw []byte) string {
	switch raw[0] {
	case '{':
		return "Object"
	case 't', 'f':
		return "Boolean"
	default:
		return "Number"
	}
}
