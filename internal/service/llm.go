package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"golang.org/x/time/rate"

	"github.com/pageza/what-to-cook/backend/internal/logging"
	"github.com/pageza/what-to-cook/backend/internal/metrics"
)

const (
	feasibilityPrompt = `You are a chef. Answer with a single word, "yes" or "no".
Can a coherent, edible dish be cooked using mainly these ingredients: %s?`

	recipePrompt = `Generate a recipe using these ingredients: %s.
You may add common pantry staples such as salt, pepper, oil and water.
Respond with a JSON object only, in this exact shape:
{
  "title": "Recipe name",
  "ingredients": ["ingredient with quantity", "..."],
  "instructions": ["Step one as a full sentence.", "..."]
}`
)

// LLMConfig configures the chat completion client.
type LLMConfig struct {
	APIKey            string
	BaseURL           string
	Model             string
	RequestsPerSecond float64
	MaxRetries        int
	HTTPClient        *http.Client
}

// RecipeGenerator asks an OpenAI-compatible chat API for recipes.
type RecipeGenerator struct {
	client  openai.Client
	model   string
	limiter *rate.Limiter
}

// NewRecipeGenerator creates a generator. Outbound calls are throttled to
// RequestsPerSecond across all sessions.
func NewRecipeGenerator(cfg LLMConfig) *RecipeGenerator {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-3.5-turbo"
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}

	return &RecipeGenerator{
		client:  openai.NewClient(opts...),
		model:   model,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Generate checks that the ingredients can make a dish and returns the model's
// raw recipe JSON.
func (g *RecipeGenerator) Generate(ctx context.Context, ingredients []string) (string, error) {
	if len(ingredients) == 0 {
		return "", &GenerationError{Message: ErrEmptyIngredients.Message}
	}
	list := strings.Join(ingredients, ", ")

	answer, err := g.complete(ctx, "feasibility", openai.ChatCompletionNewParams{
		Model:       g.model,
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(fmt.Sprintf(feasibilityPrompt, list))},
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(10),
	})
	if err != nil {
		return "", err
	}
	if !isAffirmative(answer) {
		logging.FromContext(ctx).Info("ingredients rejected as infeasible", "ingredients", list, "answer", answer)
		return "", &GenerationError{Message: "These ingredients cannot make a coherent dish"}
	}

	content, err := g.complete(ctx, "recipe", openai.ChatCompletionNewParams{
		Model:       g.model,
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(fmt.Sprintf(recipePrompt, list))},
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(500),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(content) == "" {
		return "", &GenerationError{Message: "Failed to generate recipe: empty response"}
	}
	return content, nil
}

func (g *RecipeGenerator) complete(ctx context.Context, step string, params openai.ChatCompletionNewParams) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for llm rate limiter: %w", err)
	}

	start := time.Now()
	completion, err := g.client.Chat.Completions.New(ctx, params)
	metrics.LLMRequestDuration.WithLabelValues(step).Observe(time.Since(start).Seconds())
	if err != nil {
		logging.FromContext(ctx).Error("chat completion failed", "step", step, "error", err)
		return "", upstreamError(err)
	}
	if len(completion.Choices) == 0 {
		return "", &GenerationError{Message: "Failed to generate recipe: no choices returned"}
	}
	return completion.Choices[0].Message.Content, nil
}

// upstreamError classifies a client error. Rate limiting is recognised by
// status or by message.
func upstreamError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	ue := &UpstreamError{Err: err, Message: err.Error()}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		ue.StatusCode = apiErr.StatusCode
		if apiErr.Message != "" {
			ue.Message = apiErr.Message
		}
	}
	ue.RateLimited = ue.StatusCode == http.StatusTooManyRequests ||
		strings.Contains(strings.ToLower(ue.Message), "rate limit")
	return ue
}

func isAffirmative(answer string) bool {
	a := strings.ToLower(strings.TrimSpace(answer))
	a = strings.TrimRight(a, ".!")
	return a == "yes"
}
