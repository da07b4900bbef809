package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChatAPI answers chat completions with queued replies.
type fakeChatAPI struct {
	mu       sync.Mutex
	replies  []fakeReply
	requests []map[string]interface{}
}

type fakeReply struct {
	status  int
	content string
	body    string
}

func (f *fakeChatAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
		http.NotFound(w, r)
		return
	}
	var req map[string]interface{}
	_ = json.NewDecoder(r.Body).Decode(&req)
	f.requests = append(f.requests, req)

	if len(f.replies) == 0 {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]

	w.Header().Set("Content-Type", "application/json")
	if reply.status != 0 && reply.status != http.StatusOK {
		w.WriteHeader(reply.status)
		_, _ = w.Write([]byte(reply.body))
		return
	}
	content, _ := json.Marshal(reply.content)
	fmt.Fprintf(w, `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-3.5-turbo","choices":[{"index":0,"message":{"role":"assistant","content":%s},"finish_reason":"stop"}]}`, content)
}

func newTestGenerator(t *testing.T, api *fakeChatAPI) *RecipeGenerator {
	t.Helper()
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)
	return NewRecipeGenerator(LLMConfig{
		APIKey:            "test-key",
		BaseURL:           server.URL + "/v1/",
		RequestsPerSecond: 100,
		MaxRetries:        0,
	})
}

func TestRecipeGeneratorGenerate(t *testing.T) {
	api := &fakeChatAPI{replies: []fakeReply{
		{content: "Yes."},
		{content: validRecipeJSON},
	}}
	g := newTestGenerator(t, api)

	raw, err := g.Generate(context.Background(), []string{"rice", "garlic"})
	require.NoError(t, err)
	assert.JSONEq(t, validRecipeJSON, raw)

	require.Len(t, api.requests, 2)
	assert.Equal(t, "gpt-3.5-turbo", api.requests[0]["model"])
	assert.EqualValues(t, 10, api.requests[0]["max_tokens"])
	assert.EqualValues(t, 500, api.requests[1]["max_tokens"])
	assert.Equal(t, map[string]interface{}{"type": "json_object"}, api.requests[1]["response_format"])

	messages := api.requests[1]["messages"].([]interface{})
	prompt := messages[0].(map[string]interface{})["content"].(string)
	assert.Contains(t, prompt, "rice, garlic")
}

func TestRecipeGeneratorRejectsInfeasibleIngredients(t *testing.T) {
	api := &fakeChatAPI{replies: []fakeReply{{content: "No"}}}
	g := newTestGenerator(t, api)

	_, err := g.Generate(context.Background(), []string{"glue", "sand"})
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "These ingredients cannot make a coherent dish", err.Error())
	assert.Len(t, api.requests, 1)
}

func TestRecipeGeneratorEmptyIngredients(t *testing.T) {
	api := &fakeChatAPI{}
	g := newTestGenerator(t, api)

	_, err := g.Generate(context.Background(), nil)
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Empty(t, api.requests)
}

func TestRecipeGeneratorUpstreamErrors(t *testing.T) {
	tests := []struct {
		name        string
		reply       fakeReply
		rateLimited bool
		status      int
	}{
		{
			name:        "too many requests",
			reply:       fakeReply{status: http.StatusTooManyRequests, body: `{"error":{"message":"slow down","type":"requests"}}`},
			rateLimited: true,
			status:      http.StatusTooManyRequests,
		},
		{
			name:        "rate limit in message",
			reply:       fakeReply{status: http.StatusForbidden, body: `{"error":{"message":"Rate limit reached for requests","type":"requests"}}`},
			rateLimited: true,
			status:      http.StatusForbidden,
		},
		{
			name:   "server error",
			reply:  fakeReply{status: http.StatusBadGateway, body: `{"error":{"message":"bad gateway","type":"server"}}`},
			status: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeChatAPI{replies: []fakeReply{tt.reply}}
			g := newTestGenerator(t, api)

			_, err := g.Generate(context.Background(), []string{"rice", "beans"})
			var upErr *UpstreamError
			require.ErrorAs(t, err, &upErr)
			assert.Equal(t, tt.status, upErr.StatusCode)
			assert.Equal(t, tt.rateLimited, upErr.RateLimited)
			assert.NotEmpty(t, upErr.Error())
		})
	}
}

func TestRecipeGeneratorCanceledContext(t *testing.T) {
	g := newTestGenerator(t, &fakeChatAPI{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Generate(ctx, []string{"rice", "beans"})
	assert.ErrorIs(t, err, context.Canceled)
}
