package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func serve(t *testing.T, status int, header http.Header, body any, seen *map[string]any) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, seen)
		}
		for k, v := range header {
			w.Header()[k] = v
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func anthropicAt(t *testing.T, url string) *AnthropicProvider {
	t.Helper()
	p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "test", Model: "claude-haiku"},
		option.WithBaseURL(url), option.WithMaxRetries(0))
	require.NoError(t, err)
	return p
}

func TestAnthropicProvider_Generate(t *testing.T) {
	var seen map[string]any
	url := serve(t, http.StatusOK, nil, map[string]any{
		"id":   "msg_1",
		"type": "message",
		"role": "assistant",
		"content": []map[string]any{
			{"type": "text", "text": `{"node_id":"health-1","confidence":0.9}`},
		},
		"model":       "claude-haiku-4-5-20251001",
		"stop_reason": "end_turn",
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 12},
	}, &seen)

	p := anthropicAt(t, url)
	assert.Equal(t, "claude-haiku-4-5-20251001", p.ModelID())

	resp, err := p.Generate(context.Background(), Request{
		System:    "Place tasks on a growth map.",
		Prompt:    "Task: run 5k before work",
		Schema:    nodeSchema(),
		MaxTokens: 200,
	})
	require.NoError(t, err)
	assert.Equal(t, 62, resp.Usage.Total())
	assert.Equal(t, StopEnd, resp.Stop)
	assert.JSONEq(t, `{"node_id":"health-1","confidence":0.9}`, string(resp.Content))

	assert.Equal(t, "claude-haiku-4-5-20251001", seen["model"])
	msgs, _ := seen["messages"].([]any)
	require.Len(t, msgs, 1)
}

func TestAnthropicProvider_Failures(t *testing.T) {
	apiError := map[string]any{"type": "error", "error": map[string]any{"type": "rate_limit_error", "message": "slow down"}}

	url := serve(t, http.StatusTooManyRequests, http.Header{"Retry-After": {"2"}}, apiError, nil)
	_, err := anthropicAt(t, url).Generate(context.Background(), Request{Prompt: "x", MaxTokens: 10})
	assert.ErrorIs(t, err, ErrRateLimited)

	url = serve(t, http.StatusUnauthorized, nil, apiError, nil)
	_, err = anthropicAt(t, url).Generate(context.Background(), Request{Prompt: "x", MaxTokens: 10})
	assert.ErrorIs(t, err, ErrRejected)

	url = serve(t, http.StatusInternalServerError, nil, apiError, nil)
	_, err = anthropicAt(t, url).Generate(context.Background(), Request{Prompt: "x", MaxTokens: 10})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestAnthropicProvider_TruncatedStructuredReply(t *testing.T) {
	url := serve(t, http.StatusOK, nil, map[string]any{
		"id": "msg_2", "type": "message", "role": "assistant",
		"content":     []map[string]any{{"type": "text", "text": `{"node_id":"hea`}},
		"model":       "claude-haiku-4-5-20251001",
		"stop_reason": "max_tokens",
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 5},
	}, nil)

	_, err := anthropicAt(t, url).Generate(context.Background(), Request{Prompt: "x", Schema: nodeSchema(), MaxTokens: 5})
	assert.ErrorIs(t, err, ErrTruncated)
}

func chatCompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1760000000,
		"model":   "gpt-4.1-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 8, "total_tokens": 48},
	}
}

func TestOpenAIProvider_Generate(t *testing.T) {
	var seen map[string]any
	url := serve(t, http.StatusOK, nil, chatCompletion(`{"node_id":null,"confidence":0.2}`, "stop"), &seen)

	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "test", Model: "gpt-mini", BaseURL: url + "/v1"})
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), Request{System: "sys", Prompt: "pay rent", Schema: nodeSchema(), MaxTokens: 100})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1-mini", resp.Model)
	assert.Equal(t, 48, resp.Usage.Total())

	assert.Equal(t, "gpt-4.1-mini", seen["model"])
	msgs, _ := seen["messages"].([]any)
	assert.Len(t, msgs, 2)
	format, _ := seen["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
}

func TestOpenAIProvider_InvalidOutput(t *testing.T) {
	url := serve(t, http.StatusOK, nil, chatCompletion(`{"node":"x"}`, "stop"), nil)
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "test", Model: "gpt-4o-mini", BaseURL: url + "/v1"})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), Request{Prompt: "x", Schema: nodeSchema()})
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestOpenAIProvider_StatusErrors(t *testing.T) {
	apiError := map[string]any{"error": map[string]any{"message": "nope", "type": "server_error"}}
	for status, want := range map[int]error{
		http.StatusTooManyRequests: ErrRateLimited,
		http.StatusBadRequest:      ErrRejected,
		http.StatusBadGateway:      ErrUnavailable,
	} {
		url := serve(t, status, nil, apiError, nil)
		p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "test", Model: "gpt-4o-mini", BaseURL: url + "/v1"})
		require.NoError(t, err)

		_, err = p.Generate(context.Background(), Request{Prompt: "x"})
		assert.ErrorIs(t, err, want, "status %d", status)
	}
}

func TestOpenRouterProvider(t *testing.T) {
	_, err := NewOpenRouterProvider(OpenRouterConfig{Model: "x"})
	assert.ErrorContains(t, err, "STARPATH_OPENROUTER_API_KEY")

	url := serve(t, http.StatusOK, nil, chatCompletion(`"hi"`, "length"), nil)
	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "k", Model: "anthropic/claude-haiku-4-5", BaseURL: url})
	require.NoError(t, err)
	assert.Equal(t, "anthropic/claude-haiku-4-5", p.ModelID())

	resp, err := p.Generate(context.Background(), Request{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, StopMaxTokens, resp.Stop)
}

func TestGeminiSchema(t *testing.T) {
	s := geminiSchema(nodeSchema().Definition)

	assert.Equal(t, genai.TypeObject, s.Type)
	assert.ElementsMatch(t, []string{"node_id", "confidence"}, s.Required)

	node := s.Properties["node_id"]
	require.NotNil(t, node)
	assert.Equal(t, genai.TypeString, node.Type)
	require.NotNil(t, node.Nullable)
	assert.True(t, *node.Nullable)

	conf := s.Properties["confidence"]
	require.NotNil(t, conf)
	assert.Equal(t, genai.TypeNumber, conf.Type)
	require.NotNil(t, conf.Maximum)
	assert.Equal(t, 1.0, *conf.Maximum)
}

func TestGeminiProvider_RequiresKey(t *testing.T) {
	_, err := NewGeminiProvider(context.Background(), GeminiConfig{Model: "gemini-flash"})
	assert.ErrorContains(t, err, "STARPATH_GEMINI_API_KEY")
}
