package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const openRouterURL = "https://openrouter.ai/api/v1"

// OpenAIProvider calls a chat-completions API. OpenRouter speaks the same
// protocol and is served by this type with a different base URL.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	vendor string
}

// NewOpenAIProvider builds a provider for the OpenAI API or any
// compatible endpoint set in cfg.BaseURL.
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	return newChatProvider(VendorOpenAI, cfg.APIKey, resolveModel(VendorOpenAI, cfg.Model), cfg.BaseURL)
}

// NewOpenRouterProvider builds a provider for OpenRouter. Model IDs are
// OpenRouter's vendor-prefixed names and are not aliased.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenAIProvider, error) {
	base := cfg.BaseURL
	if base == "" {
		base = openRouterURL
	}
	return newChatProvider(VendorOpenRouter, cfg.APIKey, cfg.Model, base)
}

func newChatProvider(vendor, key, model, baseURL string) (*OpenAIProvider, error) {
	if key == "" {
		return nil, missingKey(vendor)
	}
	conf := openai.DefaultConfig(key)
	if baseURL != "" {
		conf.BaseURL = baseURL
	}
	return &OpenAIProvider{client: openai.NewClientWithConfig(conf), model: model, vendor: vendor}, nil
}

func (p *OpenAIProvider) ModelID() string { return p.model }

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	chat := openai.ChatCompletionRequest{
		Model:               p.model,
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
	}
	if req.System != "" {
		chat.Messages = append(chat.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	chat.Messages = append(chat.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	if req.Schema != nil {
		def, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return nil, fmt.Errorf("encode schema %s: %w", req.Schema.Name, err)
		}
		chat.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        req.Schema.Name,
				Description: req.Schema.Description,
				Schema:      json.RawMessage(def),
				Strict:      true,
			},
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, chat)
	if err != nil {
		return nil, p.failure(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &Error{Kind: ErrInvalidOutput, Vendor: p.vendor, Err: fmt.Errorf("reply has no choices")}
	}

	choice := resp.Choices[0]
	stop := StopEnd
	if choice.FinishReason == openai.FinishReasonLength {
		stop = StopMaxTokens
	}
	usage := Usage{InputTokens: resp.Usage.PromptTokens, OutputTokens: resp.Usage.CompletionTokens}
	return finish(p.vendor, req, json.RawMessage(choice.Message.Content), usage, resp.Model, stop)
}

func (p *OpenAIProvider) failure(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return httpFailure(p.vendor, apiErr.HTTPStatusCode, nil, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return httpFailure(p.vendor, reqErr.HTTPStatusCode, nil, err)
	}
	return &Error{Kind: ErrUnavailable, Vendor: p.vendor, Err: err}
}
