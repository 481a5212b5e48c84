package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiProvider calls the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider builds a provider from cfg. The client is created
// eagerly, so ctx only bounds construction.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, missingKey(VendorGemini)
	}
	cc := &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiProvider{client: client, model: resolveModel(VendorGemini, cfg.Model)}, nil
}

func (p *GeminiProvider) ModelID() string { return p.model }

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	gc := &genai.GenerateContentConfig{MaxOutputTokens: int32(req.MaxTokens)}
	if req.Temperature > 0 {
		t := float32(req.Temperature)
		gc.Temperature = &t
	}
	if req.System != "" {
		gc.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Schema != nil {
		gc.ResponseMIMEType = "application/json"
		gc.ResponseSchema = geminiSchema(req.Schema.Definition)
	}

	contents := []*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)}
	out, err := p.client.Models.GenerateContent(ctx, p.model, contents, gc)
	if err != nil {
		if code, ok := geminiStatus(err); ok {
			return nil, httpFailure(VendorGemini, code, nil, err)
		}
		return nil, &Error{Kind: ErrUnavailable, Vendor: VendorGemini, Err: err}
	}

	stop := StopEnd
	if len(out.Candidates) > 0 && out.Candidates[0].FinishReason == "MAX_TOKENS" {
		stop = StopMaxTokens
	}
	var usage Usage
	if m := out.UsageMetadata; m != nil {
		usage = Usage{InputTokens: int(m.PromptTokenCount), OutputTokens: int(m.CandidatesTokenCount)}
	}
	return finish(VendorGemini, req, json.RawMessage(out.Text()), usage, p.model, stop)
}

func geminiStatus(err error) (int, bool) {
	var v genai.APIError
	if errors.As(err, &v) {
		return v.Code, true
	}
	var p *genai.APIError
	if errors.As(err, &p) {
		return p.Code, true
	}
	return 0, false
}

// geminiSchema converts the JSON Schema subset the classifier uses into
// Gemini's OpenAPI-style schema. A type list containing "null" becomes a
// nullable single type.
func geminiSchema(def map[string]any) *genai.Schema {
	s := &genai.Schema{}
	for key, v := range def {
		switch key {
		case "type":
			switch t := v.(type) {
			case string:
				s.Type = genai.Type(strings.ToUpper(t))
			case []any:
				for _, x := range t {
					name, _ := x.(string)
					if name == "null" {
						nullable := true
						s.Nullable = &nullable
					} else if name != "" && s.Type == "" {
						s.Type = genai.Type(strings.ToUpper(name))
					}
				}
			}
		case "description":
			s.Description, _ = v.(string)
		case "properties":
			props, _ := v.(map[string]any)
			s.Properties = make(map[string]*genai.Schema, len(props))
			for name, p := range props {
				if pd, ok := p.(map[string]any); ok {
					s.Properties[name] = geminiSchema(pd)
				}
			}
		case "required":
			s.Required = stringList(v)
		case "enum":
			s.Enum = stringList(v)
		case "items":
			if items, ok := v.(map[string]any); ok {
				s.Items = geminiSchema(items)
			}
		case "minimum":
			if f, ok := v.(float64); ok {
				s.Minimum = &f
			}
		case "maximum":
			if f, ok := v.(float64); ok {
				s.Maximum = &f
			}
		}
	}
	return s
}

func stringList(v any) []string {
	list, _ := v.([]any)
	out := make([]string, 0, len(list))
	for _, x := range list {
		if s, ok := x.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
