// Package llm sends single-prompt requests to a hosted language model and
// returns JSON checked against a schema. The classifier is its only
// caller; the request shape stays as small as that use needs.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

// Provider generates one structured response per request.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the model the provider sends requests to.
	ModelID() string
}

// Request is a single-turn prompt.
type Request struct {
	System string
	Prompt string

	// Schema, when set, asks the vendor for JSON output and validates the
	// reply against it.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// Schema is a named JSON Schema document.
type Schema struct {
	// Name is kebab-case and doubles as the compiled-schema cache key.
	Name        string
	Description string
	Definition  map[string]any
}

// StopReason is the vendor finish reason normalized across providers.
type StopReason string

const (
	StopEnd       StopReason = "end"
	StopMaxTokens StopReason = "max_tokens"
)

// Response is a provider reply.
type Response struct {
	Content json.RawMessage
	Usage   Usage
	Model   string
	Stop    StopReason
}

// Decode unmarshals the reply content into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Content, v); err != nil {
		return fmt.Errorf("decode %s reply: %w", r.Model, err)
	}
	return nil
}

// Usage counts tokens for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total is input plus output.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// finish is the shared tail of every vendor Generate: a truncated
// structured reply is an error, and anything else must pass the schema.
func finish(vendor string, req Request, content json.RawMessage, usage Usage, model string, stop StopReason) (*Response, error) {
	if req.Schema != nil {
		if stop == StopMaxTokens {
			return nil, &Error{Kind: ErrTruncated, Vendor: vendor, Content: content}
		}
		if err := req.Schema.Check(content); err != nil {
			return nil, &Error{Kind: ErrInvalidOutput, Vendor: vendor, Content: content, Err: err}
		}
	}
	return &Response{Content: content, Usage: usage, Model: model, Stop: stop}, nil
}
