package classify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/abhisek/starpath/internal/catalog"
	"github.com/abhisek/starpath/internal/llm"
)

// ErrNoMatch is returned when no classifier could place the text.
var ErrNoMatch = errors.New("no matching node")

// LLMConfig holds configuration for the LLM classifier.
type LLMConfig struct {
	MaxTokens   int
	Temperature float64
}

// DefaultLLMConfig returns sensible defaults.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		MaxTokens:   200,
		Temperature: 0.2,
	}
}

// LLMClassifier asks a language model to pick a node from the catalog.
type LLMClassifier struct {
	provider llm.Provider
	catalog  *catalog.Catalog
	cfg      LLMConfig
}

// NewLLMClassifier creates an LLM-based classifier.
func NewLLMClassifier(provider llm.Provider, cat *catalog.Catalog, cfg LLMConfig) *LLMClassifier {
	return &LLMClassifier{provider: provider, catalog: cat, cfg: cfg}
}

// LLMResult is the validated LLM output.
type LLMResult struct {
	NodeID     string
	Confidence float64
	Reasoning  string
}

type llmOutput struct {
	NodeID     *string `json:"node_id"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

type candidate struct {
	ID       string
	Category catalog.Category
	Name     string
	Keywords string
}

// Classify sends the text and the candidate nodes to the LLM. It returns
// ErrNoMatch when the model declines or names a node outside the list.
func (c *LLMClassifier) Classify(ctx context.Context, text string, hint catalog.Category) (*LLMResult, error) {
	ctx = llm.WithPurpose(ctx, "todo-classify")

	cands := c.candidates(hint)
	userMsg, err := buildClassifyMessage(text, cands)
	if err != nil {
		return nil, fmt.Errorf("build classification prompt: %w", err)
	}

	resp, err := c.provider.Generate(ctx, llm.Request{
		System:      classifySystemPrompt,
		Prompt:      userMsg,
		Schema:      ClassificationSchema,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM classification failed: %w", err)
	}

	var raw llmOutput
	if err := resp.Decode(&raw); err != nil {
		return nil, err
	}
	if raw.NodeID == nil {
		return nil, ErrNoMatch
	}
	for _, cand := range cands {
		if cand.ID == *raw.NodeID {
			return &LLMResult{NodeID: cand.ID, Confidence: raw.Confidence, Reasoning: raw.Reasoning}, nil
		}
	}
	return nil, fmt.Errorf("%w: model returned %q", ErrNoMatch, *raw.NodeID)
}

// candidates lists the leaf and root nodes, limited to hint when set.
func (c *LLMClassifier) candidates(hint catalog.Category) []candidate {
	var out []candidate
	for _, n := range c.catalog.ListNodes() {
		if n.Kind == catalog.KindCenter {
			continue
		}
		if hint != "" && n.Category != hint {
			continue
		}
		out = append(out, candidate{
			ID:       n.ID,
			Category: n.Category,
			Name:     n.Name.EN,
			Keywords: strings.Join(n.Keywords, ", "),
		})
	}
	return out
}

const classifySystemPrompt = `You sort a person's to-do items onto their personal growth map. Each node on the map is a habit or skill in one of three categories: psychology, health, or skill.

Instructions:
- Pick the single node the task most directly practices.
- Only use IDs from the list provided. Do NOT invent IDs.
- Return null for node_id if no node fits.
- Provide a confidence score (0.0–1.0).
- Keep reasoning to one sentence.`

var classifyUserTemplate = template.Must(template.New("classify").Parse(`Task: {{.Text}}

Nodes:
{{range .Candidates}}- {{.ID}} ({{.Category}}): {{.Name}}{{if .Keywords}} [{{.Keywords}}]{{end}}
{{end}}`))

func buildClassifyMessage(text string, cands []candidate) (string, error) {
	var buf bytes.Buffer
	err := classifyUserTemplate.Execute(&buf, struct {
		Text       string
		Candidates []candidate
	}{text, cands})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
