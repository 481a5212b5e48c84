// Package classify maps free-text to-do items to star-map nodes: keyword
// rules first, then an optional LLM fallback.
package classify

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/starpath/internal/catalog"
	"github.com/abhisek/starpath/internal/llm"
	"github.com/abhisek/starpath/internal/todo"
)

// Classifier chains rule-based matching with an optional LLM fallback.
// It satisfies todo.Classifier.
type Classifier struct {
	catalog *catalog.Catalog
	rules   []Rule
	llm     *LLMClassifier
	timeout time.Duration
	log     zerolog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithProvider enables the LLM fallback.
func WithProvider(p llm.Provider, cfg LLMConfig) Option {
	return func(c *Classifier) {
		if p != nil {
			c.llm = NewLLMClassifier(p, c.catalog, cfg)
		}
	}
}

// WithTimeout bounds the LLM fallback. Zero means no extra bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Classifier) { c.timeout = d }
}

// WithLogger sets the classifier's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Classifier) { c.log = log.With().Str("component", "classifier").Logger() }
}

// New creates a Classifier with the keyword rule.
func New(cat *catalog.Catalog, opts ...Option) *Classifier {
	c := &Classifier{
		catalog: cat,
		rules:   []Rule{NewKeywordRule(cat)},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the node for text. Rules run first; the LLM is asked
// only when they are inconclusive. ErrNoMatch means nothing fit.
func (c *Classifier) Classify(ctx context.Context, text string, hint catalog.Category) (todo.Classification, error) {
	if id, conf, name := RunRules(c.rules, text, hint); id != "" {
		c.log.Debug().Str("node", id).Float64("confidence", conf).Str("rule", name).Msg("classified by rule")
		return c.result(id), nil
	}

	if c.llm == nil {
		return todo.Classification{}, ErrNoMatch
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	res, err := c.llm.Classify(ctx, text, hint)
	if err != nil {
		return todo.Classification{}, fmt.Errorf("classify: %w", err)
	}
	c.log.Debug().Str("node", res.NodeID).Float64("confidence", res.Confidence).Msg("classified by llm")
	return c.result(res.NodeID), nil
}

func (c *Classifier) result(nodeID string) todo.Classification {
	out := todo.Classification{NodeID: nodeID}
	if n, err := c.catalog.GetNode(nodeID); err == nil {
		out.Category = n.Category
	}
	return out
}
