package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/starpath/internal/store"
)

// Config selects a vendor and holds every vendor's settings.
type Config struct {
	// Provider is one of the Vendor* names.
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds one classification, retries included.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig controls WithRetry.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig picks small, cheap models: classification prompts are
// short and the answer is one node ID.
func DefaultConfig() Config {
	return Config{
		Provider:   VendorAnthropic,
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.5-flash"},
		Retry: RetryConfig{
			MaxAttempts: 2,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     2 * time.Second,
			Multiplier:  2,
		},
		Timeout: 5 * time.Second,
	}
}

// envFields lists the STARPATH_* variables ConfigFromEnv reads.
var envFields = []struct {
	name  string
	field func(*Config) *string
}{
	{"STARPATH_LLM_PROVIDER", func(c *Config) *string { return &c.Provider }},
	{"STARPATH_ANTHROPIC_API_KEY", func(c *Config) *string { return &c.Anthropic.APIKey }},
	{"STARPATH_ANTHROPIC_MODEL", func(c *Config) *string { return &c.Anthropic.Model }},
	{"STARPATH_OPENAI_API_KEY", func(c *Config) *string { return &c.OpenAI.APIKey }},
	{"STARPATH_OPENAI_MODEL", func(c *Config) *string { return &c.OpenAI.Model }},
	{"STARPATH_OPENAI_BASE_URL", func(c *Config) *string { return &c.OpenAI.BaseURL }},
	{"STARPATH_GEMINI_API_KEY", func(c *Config) *string { return &c.Gemini.APIKey }},
	{"STARPATH_GEMINI_MODEL", func(c *Config) *string { return &c.Gemini.Model }},
	{"STARPATH_GEMINI_BASE_URL", func(c *Config) *string { return &c.Gemini.BaseURL }},
	{"STARPATH_OPENROUTER_API_KEY", func(c *Config) *string { return &c.OpenRouter.APIKey }},
	{"STARPATH_OPENROUTER_MODEL", func(c *Config) *string { return &c.OpenRouter.Model }},
	{"STARPATH_OPENROUTER_BASE_URL", func(c *Config) *string { return &c.OpenRouter.BaseURL }},
}

// ConfigFromEnv overlays non-empty STARPATH_* variables on DefaultConfig.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	for _, f := range envFields {
		if v := os.Getenv(f.name); v != "" {
			*f.field(&cfg) = v
		}
	}
	return cfg
}

// DiscoverConfig falls back to the vendors' own key variables, taking the
// first one set in the order Gemini, OpenAI, Anthropic, OpenRouter.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()
	probes := []struct {
		env    string
		vendor string
		key    *string
	}{
		{"GEMINI_API_KEY", VendorGemini, &cfg.Gemini.APIKey},
		{"OPENAI_API_KEY", VendorOpenAI, &cfg.OpenAI.APIKey},
		{"ANTHROPIC_API_KEY", VendorAnthropic, &cfg.Anthropic.APIKey},
		{"OPENROUTER_API_KEY", VendorOpenRouter, &cfg.OpenRouter.APIKey},
	}
	for _, p := range probes {
		if k := os.Getenv(p.env); k != "" {
			cfg.Provider = p.vendor
			*p.key = k
			return cfg, true
		}
	}
	return Config{}, false
}

// Validate reports a missing key for the selected vendor.
func (c Config) Validate() error {
	var key string
	switch c.Provider {
	case VendorAnthropic:
		key = c.Anthropic.APIKey
	case VendorOpenAI:
		key = c.OpenAI.APIKey
	case VendorGemini:
		key = c.Gemini.APIKey
	case VendorOpenRouter:
		key = c.OpenRouter.APIKey
	case VendorMock:
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return missingKey(c.Provider)
	}
	return nil
}

func missingKey(vendor string) error {
	return fmt.Errorf("%s: API key is required (set STARPATH_%s_API_KEY)", vendor, strings.ToUpper(vendor))
}

// NewProvider builds the vendor client named by cfg.Provider and wraps it
// as retry(logging(vendor)), so every attempt is recorded.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo, log zerolog.Logger) (Provider, error) {
	var (
		p   Provider
		err error
	)
	switch cfg.Provider {
	case VendorAnthropic:
		p, err = NewAnthropicProvider(cfg.Anthropic)
	case VendorOpenAI:
		p, err = NewOpenAIProvider(cfg.OpenAI)
	case VendorGemini:
		p, err = NewGeminiProvider(ctx, cfg.Gemini)
	case VendorOpenRouter:
		p, err = NewOpenRouterProvider(cfg.OpenRouter)
	case VendorMock:
		p = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s provider: %w", cfg.Provider, err)
	}
	return WithRetry(WithLogging(p, cfg.Provider, events, log), cfg.Retry, log), nil
}
