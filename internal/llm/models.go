package llm

import "strings"

// Vendor names accepted in Config.Provider.
const (
	VendorAnthropic  = "anthropic"
	VendorOpenAI     = "openai"
	VendorGemini     = "gemini"
	VendorOpenRouter = "openrouter"
	VendorMock       = "mock"
)

// aliases maps short model names per vendor. Unknown names pass through.
var aliases = map[string]map[string]string{
	VendorAnthropic: {
		"claude-haiku":  "claude-haiku-4-5-20251001",
		"claude-sonnet": "claude-sonnet-4-5-20250929",
	},
	VendorOpenAI: {
		"gpt-mini": "gpt-4.1-mini",
		"gpt-nano": "gpt-4.1-nano",
	},
	VendorGemini: {
		"gemini-flash": "gemini-2.5-flash",
		"gemini-lite":  "gemini-2.5-flash-lite",
	},
}

func resolveModel(vendor, name string) string {
	if id, ok := aliases[vendor][name]; ok {
		return id
	}
	return name
}

// Price is USD per million tokens.
type Price struct {
	Input  float64
	Output float64
}

// Cost prices a token count.
func (p Price) Cost(in, out int) float64 {
	return (float64(in)*p.Input + float64(out)*p.Output) / 1e6
}

// PriceOf looks up a model's price. OpenRouter IDs such as
// "anthropic/claude-haiku-4-5" are matched on the part after the slash.
func PriceOf(model string) (Price, bool) {
	if p, ok := prices[model]; ok {
		return p, true
	}
	if i := strings.LastIndexByte(model, '/'); i >= 0 {
		p, ok := prices[model[i+1:]]
		return p, ok
	}
	return Price{}, false
}

// Classification-sized models only. Prices as of 2026-02.
var prices = map[string]Price{
	"claude-3-5-haiku-20241022":  {0.8, 4},
	"claude-3-haiku-20240307":    {0.25, 1.25},
	"claude-haiku-4-5":           {1, 5},
	"claude-haiku-4-5-20251001":  {1, 5},
	"claude-sonnet-4-20250514":   {3, 15},
	"claude-sonnet-4-5":          {3, 15},
	"claude-sonnet-4-5-20250929": {3, 15},

	"gpt-4o":       {2.5, 10},
	"gpt-4o-mini":  {0.15, 0.6},
	"gpt-4.1":      {2, 8},
	"gpt-4.1-mini": {0.4, 1.6},
	"gpt-4.1-nano": {0.1, 0.4},
	"gpt-5-mini":   {0.25, 2},
	"gpt-5-nano":   {0.05, 0.4},
	"o4-mini":      {1.1, 4.4},

	"gemini-2.0-flash":      {0.1, 0.4},
	"gemini-2.0-flash-lite": {0.075, 0.3},
	"gemini-2.5-flash":      {0.3, 2.5},
	"gemini-2.5-flash-lite": {0.1, 0.4},
	"gemini-2.5-pro":        {1.25, 10},
}
