package classify

import (
	"strings"
	"unicode"

	"github.com/abhisek/starpath/internal/catalog"
)

// Rule is a synchronous classifier. It returns a node ID and confidence
// (0.0–1.0), or ("", 0) if it cannot decide.
type Rule interface {
	Name() string
	Match(text string, hint catalog.Category) (string, float64)
}

// KeywordRule scores each node by how many of its keywords occur in the
// text. ASCII keywords must match whole words; others match as
// substrings so CJK text works without segmentation.
type KeywordRule struct {
	catalog *catalog.Catalog
}

// NewKeywordRule creates a KeywordRule over cat's node keywords.
func NewKeywordRule(cat *catalog.Catalog) *KeywordRule {
	return &KeywordRule{catalog: cat}
}

func (r *KeywordRule) Name() string { return "keyword" }

func (r *KeywordRule) Match(text string, hint catalog.Category) (string, float64) {
	lower := strings.ToLower(text)
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(lower, func(c rune) bool {
		return !unicode.IsLetter(c) && !unicode.IsDigit(c)
	}) {
		words[w] = true
	}

	bestID, bestScore, total := "", 0, 0
	for _, n := range r.catalog.ListNodes() {
		if hint != "" && n.Category != hint {
			continue
		}
		score := 0
		for _, kw := range n.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			if matchKeyword(lower, words, kw) {
				score++
			}
		}
		total += score
		// ListNodes is in display order, so ties keep the earlier node.
		if score > bestScore {
			bestID, bestScore = n.ID, score
		}
	}
	if bestScore == 0 {
		return "", 0
	}
	return bestID, float64(bestScore) / float64(total)
}

func matchKeyword(lower string, words map[string]bool, kw string) bool {
	if isASCII(kw) && !strings.ContainsRune(kw, ' ') {
		return words[kw]
	}
	return strings.Contains(lower, kw)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// RunRules executes rules in order and returns the first match, or
// ("", 0, "") if none apply.
func RunRules(rules []Rule, text string, hint catalog.Category) (string, float64, string) {
	for _, r := range rules {
		id, conf := r.Match(text, hint)
		if id != "" {
			return id, conf, r.Name()
		}
	}
	return "", 0, ""
}
