// Package analysis builds per-category rollups, strength levels and
// recommendations on top of progress and to-do data.
package analysis

import (
	"github.com/abhisek/starpath/internal/catalog"
	"github.com/abhisek/starpath/internal/progress"
	"github.com/abhisek/starpath/internal/todo"
)

// Strength is a category's coarse strength level.
type Strength string

const (
	StrengthLow    Strength = "low"
	StrengthMedium Strength = "medium"
	StrengthHigh   Strength = "high"
)

func (s Strength) rank() int {
	switch s {
	case StrengthHigh:
		return 2
	case StrengthMedium:
		return 1
	default:
		return 0
	}
}

// Score thresholds.
const (
	highScore      = 80
	mediumScore    = 60
	highCompletion = 80
	midCompletion  = 50
)

// Stats is a category's task completion.
type Stats struct {
	Total          int
	Completed      int
	CompletionRate int // 0–100, rounded
}

// CategoryStats counts the items whose category resolves to category,
// synonyms included.
func CategoryStats(cat *catalog.Catalog, items []todo.Item, category catalog.Category) Stats {
	s := todo.CategoryCompletionStats(cat, items, category)
	return Stats{
		Total:          s.Total,
		Completed:      s.Completed,
		CompletionRate: s.CompletionRate(),
	}
}

// StrengthLevel combines an optional test score with task completion.
// The score sets the starting level (≥80 high, ≥60 medium, else low);
// completion can only raise it (≥80% to high, ≥50% low to medium).
// With neither signal the level is medium.
func StrengthLevel(stats Stats, testScore *int) Strength {
	if testScore == nil && stats.Total == 0 {
		return StrengthMedium
	}

	level := StrengthLow
	if testScore != nil {
		switch {
		case *testScore >= highScore:
			level = StrengthHigh
		case *testScore >= mediumScore:
			level = StrengthMedium
		}
	}
	if stats.Total == 0 {
		return level
	}

	switch {
	case stats.CompletionRate >= highCompletion:
		return upgrade(level, StrengthHigh)
	case stats.CompletionRate >= midCompletion:
		return upgrade(level, StrengthMedium)
	}
	return level
}

func upgrade(cur, to Strength) Strength {
	if to.rank() > cur.rank() {
		return to
	}
	return cur
}

// CategorySummary is one category's rollup.
type CategorySummary struct {
	Category        catalog.Category
	Stats           Stats
	Strength        Strength
	MasteredNodes   int
	TotalNodes      int
	Recommendations []Recommendation
}

// Summary is the whole-map rollup.
type Summary struct {
	Level         int
	MasteredCount int
	TotalNodes    int
	TotalTodos    int
	Categories    []CategorySummary
}

// Summarize builds the map rollup. scores holds optional per-category test
// scores and may be nil.
func Summarize(cat *catalog.Catalog, states []progress.NodeState, items []todo.Item, scores map[catalog.Category]int) Summary {
	mastered := progress.MasteredCount(states)
	sum := Summary{
		Level:         progress.Level(mastered),
		MasteredCount: mastered,
		TotalNodes:    len(states),
		TotalTodos:    len(items),
	}

	for _, c := range catalog.AllCategories() {
		stats := CategoryStats(cat, items, c)
		var score *int
		if v, ok := scores[c]; ok {
			score = &v
		}
		strength := StrengthLevel(stats, score)

		cs := CategorySummary{
			Category:        c,
			Stats:           stats,
			Strength:        strength,
			Recommendations: Recommendations(cat, c, strength, states),
		}
		for _, s := range states {
			if s.Node.Category != c {
				continue
			}
			cs.TotalNodes++
			if s.Status == progress.StatusMastered {
				cs.MasteredNodes++
			}
		}
		sum.Categories = append(sum.Categories, cs)
	}
	return sum
}
