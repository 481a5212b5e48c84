package starmap

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"github.com/abhisek/starpath/internal/analysis"
	"github.com/abhisek/starpath/internal/catalog"
	"github.com/abhisek/starpath/internal/progress"
	"github.com/abhisek/starpath/internal/todo"
)

func states(t *testing.T, mastered ...string) []progress.NodeState {
	t.Helper()
	records := make(map[string]*progress.NodeProgress)
	for _, id := range mastered {
		records[id] = &progress.NodeProgress{NodeID: id, Status: progress.StatusMastered}
	}
	return progress.Merge(catalog.Default(), records, nil)
}

func TestMap_GroupsByCategory(t *testing.T) {
	out := ansi.Strip(Map(states(t, "health-1"), 80))

	psych := strings.Index(out, "PSYCHOLOGY")
	health := strings.Index(out, "HEALTH")
	skill := strings.Index(out, "SKILL")
	assert.True(t, psych >= 0 && psych < health && health < skill, "categories out of order:\n%s", out)

	assert.Contains(t, out, "health-1")
	assert.Contains(t, out, "Mastered")
	assert.Contains(t, out, "Locked")
	assert.NotContains(t, out, "health-root", "roots render as headers only")
}

func TestRow_MarksProjectedStatus(t *testing.T) {
	cat := catalog.Default()
	counts := map[string]progress.TaskCounts{"skill-1": {Total: 3, Completed: 3}}
	for _, s := range progress.Merge(cat, nil, counts) {
		if s.Node.ID != "skill-1" {
			continue
		}
		row := ansi.Strip(Row(s, 80))
		assert.Contains(t, row, "Mastered*")
		assert.Contains(t, row, "★")
		return
	}
	t.Fatal("skill-1 missing")
}

func TestRow_TruncatesLongNames(t *testing.T) {
	s := progress.NodeState{
		Node:          catalog.Node{ID: "x", Name: catalog.LocalizedText{EN: strings.Repeat("n", 100)}},
		Status:        progress.StatusAvailable,
		DisplayStatus: progress.StatusAvailable,
	}
	row := ansi.Strip(Row(s, 40))
	assert.Contains(t, row, "…")
	assert.NotContains(t, row, strings.Repeat("n", 20))
}

func TestDetail(t *testing.T) {
	cat := catalog.Default()
	var health4 progress.NodeState
	for _, s := range states(t, "health-1") {
		if s.Node.ID == "health-4" {
			health4 = s
		}
	}

	out := ansi.Strip(Detail(cat, health4, todo.CompletionStats{Total: 5, Completed: 2}, map[string]bool{"health-1": true}))
	assert.Contains(t, out, "Requires")
	assert.Contains(t, out, "● ")
	assert.Contains(t, out, "○ ")
	assert.Contains(t, out, "2/5 done")
	assert.Contains(t, out, "4 to master")
}

func TestBar(t *testing.T) {
	assert.Equal(t, "█████░░░░░", ansi.Strip(Bar(50, 10)))
	assert.Equal(t, "░░░░", ansi.Strip(Bar(-5, 4)))
	assert.Equal(t, "████", ansi.Strip(Bar(150, 4)))
}

func TestSummary(t *testing.T) {
	sum := analysis.Summary{
		Level:         2,
		MasteredCount: 3,
		Categories: []analysis.CategorySummary{{
			Category: catalog.CategoryHealth,
			Stats:    analysis.Stats{Total: 4, Completed: 2, CompletionRate: 50},
			Strength: analysis.StrengthMedium,
			Recommendations: []analysis.Recommendation{
				{NodeID: "health-2", Name: "Sleep", Reason: "open"},
			},
		}},
	}
	out := ansi.Strip(Summary(sum))
	assert.Contains(t, out, "Level 2")
	assert.Contains(t, out, "50%")
	assert.Contains(t, out, "→ Sleep: open")
}
