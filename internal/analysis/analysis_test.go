package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/starpath/internal/catalog"
	"github.com/abhisek/starpath/internal/progress"
	"github.com/abhisek/starpath/internal/todo"
)

func intp(v int) *int { return &v }

func TestCategoryStats_ZeroTasks(t *testing.T) {
	s := CategoryStats(catalog.Default(), nil, catalog.CategoryHealth)
	assert.Equal(t, Stats{}, s)
	assert.Equal(t, StrengthMedium, StrengthLevel(s, nil))
}

func TestCategoryStats_RoundsAndResolvesSynonyms(t *testing.T) {
	now := time.Now()
	items := []todo.Item{
		{ID: "a", Category: "mind", Completed: true, CompletedAt: &now},
		{ID: "b", Category: "psychology"},
		{ID: "c", Category: "心理"},
		{ID: "d", Category: "health", Completed: true, CompletedAt: &now},
	}
	s := CategoryStats(catalog.Default(), items, catalog.CategoryPsychology)
	assert.Equal(t, Stats{Total: 3, Completed: 1, CompletionRate: 33}, s)
}

func TestStrengthLevel(t *testing.T) {
	tests := []struct {
		name  string
		stats Stats
		score *int
		want  Strength
	}{
		{"no signal is neutral", Stats{}, nil, StrengthMedium},
		{"score high", Stats{}, intp(80), StrengthHigh},
		{"score medium", Stats{}, intp(60), StrengthMedium},
		{"score low", Stats{}, intp(59), StrengthLow},
		{"tasks only, low completion", Stats{Total: 10, Completed: 2, CompletionRate: 20}, nil, StrengthLow},
		{"tasks only, half done", Stats{Total: 10, Completed: 5, CompletionRate: 50}, nil, StrengthMedium},
		{"tasks only, mostly done", Stats{Total: 10, Completed: 8, CompletionRate: 80}, nil, StrengthHigh},
		{"completion raises low score", Stats{Total: 4, Completed: 4, CompletionRate: 100}, intp(30), StrengthHigh},
		{"completion raises low to medium", Stats{Total: 4, Completed: 2, CompletionRate: 50}, intp(30), StrengthMedium},
		{"low completion never downgrades score", Stats{Total: 10, Completed: 0, CompletionRate: 0}, intp(95), StrengthHigh},
		{"medium completion keeps medium score", Stats{Total: 10, Completed: 6, CompletionRate: 60}, intp(70), StrengthMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StrengthLevel(tt.stats, tt.score))
		})
	}
}

func statesFor(t *testing.T, cat *catalog.Catalog, statuses map[string]progress.Status) []progress.NodeState {
	t.Helper()
	records := make(map[string]*progress.NodeProgress)
	for id, st := range statuses {
		n, err := cat.GetNode(id)
		require.NoError(t, err)
		records[id] = &progress.NodeProgress{NodeID: id, Category: n.Category, Status: st}
	}
	return progress.Merge(cat, records, nil)
}

func TestRecommendations_LowAndMedium(t *testing.T) {
	cat := catalog.Default()
	states := statesFor(t, cat, map[string]progress.Status{
		"skill-1": progress.StatusMastered,
		"skill-2": progress.StatusActive,
		"skill-3": progress.StatusAvailable,
	})

	recs := Recommendations(cat, catalog.CategorySkill, StrengthLow, states)
	require.Len(t, recs, 2)
	assert.Equal(t, "skill-2", recs[0].NodeID)
	assert.Equal(t, "In progress", recs[0].Reason)
	assert.Equal(t, "skill-3", recs[1].NodeID)

	assert.Equal(t, recs, Recommendations(cat, catalog.CategorySkill, StrengthMedium, states))
}

func TestRecommendations_CapsAtThree(t *testing.T) {
	cat := catalog.Default()
	states := statesFor(t, cat, map[string]progress.Status{
		"health-3": progress.StatusAvailable,
		"health-4": progress.StatusAvailable,
	})
	recs := Recommendations(cat, catalog.CategoryHealth, StrengthLow, states)
	assert.Len(t, recs, MaxRecommendations)
	assert.Equal(t, "health-1", recs[0].NodeID)
}

func TestRecommendations_HighPicksClosestLocked(t *testing.T) {
	cat := catalog.Default()
	// health-3 needs health-1 (0/1); health-4 needs health-1, health-2 (1/2).
	states := statesFor(t, cat, map[string]progress.Status{
		"health-2": progress.StatusMastered,
	})
	recs := Recommendations(cat, catalog.CategoryHealth, StrengthHigh, states)
	require.Len(t, recs, 1)
	assert.Equal(t, "health-4", recs[0].NodeID)
	assert.Equal(t, "1 of 2 requirements mastered", recs[0].Reason)

	// Nothing locked left.
	states = statesFor(t, cat, map[string]progress.Status{
		"health-3": progress.StatusAvailable,
		"health-4": progress.StatusAvailable,
	})
	assert.Empty(t, Recommendations(cat, catalog.CategoryHealth, StrengthHigh, states))
}

func TestSummarize(t *testing.T) {
	cat := catalog.Default()
	states := statesFor(t, cat, map[string]progress.Status{
		"health-1": progress.StatusMastered,
		"health-2": progress.StatusMastered,
		"skill-1":  progress.StatusMastered,
	})
	now := time.Now()
	items := []todo.Item{
		{ID: "a", Category: "health", NodeID: "health-1", Completed: true, CompletedAt: &now},
		{ID: "b", Category: "fitness", NodeID: "gone-node"},
	}

	sum := Summarize(cat, states, items, map[catalog.Category]int{catalog.CategorySkill: 90})
	assert.Equal(t, 2, sum.Level)
	assert.Equal(t, 3, sum.MasteredCount)
	assert.Equal(t, 16, sum.TotalNodes)
	assert.Equal(t, 2, sum.TotalTodos)
	require.Len(t, sum.Categories, 3)

	psych, health, skill := sum.Categories[0], sum.Categories[1], sum.Categories[2]
	assert.Equal(t, StrengthMedium, psych.Strength)
	assert.Zero(t, psych.Stats.CompletionRate)

	assert.Equal(t, Stats{Total: 2, Completed: 1, CompletionRate: 50}, health.Stats)
	assert.Equal(t, StrengthMedium, health.Strength)
	assert.Equal(t, 2, health.MasteredNodes)
	assert.Equal(t, 5, health.TotalNodes)

	assert.Equal(t, StrengthHigh, skill.Strength)
	require.Len(t, skill.Recommendations, 1)
	assert.Equal(t, "skill-3", skill.Recommendations[0].NodeID)
}
