package todo

import (
	"sort"

	"github.com/abhisek/starpath/internal/catalog"
	"github.com/abhisek/starpath/internal/progress"
)

// RecentLimit caps CompletionStats.RecentCompletions.
const RecentLimit = 5

// CompletionStats is a rollup over a filtered set of items.
type CompletionStats struct {
	Total             int
	Completed         int
	CompletedTodos    []Item // Every completed item, in list order
	RecentCompletions []Item // Up to RecentLimit, newest CompletedAt first
}

// CompletionRate returns round(100*Completed/Total), or 0 with no items.
func (s CompletionStats) CompletionRate() int {
	if s.Total == 0 {
		return 0
	}
	return (200*s.Completed + s.Total) / (2 * s.Total)
}

func rollup(items []Item, keep func(Item) bool) CompletionStats {
	var s CompletionStats
	for _, it := range items {
		if !keep(it) {
			continue
		}
		s.Total++
		if it.Completed {
			s.Completed++
			s.CompletedTodos = append(s.CompletedTodos, it.Clone())
		}
	}

	recent := make([]Item, 0, len(s.CompletedTodos))
	for _, it := range s.CompletedTodos {
		if it.CompletedAt != nil {
			recent = append(recent, it)
		}
	}
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CompletedAt.After(*recent[j].CompletedAt)
	})
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	s.RecentCompletions = recent
	return s
}

// NodeCompletionStats rolls up the items associated with nodeID. Node IDs
// outside the catalog yield empty stats.
func NodeCompletionStats(cat *catalog.Catalog, items []Item, nodeID string) CompletionStats {
	if !cat.Has(nodeID) {
		return CompletionStats{}
	}
	return rollup(items, func(it Item) bool { return it.NodeID == nodeID })
}

// CategoryCompletionStats rolls up the items whose category resolves to
// category, synonyms included. Items pointing at unknown nodes still count.
func CategoryCompletionStats(cat *catalog.Catalog, items []Item, category catalog.Category) CompletionStats {
	return rollup(items, func(it Item) bool {
		c, ok := cat.ResolveCategory(it.Category)
		return ok && c == category
	})
}

// TaskCounts tallies items per catalog node for the display projection.
// Items without a node or with an unknown node are skipped.
func TaskCounts(cat *catalog.Catalog, items []Item) map[string]progress.TaskCounts {
	out := make(map[string]progress.TaskCounts)
	for _, it := range items {
		if it.NodeID == "" || !cat.Has(it.NodeID) {
			continue
		}
		c := out[it.NodeID]
		c.Total++
		if it.Completed {
			c.Completed++
		}
		out[it.NodeID] = c
	}
	return out
}
