// Package starmap renders the star map and node details as static,
// styled terminal text.
package starmap

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/starpath/internal/analysis"
	"github.com/abhisek/starpath/internal/catalog"
	"github.com/abhisek/starpath/internal/progress"
	"github.com/abhisek/starpath/internal/todo"
	"github.com/abhisek/starpath/internal/ui/theme"
)

const minNameWidth = 10

// Map renders every node grouped by category: the center first, then
// each category root followed by its leaves in display order.
func Map(states []progress.NodeState, width int) string {
	var b strings.Builder

	byCat := make(map[catalog.Category][]progress.NodeState)
	for _, s := range states {
		byCat[s.Node.Category] = append(byCat[s.Node.Category], s)
	}

	for _, s := range byCat[catalog.CategoryCenter] {
		b.WriteString(theme.CategoryColor(catalog.CategoryCenter).
			Render(fmt.Sprintf("%s %s", s.DisplayStatus.Icon(), s.Node.Name)))
		b.WriteString("\n")
	}

	for _, cat := range catalog.AllCategories() {
		nodes := byCat[cat]
		if len(nodes) == 0 {
			continue
		}
		b.WriteString(categoryHeader(cat, width))
		b.WriteString("\n")
		for _, s := range nodes {
			if s.Node.Kind == catalog.KindRoot {
				continue
			}
			b.WriteString(Row(s, width))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func categoryHeader(cat catalog.Category, width int) string {
	return theme.CategoryColor(cat).
		Width(width).
		Padding(1, 0, 0, 2).
		Render(strings.ToUpper(cat.DisplayName()))
}

// Row renders one node line: icon, name, ID, and status label.
func Row(s progress.NodeState, width int) string {
	st := s.DisplayStatus

	idWidth := 14
	labelWidth := 10
	nameWidth := max(width-4-3-idWidth-labelWidth-4, minNameWidth)

	name := s.Node.Name.String()
	if r := []rune(name); len(r) > nameWidth {
		name = string(r[:nameWidth-1]) + "…"
	}

	nameStyle, labelStyle := theme.StatusStyle(st)
	label := st.Label()
	if st != s.Status {
		// Task projection differs from the persisted status.
		label += "*"
	}

	return fmt.Sprintf("    %s %s  %s  %s",
		st.Icon(),
		nameStyle.Render(fmt.Sprintf("%-*s", nameWidth, name)),
		theme.Dim.Render(fmt.Sprintf("%-*s", idWidth, s.Node.ID)),
		labelStyle.Render(fmt.Sprintf("%*s", labelWidth, label)),
	)
}

// Detail renders a node with its description, task rollup,
// requirements, and dependents.
func Detail(cat *catalog.Catalog, s progress.NodeState, stats todo.CompletionStats, mastered map[string]bool) string {
	var b strings.Builder
	n := s.Node

	b.WriteString(theme.Title.Render(fmt.Sprintf("%s  %s", s.DisplayStatus.Icon(), n.Name)))
	b.WriteString("\n")
	b.WriteString(theme.Dim.Render(s.DisplayStatus.Label()))
	b.WriteString("\n\n")

	if d := n.Description.String(); d != "" {
		b.WriteString(theme.Body.Width(70).Render(d))
		b.WriteString("\n\n")
	}

	b.WriteString(field("Category", n.Category.DisplayName()))
	b.WriteString(field("Persisted", s.Status.Label()))
	if s.Record != nil && s.Record.MasteredAt != nil {
		b.WriteString(field("Mastered", s.Record.MasteredAt.Local().Format("2006-01-02")))
	}
	b.WriteString(field("Tasks", fmt.Sprintf("%d/%d done", stats.Completed, stats.Total)))
	if stats.Total > 0 {
		b.WriteString(field("Needed", fmt.Sprintf("%d to master", progress.MasteryThreshold(stats.Total))))
	}
	b.WriteString("\n")

	if reqs := cat.Requirements(n.ID); len(reqs) > 0 {
		b.WriteString(theme.Section.Render("Requires"))
		b.WriteString("\n")
		for _, r := range reqs {
			icon, style := "○", theme.Dim
			if mastered[r.ID] {
				icon, style = "●", lipgloss.NewStyle().Foreground(theme.Success)
			}
			b.WriteString(style.Render(fmt.Sprintf("  %s %s", icon, r.Name)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if deps := cat.Dependents(n.ID); len(deps) > 0 {
		b.WriteString(theme.Section.Render("Unlocks"))
		b.WriteString("\n")
		for _, d := range deps {
			b.WriteString(theme.Dim.Render(fmt.Sprintf("  → %s", d.Name)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func field(name, value string) string {
	return theme.Dim.Render(fmt.Sprintf("%-11s", name+":")) + theme.Body.Render(value) + "\n"
}

// Bar renders a completion bar of width cells for pct in [0,100].
func Bar(pct, width int) string {
	pct = min(max(pct, 0), 100)
	filled := pct * width / 100
	return theme.ProgressFilled.Render(strings.Repeat("█", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat("░", width-filled))
}

// Summary renders the level line and one card per category.
func Summary(sum analysis.Summary) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render(fmt.Sprintf("Level %d", sum.Level)))
	b.WriteString(theme.Dim.Render(fmt.Sprintf("  (%d mastered)", sum.MasteredCount)))
	b.WriteString("\n")

	for _, c := range sum.Categories {
		var card strings.Builder
		card.WriteString(theme.CategoryColor(c.Category).Render(c.Category.DisplayName()))
		card.WriteString(theme.Dim.Render(fmt.Sprintf("  %s", c.Strength)))
		card.WriteString("\n")
		card.WriteString(fmt.Sprintf("%s %3d%%  %d/%d tasks  %d/%d nodes\n",
			Bar(c.Stats.CompletionRate, 20), c.Stats.CompletionRate,
			c.Stats.Completed, c.Stats.Total, c.MasteredNodes, c.TotalNodes))
		for _, r := range c.Recommendations {
			card.WriteString(theme.Hint.Render(fmt.Sprintf("→ %s: %s", r.Name, r.Reason)))
			card.WriteString("\n")
		}
		b.WriteString(theme.Card.Render(strings.TrimRight(card.String(), "\n")))
		b.WriteString("\n")
	}
	return b.String()
}
