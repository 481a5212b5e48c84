package cmd

import (
	"fmt"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/starpath/internal/analysis"
	"github.com/abhisek/starpath/internal/catalog"
	"github.com/abhisek/starpath/internal/ui/starmap"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show completion, strength and recommendations per category",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		rawScores, _ := cmd.Flags().GetStringToInt("score")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		scores := make(map[catalog.Category]int, len(rawScores))
		for k, v := range rawScores {
			c, ok := a.catalog.ResolveCategory(k)
			if !ok {
				return fmt.Errorf("unknown category %q in --score", k)
			}
			if v < 0 || v > 100 {
				return fmt.Errorf("score for %s must be between 0 and 100", c)
			}
			scores[c] = v
		}

		sum := a.board.Summary(scores)
		if category != "" {
			c, ok := a.catalog.ResolveCategory(category)
			if !ok {
				return fmt.Errorf("unknown category %q", category)
			}
			sum.Categories = filterCategory(sum.Categories, c)
		}

		lipgloss.Println(starmap.Summary(sum))
		return nil
	},
}

func filterCategory(in []analysis.CategorySummary, c catalog.Category) []analysis.CategorySummary {
	for _, cs := range in {
		if cs.Category == c {
			return []analysis.CategorySummary{cs}
		}
	}
	return nil
}

func init() {
	statsCmd.Flags().String("category", "", "Show a single category")
	statsCmd.Flags().StringToInt("score", nil, "Test score per category, e.g. --score health=85")
}
