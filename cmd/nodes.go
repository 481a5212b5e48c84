package cmd

import (
	"errors"
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/starpath/internal/catalog"
	"github.com/abhisek/starpath/internal/progress"
	"github.com/abhisek/starpath/internal/ui/starmap"
)

const mapWidth = 80

var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "List star-map nodes with their status",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		var filter catalog.Category
		if category != "" {
			c, ok := a.catalog.ResolveCategory(category)
			if !ok {
				return fmt.Errorf("unknown category %q", category)
			}
			filter = c
		}

		t := newTable("ID", "Name", "Category", "Status", "Shown", "Tasks").limit(1, 28)
		for _, s := range a.board.Nodes() {
			if filter != "" && s.Node.Category != filter {
				continue
			}
			stats := a.board.NodeStats(s.Node.ID)
			t.add(s.Node.ID, s.Node.Name.String(), s.Node.Category.DisplayName(),
				s.Status.Label(), s.DisplayStatus.Label(),
				fmt.Sprintf("%d/%d", stats.Completed, stats.Total))
		}
		t.print()

		fmt.Printf("\n%d nodes\n", t.len())
		return nil
	},
}

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Render the star map",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMap(cmd)
	},
}

func runMap(cmd *cobra.Command) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	lipgloss.Println(starmap.Map(a.board.Nodes(), mapWidth))
	fmt.Printf("Level %d\n", a.board.Level())
	return nil
}

var nodeCmd = &cobra.Command{
	Use:   "node <id>",
	Short: "Show one node with its requirements and tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		s, ok := a.board.Node(args[0])
		if !ok {
			return fmt.Errorf("node %q not found", args[0])
		}
		mastered := make(map[string]bool)
		for _, n := range a.board.Nodes() {
			if n.Status == progress.StatusMastered {
				mastered[n.Node.ID] = true
			}
		}
		lipgloss.Println(starmap.Detail(a.catalog, s, a.board.NodeStats(s.Node.ID), mastered))
		return nil
	},
}

var unlockCmd = &cobra.Command{
	Use:   "unlock <node>",
	Short: "Mark a node as in progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.board.UnlockNode(cmd.Context(), args[0])
		if err != nil {
			return nodeErr(args[0], err)
		}
		if !res.Changed {
			fmt.Printf("%s is already %s.\n", args[0], res.Node.Status.Label())
			return nil
		}
		fmt.Printf("%s %s is now active.\n", res.Node.Status.Icon(), args[0])
		return nil
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete <node>",
	Short: "Master a node and unlock what depends on it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		before := a.board.Level()
		res, err := a.board.CompleteNode(cmd.Context(), args[0])
		if res == nil {
			return nodeErr(args[0], err)
		}

		if res.Changed {
			fmt.Printf("%s %s mastered.\n", progress.StatusMastered.Icon(), args[0])
		} else {
			fmt.Printf("%s was already mastered.\n", args[0])
		}
		for _, p := range res.Unlocked {
			fmt.Printf("  %s unlocked %s\n", progress.StatusAvailable.Icon(), p.NodeID)
		}
		if after := a.board.Level(); after > before {
			fmt.Printf("Level up! %d → %d\n", before, after)
		}
		if err != nil {
			return fmt.Errorf("some unlocks were not saved (%s); run the command again to retry: %w",
				strings.Join(res.Failed, ", "), err)
		}
		return nil
	},
}

var levelCmd = &cobra.Command{
	Use:   "level",
	Short: "Show the current level",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		mastered := progress.MasteredCount(a.board.Nodes())
		level := a.board.Level()
		next := level * progress.NodesPerLevel
		fmt.Printf("Level %d  (%d mastered, %d more to level %d)\n",
			level, mastered, next-mastered, level+1)
		return nil
	},
}

func nodeErr(id string, err error) error {
	if errors.Is(err, progress.ErrNotFound) {
		return fmt.Errorf("node %q not found", id)
	}
	if errors.Is(err, progress.ErrLocked) {
		return fmt.Errorf("node %q is locked; master its requirements first (see `starpath node %s`)", id, id)
	}
	return err
}

func init() {
	nodesCmd.Flags().String("category", "", "Filter by category (psychology, health, skill or a synonym)")
}
