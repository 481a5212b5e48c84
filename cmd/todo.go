package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/starpath/internal/catalog"
	"github.com/abhisek/starpath/internal/todo"
)

var todoCmd = &cobra.Command{
	Use:   "todo",
	Short: "Manage to-dos that feed the star map",
}

var todoAddCmd = &cobra.Command{
	Use:   "add <text...>",
	Short: "Add a to-do; it is classified onto a node",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		it, err := a.board.Add(cmd.Context(), strings.Join(args, " "), category)
		if err != nil {
			return err
		}
		node := it.NodeID
		if n, err := a.catalog.GetNode(it.NodeID); err == nil {
			node = fmt.Sprintf("%s (%s)", n.Name, n.ID)
		}
		fmt.Printf("Added %s → %s\n", shortID(it.ID), node)
		return nil
	},
}

var todoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List to-dos",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		pending, _ := cmd.Flags().GetBool("pending")

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

		items := a.board.Items()
		if len(items) == 0 {
			fmt.Println("No to-dos yet. Add one with: starpath todo add <text>")
			return nil
		}

		t := newTable("ID", "", "Text", "Category", "Node").limit(2, 40)
		for _, it := range items {
			if pending && it.Completed {
				continue
			}
			if filter != "" {
				if c, _ := a.catalog.ResolveCategory(it.Category); c != filter {
					continue
				}
			}
			done := "[ ]"
			if it.Completed {
				done = "[x]"
			}
			t.add(shortID(it.ID), done, it.Text, it.Category, it.NodeID)
		}
		t.print()
		return nil
	},
}

var todoToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Flip a to-do between done and not done",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := resolveTodoID(a, args[0])
		if err != nil {
			return err
		}
		it, err := a.board.Toggle(cmd.Context(), id)
		if err != nil {
			return err
		}

		state := "not done"
		if it.Completed {
			state = "done"
		}
		fmt.Printf("%s is %s.\n", shortID(it.ID), state)
		if it.NodeID != "" {
			if s, ok := a.board.Node(it.NodeID); ok {
				stats := a.board.NodeStats(it.NodeID)
				fmt.Printf("%s: %d/%d tasks, %s\n", it.NodeID, stats.Completed, stats.Total, s.DisplayStatus.Label())
			}
		}
		return nil
	},
}

var todoDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a to-do",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := resolveTodoID(a, args[0])
		if err != nil {
			return err
		}
		if err := a.board.Delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Deleted %s.\n", shortID(id))
		return nil
	},
}

// shortIDLen is how much of the random tail of a UUIDv7 lists show.
const shortIDLen = 8

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[len(id)-shortIDLen:]
}

// resolveTodoID accepts a full ID or a unique short suffix.
func resolveTodoID(a *app, ref string) (string, error) {
	return matchTodoID(a.board.Items(), ref)
}

// matchTodoID prefers an exact ID over any suffix match.
func matchTodoID(items []todo.Item, ref string) (string, error) {
	var matches []string
	for _, it := range items {
		if it.ID == ref {
			return ref, nil
		}
		if strings.HasSuffix(it.ID, ref) {
			matches = append(matches, it.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("to-do %q: %w", ref, todo.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("to-do %q is ambiguous (%d matches)", ref, len(matches))
	}
}

func init() {
	todoAddCmd.Flags().StringP("category", "c", "", "Category hint (psychology, health, skill or a synonym)")
	todoListCmd.Flags().StringP("category", "c", "", "Filter by category")
	todoListCmd.Flags().Bool("pending", false, "Hide completed to-dos")

	todoCmd.AddCommand(todoAddCmd)
	todoCmd.AddCommand(todoListCmd)
	todoCmd.AddCommand(todoToggleCmd)
	todoCmd.AddCommand(todoDeleteCmd)
}
