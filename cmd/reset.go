package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the current user's to-dos and return nodes to their defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			fmt.Printf("Reset all progress and to-dos for %q? [y/N] ", cfg.User)
			answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		for _, it := range a.board.Items() {
			if err := a.board.Delete(ctx, it.ID); err != nil {
				return err
			}
		}
		n, err := a.engine.Reset(ctx, cfg.User)
		if err != nil {
			return err
		}
		fmt.Printf("Cleared %d node records.\n", n)
		return a.board.Refresh(ctx)
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
