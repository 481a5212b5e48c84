package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/starpath/internal/store"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List recent node transitions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		node, _ := cmd.Flags().GetString("node")

		return withEvents(cmd, func(events store.EventRepo) error {
			rows, err := events.QueryTransitions(cmd.Context(), cfg.User, store.QueryOpts{Limit: limit})
			if err != nil {
				return fmt.Errorf("query transitions: %w", err)
			}

			t := newTable("Seq", "Time", "Node", "From", "To", "Trigger").alignRight(0)
			for _, e := range rows {
				if node != "" && e.NodeID != node {
					continue
				}
				t.add(e.Sequence, e.Timestamp.Local().Format(stampLayout), e.NodeID, e.From, e.To, e.Trigger)
			}
			if t.len() == 0 {
				fmt.Println("No transitions recorded yet.")
				return nil
			}
			t.print()
			return nil
		})
	},
}

func init() {
	eventsCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	eventsCmd.Flags().String("node", "", "Only show transitions of this node")
}
