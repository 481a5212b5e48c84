package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/starpath/internal/llm"
	"github.com/abhisek/starpath/internal/store"
	"github.com/abhisek/starpath/internal/ui/theme"
)

const stampLayout = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect the classifier's LLM requests",
}

// withEvents opens the local store for read-only event commands; they do
// not need the catalog or the progress backend.
func withEvents(cmd *cobra.Command, fn func(store.EventRepo) error) error {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer s.Close()
	return fn(s.EventRepo())
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		failed, _ := cmd.Flags().GetBool("failed")

		return withEvents(cmd, func(events store.EventRepo) error {
			rows, err := events.QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit})
			if err != nil {
				return fmt.Errorf("query llm events: %w", err)
			}

			t := newTable("ID", "Time", "Purpose", "Model", "In", "Out", "Ms", "").
				limit(3, 28).
				alignRight(0, 4, 5, 6)
			for _, e := range rows {
				if purpose != "" && e.Purpose != purpose {
					continue
				}
				if failed && e.Success {
					continue
				}
				mark := theme.Hint.Render("ok")
				if !e.Success {
					mark = theme.Failure.Render("failed")
				}
				t.add(e.ID, e.Timestamp.Local().Format(stampLayout), e.Purpose, e.Model,
					e.InputTokens, e.OutputTokens, e.LatencyMs, mark)
			}
			if t.len() == 0 {
				fmt.Println("No LLM requests recorded.")
				return nil
			}
			t.print()
			return nil
		})
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show one LLM request with its prompt and reply",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("event id must be a number, got %q", args[0])
		}

		return withEvents(cmd, func(events store.EventRepo) error {
			e, err := events.GetLLMEvent(cmd.Context(), id)
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no LLM request with id %d", id)
			}
			if err != nil {
				return fmt.Errorf("get llm event: %w", err)
			}

			status := "succeeded"
			if !e.Success {
				status = "failed: " + e.ErrorMessage
			}
			fields := [][2]string{
				{"Time", e.Timestamp.Local().Format(stampLayout)},
				{"Vendor", e.Provider},
				{"Model", e.Model},
				{"Purpose", e.Purpose},
				{"Tokens", fmt.Sprintf("%d in, %d out", e.InputTokens, e.OutputTokens)},
				{"Latency", fmt.Sprintf("%dms", e.LatencyMs)},
				{"Status", status},
			}
			fmt.Println(theme.Title.Render(fmt.Sprintf("LLM request #%d", e.ID)))
			for _, f := range fields {
				fmt.Printf("  %-8s %s\n", f[0], f[1])
			}
			printBlock("Request", e.RequestBody)
			printBlock("Reply", e.ResponseBody)
			return nil
		})
	},
}

func printBlock(title, body string) {
	fmt.Println()
	fmt.Println(theme.Section.Render(title))
	if strings.TrimSpace(body) == "" {
		fmt.Println(theme.Dim.Render("(empty)"))
		return
	}
	fmt.Println(body)
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize LLM token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEvents(cmd, func(events store.EventRepo) error {
			ctx := cmd.Context()
			byPurpose, err := events.LLMUsageByPurpose(ctx)
			if err != nil {
				return fmt.Errorf("usage by purpose: %w", err)
			}
			if len(byPurpose) == 0 {
				fmt.Println("No LLM usage recorded yet.")
				return nil
			}

			usage := newTable("Purpose", "Calls", "Input", "Output", "Avg ms").alignRight(1, 2, 3, 4)
			var calls, in, out int
			for _, u := range byPurpose {
				usage.add(u.Purpose, u.Calls, u.InputTokens, u.OutputTokens, u.AvgLatencyMs)
				calls += u.Calls
				in += u.InputTokens
				out += u.OutputTokens
			}
			usage.rule()
			usage.add("total", calls, in, out, "")
			usage.print()

			byModel, err := events.LLMUsageByModel(ctx)
			if err != nil {
				return fmt.Errorf("usage by model: %w", err)
			}
			fmt.Println()
			printCosts(byModel)
			return nil
		})
	},
}

func printCosts(byModel []store.LLMModelUsage) {
	t := newTable("Model", "Calls", "Input", "Output", "Cost (USD)").limit(0, 36).alignRight(1, 2, 3, 4)
	var total float64
	var unpriced []string
	for _, m := range byModel {
		cost := "?"
		if p, ok := llm.PriceOf(m.Model); ok {
			c := p.Cost(m.InputTokens, m.OutputTokens)
			total += c
			cost = usd(c)
		} else {
			unpriced = append(unpriced, m.Model)
		}
		t.add(m.Model, m.Calls, m.InputTokens, m.OutputTokens, cost)
	}
	label := "total"
	if len(unpriced) > 0 {
		label = "total (partial)"
	}
	t.rule()
	t.add(label, "", "", "", usd(total))
	t.print()

	if len(unpriced) > 0 {
		fmt.Println(theme.Dim.Render("No price for: " + strings.Join(unpriced, ", ")))
	}
}

func usd(v float64) string {
	if v > 0 && v < 0.01 {
		return fmt.Sprintf("$%.4f", v)
	}
	return fmt.Sprintf("$%.2f", v)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show this purpose (e.g. todo-classify)")
	llmListCmd.Flags().Bool("failed", false, "Only show failed requests")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
