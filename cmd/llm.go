package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/cascade/internal/format"
	"github.com/abhisek/cascade/internal/llm"
	"github.com/abhisek/cascade/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect coach LLM request events",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		events, closeStore, err := queryLLM(cmd, store.QueryOpts{Newest: true})
		if err != nil {
			return err
		}
		defer closeStore()

		t := format.NewTable(format.ASCII)
		t.Header("Seq", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		for _, e := range events {
			if purpose != "" && e.Purpose != purpose {
				continue
			}
			if limit > 0 && t.Len() >= limit {
				break
			}
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			t.Row(e.Sequence, e.At.Local().Format("2006-01-02 15:04:05"), e.Purpose,
				truncate(e.Model, 28), e.InputTokens, e.OutputTokens, e.LatencyMs, ok)
		}
		if t.Len() == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No LLM events found.")
			return nil
		}
		t.AlignRight(1, 5, 6, 7)
		return t.Render(cmd.OutOrStdout())
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <seq>",
	Short: "View one LLM event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seq, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid sequence %q: %w", args[0], err)
		}
		events, closeStore, err := queryLLM(cmd, store.QueryOpts{After: seq - 1, Limit: 1})
		if err != nil {
			return err
		}
		defer closeStore()
		if len(events) == 0 || events[0].Sequence != seq {
			return fmt.Errorf("event %d not found", seq)
		}
		e := events[0]

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Seq:       %d\n", e.Sequence)
		fmt.Fprintf(out, "Time:      %s\n", e.At.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "Provider:  %s\n", e.Provider)
		fmt.Fprintf(out, "Model:     %s\n", e.Model)
		fmt.Fprintf(out, "Purpose:   %s\n", e.Purpose)
		fmt.Fprintf(out, "Tokens:    %d in / %d out\n", e.InputTokens, e.OutputTokens)
		fmt.Fprintf(out, "Latency:   %dms\n", e.LatencyMs)
		fmt.Fprintf(out, "Success:   %v\n", e.Success)
		if c := llm.LookupCost(e.Model); c != nil {
			fmt.Fprintf(out, "Cost:      %s\n", formatCost(c.Cost(e.InputTokens, e.OutputTokens)))
		}
		if e.ErrorMessage != "" {
			fmt.Fprintf(out, "Error:     %s\n", e.ErrorMessage)
		}
		return nil
	},
}

// usage aggregates LLM events under one key.
type usage struct {
	key          string
	calls        int
	inputTokens  int
	outputTokens int
	latencyMs    int64
}

func aggregate(events []store.LLMRequestEvent, keyOf func(store.LLMRequestEvent) string) []usage {
	byKey := map[string]*usage{}
	for _, e := range events {
		k := keyOf(e)
		u, ok := byKey[k]
		if !ok {
			u = &usage{key: k}
			byKey[k] = u
		}
		u.calls++
		u.inputTokens += e.InputTokens
		u.outputTokens += e.OutputTokens
		u.latencyMs += e.LatencyMs
	}
	out := make([]usage, 0, len(byKey))
	for _, u := range byKey {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		events, closeStore, err := queryLLM(cmd, store.QueryOpts{})
		if err != nil {
			return err
		}
		defer closeStore()

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No LLM usage recorded yet.")
			return nil
		}

		byPurpose := format.NewTable(format.ASCII)
		byPurpose.Title("Usage by Purpose")
		byPurpose.Header("Purpose", "Calls", "Input", "Output", "Total", "Avg Ms")
		var totalCalls, totalIn, totalOut int
		for _, u := range aggregate(events, func(e store.LLMRequestEvent) string { return e.Purpose }) {
			byPurpose.Row(u.key, u.calls, u.inputTokens, u.outputTokens,
				u.inputTokens+u.outputTokens, u.latencyMs/int64(u.calls))
			totalCalls += u.calls
			totalIn += u.inputTokens
			totalOut += u.outputTokens
		}
		byPurpose.Footer("TOTAL", totalCalls, totalIn, totalOut, totalIn+totalOut, "")
		byPurpose.AlignRight(2, 3, 4, 5, 6)
		if err := byPurpose.Render(out); err != nil {
			return err
		}
		fmt.Fprintln(out)

		byModel := format.NewTable(format.ASCII)
		byModel.Title("Estimated Cost (USD)")
		byModel.Header("Model", "Calls", "Input", "Output", "Cost")
		var (
			totalCost float64
			unknown   []string
		)
		for _, u := range aggregate(events, func(e store.LLMRequestEvent) string { return e.Model }) {
			cost := llm.LookupCost(u.key)
			if cost == nil {
				unknown = append(unknown, u.key)
				byModel.Row(truncate(u.key, 32), u.calls, u.inputTokens, u.outputTokens, "?")
				continue
			}
			c := cost.Cost(u.inputTokens, u.outputTokens)
			totalCost += c
			byModel.Row(truncate(u.key, 32), u.calls, u.inputTokens, u.outputTokens, formatCost(c))
		}
		label := "TOTAL"
		if len(unknown) > 0 {
			label = "TOTAL (partial)"
		}
		byModel.Footer(label, "", "", "", formatCost(totalCost))
		byModel.AlignRight(2, 3, 4, 5)
		if err := byModel.Render(out); err != nil {
			return err
		}

		if len(unknown) > 0 {
			fmt.Fprintf(out, "\nPricing unavailable for: %s\n", strings.Join(unknown, ", "))
		}
		return nil
	},
}

// queryLLM opens the store and returns the matching LLM events and a func
// that closes the store.
func queryLLM(cmd *cobra.Command, opts store.QueryOpts) ([]store.LLMRequestEvent, func() error, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	s, err := openStore(cmd, cfg)
	if err != nil {
		return nil, nil, err
	}
	events, err := s.EventRepo().QueryLLMRequests(cmd.Context(), opts)
	if err != nil {
		s.Close()
		return nil, nil, fmt.Errorf("query events: %w", err)
	}
	return events, s.Close, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. debrief)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
