package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/cascade/internal/format"
	"github.com/abhisek/cascade/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		e, err := openEnv(cmd, cfg, stderrLogger(cmd, cfg))
		if err != nil {
			return err
		}
		defer e.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		md, _ := cmd.Flags().GetBool("markdown")
		mode := format.ASCII
		if md {
			mode = format.Markdown
		}
		out := cmd.OutOrStdout()

		p := e.session.Profile()
		fmt.Fprintf(out, "Learner:     %s\n", p.UserID)
		fmt.Fprintf(out, "Difficulty:  %d\n", p.Difficulty)
		fmt.Fprintf(out, "Levels:      %d\n", p.Sessions)
		if p.Sessions > 0 {
			m := p.Metrics
			fmt.Fprintf(out, "Accuracy:    %s (last level)\n", percent(m.OverallAccuracy))
			fmt.Fprintf(out, "Engagement:  %.2f\n", m.EngagementScore)
			fmt.Fprintf(out, "Mastered:    %s\n", listOrDash(m.MasteredConcepts))
			fmt.Fprintf(out, "Struggling:  %s\n", listOrDash(m.StrugglingConcepts))
		}
		fmt.Fprintln(out)

		events, err := e.store.EventRepo().QuerySessionEvents(cmd.Context(), store.QueryOpts{
			UserID: cfg.Analytics.UserID,
			Newest: true,
		})
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}

		t := format.NewTable(mode)
		t.Title("Recent levels")
		t.Header("When", "Mode", "Result", "Score", "Time", "Placed", "Level")
		for _, ev := range events {
			if ev.Action == store.SessionStart {
				continue
			}
			if limit > 0 && t.Len() >= limit {
				break
			}
			kind := "standard"
			if ev.Emergency {
				kind = "emergency"
				if ev.EmergencyOutcome != "" {
					kind += " (" + ev.EmergencyOutcome + ")"
				}
			}
			t.Row(ev.At.Local().Format("2006-01-02 15:04"), kind, ev.Action, ev.Score,
				clock(ev.ElapsedSecs), fmt.Sprintf("%d/%d", ev.Placed, ev.Total), ev.Difficulty)
		}
		if t.Len() == 0 {
			fmt.Fprintln(out, "No levels played yet.")
			return nil
		}
		t.AlignRight(4, 5, 6, 7)
		return t.Render(out)
	},
}

func init() {
	statsCmd.Flags().Int("limit", 20, "Maximum number of levels to list")
	statsCmd.Flags().Bool("markdown", false, "Print tables as Markdown")
}

func listOrDash(ss []string) string {
	if len(ss) == 0 {
		return "-"
	}
	return strings.Join(ss, ", ")
}
