package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/cascade/internal/engine"
	"github.com/abhisek/cascade/internal/format"
	"github.com/abhisek/cascade/internal/session"
	"github.com/abhisek/cascade/internal/sim"
	"github.com/abhisek/cascade/internal/telemetry"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Play levels with a simulated learner",
	Long: `Simulate runs a scripted learner through one or more levels against the real
engine, store and analytics. Use it to seed data, exercise the metrics
endpoint or check how difficulty adapts.`,
	RunE: runSimulate,
}

func init() {
	def := sim.DefaultConfig()
	f := simulateCmd.Flags()
	f.Int("levels", def.Levels, "Number of levels to play")
	f.Float64("accuracy", def.Accuracy, "Chance that the first attempt at a factor is correct")
	f.Float64("hint-rate", def.HintRate, "Chance of asking for a hint before an attempt")
	f.Bool("emergency", false, "Play in emergency mode")
	f.Uint64("seed", def.Seed, "Random seed")
	f.Duration("think", def.Think, "Pause between moves")
	f.Duration("period", def.Period, "Session clock period")
	f.String("metrics-listen", "", "Serve Prometheus metrics on this address while simulating")
	f.Bool("markdown", false, "Print results as a Markdown table")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := stderrLogger(cmd, cfg)

	f := cmd.Flags()
	botCfg := sim.DefaultConfig()
	botCfg.Levels, _ = f.GetInt("levels")
	botCfg.Accuracy, _ = f.GetFloat64("accuracy")
	botCfg.HintRate, _ = f.GetFloat64("hint-rate")
	botCfg.Emergency, _ = f.GetBool("emergency")
	botCfg.Seed, _ = f.GetUint64("seed")
	botCfg.Think, _ = f.GetDuration("think")
	botCfg.Period, _ = f.GetDuration("period")
	if botCfg.Levels < 1 {
		return fmt.Errorf("--levels must be at least 1")
	}

	listen, _ := f.GetString("metrics-listen")
	if listen == "" {
		listen = cfg.Metrics.Listen
	}
	var (
		metrics   *telemetry.Metrics
		listeners []engine.Listener
	)
	if listen != "" {
		metrics = telemetry.New(false)
		listeners = append(listeners, metrics.Listener())
	}

	e, err := openEnv(cmd, cfg, log, listeners...)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if metrics != nil {
		srv := telemetry.NewServer(metrics, listen, log)
		g.Go(func() error { return srv.ListenAndServe(gctx) })
	}

	var sums []*session.Summary
	start := time.Now()
	g.Go(func() error {
		defer cancel()
		var err error
		sums, err = sim.New(e.session, botCfg, log).Run(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("simulate: %w", err)
	}

	md, _ := f.GetBool("markdown")
	out := cmd.OutOrStdout()
	if err := simulationTable(sums, md).Render(out); err != nil {
		return err
	}
	fmt.Fprintf(out, "%d levels in %s\n", len(sums), time.Since(start).Round(time.Millisecond))
	return nil
}

func simulationTable(sums []*session.Summary, markdown bool) *format.Table {
	mode := format.ASCII
	if markdown {
		mode = format.Markdown
	}
	t := format.NewTable(mode)
	t.Header("Level", "Result", "Score", "Time", "Placed", "Accuracy", "Hints", "Difficulty")
	var total int
	for i, s := range sums {
		result := "abandoned"
		if s.Completed() {
			result = "complete"
		}
		if s.EmergencyOutcome != "" {
			result += " (" + s.EmergencyOutcome + ")"
		}
		t.Row(i+1, result, s.Score, clock(s.Elapsed),
			fmt.Sprintf("%d/%d", s.Placed, s.Total),
			percent(s.Metrics.OverallAccuracy), percent(s.Metrics.HintUsageRate),
			fmt.Sprintf("%d → %d", s.DifficultyBefore, s.DifficultyAfter))
		total += s.Score
	}
	t.Footer("TOTAL", "", total)
	t.AlignRight(3, 4, 5, 6, 7)
	return t
}

func clock(secs int) string {
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}
