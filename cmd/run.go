package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/cascade/internal/app"
	"github.com/abhisek/cascade/internal/engine"
	"github.com/abhisek/cascade/internal/logging"
	"github.com/abhisek/cascade/internal/telemetry"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start the game",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// runApp opens the store, builds dependencies, and launches the TUI. When a
// metrics address is configured the Prometheus endpoint serves alongside it.
func runApp(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// The terminal belongs to the TUI, so logs go to a file or nowhere.
	log, closeLog, err := logging.OpenFile(cfg.Logging.File, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer closeLog()

	var (
		metrics   *telemetry.Metrics
		listeners []engine.Listener
	)
	if cfg.Metrics.Listen != "" {
		metrics = telemetry.New(true)
		listeners = append(listeners, metrics.Listener())
	}

	e, err := openEnv(cmd, cfg, log, listeners...)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	opts := app.Options{
		Session: e.session,
		Events:  e.store.EventRepo(),
		Coach:   newCoach(ctx, e.store.EventRepo(), log, cmd.ErrOrStderr()),
		Log:     log,
	}

	g, gctx := errgroup.WithContext(ctx)
	if metrics != nil {
		srv := telemetry.NewServer(metrics, cfg.Metrics.Listen, log)
		g.Go(func() error { return srv.ListenAndServe(gctx) })
	}
	g.Go(func() error {
		defer cancel()
		if err := app.Run(opts); err != nil {
			return fmt.Errorf("run app: %w", err)
		}
		return nil
	})
	return g.Wait()
}
