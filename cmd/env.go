package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abhisek/cascade/internal/analytics"
	"github.com/abhisek/cascade/internal/catalog"
	"github.com/abhisek/cascade/internal/coach"
	"github.com/abhisek/cascade/internal/config"
	"github.com/abhisek/cascade/internal/engine"
	"github.com/abhisek/cascade/internal/llm"
	"github.com/abhisek/cascade/internal/logging"
	"github.com/abhisek/cascade/internal/session"
	"github.com/abhisek/cascade/internal/store"
)

// loadConfig reads the config named by --config and applies --log-level.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	return cfg, nil
}

// openStore opens the configured backend. With sqlite, --db wins over the
// configured DSN, which wins over the default path.
func openStore(cmd *cobra.Command, cfg *config.Config) (*store.Store, error) {
	dsn := cfg.Store.DSN
	if cfg.Store.Driver == "sqlite" {
		if p, _ := cmd.Flags().GetString("db"); p != "" || dsn == "" {
			var err error
			if dsn, err = resolveDBPath(cmd); err != nil {
				return nil, fmt.Errorf("resolve DB path: %w", err)
			}
		}
	}
	st, err := store.OpenDriver(cfg.Store.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.Catalog == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.LoadFile(cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}

// env bundles what most commands need: config, store and a session
// service with the learner's profile loaded.
type env struct {
	cfg     *config.Config
	store   *store.Store
	session *session.Service
	log     *slog.Logger
}

// openEnv builds an env from cfg. Extra listeners are subscribed to every
// level.
func openEnv(cmd *cobra.Command, cfg *config.Config, log *slog.Logger, listeners ...engine.Listener) (*env, error) {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}
	st, err := openStore(cmd, cfg)
	if err != nil {
		return nil, err
	}

	svc := session.NewService(session.Deps{
		Catalog:   cat,
		Rules:     cfg.Game,
		Events:    st.EventRepo(),
		Snapshots: st.SnapshotRepo(),
		Profiles:  analytics.NewProfileCache(cfg.Analytics.InitialDifficulty),
		UserID:    cfg.Analytics.UserID,
		Listeners: listeners,
		Log:       log,
	})
	if _, err := svc.LoadProfile(cmd.Context()); err != nil {
		st.Close()
		return nil, err
	}
	return &env{cfg: cfg, store: st, session: svc, log: logging.OrDiscard(log)}, nil
}

func (e *env) Close() error {
	return e.store.Close()
}

// newCoach builds the debrief coach from the LLM environment. It returns nil
// when no provider is configured; the game runs without debriefs.
func newCoach(ctx context.Context, repo store.EventRepo, log *slog.Logger, warn io.Writer) *coach.Service {
	llmCfg, ok := llm.Resolve()
	if !ok {
		return nil
	}
	if err := llmCfg.Validate(); err != nil {
		fmt.Fprintln(warn, "LLM provider not configured:", err)
		fmt.Fprintln(warn, "Coach debriefs will be unavailable.")
		return nil
	}
	provider, err := llm.NewProvider(ctx, llmCfg, repo, log)
	if err != nil {
		fmt.Fprintln(warn, "LLM provider not configured:", err)
		fmt.Fprintln(warn, "Coach debriefs will be unavailable.")
		return nil
	}
	coachCfg := coach.DefaultConfig()
	coachCfg.Timeout = llmCfg.Timeout
	return coach.NewService(provider, coachCfg, log)
}

// stderrLogger is the logger of non-interactive commands.
func stderrLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
}
