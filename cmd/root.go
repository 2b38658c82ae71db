package cmd

import (
	"context"

	"github.com/abhisek/cascade/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cascade",
	Short: "Learn the coagulation cascade by building it",
	Long: `Cascade is a terminal game for learning the coagulation cascade. Place each
clotting factor on its slot in the pathway map, keep the patient alive in
emergency mode and review the concepts you struggle with.

Coach debriefs need an LLM API key. Set one of GEMINI_API_KEY, OPENAI_API_KEY,
ANTHROPIC_API_KEY or OPENROUTER_API_KEY, or pick a provider explicitly with
CASCADE_LLM_PROVIDER and CASCADE_<PROVIDER>_API_KEY.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// Execute runs the root command; ctx is cancelled on interrupt.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to config file (default $XDG_CONFIG_HOME/cascade/config.yaml)")
	pf.String("db", "", "Path to SQLite database file (overrides CASCADE_DB env var)")
	pf.String("log-level", "", "Log level: error, warn, info, debug, trace")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then CASCADE_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
