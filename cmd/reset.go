package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset learner data",
	Long:  "Reset deletes every recorded action, level, LLM event and profile snapshot.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("reset deletes all learner data; rerun with --yes to confirm")
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cmd, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Reset(cmd.Context()); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Learner data cleared.")
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm deletion")
}
