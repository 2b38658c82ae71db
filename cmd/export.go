package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/cascade/internal/export"
	"github.com/abhisek/cascade/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export [target]",
	Short: "Export recorded actions as JSON lines",
	Long: `Export writes recorded learner actions as JSON lines to a file, to stdout
("-") or to S3 ("s3://bucket/key", or "s3://bucket/" for a timestamped key).
With no target the configured export bucket is used. S3 credentials come from
the default AWS chain.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log := stderrLogger(cmd, cfg)

		raw := "-"
		switch {
		case len(args) == 1:
			raw = args[0]
		case cfg.Export.Bucket != "":
			raw = "s3://" + cfg.Export.Bucket + "/"
		}
		target, err := export.ParseTarget(raw)
		if err != nil {
			return err
		}

		st, err := openStore(cmd, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		opts := []export.Option{export.WithStdout(cmd.OutOrStdout()), export.WithLogger(log)}
		if target.IsS3() {
			client, err := export.NewS3Client(cmd.Context(), export.S3Config{
				Bucket:    target.Bucket,
				Prefix:    cfg.Export.Prefix,
				Region:    cfg.Export.Region,
				Endpoint:  cfg.Export.Endpoint,
				PathStyle: cfg.Export.PathStyle,
			})
			if err != nil {
				return err
			}
			opts = append(opts, export.WithS3(client, cfg.Export.Prefix))
		}

		q := store.QueryOpts{}
		q.SessionID, _ = cmd.Flags().GetString("session")
		if all, _ := cmd.Flags().GetBool("all-users"); !all {
			q.UserID = cfg.Analytics.UserID
		}
		q.Limit, _ = cmd.Flags().GetInt("limit")

		res, err := export.New(st.EventRepo(), opts...).Export(cmd.Context(), q, target)
		if err != nil {
			return err
		}
		if res.Target.IsS3() || res.Target.Key != "-" {
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d actions (%d bytes) to %s\n", res.Lines, res.Bytes, res.Target)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().String("session", "", "Only export actions of this session")
	exportCmd.Flags().Bool("all-users", false, "Export actions of every learner")
	exportCmd.Flags().Int("limit", 0, "Maximum number of actions (0 = all)")
}
