package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/cascade/internal/catalog"
	"github.com/abhisek/cascade/internal/format"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and validate factor catalogs",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the factors of the active catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cat, err := loadCatalog(cfg)
		if err != nil {
			return err
		}

		t := format.NewTable(format.ASCII)
		t.Title(fmt.Sprintf("%s (%d factors)", cat.Name(), cat.Len()))
		t.Header("ID", "Name", "Pathway", "Target", "Concept")
		for _, f := range cat.Factors() {
			t.Row(f.ID, f.Name, f.Pathway.DisplayName(), f.Target.String(), f.Concept)
		}
		return t.Render(cmd.OutOrStdout())
	},
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a catalog file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.LoadFile(args[0])
		if err != nil {
			var verr *catalog.ValidationError
			if errors.As(err, &verr) {
				for _, p := range verr.Problems {
					fmt.Fprintln(cmd.ErrOrStderr(), "  -", p)
				}
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d factors, %d concepts, ok\n",
			args[0], cat.Len(), len(cat.Concepts()))
		return nil
	},
}

var catalogDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the active catalog as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cat, err := loadCatalog(cfg)
		if err != nil {
			return err
		}
		data, err := catalog.Marshal(cat)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
	catalogCmd.AddCommand(catalogDumpCmd)
}
