package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/everyplants/compartment-rules/internal/rules"
)

var inspectXLSX string

// inspection is the YAML document printed by inspect.
type inspection struct {
	Source         string            `yaml:"source"`
	Sheet          string            `yaml:"sheet"`
	Blocks         []rules.Block     `yaml:"blocks"`
	Unmatched      []rules.Unmatched `yaml:"unmatched,omitempty"`
	SkippedColumns []int             `yaml:"skipped_columns,omitempty"`
	Missing        []string          `yaml:"missing_packagings,omitempty"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the parsed compartment blocks as YAML",
	RunE: func(cmd *cobra.Command, _ []string) error {
		conv, err := convertWorkbook(inspectXLSX)
		if err != nil {
			return err
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close() //nolint:errcheck

		err = enc.Encode(inspection{
			Source:         conv.source,
			Sheet:          conv.grid.Name,
			Blocks:         conv.result.Blocks,
			Unmatched:      conv.result.Unmatched,
			SkippedColumns: conv.result.SkippedColumns,
			Missing:        conv.plan.MissingPackagings(),
		})
		return eris.Wrap(err, "inspect: encode yaml")
	},
}

func init() {
	inspectCmd.Flags().StringVar(&inspectXLSX, "xlsx", "", "path to the packaging workbook (required)")
	_ = inspectCmd.MarkFlagRequired("xlsx")
	rootCmd.AddCommand(inspectCmd)
}
