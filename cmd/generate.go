package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/everyplants/compartment-rules/internal/emit"
)

var (
	generateXLSX string
	generateOut  string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the compartment rules as a SQL script",
	RunE: func(cmd *cobra.Command, _ []string) error {
		conv, err := convertWorkbook(generateXLSX)
		if err != nil {
			return err
		}
		conv.report()

		out := generateOut
		if out == "" {
			out = cfg.Output.Path
		}

		script := emit.SQL(conv.plan, emit.Meta{
			Source: conv.source,
			Sheet:  conv.grid.Name,
			Schema: cfg.Output.Schema,
			Table:  cfg.Output.Table,
		})

		if out == "-" {
			if _, err := cmd.OutOrStdout().Write([]byte(script)); err != nil {
				return eris.Wrap(err, "write sql to stdout")
			}
		} else if err := os.WriteFile(out, []byte(script), 0o644); err != nil {
			return eris.Wrapf(err, "write sql to %s", out)
		}

		stats := emit.Count(script)
		zap.L().Info("sql written",
			zap.String("path", out),
			zap.Int("inserts", stats.Inserts),
			zap.Int("skipped", stats.Warnings),
		)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateXLSX, "xlsx", "", "path to the packaging workbook (required)")
	generateCmd.Flags().StringVar(&generateOut, "out", "", "output SQL file, - for stdout (default output.path)")
	_ = generateCmd.MarkFlagRequired("xlsx")
	rootCmd.AddCommand(generateCmd)
}
