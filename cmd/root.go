package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/everyplants/compartment-rules/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "compartment-rules",
	Short: "Convert the compartment sheet into compartment rules",
	Long:  "Reads the Compartimenten sheet of the packaging workbook, resolves shipping unit labels against the catalog and writes the compartment rules as SQL or straight into a database.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
