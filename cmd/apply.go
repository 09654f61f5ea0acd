package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/everyplants/compartment-rules/internal/resilience"
	"github.com/everyplants/compartment-rules/internal/store"
)

var applyXLSX string

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Replace the compartment rules in the configured database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		conv, err := convertWorkbook(applyXLSX)
		if err != nil {
			return err
		}
		conv.report()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "apply: migrate")
		}

		n, err := st.ReplaceRules(ctx, conv.plan)
		if err != nil {
			return eris.Wrap(err, "apply: replace rules")
		}

		zap.L().Info("rules applied",
			zap.String("driver", cfg.Store.Driver),
			zap.Int("inserted", n),
			zap.Int("skipped", conv.plan.Skipped()),
		)
		return nil
	},
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "compartment_rules.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		if cfg.Store.DatabaseURL == "" {
			return nil, eris.New("store database URL is required (COMPRULES_STORE_DATABASE_URL)")
		}
		retry := resilience.DefaultRetryConfig()
		if cfg.Store.MaxAttempts > 0 {
			retry.MaxAttempts = cfg.Store.MaxAttempts
		}
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, cfg.Output.QualifiedTable(), retry)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func init() {
	applyCmd.Flags().StringVar(&applyXLSX, "xlsx", "", "path to the packaging workbook (required)")
	_ = applyCmd.MarkFlagRequired("xlsx")
	rootCmd.AddCommand(applyCmd)
}
