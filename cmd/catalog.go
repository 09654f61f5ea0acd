package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/everyplants/compartment-rules/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Packaging and shipping unit catalog commands",
}

var catalogCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the catalog and resolve every shipping unit against it",
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := zap.L().With(zap.String("component", "catalog"))

		cat, err := catalog.Load(cfg.Catalog.Path)
		if err != nil {
			return eris.Wrap(err, "load catalog")
		}

		for _, key := range cat.Resolver().Collisions() {
			log.Warn("shipping unit shadowed by an equivalent name", zap.String("name", key))
		}

		bad := cat.SelfCheck()
		for _, name := range bad {
			log.Error("shipping unit does not resolve to itself", zap.String("name", name))
		}

		source := cfg.Catalog.Path
		if source == "" {
			source = "built-in"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "catalog %s: %d packagings, %d shipping units, %d collisions, %d failures\n",
			source, len(cat.Packagings), len(cat.ShippingUnits), len(cat.Resolver().Collisions()), len(bad))

		if len(bad) > 0 {
			return eris.Errorf("catalog check: %d shipping units fail to resolve", len(bad))
		}
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogCheckCmd)
	rootCmd.AddCommand(catalogCmd)
}
