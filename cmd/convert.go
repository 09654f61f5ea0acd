package main

import (
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/everyplants/compartment-rules/internal/catalog"
	"github.com/everyplants/compartment-rules/internal/convert"
	"github.com/everyplants/compartment-rules/internal/rules"
	"github.com/everyplants/compartment-rules/internal/sheet"
)

// conversion is one parsed workbook together with the plan derived from it.
type conversion struct {
	source  string
	grid    *sheet.Grid
	catalog *catalog.Catalog
	result  convert.Result
	plan    rules.Plan
}

// convertWorkbook loads the catalog and the configured sheet of path and
// parses every compartment block.
func convertWorkbook(path string) (*conversion, error) {
	if path == "" {
		return nil, eris.New("xlsx path is required (--xlsx)")
	}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, eris.Wrap(err, "load catalog")
	}

	grid, err := sheet.Open(path, sheet.Options{SheetName: cfg.Sheet.Name})
	if err != nil {
		return nil, eris.Wrapf(err, "read workbook %s", path)
	}

	opts := cfg.Sheet.ConvertOptions()
	opts.MaxCol = grid.Cols()

	res := convert.Run(grid, cat.Resolver(), opts)
	return &conversion{
		source:  filepath.Base(path),
		grid:    grid,
		catalog: cat,
		result:  res,
		plan:    rules.BuildPlan(res.Blocks, cat),
	}, nil
}

// report logs the per-compartment summary and every unresolved label.
func (c *conversion) report() {
	log := zap.L().With(zap.String("component", "report"))

	for _, s := range c.result.Summary() {
		log.Info("compartment parsed",
			zap.String("compartment", s.Name),
			zap.Int("rules", s.Rules),
			zap.Int("groups", s.Groups),
		)
	}

	for _, u := range c.result.Unmatched {
		log.Warn("unmatched shipping unit",
			zap.String("compartment", u.Block),
			zap.Int("row", u.Row),
			zap.String("label", u.Label),
		)
	}

	for _, name := range c.plan.MissingPackagings() {
		log.Warn("no packaging found for compartment", zap.String("compartment", name))
	}

	log.Info("conversion complete",
		zap.String("source", c.source),
		zap.String("sheet", c.grid.Name),
		zap.Int("compartments", len(c.result.Blocks)),
		zap.Int("rules", c.result.TotalRules()),
		zap.Int("unmatched", len(c.result.Unmatched)),
	)
}
