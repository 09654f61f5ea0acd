package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/everyplants/compartment-rules/internal/config"
	"github.com/everyplants/compartment-rules/internal/convert"
	"github.com/everyplants/compartment-rules/internal/rules"
)

// compartmentRows is a two-compartment sheet. The second header has no
// packaging in the catalog and one label in the first block is unknown.
var compartmentRows = [][]string{
	{"", "C - Eurodoos 40", "", "", "", "C - Unknown Box"},
	{"", "", "POT | P22 - P24", "1x", "", "", "POT | P31 - P34", "1x"},
	{"", "OF", "POT | P25 - P30", "2x"},
	{"", "ALTERNATIEF", "POT | P19 - P21", "1x"},
	{"", "EN", "POT | Onbekend", "1x"},
}

func writeWorkbook(t *testing.T, sheetName string, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	require.NoError(t, err)
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			cell := row.AddCell()
			cell.SetString(cellData)
		}
	}
	path := filepath.Join(t.TempDir(), "Verpakkingsmodule basis.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

// testConfig installs a config equivalent to the defaults with the
// compartments of compartmentRows.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{
		Sheet: config.SheetConfig{
			Name:              "Compartimenten",
			MaxRowScan:        rules.DefaultMaxRow,
			EmptyRowThreshold: rules.DefaultEmptyRowThreshold,
			CompartmentStarts: []int{2, 6},
			HeaderPrefix:      convert.DefaultHeaderPrefix,
		},
		Output: config.OutputConfig{
			Path:   filepath.Join(t.TempDir(), "out.sql"),
			Schema: "batchmaker",
			Table:  "compartment_rules",
		},
		Store: config.StoreConfig{Driver: "sqlite"},
		Log:   config.LogConfig{Level: "info", Format: "console"},
	}
	cfg = c
	return c
}

func withContext(t *testing.T, setter interface{ SetContext(context.Context) }) {
	t.Helper()
	setter.SetContext(context.Background())
	t.Cleanup(func() { setter.SetContext(context.TODO()) })
}
