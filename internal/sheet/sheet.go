// Package sheet loads a workbook sheet into an in-memory grid addressed by
// 1-based (row, column) coordinates.
package sheet

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Options selects the sheet to load.
type Options struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
}

// Grid is a fully loaded sheet. Cells outside the populated area read as "".
type Grid struct {
	Name  string
	cells [][]string
	cols  int
}

// NewGrid wraps rows (row 1 first) in a Grid.
func NewGrid(name string, rows [][]string) *Grid {
	g := &Grid{Name: name, cells: rows}
	for _, r := range rows {
		if len(r) > g.cols {
			g.cols = len(r)
		}
	}
	return g
}

// Open reads an XLSX file and returns the selected sheet.
func Open(path string, opts Options) (*Grid, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "sheet: open xlsx")
	}

	s, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(s.Rows))
	for _, row := range s.Rows {
		rows = append(rows, rowToStrings(row))
	}
	return NewGrid(s.Name, rows), nil
}

// Cell returns the text at (row, col), both 1-based.
func (g *Grid) Cell(row, col int) string {
	if row < 1 || row > len(g.cells) {
		return ""
	}
	r := g.cells[row-1]
	if col < 1 || col > len(r) {
		return ""
	}
	return r[col-1]
}

// Rows returns the number of loaded rows.
func (g *Grid) Rows() int {
	return len(g.cells)
}

// Cols returns the width of the widest row.
func (g *Grid) Cols() int {
	return g.cols
}

func getSheet(f *xlsx.File, opts Options) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		s, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("sheet: %q not found", opts.SheetName)
		}
		return s, nil
	}

	if opts.SheetIndex < 0 || opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("sheet: index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	if row == nil {
		return nil
	}
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		if cell == nil {
			continue
		}
		cells[j] = cell.String()
	}
	return cells
}
