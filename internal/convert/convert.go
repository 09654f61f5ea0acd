// Package convert walks every compartment block of the sheet and collects
// the parsed rules and diagnostics for reporting and emission.
package convert

import (
	"strings"

	"go.uber.org/zap"

	"github.com/everyplants/compartment-rules/internal/rules"
)

// DefaultHeaderPrefix marks compartment headers when detection is enabled.
const DefaultHeaderPrefix = "C - "

// headerRow holds the compartment names.
const headerRow = 1

// DefaultStarts returns the operator column of each of the 14 compartments.
func DefaultStarts() []int {
	starts := make([]int, 0, 14)
	for col := 2; col <= 54; col += 4 {
		starts = append(starts, col)
	}
	return starts
}

// Options controls which columns are read as compartments.
type Options struct {
	Starts        []int
	DetectHeaders bool   // scan the header row instead of using Starts
	HeaderPrefix  string // used with DetectHeaders
	MaxCol        int    // last column scanned by DetectHeaders
	Parse         rules.Options
}

// DefaultOptions returns the fixed layout of the compartment sheet.
func DefaultOptions() Options {
	return Options{
		Starts:       DefaultStarts(),
		HeaderPrefix: DefaultHeaderPrefix,
		Parse:        rules.DefaultOptions(),
	}
}

// Result is everything learned from one sheet.
type Result struct {
	Blocks         []rules.Block
	Unmatched      []rules.Unmatched
	SkippedColumns []int // starts without a header name
}

// BlockSummary is the per-compartment line of the console report.
type BlockSummary struct {
	Name   string
	Rules  int
	Groups int
}

// Summary returns one entry per parsed block.
func (r Result) Summary() []BlockSummary {
	out := make([]BlockSummary, 0, len(r.Blocks))
	for _, b := range r.Blocks {
		out = append(out, BlockSummary{Name: b.Name, Rules: len(b.Rules), Groups: b.Groups()})
	}
	return out
}

// TotalRules returns the number of rules across all blocks.
func (r Result) TotalRules() int {
	n := 0
	for _, b := range r.Blocks {
		n += len(b.Rules)
	}
	return n
}

// Run parses each compartment in column order. Blocks are independent: the
// parser state never carries over from one block to the next.
func Run(src rules.CellReader, res rules.LabelResolver, opts Options) Result {
	log := zap.L().With(zap.String("component", "convert"))

	starts := opts.Starts
	if opts.DetectHeaders {
		starts = DetectStarts(src, opts.HeaderPrefix, opts.MaxCol)
		log.Debug("detected compartment headers", zap.Ints("columns", starts))
	}

	var result Result
	for _, col := range starts {
		name := HeaderName(src, col)
		if name == "" {
			log.Warn("no compartment name found, skipping", zap.Int("column", col))
			result.SkippedColumns = append(result.SkippedColumns, col)
			continue
		}

		block, unmatched := rules.ParseBlock(src, name, col, res, opts.Parse)
		for _, tok := range block.Unknown {
			log.Warn("unrecognised operator parsed as rule start",
				zap.String("compartment", name),
				zap.Int("row", tok.Row),
				zap.String("token", tok.Value),
			)
		}

		result.Blocks = append(result.Blocks, block)
		result.Unmatched = append(result.Unmatched, unmatched...)

		log.Debug("parsed compartment",
			zap.String("compartment", name),
			zap.Int("rules", len(block.Rules)),
			zap.Int("groups", block.Groups()),
		)
	}

	return result
}

// HeaderName returns the compartment name for a block: the header cell above
// the operator column, or the one to its right when that is blank.
func HeaderName(src rules.CellReader, col int) string {
	if name := strings.TrimSpace(src.Cell(headerRow, col)); name != "" {
		return name
	}
	return strings.TrimSpace(src.Cell(headerRow, col+1))
}

// DetectStarts returns every column up to maxCol whose header starts with
// prefix.
func DetectStarts(src rules.CellReader, prefix string, maxCol int) []int {
	if prefix == "" {
		prefix = DefaultHeaderPrefix
	}
	var starts []int
	for col := 1; col <= maxCol; col++ {
		if strings.HasPrefix(strings.TrimSpace(src.Cell(headerRow, col)), prefix) {
			starts = append(starts, col)
		}
	}
	return starts
}
