package rules

import (
	"strconv"
	"strings"

	"github.com/everyplants/compartment-rules/internal/resolve"
)

// Defaults for Options.
const (
	DefaultMaxRow            = 60
	DefaultEmptyRowThreshold = 5
)

// firstDataRow is the first row below the compartment header.
const firstDataRow = 2

// CellReader is the tabular source the parser reads from. Rows and columns
// are 1-based; missing cells read as "".
type CellReader interface {
	Cell(row, col int) string
}

// LabelResolver maps a free-text label to a catalog entry.
type LabelResolver interface {
	Resolve(label string) (resolve.Match, bool)
}

// Options bounds the scan of one block.
type Options struct {
	MaxRow            int // last row scanned, inclusive
	EmptyRowThreshold int // blank rows tolerated before the block ends
}

// DefaultOptions returns the bounds used for the compartment sheet.
func DefaultOptions() Options {
	return Options{MaxRow: DefaultMaxRow, EmptyRowThreshold: DefaultEmptyRowThreshold}
}

// State is the parser state carried from row to row.
type State struct {
	Group     int
	SortOrder int
	Anchor    *int // index of the latest non-alternative rule
	BlankRun  int
}

// NewState returns the state at the top of a block.
func NewState() State {
	return State{Group: 1}
}

// Blank records a row with neither operator nor label and reports whether
// the block has ended.
func (s *State) Blank(threshold int) bool {
	s.BlankRun++
	return s.BlankRun > threshold
}

// Step applies op for the rule that will be stored at index and returns the
// group, sort order and alternative reference for that rule.
func (s *State) Step(op Operator, index int) (group, sortOrder int, altFor *int) {
	s.BlankRun = 0

	switch op {
	case OpOr:
		s.Group++
		s.SortOrder = 0
		s.Anchor = intPtr(index)
	case OpAlternative:
		if s.Anchor != nil {
			altFor = intPtr(*s.Anchor)
		}
	default:
		s.Anchor = intPtr(index)
	}

	group, sortOrder = s.Group, s.SortOrder
	s.SortOrder++
	return group, sortOrder, altFor
}

// ParseBlock reads the compartment whose operator column is startCol and
// returns its rules plus a diagnostic for every label that did not resolve.
// Labels live in startCol+1 and quantities in startCol+2.
func ParseBlock(src CellReader, name string, startCol int, res LabelResolver, opts Options) (Block, []Unmatched) {
	block := Block{Name: name, StartCol: startCol}
	var unmatched []Unmatched
	st := NewState()

	for row := firstDataRow; row <= opts.MaxRow; row++ {
		token := strings.TrimSpace(src.Cell(row, startCol))
		label := strings.TrimSpace(src.Cell(row, startCol+1))
		qty := strings.TrimSpace(src.Cell(row, startCol+2))

		if token == "" && label == "" {
			if st.Blank(opts.EmptyRowThreshold) {
				break
			}
			continue
		}

		op := ParseOperator(token)
		if op == OpNone && token != "" {
			block.Unknown = append(block.Unknown, Token{Row: row, Value: token})
		}

		group, sortOrder, altFor := st.Step(op, len(block.Rules))
		rule := Rule{
			Group:          group,
			Label:          label,
			Quantity:       ParseQuantity(qty),
			Operator:       op,
			Token:          token,
			AlternativeFor: altFor,
			SortOrder:      sortOrder,
			Row:            row,
		}

		if label != "" {
			if m, ok := res.Resolve(label); ok {
				rule.ResolvedName = m.Name
				rule.ResolvedID = m.ID
			} else {
				unmatched = append(unmatched, Unmatched{Block: name, Row: row, Label: label})
			}
		}

		block.Rules = append(block.Rules, rule)
	}

	return block, unmatched
}

// ParseQuantity extracts the leading integer of tokens such as "3x", "3 X"
// or "12". It returns nil when the token does not start with a digit.
func ParseQuantity(token string) *int {
	s := strings.ToLower(strings.TrimSpace(token))
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return nil
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return nil
	}
	return &n
}

func intPtr(v int) *int {
	return &v
}
