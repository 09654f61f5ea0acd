// Package rules reconstructs compartment rules (groups, AND conjunctions and
// ALTERNATIVE back-references) from the row-by-row operator tokens of one
// column block in the compartment sheet.
package rules

// Operator is the logical connective carried by a rule row.
type Operator int

const (
	// OpNone marks a starter row (blank or unrecognised operator cell).
	OpNone Operator = iota
	OpAnd
	OpOr
	OpAlternative
)

// Sheet tokens. Matching is exact and case-sensitive.
const (
	TokenAnd         = "EN"
	TokenOr          = "OF"
	TokenAlternative = "ALTERNATIEF"
)

// ParseOperator maps an operator cell to an Operator. Anything that is not
// one of the three keywords, including the empty string, is OpNone.
func ParseOperator(token string) Operator {
	switch token {
	case TokenAnd:
		return OpAnd
	case TokenOr:
		return OpOr
	case TokenAlternative:
		return OpAlternative
	default:
		return OpNone
	}
}

// Token returns the sheet token written to the database, or "" for OpNone.
func (o Operator) Token() string {
	switch o {
	case OpAnd:
		return TokenAnd
	case OpOr:
		return TokenOr
	case OpAlternative:
		return TokenAlternative
	default:
		return ""
	}
}

func (o Operator) String() string {
	switch o {
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	case OpAlternative:
		return "ALTERNATIVE"
	default:
		return "NONE"
	}
}

// MarshalYAML renders the operator by name.
func (o Operator) MarshalYAML() (any, error) {
	return o.String(), nil
}

// Rule is the logical meaning of one sheet row.
type Rule struct {
	Group          int      `yaml:"group"`
	Label          string   `yaml:"label,omitempty"`
	ResolvedName   string   `yaml:"resolved_name,omitempty"`
	ResolvedID     string   `yaml:"resolved_id,omitempty"`
	Quantity       *int     `yaml:"quantity,omitempty"`
	Operator       Operator `yaml:"operator"`
	Token          string   `yaml:"token,omitempty"`
	AlternativeFor *int     `yaml:"alternative_for,omitempty"` // index into Block.Rules
	SortOrder      int      `yaml:"sort_order"`
	Row            int      `yaml:"row"`
}

// Resolved reports whether the label matched a catalog entry.
func (r Rule) Resolved() bool {
	return r.ResolvedID != ""
}

// Block is the parsed rule list of one compartment.
type Block struct {
	Name     string  `yaml:"name"`
	StartCol int     `yaml:"start_col"`
	Rules    []Rule  `yaml:"rules"`
	Unknown  []Token `yaml:"unknown_tokens,omitempty"`
}

// Groups returns the number of distinct rule groups in the block.
func (b Block) Groups() int {
	seen := make(map[int]struct{}, len(b.Rules))
	for _, r := range b.Rules {
		seen[r.Group] = struct{}{}
	}
	return len(seen)
}

// Token records a non-blank operator cell that is not a keyword. Such rows
// are parsed as starters.
type Token struct {
	Row   int    `yaml:"row"`
	Value string `yaml:"value"`
}

// Unmatched is a row whose non-empty label did not resolve.
type Unmatched struct {
	Block string `yaml:"block"`
	Row   int    `yaml:"row"`
	Label string `yaml:"label"`
}
