package rules

// PackagingLookup finds the packaging identifier for a compartment name.
type PackagingLookup interface {
	PackagingID(name string) (string, bool)
}

// Plan is the set of rows to write for a whole sheet, in sheet order.
type Plan struct {
	Compartments []CompartmentPlan
}

// CompartmentPlan holds the writable rows of one block. When Missing is set
// the block's name has no packaging identifier and nothing is written.
type CompartmentPlan struct {
	Name        string
	PackagingID string
	Missing     bool
	Items       []PlanItem // one per rule, in block order
}

// PlanItem is either a row to insert or a skipped rule.
type PlanItem struct {
	Index          int // position in Block.Rules
	Skipped        bool
	Label          string // display label for skipped rules
	Row            int
	Group          int
	ShippingUnitID string
	Quantity       int
	Operator       Operator
	AlternativeFor *int
	SortOrder      int
}

// BuildPlan resolves each block's packaging and turns its rules into plan
// items. Rules without a shipping unit are kept as skipped items so that
// indices stay aligned with the block; a missing quantity becomes 0.
func BuildPlan(blocks []Block, packagings PackagingLookup) Plan {
	var plan Plan
	for _, b := range blocks {
		cp := CompartmentPlan{Name: b.Name}
		id, ok := packagings.PackagingID(b.Name)
		if !ok {
			cp.Missing = true
			plan.Compartments = append(plan.Compartments, cp)
			continue
		}
		cp.PackagingID = id

		for i, r := range b.Rules {
			item := PlanItem{
				Index:          i,
				Row:            r.Row,
				Group:          r.Group,
				ShippingUnitID: r.ResolvedID,
				Operator:       r.Operator,
				AlternativeFor: r.AlternativeFor,
				SortOrder:      r.SortOrder,
			}
			if r.Quantity != nil {
				item.Quantity = *r.Quantity
			}
			if !r.Resolved() {
				item.Skipped = true
				item.Label = r.Label
				if item.Label == "" {
					item.Label = "UNKNOWN"
				}
			}
			cp.Items = append(cp.Items, item)
		}
		plan.Compartments = append(plan.Compartments, cp)
	}
	return plan
}

// Inserts returns the number of rows the plan writes.
func (p Plan) Inserts() int {
	n := 0
	for _, c := range p.Compartments {
		for _, it := range c.Items {
			if !it.Skipped {
				n++
			}
		}
	}
	return n
}

// Skipped returns the number of rules left out for lack of a shipping unit.
func (p Plan) Skipped() int {
	n := 0
	for _, c := range p.Compartments {
		for _, it := range c.Items {
			if it.Skipped {
				n++
			}
		}
	}
	return n
}

// MissingPackagings lists the compartments without a packaging identifier.
func (p Plan) MissingPackagings() []string {
	var out []string
	for _, c := range p.Compartments {
		if c.Missing {
			out = append(out, c.Name)
		}
	}
	return out
}
