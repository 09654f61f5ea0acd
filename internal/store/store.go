// Package store writes a rule plan into a database, replacing the previous
// contents of the compartment rules table.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/everyplants/compartment-rules/internal/rules"
)

// Store is a rule sink.
type Store interface {
	// Migrate creates the rules table when it does not exist yet.
	Migrate(ctx context.Context) error
	// ReplaceRules deletes every existing rule and inserts the plan in one
	// transaction. It returns the number of rows written.
	ReplaceRules(ctx context.Context, plan rules.Plan) (int, error)
	Close() error
}

// Columns in insert order.
var Columns = []string{
	"id", "packaging_id", "rule_group", "shipping_unit_id", "quantity",
	"operator", "alternative_for_id", "sort_order", "is_active",
}

// RuleRow is one row of the rules table.
type RuleRow struct {
	ID               uuid.UUID
	PackagingID      string
	Group            int
	ShippingUnitID   string
	Quantity         int
	Operator         *string
	AlternativeForID *uuid.UUID
	SortOrder        int
}

// BuildRows assigns an id to every written plan item and links alternatives
// to the id of their anchor. An alternative whose anchor was skipped gets a
// NULL reference.
func BuildRows(plan rules.Plan, newID func() uuid.UUID) []RuleRow {
	var rows []RuleRow
	for _, c := range plan.Compartments {
		if c.Missing {
			continue
		}

		ids := make(map[int]uuid.UUID, len(c.Items))
		for _, it := range c.Items {
			if !it.Skipped {
				ids[it.Index] = newID()
			}
		}

		for _, it := range c.Items {
			if it.Skipped {
				continue
			}
			row := RuleRow{
				ID:             ids[it.Index],
				PackagingID:    c.PackagingID,
				Group:          it.Group,
				ShippingUnitID: it.ShippingUnitID,
				Quantity:       it.Quantity,
				SortOrder:      it.SortOrder,
			}
			if tok := it.Operator.Token(); tok != "" {
				row.Operator = &tok
			}
			if it.AlternativeFor != nil {
				if id, ok := ids[*it.AlternativeFor]; ok {
					row.AlternativeForID = &id
				}
			}
			rows = append(rows, row)
		}
	}
	return rows
}
