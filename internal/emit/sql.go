// Package emit renders a rule plan as a Postgres script that replaces the
// contents of the compartment rules table.
package emit

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/everyplants/compartment-rules/internal/rules"
)

// Meta describes where the rules came from and where they go.
type Meta struct {
	Source string // workbook file name, for the header comment
	Sheet  string
	Schema string
	Table  string
}

// QualifiedTable returns the quoted, schema-qualified table name.
func (m Meta) QualifiedTable() string {
	if m.Schema == "" {
		return pgx.Identifier{m.Table}.Sanitize()
	}
	return pgx.Identifier{m.Schema, m.Table}.Sanitize()
}

const rule = "-- =========================================================================="

// SQL renders plan as a single script. Rule ids are captured in PL/pgSQL
// variables so alternative rules can reference the rule they replace; a
// variable whose rule was skipped stays NULL.
func SQL(plan rules.Plan, meta Meta) string {
	table := meta.QualifiedTable()

	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line(rule)
	line("-- Compartment Rules INSERT statements")
	line("-- Generated from: %s", comment(meta.Source))
	line("-- Sheet: %s", comment(meta.Sheet))
	line(rule)
	line("")
	line("-- First, clear existing compartment rules")
	line("DELETE FROM %s;", table)
	line("")
	line("-- Use a DO block to handle alternative_for_id references between rules")
	line("DO $$")
	line("DECLARE")
	for ci, c := range plan.Compartments {
		for _, it := range c.Items {
			line("  %s uuid;", varName(ci, it.Index))
		}
	}
	line("BEGIN")
	line("")

	for ci, c := range plan.Compartments {
		if c.Missing {
			line("  -- WARNING: No packaging UUID found for '%s'", comment(c.Name))
			continue
		}

		line("  -- ====== %s ======", comment(c.Name))
		for _, it := range c.Items {
			if it.Skipped {
				line("  -- WARNING: Skipping unmatched shipping unit '%s' (row %d)", comment(it.Label), it.Row)
				continue
			}

			op := "NULL"
			if tok := it.Operator.Token(); tok != "" {
				op = literal(tok)
			}
			alt := "NULL"
			if it.AlternativeFor != nil {
				alt = varName(ci, *it.AlternativeFor)
			}

			line("  INSERT INTO %s "+
				"(id, packaging_id, rule_group, shipping_unit_id, quantity, operator, alternative_for_id, sort_order, is_active) "+
				"VALUES (gen_random_uuid(), %s, %d, %s, %d, %s, %s, %d, true) "+
				"RETURNING id INTO %s;",
				table, literal(c.PackagingID), it.Group, literal(it.ShippingUnitID),
				it.Quantity, op, alt, it.SortOrder, varName(ci, it.Index))
		}
		line("")
	}

	line("END $$;")
	return b.String()
}

// Stats counts the statements and skip warnings in a rendered script.
type Stats struct {
	Inserts  int
	Warnings int
}

// Count scans a script produced by SQL.
func Count(script string) Stats {
	return Stats{
		Inserts:  strings.Count(script, "INSERT INTO"),
		Warnings: strings.Count(script, "WARNING: Skipping"),
	}
}

func varName(compartment, index int) string {
	return fmt.Sprintf("v_c%d_r%d", compartment, index)
}

func literal(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// comment keeps user text on a single comment line.
func comment(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
