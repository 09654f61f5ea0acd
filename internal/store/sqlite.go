package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/everyplants/compartment-rules/internal/rules"
)

// SQLiteStore keeps a local copy of the rules table in a SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS compartment_rules (
	id                 TEXT PRIMARY KEY,
	packaging_id       TEXT NOT NULL,
	rule_group         INTEGER NOT NULL,
	shipping_unit_id   TEXT NOT NULL,
	quantity           INTEGER NOT NULL DEFAULT 0,
	operator           TEXT,
	alternative_for_id TEXT REFERENCES compartment_rules(id) ON DELETE SET NULL,
	sort_order         INTEGER NOT NULL DEFAULT 0,
	is_active          INTEGER NOT NULL DEFAULT 1,
	created_at         DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at         DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_compartment_rules_packaging ON compartment_rules(packaging_id, rule_group, sort_order);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// ReplaceRules rewrites the table in one transaction. Rows are inserted in
// plan order, so every alternative's anchor already exists when it is
// referenced.
func (s *SQLiteStore) ReplaceRules(ctx context.Context, plan rules.Plan) (int, error) {
	rows := BuildRows(plan, uuid.New)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM compartment_rules"); err != nil {
		return 0, eris.Wrap(err, "sqlite: clear rules")
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO compartment_rules
		(id, packaging_id, rule_group, shipping_unit_id, quantity, operator, alternative_for_id, sort_order, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1)`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close()

	for _, r := range rows {
		var op, alt any
		if r.Operator != nil {
			op = *r.Operator
		}
		if r.AlternativeForID != nil {
			alt = r.AlternativeForID.String()
		}
		if _, err := stmt.ExecContext(ctx,
			r.ID.String(), r.PackagingID, r.Group, r.ShippingUnitID, r.Quantity,
			op, alt, r.SortOrder,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert rule %s", r.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit")
	}
	return len(rows), nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
