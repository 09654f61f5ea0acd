package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/everyplants/compartment-rules/internal/db"
	"github.com/everyplants/compartment-rules/internal/resilience"
	"github.com/everyplants/compartment-rules/internal/rules"
)

// PostgresStore writes rules through a pgx pool.
type PostgresStore struct {
	pool  db.Pool
	table string // possibly schema-qualified
	retry resilience.RetryConfig
}

// NewPostgres connects to connString and targets table. The initial ping and
// every ReplaceRules transaction are retried on transient errors.
func NewPostgres(ctx context.Context, connString, table string, retry resilience.RetryConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	ping := retry
	if ping.OnRetry == nil {
		ping.OnRetry = resilience.RetryLogger("postgres.ping")
	}
	if err := resilience.Do(ctx, ping, pool.Ping); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, table: table, retry: retry}, nil
}

// Migrate creates the schema and the rules table if missing. Foreign keys to
// the packaging and shipping unit tables are left to the real schema.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	ident := db.Identifier(s.table)
	if len(ident) == 2 {
		if _, err := s.pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{ident[0]}.Sanitize()); err != nil {
			return eris.Wrap(err, "postgres: create schema")
		}
	}
	_, err := s.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+ident.Sanitize()+` (
	id                 UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	packaging_id       UUID NOT NULL,
	rule_group         INTEGER NOT NULL,
	shipping_unit_id   UUID NOT NULL,
	quantity           INTEGER NOT NULL DEFAULT 0,
	operator           TEXT,
	alternative_for_id UUID REFERENCES `+ident.Sanitize()+`(id) ON DELETE SET NULL,
	sort_order         INTEGER NOT NULL DEFAULT 0,
	is_active          BOOLEAN NOT NULL DEFAULT true,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
)`)
	return eris.Wrap(err, "postgres: migrate")
}

// ReplaceRules deletes the table contents and COPYs the plan in. COPY runs
// as a single statement, so alternative_for_id may point at rows from the
// same batch. A transaction that fails transiently is rolled back and rerun
// with the same row ids.
func (s *PostgresStore) ReplaceRules(ctx context.Context, plan rules.Plan) (int, error) {
	rows := BuildRows(plan, uuid.New)
	values := make([][]any, len(rows))
	for i, r := range rows {
		values[i] = []any{
			r.ID, r.PackagingID, r.Group, r.ShippingUnitID, r.Quantity,
			r.Operator, r.AlternativeForID, r.SortOrder, true,
		}
	}

	retry := s.retry
	if retry.OnRetry == nil {
		retry.OnRetry = resilience.RetryLogger("postgres.replace_rules")
	}

	var written int64
	err := resilience.Do(ctx, retry, func(ctx context.Context) error {
		return db.InTx(ctx, s.pool, func(tx pgx.Tx) error {
			tag, err := tx.Exec(ctx, "DELETE FROM "+db.SanitizeTable(s.table))
			if err != nil {
				return eris.Wrap(err, "postgres: clear rules")
			}
			zap.L().Debug("cleared compartment rules",
				zap.String("table", s.table),
				zap.Int64("deleted", tag.RowsAffected()),
			)

			written, err = db.CopyFrom(ctx, tx, s.table, Columns, values)
			return err
		})
	})
	if err != nil {
		return 0, eris.Wrap(err, "postgres: replace rules")
	}
	return int(written), nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
