package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/everyplants/compartment-rules/internal/resilience"
	"github.com/everyplants/compartment-rules/internal/rules"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock.
func newMockPostgresStore(t *testing.T, table string) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	retry := resilience.RetryConfig{MaxAttempts: 2, InitialBackoff: time.Millisecond}
	return &PostgresStore{pool: mock, table: table, retry: retry}, mock
}

func TestPostgresStore_ReplaceRules(t *testing.T) {
	s, mock := newMockPostgresStore(t, "batchmaker.compartment_rules")

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "batchmaker"\."compartment_rules"`).WillReturnResult(pgxmock.NewResult("DELETE", 12))
	mock.ExpectCopyFrom(pgx.Identifier{"batchmaker", "compartment_rules"}, Columns).WillReturnResult(4)
	mock.ExpectCommit()

	n, err := s.ReplaceRules(context.Background(), samplePlan())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ReplaceRules_EmptyPlanOnlyClears(t *testing.T) {
	s, mock := newMockPostgresStore(t, "compartment_rules")

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "compartment_rules"`).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCommit()

	n, err := s.ReplaceRules(context.Background(), rules.Plan{})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ReplaceRules_CopyErrorRollsBack(t *testing.T) {
	s, mock := newMockPostgresStore(t, "batchmaker.compartment_rules")

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM`).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"batchmaker", "compartment_rules"}, Columns).
		WillReturnError(errors.New("violates foreign key constraint"))
	mock.ExpectRollback()

	_, err := s.ReplaceRules(context.Background(), samplePlan())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "replace rules")
	assert.Contains(t, err.Error(), "COPY INTO batchmaker.compartment_rules")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ReplaceRules_RetriesSerializationFailure(t *testing.T) {
	s, mock := newMockPostgresStore(t, "compartment_rules")

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM`).WillReturnError(&pgconn.PgError{Code: "40001", Message: "could not serialize access"})
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM`).WillReturnResult(pgxmock.NewResult("DELETE", 4))
	mock.ExpectCopyFrom(pgx.Identifier{"compartment_rules"}, Columns).WillReturnResult(4)
	mock.ExpectCommit()

	n, err := s.ReplaceRules(context.Background(), samplePlan())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ReplaceRules_DeleteError(t *testing.T) {
	s, mock := newMockPostgresStore(t, "compartment_rules")

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM`).WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	_, err := s.ReplaceRules(context.Background(), samplePlan())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clear rules")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t, "batchmaker.compartment_rules")

	mock.ExpectExec(`CREATE SCHEMA IF NOT EXISTS "batchmaker"`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "batchmaker"\."compartment_rules"`).WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Migrate_NoSchema(t *testing.T) {
	s, mock := newMockPostgresStore(t, "compartment_rules")

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "compartment_rules"`).WillReturnError(errors.New("syntax error"))

	err := s.Migrate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: migrate")
	assert.NoError(t, mock.ExpectationsWereMet())
}
