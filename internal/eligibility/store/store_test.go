package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saathi/internal/eligibility"
	"saathi/pkg/platform/sentinel"
)

func sampleRecord() eligibility.Record {
	return eligibility.Record{
		SessionID:   "6f1c1a4e-3c1b-4a55-9d7e-2b1a9f0c5e11",
		Status:      eligibility.StatusApproved,
		Reason:      eligibility.ReasonPreApproved,
		Income:      20000,
		LoanAmount:  100000,
		CreditScore: 700,
		EvaluatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestInMemoryVerdictStore(t *testing.T) {
	ctx := context.Background()

	t.Run("saves once per session", func(t *testing.T) {
		store := NewInMemory()
		record := sampleRecord()
		require.NoError(t, store.Save(ctx, record))
		assert.ErrorIs(t, store.Save(ctx, record), sentinel.ErrConflict)

		found, err := store.FindBySession(ctx, record.SessionID)
		require.NoError(t, err)
		assert.Equal(t, record, *found)
	})

	t.Run("missing session is not found", func(t *testing.T) {
		_, err := NewInMemory().FindBySession(ctx, "nope")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func newMockStore(t *testing.T) (*PostgresVerdictStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgres(db), mock
}

func TestPostgresVerdictStore_Save(t *testing.T) {
	ctx := context.Background()
	insert := regexp.QuoteMeta("INSERT INTO eligibility_verdicts")

	t.Run("inserts record", func(t *testing.T) {
		store, mock := newMockStore(t)
		record := sampleRecord()
		mock.ExpectExec(insert).
			WithArgs(record.SessionID, "approved", record.Reason, record.Income, record.LoanAmount, record.CreditScore, record.EvaluatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.Save(ctx, record))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation is a conflict", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(insert).WillReturnError(&pq.Error{Code: uniqueViolation})

		err := store.Save(ctx, sampleRecord())
		assert.ErrorIs(t, err, sentinel.ErrConflict)
	})

	t.Run("other failures are wrapped", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(insert).WillReturnError(sql.ErrConnDone)

		err := store.Save(ctx, sampleRecord())
		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.NotErrorIs(t, err, sentinel.ErrConflict)
	})
}

func TestPostgresVerdictStore_FindBySession(t *testing.T) {
	ctx := context.Background()
	query := regexp.QuoteMeta("FROM eligibility_verdicts")
	columns := []string{"session_id", "status", "reason", "income", "loan_amount", "credit_score", "evaluated_at"}

	t.Run("scans stored record", func(t *testing.T) {
		store, mock := newMockStore(t)
		record := sampleRecord()
		mock.ExpectQuery(query).WithArgs(record.SessionID).WillReturnRows(
			sqlmock.NewRows(columns).AddRow(record.SessionID, "approved", record.Reason, record.Income, record.LoanAmount, record.CreditScore, record.EvaluatedAt),
		)

		found, err := store.FindBySession(ctx, record.SessionID)
		require.NoError(t, err)
		assert.Equal(t, record, *found)
	})

	t.Run("no rows is not found", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(query).WillReturnRows(sqlmock.NewRows(columns))

		_, err := store.FindBySession(ctx, "missing")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
