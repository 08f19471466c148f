package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "saathi/pkg/platform/audit"
)

func TestStore_Append(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO audit_events").
		WithArgs(sqlmock.AnyArg(), "compliance", now, "s1", "eligibility_evaluated",
			"eligibility_check", "approved", "ok", "req-1", "10.0.0.1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	store := New(db)
	err = store.Append(context.Background(), audit.Event{
		Timestamp: now,
		SessionID: "s1",
		Action:    string(audit.EventEligibilityEvaluated),
		Stage:     "eligibility_check",
		Decision:  "approved",
		Reason:    "ok",
		RequestID: "req-1",
		ClientIP:  "10.0.0.1",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_AppendError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("INSERT INTO audit_events").WillReturnError(errors.New("conn reset"))
	err = New(db).Append(context.Background(), audit.Event{Action: "stage_advanced"})
	assert.ErrorContains(t, err, "insert audit event")
}

func TestStore_ListBySession(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"category", "timestamp", "session_id", "action", "stage", "decision", "reason", "request_id", "client_ip"}).
		AddRow("operations", now, "s1", "journey_started", "introduction", "", "", "req-1", "").
		AddRow("security", now.Add(time.Second), "s1", "verification_failed", "loan_purpose", "rejected", "mismatch", "req-2", "")
	mock.ExpectQuery("SELECT category, timestamp, session_id").WithArgs("s1").WillReturnRows(rows)

	events, err := New(db).ListBySession(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, audit.CategoryOperations, events[0].Category)
	assert.Equal(t, "verification_failed", events[1].Action)
	assert.Equal(t, "mismatch", events[1].Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}
