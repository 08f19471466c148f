package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"saathi/internal/eligibility"
	"saathi/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// PostgresVerdictStore persists verdict records in PostgreSQL.
//
//	CREATE TABLE eligibility_verdicts (
//	    session_id   TEXT PRIMARY KEY,
//	    status       TEXT NOT NULL,
//	    reason       TEXT NOT NULL,
//	    income       DOUBLE PRECISION NOT NULL,
//	    loan_amount  DOUBLE PRECISION NOT NULL,
//	    credit_score DOUBLE PRECISION NOT NULL,
//	    evaluated_at TIMESTAMPTZ NOT NULL
//	);
type PostgresVerdictStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresVerdictStore {
	return &PostgresVerdictStore{db: db}
}

// Save inserts a record. A second verdict for the same session is a conflict.
func (s *PostgresVerdictStore) Save(ctx context.Context, record eligibility.Record) error {
	query := `
		INSERT INTO eligibility_verdicts (session_id, status, reason, income, loan_amount, credit_score, evaluated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		record.SessionID,
		string(record.Status),
		record.Reason,
		record.Income,
		record.LoanAmount,
		record.CreditScore,
		record.EvaluatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("save verdict: %w", err)
	}
	return nil
}

func (s *PostgresVerdictStore) FindBySession(ctx context.Context, sessionID string) (*eligibility.Record, error) {
	query := `
		SELECT session_id, status, reason, income, loan_amount, credit_score, evaluated_at
		FROM eligibility_verdicts
		WHERE session_id = $1
	`
	var (
		record eligibility.Record
		status string
	)
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(
		&record.SessionID,
		&status,
		&record.Reason,
		&record.Income,
		&record.LoanAmount,
		&record.CreditScore,
		&record.EvaluatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find verdict: %w", err)
	}
	parsed, err := eligibility.ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("find verdict: %w", err)
	}
	record.Status = parsed
	return &record, nil
}
