package eligibility

import (
	"strings"
	"time"

	dErrors "saathi/pkg/domain-errors"
)

// Status is the tri-state eligibility outcome.
type Status string

const (
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusMoreInfo Status = "more_info"
)

// ParseStatus validates a stored status string.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.TrimSpace(s)) {
	case StatusApproved:
		return StatusApproved, nil
	case StatusRejected:
		return StatusRejected, nil
	case StatusMoreInfo:
		return StatusMoreInfo, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown eligibility status: "+s)
	}
}

// Reason texts are client-visible and double as the result prompt.
const (
	ReasonMissingIncomeOrEmployment = "Income or employment information missing"
	ReasonIncomeBelowMinimum        = "Income below minimum requirement"
	ReasonAmountExceedsMultiple     = "Loan amount exceeds maximum eligibility (10x annual income)"
	ReasonCreditScoreBelowMinimum   = "Credit score below minimum requirement"
	ReasonEmploymentUnclear         = "Employment type needs clarification"
	ReasonPreApproved               = "Congratulations! Your loan is pre-approved."
)

// Application record keys read by the rules.
const (
	FieldIncome         = "income"
	FieldEmploymentType = "employment_type"
	FieldLoanAmount     = "loan_amount"
	FieldCreditScore    = "credit_score"
)

const (
	MinimumIncome      = 15000
	MaxIncomeMultiple  = 10
	MinimumCreditScore = 650
)

// Verdict is the outcome of an evaluation.
type Verdict struct {
	Status Status `json:"status"`
	Reason string `json:"reason"`
}

// Input is the normalized view of an application record.
// Missing numbers are zero; missing text is empty.
type Input struct {
	Income         float64
	EmploymentType string
	LoanAmount     float64
	CreditScore    float64
}

// Record is a persisted verdict for one journey.
type Record struct {
	SessionID   string
	Status      Status
	Reason      string
	Income      float64
	LoanAmount  float64
	CreditScore float64
	EvaluatedAt time.Time
}
