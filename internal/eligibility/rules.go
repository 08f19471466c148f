package eligibility

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

var recognizedEmploymentTypes = map[string]struct{}{
	"salaried":      {},
	"self-employed": {},
	"business":      {},
}

// Evaluate applies the eligibility rule chain to a normalized input.
// This is pure domain logic - no I/O, no side effects.
//
// Rule priority (first match wins):
//  1. Income or employment type missing - more_info, ahead of every numeric check
//  2. Income floor
//  3. Loan amount cap at 10x income
//  4. Credit score floor
//  5. Employment type must be a recognized category
func Evaluate(input Input) Verdict {
	if input.Income == 0 || input.EmploymentType == "" {
		return Verdict{Status: StatusMoreInfo, Reason: ReasonMissingIncomeOrEmployment}
	}

	if input.Income < MinimumIncome {
		return Verdict{Status: StatusRejected, Reason: ReasonIncomeBelowMinimum}
	}

	if input.LoanAmount > input.Income*MaxIncomeMultiple {
		return Verdict{Status: StatusRejected, Reason: ReasonAmountExceedsMultiple}
	}

	if input.CreditScore < MinimumCreditScore {
		return Verdict{Status: StatusRejected, Reason: ReasonCreditScoreBelowMinimum}
	}

	if _, ok := recognizedEmploymentTypes[strings.ToLower(input.EmploymentType)]; !ok {
		return Verdict{Status: StatusMoreInfo, Reason: ReasonEmploymentUnclear}
	}

	return Verdict{Status: StatusApproved, Reason: ReasonPreApproved}
}

// EvaluateRecord normalizes an application record and evaluates it.
func EvaluateRecord(record map[string]any) Verdict {
	return Evaluate(InputFromRecord(record))
}

// InputFromRecord reads the rule inputs out of accumulated user data.
func InputFromRecord(record map[string]any) Input {
	return Input{
		Income:         number(record[FieldIncome]),
		EmploymentType: text(record[FieldEmploymentType]),
		LoanAmount:     number(record[FieldLoanAmount]),
		CreditScore:    number(record[FieldCreditScore]),
	}
}

// number coerces JSON-decoded and extractor-provided values. Anything that
// does not parse as a finite number reads as zero.
func number(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		cleaned := strings.NewReplacer(",", "", "₹", "", " ", "").Replace(n)
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func text(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}
