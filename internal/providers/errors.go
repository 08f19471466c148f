package providers

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies a face or extraction service failure so callers
// can pick a metric label and decide how loudly to log.
type ErrorCategory string

const (
	ErrorTimeout  ErrorCategory = "timeout"         // deadline hit before a reply
	ErrorBadData  ErrorCategory = "bad_data"        // reply did not decode
	ErrorOutage   ErrorCategory = "provider_outage" // transport error, 5xx or open breaker
	ErrorRejected ErrorCategory = "rejected"        // 4xx or an error field, e.g. unreadable document
	ErrorInternal ErrorCategory = "internal"
)

// ProviderError is the error every collaborator adapter returns.
type ProviderError struct {
	Category   ErrorCategory
	ProviderID string
	Message    string
	Underlying error
}

func (e *ProviderError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("provider %s [%s]: %s: %v", e.ProviderID, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("provider %s [%s]: %s", e.ProviderID, e.Category, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Underlying
}

func NewProviderError(category ErrorCategory, providerID, message string, underlying error) *ProviderError {
	return &ProviderError{
		Category:   category,
		ProviderID: providerID,
		Message:    message,
		Underlying: underlying,
	}
}

// GetCategory reports ErrorInternal for errors that did not come from an adapter.
func GetCategory(err error) ErrorCategory {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Category
	}
	return ErrorInternal
}

// Message returns the collaborator's own description of a failure, without
// the provider and category prefix.
func Message(err error) string {
	var pe *ProviderError
	if errors.As(err, &pe) && pe.Message != "" {
		return pe.Message
	}
	return err.Error()
}
