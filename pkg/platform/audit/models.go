package audit

import "time"

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance, such as
	// credit decisions.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers identity mismatches and other signals worth alerting on.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine journey activity.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	SessionID string
	Action    string
	Stage     string
	Decision  string
	Reason    string
	RequestID string
	ClientIP  string
}

type AuditEvent string

const (
	EventJourneyStarted       AuditEvent = "journey_started"
	EventStageAdvanced        AuditEvent = "stage_advanced"
	EventFaceEnrolled         AuditEvent = "face_enrolled"
	EventVerificationFailed   AuditEvent = "verification_failed"
	EventDocumentIngested     AuditEvent = "document_ingested"
	EventExtractionFailed     AuditEvent = "extraction_failed"
	EventEligibilityEvaluated AuditEvent = "eligibility_evaluated"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventEligibilityEvaluated: CategoryCompliance,

	EventVerificationFailed: CategorySecurity,
	EventFaceEnrolled:       CategorySecurity,

	EventJourneyStarted:   CategoryOperations,
	EventStageAdvanced:    CategoryOperations,
	EventDocumentIngested: CategoryOperations,
	EventExtractionFailed: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
