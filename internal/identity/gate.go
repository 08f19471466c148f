// Package identity guards capture steps with a face consistency check.
//
// The first capture that yields a descriptor becomes the session's reference.
// Every later capture must match it.
package identity

import (
	"context"
	"log/slog"

	"saathi/internal/journey/models"
	"saathi/internal/providers"
	dErrors "saathi/pkg/domain-errors"
	audit "saathi/pkg/platform/audit"
	"saathi/pkg/requestcontext"
)

// MismatchMessage is shown to the applicant when a capture is rejected.
const MismatchMessage = "Face verification failed. Please ensure the same person is applying."

// FaceMatcher extracts and compares face descriptors from captured media.
type FaceMatcher interface {
	ExtractFace(ctx context.Context, artifactPath string) (models.FaceDescriptor, error)
	Verify(ctx context.Context, reference models.FaceDescriptor, artifactPath string) (bool, error)
}

// AuditPublisher emits audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Metrics receives gate observations.
type Metrics interface {
	IncrementFaceEnrolled()
	IncrementVerificationFailure(reason string)
}

// Decision is the outcome of a capture.
type Decision struct {
	Accepted bool
	Enrolled bool
	Message  string
}

type Gate struct {
	matcher FaceMatcher
	auditor AuditPublisher
	metrics Metrics
	logger  *slog.Logger
}

type Option func(*Gate)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

func WithAuditor(auditor AuditPublisher) Option {
	return func(g *Gate) {
		g.auditor = auditor
	}
}

func WithMetrics(m Metrics) Option {
	return func(g *Gate) {
		g.metrics = m
	}
}

func New(matcher FaceMatcher, opts ...Option) *Gate {
	g := &Gate{matcher: matcher, logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// OnCapture applies the consistency check to a stored capture of the
// session's current stage. On acceptance the artifact path is recorded under
// the stage's capture key; a rejection leaves the session untouched and
// returns a verification_failed error.
func (g *Gate) OnCapture(ctx context.Context, session *models.Session, artifactPath string) (Decision, error) {
	if artifactPath == "" {
		return Decision{}, dErrors.New(dErrors.CodeValidation, "no video file provided")
	}

	if !session.HasFaceReference() {
		decision := Decision{Accepted: true, Message: "Video captured successfully"}
		descriptor, err := g.matcher.ExtractFace(ctx, artifactPath)
		switch {
		case err != nil:
			g.logger.WarnContext(ctx, "face extraction failed; capture accepted without reference",
				"session_id", session.ID,
				"stage", session.Stage,
				"error", err,
			)
			session.Record(models.FaceErrorKey(session.Stage), "Could not extract face: "+providers.Message(err))
		case session.SetFaceReference(descriptor):
			decision.Enrolled = true
			g.incrementEnrolled()
			g.emit(ctx, session, audit.EventFaceEnrolled, "enrolled", "")
		default:
			g.logger.InfoContext(ctx, "no face found in capture", "session_id", session.ID, "stage", session.Stage)
		}
		session.Record(models.CaptureKey(session.Stage), artifactPath)
		return decision, nil
	}

	match, err := g.matcher.Verify(ctx, session.FaceReference, artifactPath)
	if err != nil {
		g.logger.ErrorContext(ctx, "face verification unavailable; rejecting capture",
			"session_id", session.ID,
			"stage", session.Stage,
			"error", err,
		)
		g.reject(ctx, session, "verify_error")
		return Decision{Message: MismatchMessage}, dErrors.Wrap(err, dErrors.CodeVerificationFailed, MismatchMessage)
	}
	if !match {
		g.reject(ctx, session, "mismatch")
		return Decision{Message: MismatchMessage}, dErrors.New(dErrors.CodeVerificationFailed, MismatchMessage)
	}

	session.Record(models.CaptureKey(session.Stage), artifactPath)
	return Decision{Accepted: true, Message: "Video captured successfully"}, nil
}

func (g *Gate) reject(ctx context.Context, session *models.Session, reason string) {
	if g.metrics != nil {
		g.metrics.IncrementVerificationFailure(reason)
	}
	g.emit(ctx, session, audit.EventVerificationFailed, "rejected", reason)
}

func (g *Gate) incrementEnrolled() {
	if g.metrics != nil {
		g.metrics.IncrementFaceEnrolled()
	}
}

func (g *Gate) emit(ctx context.Context, session *models.Session, action audit.AuditEvent, decision, reason string) {
	if g.auditor == nil {
		return
	}
	err := g.auditor.Emit(ctx, audit.Event{
		SessionID: session.ID,
		Action:    string(action),
		Stage:     string(session.Stage),
		Decision:  decision,
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
	})
	if err != nil {
		g.logger.ErrorContext(ctx, "failed to emit audit event", "action", action, "error", err)
	}
}
