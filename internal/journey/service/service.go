// Package service drives the guided loan application journey: it moves a
// session through the stage table, routes captures and documents to their
// components, and records the eligibility verdict.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"saathi/internal/document"
	"saathi/internal/eligibility"
	"saathi/internal/identity"
	"saathi/internal/journey/models"
	dErrors "saathi/pkg/domain-errors"
	audit "saathi/pkg/platform/audit"
	"saathi/pkg/platform/sentinel"
	"saathi/pkg/requestcontext"
)

const (
	DefaultResultReason = "We need more information to process your application."

	captureExtension = ".webm"
)

type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id string) (*models.Session, error)
	Save(ctx context.Context, session *models.Session) error
}

type VerdictStore interface {
	Save(ctx context.Context, record eligibility.Record) error
}

type MediaResolver interface {
	Resolve(ctx context.Context, key string) string
	Ensure(ctx context.Context) error
}

type CaptureGate interface {
	OnCapture(ctx context.Context, session *models.Session, artifactPath string) (identity.Decision, error)
}

type DocumentIngester interface {
	Ingest(ctx context.Context, session *models.Session, upload document.Upload) (document.Result, error)
	IngestAll(ctx context.Context, session *models.Session, uploads []document.Upload) ([]document.Result, error)
}

type ArtifactStore interface {
	Put(ctx context.Context, name string, body io.Reader) (string, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Metrics interface {
	IncrementJourneyStarted()
	IncrementStageTransition(from, to string)
	IncrementVerdict(status string)
	IncrementVersionConflict()
	ObserveDocumentBatch(d time.Duration)
}

// Step is what the applicant is shown next.
type Step struct {
	SessionID string
	Stage     models.StageID
	Question  string
	VideoURL  string
	Version   uint64
}

// AdvanceRequest carries an optional answer for the current stage and an
// optional version the caller expects the session to be at.
type AdvanceRequest struct {
	Response        any
	HasResponse     bool
	ExpectedVersion *uint64
}

// CaptureUpload is a recorded answer video.
type CaptureUpload struct {
	Filename string
	Body     io.Reader
}

type CaptureResult struct {
	Success bool
	Message string
	Version uint64
}

type IngestResult struct {
	Success       bool
	Message       string
	ExtractedData map[string]any
	Version       uint64
}

// ResultView is the read-only outcome page.
type ResultView struct {
	Status   eligibility.Status
	Reason   string
	UserData map[string]any
}

type Service struct {
	sessions  SessionStore
	verdicts  VerdictStore
	stages    *models.StageTable
	media     MediaResolver
	gate      CaptureGate
	documents DocumentIngester
	captures  ArtifactStore
	auditor   AuditPublisher
	metrics   Metrics
	logger    *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditor(auditor AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = auditor
	}
}

func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithVerdictStore(v VerdictStore) Option {
	return func(s *Service) {
		s.verdicts = v
	}
}

// WithStages replaces the default journey definition.
func WithStages(t *models.StageTable) Option {
	return func(s *Service) {
		s.stages = t
	}
}

func New(
	sessions SessionStore,
	media MediaResolver,
	gate CaptureGate,
	documents DocumentIngester,
	captures ArtifactStore,
	opts ...Option,
) *Service {
	s := &Service{
		sessions:  sessions,
		stages:    models.NewStageTable(models.DefaultStages()),
		media:     media,
		gate:      gate,
		documents: documents,
		captures:  captures,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates a fresh session at the first stage.
func (s *Service) Start(ctx context.Context) (*Step, error) {
	if err := s.media.Ensure(ctx); err != nil {
		s.logger.ErrorContext(ctx, "media catalogue check failed", "error", err)
	}

	session := models.NewSession(uuid.NewString(), requestcontext.Now(ctx))
	first := s.stages.First()
	session.Stage = first.ID
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to start journey")
	}

	if s.metrics != nil {
		s.metrics.IncrementJourneyStarted()
	}
	s.emit(ctx, session, audit.EventJourneyStarted, "", "")
	s.logger.InfoContext(ctx, "journey started",
		"session_id", session.ID,
		"request_id", requestcontext.RequestID(ctx),
	)

	return &Step{
		SessionID: session.ID,
		Stage:     first.ID,
		Question:  first.Prompt,
		VideoURL:  s.media.Resolve(ctx, first.MediaKey),
		Version:   session.Version,
	}, nil
}

// Advance records the answer for the current stage and moves to the next.
// Leaving the evaluating stage computes the verdict once; later passes reuse it.
func (s *Service) Advance(ctx context.Context, sessionID string, req AdvanceRequest) (*Step, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if req.ExpectedVersion != nil && *req.ExpectedVersion != session.Version {
		s.conflict()
		return nil, dErrors.New(dErrors.CodeConflict,
			fmt.Sprintf("session is at version %d, not %d", session.Version, *req.ExpectedVersion))
	}

	if req.HasResponse {
		session.Record(string(session.Stage), req.Response)
	}

	from, next := s.stages.Successor(session.Stage)
	prompt, mediaKey := next.Prompt, next.MediaKey
	evaluated := false
	if from.Evaluates {
		if !session.HasVerdict() {
			evaluated = session.ApplyVerdict(eligibility.EvaluateRecord(session.UserData))
		}
		verdict := session.Verdict()
		prompt = verdict.Reason
		mediaKey = models.ResultMediaKey(verdict.Status)
	}
	session.Stage = next.ID

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementStageTransition(string(from.ID), string(next.ID))
	}
	s.emit(ctx, session, audit.EventStageAdvanced, string(from.ID), "")
	if evaluated {
		s.recordVerdict(ctx, session)
	}

	return &Step{
		SessionID: session.ID,
		Stage:     next.ID,
		Question:  prompt,
		VideoURL:  s.media.Resolve(ctx, mediaKey),
		Version:   session.Version,
	}, nil
}

// Capture stores an answer video and passes it through the identity gate.
// A rejected capture leaves the session unchanged.
func (s *Service) Capture(ctx context.Context, sessionID string, upload CaptureUpload) (*CaptureResult, error) {
	if upload.Body == nil || upload.Filename == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "no video file provided")
	}
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("%s_%s%s", models.CaptureKey(session.Stage), uuid.NewString(), captureExtension)
	path, err := s.captures.Put(ctx, name, upload.Body)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to store capture", "session_id", session.ID, "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store video")
	}

	decision, err := s.gate.OnCapture(ctx, session, path)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return &CaptureResult{Success: decision.Accepted, Message: decision.Message, Version: session.Version}, nil
}

// UploadDocument stores one document and merges its extracted fields.
func (s *Service) UploadDocument(ctx context.Context, sessionID string, upload document.Upload) (*IngestResult, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	res, err := s.documents.Ingest(ctx, session, upload)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return &IngestResult{
		Success:       res.Success,
		Message:       res.Message,
		ExtractedData: res.ExtractedFields,
		Version:       session.Version,
	}, nil
}

// UploadDocuments extracts several documents concurrently and merges their
// fields in upload order.
func (s *Service) UploadDocuments(ctx context.Context, sessionID string, uploads []document.Upload) ([]IngestResult, error) {
	start := time.Now()
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	results, err := s.documents.IngestAll(ctx, session, uploads)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ObserveDocumentBatch(time.Since(start))
	}

	out := make([]IngestResult, 0, len(results))
	for _, r := range results {
		out = append(out, IngestResult{
			Success:       r.Success,
			Message:       r.Message,
			ExtractedData: r.ExtractedFields,
			Version:       session.Version,
		})
	}
	return out, nil
}

// Result reports the verdict so far without changing the session.
func (s *Service) Result(ctx context.Context, sessionID string) (*ResultView, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	view := &ResultView{
		Status:   eligibility.StatusMoreInfo,
		Reason:   DefaultResultReason,
		UserData: session.Clone().UserData,
	}
	if session.LoanStatus != "" {
		view.Status = session.LoanStatus
	}
	if session.LoanReason != "" {
		view.Reason = session.LoanReason
	}
	return view, nil
}

func (s *Service) load(ctx context.Context, sessionID string) (*models.Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "session id is required")
	}
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "session not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
	return session, nil
}

func (s *Service) save(ctx context.Context, session *models.Session) error {
	err := s.sessions.Save(ctx, session)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrConflict):
		s.conflict()
		return dErrors.New(dErrors.CodeConflict, "session was modified concurrently; reload and retry")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "session not found")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save session")
	}
}

func (s *Service) conflict() {
	if s.metrics != nil {
		s.metrics.IncrementVersionConflict()
	}
}

// recordVerdict persists the verdict outside the session. Failures are
// logged; the session already carries the outcome.
func (s *Service) recordVerdict(ctx context.Context, session *models.Session) {
	verdict := session.Verdict()
	if s.metrics != nil {
		s.metrics.IncrementVerdict(string(verdict.Status))
	}
	s.emit(ctx, session, audit.EventEligibilityEvaluated, string(verdict.Status), verdict.Reason)
	s.logger.InfoContext(ctx, "eligibility evaluated",
		"session_id", session.ID,
		"status", verdict.Status,
	)
	if s.verdicts == nil {
		return
	}
	input := eligibility.InputFromRecord(session.UserData)
	err := s.verdicts.Save(ctx, eligibility.Record{
		SessionID:   session.ID,
		Status:      verdict.Status,
		Reason:      verdict.Reason,
		Income:      input.Income,
		LoanAmount:  input.LoanAmount,
		CreditScore: input.CreditScore,
		EvaluatedAt: requestcontext.Now(ctx),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to persist verdict", "session_id", session.ID, "error", err)
	}
}

func (s *Service) emit(ctx context.Context, session *models.Session, action audit.AuditEvent, decision, reason string) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		SessionID: session.ID,
		Action:    string(action),
		Stage:     string(session.Stage),
		Decision:  decision,
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event", "action", action, "error", err)
	}
}
