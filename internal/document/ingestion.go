// Package document stores uploaded documents and fuses the fields a
// collaborator extracts from them into the applicant record.
package document

import (
	"context"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"saathi/internal/journey/models"
	"saathi/internal/providers"
	dErrors "saathi/pkg/domain-errors"
	audit "saathi/pkg/platform/audit"
	"saathi/pkg/requestcontext"
)

const (
	DefaultType = "id_proof"

	// ErrorField carries the extraction failure marker in the extracted fields.
	ErrorField = "error"

	SuccessMessage = "Document processed successfully"
)

// Extractor pulls structured fields out of a stored document.
type Extractor interface {
	ProcessDocument(ctx context.Context, artifactPath, docType string) (map[string]any, error)
}

// ArtifactStore persists uploaded bytes.
type ArtifactStore interface {
	Put(ctx context.Context, name string, body io.Reader) (string, error)
}

// AuditPublisher emits audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Metrics receives ingestion observations.
type Metrics interface {
	IncrementDocumentIngested(docType string)
	IncrementExtractionFailure(docType string)
}

// Upload is one document as received from the applicant.
type Upload struct {
	Filename string
	Type     string
	Body     io.Reader
}

// Result reports what was extracted from one document.
type Result struct {
	Success         bool
	Message         string
	Type            string
	ArtifactPath    string
	ExtractedFields map[string]any
}

type Ingestion struct {
	extractor Extractor
	artifacts ArtifactStore
	auditor   AuditPublisher
	metrics   Metrics
	logger    *slog.Logger
}

type Option func(*Ingestion)

func WithLogger(logger *slog.Logger) Option {
	return func(i *Ingestion) {
		i.logger = logger
	}
}

func WithAuditor(auditor AuditPublisher) Option {
	return func(i *Ingestion) {
		i.auditor = auditor
	}
}

func WithMetrics(m Metrics) Option {
	return func(i *Ingestion) {
		i.metrics = m
	}
}

func New(extractor Extractor, artifacts ArtifactStore, opts ...Option) *Ingestion {
	i := &Ingestion{extractor: extractor, artifacts: artifacts, logger: slog.Default()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Ingest stores the upload, extracts its fields and merges them into the
// session record. Extraction failures become an error marker in the fields
// and never fail the call. A storage failure leaves the session untouched.
func (i *Ingestion) Ingest(ctx context.Context, session *models.Session, upload Upload) (Result, error) {
	stored, err := i.store(ctx, upload)
	if err != nil {
		return Result{}, err
	}
	res := i.extract(ctx, session.ID, stored)
	session.Merge(res.ExtractedFields)
	return res, nil
}

// IngestAll stores every upload, extracts them concurrently and merges the
// fields in upload order, so later documents win on key collisions.
func (i *Ingestion) IngestAll(ctx context.Context, session *models.Session, uploads []Upload) ([]Result, error) {
	if len(uploads) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "no document provided")
	}
	stored := make([]storedUpload, 0, len(uploads))
	for _, u := range uploads {
		s, err := i.store(ctx, u)
		if err != nil {
			return nil, err
		}
		stored = append(stored, s)
	}

	results := make([]Result, len(stored))
	g, gctx := errgroup.WithContext(ctx)
	for idx, s := range stored {
		g.Go(func() error {
			results[idx] = i.extract(gctx, session.ID, s)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, r := range results {
		session.Merge(r.ExtractedFields)
	}
	return results, nil
}

type storedUpload struct {
	docType string
	path    string
}

func (i *Ingestion) store(ctx context.Context, upload Upload) (storedUpload, error) {
	if upload.Body == nil || upload.Filename == "" {
		return storedUpload{}, dErrors.New(dErrors.CodeValidation, "no document provided")
	}
	docType := upload.Type
	if docType == "" {
		docType = DefaultType
	}
	path, err := i.artifacts.Put(ctx, ArtifactName(docType, upload.Filename), upload.Body)
	if err != nil {
		i.logger.ErrorContext(ctx, "failed to store document", "type", docType, "error", err)
		return storedUpload{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store document")
	}
	return storedUpload{docType: docType, path: path}, nil
}

func (i *Ingestion) extract(ctx context.Context, sessionID string, s storedUpload) Result {
	fields, err := i.extractor.ProcessDocument(ctx, s.path, s.docType)
	if err != nil {
		i.logger.WarnContext(ctx, "document extraction failed",
			"session_id", sessionID,
			"type", s.docType,
			"error", err,
		)
		if i.metrics != nil {
			i.metrics.IncrementExtractionFailure(s.docType)
		}
		i.emit(ctx, sessionID, audit.EventExtractionFailed, s.docType, err.Error())
		fields = map[string]any{ErrorField: "Could not process document: " + providers.Message(err)}
	} else {
		if fields == nil {
			fields = map[string]any{}
		}
		if i.metrics != nil {
			i.metrics.IncrementDocumentIngested(s.docType)
		}
		i.emit(ctx, sessionID, audit.EventDocumentIngested, s.docType, "")
	}
	return Result{
		Success:         true,
		Message:         SuccessMessage,
		Type:            s.docType,
		ArtifactPath:    s.path,
		ExtractedFields: fields,
	}
}

func (i *Ingestion) emit(ctx context.Context, sessionID string, action audit.AuditEvent, docType, reason string) {
	if i.auditor == nil {
		return
	}
	err := i.auditor.Emit(ctx, audit.Event{
		SessionID: sessionID,
		Action:    string(action),
		Stage:     string(models.StageDocumentUpload),
		Decision:  docType,
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
	})
	if err != nil {
		i.logger.ErrorContext(ctx, "failed to emit audit event", "action", action, "error", err)
	}
}
