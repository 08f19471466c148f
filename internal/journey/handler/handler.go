package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"maps"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"saathi/internal/document"
	"saathi/internal/journey/service"
	"saathi/internal/platform/middleware"
	dErrors "saathi/pkg/domain-errors"
	"saathi/pkg/platform/httputil"
	"saathi/pkg/requestcontext"
)

// Service defines the journey operations the HTTP surface exposes.
type Service interface {
	Start(ctx context.Context) (*service.Step, error)
	Advance(ctx context.Context, sessionID string, req service.AdvanceRequest) (*service.Step, error)
	Capture(ctx context.Context, sessionID string, upload service.CaptureUpload) (*service.CaptureResult, error)
	UploadDocument(ctx context.Context, sessionID string, upload document.Upload) (*service.IngestResult, error)
	UploadDocuments(ctx context.Context, sessionID string, uploads []document.Upload) ([]service.IngestResult, error)
	Result(ctx context.Context, sessionID string) (*service.ResultView, error)
}

// Handler serves the journey endpoints.
type Handler struct {
	journey        Service
	logger         *slog.Logger
	cookieName     string
	cookieTTL      time.Duration
	secureCookie   bool
	maxUploadBytes int64
}

type Option func(*Handler)

func WithCookie(name string, ttl time.Duration, secure bool) Option {
	return func(h *Handler) {
		if name != "" {
			h.cookieName = name
		}
		h.cookieTTL = ttl
		h.secureCookie = secure
	}
}

func WithMaxUploadBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxUploadBytes = n
		}
	}
}

func New(journey Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		journey:        journey,
		logger:         logger,
		cookieName:     "saathi_session",
		cookieTTL:      24 * time.Hour,
		maxUploadBytes: 16 << 20,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the journey routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/journey/start", h.handleStart)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(h.cookieName, h.logger))
		r.Post("/api/next-question", h.handleNextQuestion)
		r.Post("/api/capture-video", h.handleCaptureVideo)
		r.Post("/api/upload-document", h.handleUploadDocument)
		r.Get("/result", h.handleResult)
	})
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	step, err := h.journey.Start(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to start journey", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    step.SessionID,
		Path:     "/",
		MaxAge:   int(h.cookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.WriteJSON(w, http.StatusCreated, StartResponse{
		SessionID: step.SessionID,
		StepResponse: StepResponse{
			Stage:    string(step.Stage),
			Question: step.Question,
			VideoURL: step.VideoURL,
			Version:  step.Version,
		},
	})
}

func (h *Handler) handleNextQuestion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req NextQuestionRequest
	if err := httputil.DecodeOptionalJSON(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid next-question request",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	advance := service.AdvanceRequest{ExpectedVersion: req.Version}
	if len(req.Response) > 0 {
		if err := json.Unmarshal(req.Response, &advance.Response); err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid response value"))
			return
		}
		advance.HasResponse = true
	}

	step, err := h.journey.Advance(ctx, requestcontext.SessionID(ctx), advance)
	if err != nil {
		h.fail(ctx, w, "failed to advance journey", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, StepResponse{
		Stage:    string(step.Stage),
		Question: step.Question,
		VideoURL: step.VideoURL,
		Version:  step.Version,
	})
}

func (h *Handler) handleCaptureVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	files, err := h.parseFiles(w, r, "video")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if len(files) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "No video file provided"))
		return
	}

	f, err := files[0].Open()
	if err != nil {
		h.fail(ctx, w, "failed to open video", dErrors.Wrap(err, dErrors.CodeInternal, "failed to read video"))
		return
	}
	defer f.Close()

	res, err := h.journey.Capture(ctx, requestcontext.SessionID(ctx), service.CaptureUpload{
		Filename: files[0].Filename,
		Body:     f,
	})
	if err != nil {
		h.fail(ctx, w, "capture rejected", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CaptureResponse{
		Success: res.Success,
		Message: res.Message,
		Version: res.Version,
	})
}

// handleUploadDocument accepts one or more "document" parts. Several parts
// are processed as a batch sharing the "type" field.
func (h *Handler) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	files, err := h.parseFiles(w, r, "document")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if len(files) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "No document file provided"))
		return
	}
	docType := r.FormValue("type")

	uploads := make([]document.Upload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			h.fail(ctx, w, "failed to open document", dErrors.Wrap(err, dErrors.CodeInternal, "failed to read document"))
			return
		}
		defer f.Close()
		uploads = append(uploads, document.Upload{Filename: fh.Filename, Type: docType, Body: f})
	}

	sessionID := requestcontext.SessionID(ctx)
	if len(uploads) == 1 {
		res, err := h.journey.UploadDocument(ctx, sessionID, uploads[0])
		if err != nil {
			h.fail(ctx, w, "document upload failed", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, UploadResponse{
			Success:       res.Success,
			Message:       res.Message,
			ExtractedData: res.ExtractedData,
			Version:       res.Version,
		})
		return
	}

	results, err := h.journey.UploadDocuments(ctx, sessionID, uploads)
	if err != nil {
		h.fail(ctx, w, "document batch upload failed", err)
		return
	}
	resp := UploadResponse{Success: true, ExtractedData: map[string]any{}}
	for _, res := range results {
		resp.Success = resp.Success && res.Success
		resp.Message = res.Message
		resp.Version = res.Version
		maps.Copy(resp.ExtractedData, res.ExtractedData)
		resp.Documents = append(resp.Documents, DocumentResponse{
			Success:       res.Success,
			ExtractedData: res.ExtractedData,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleResult(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.journey.Result(ctx, requestcontext.SessionID(ctx))
	if err != nil {
		h.fail(ctx, w, "failed to load result", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ResultResponse{
		Status:   string(view.Status),
		Reason:   view.Reason,
		UserData: view.UserData,
	})
}

func (h *Handler) parseFiles(w http.ResponseWriter, r *http.Request, field string) ([]*multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, dErrors.New(dErrors.CodeValidation, "upload exceeds the maximum allowed size")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid multipart form")
	}
	var files []*multipart.FileHeader
	for _, fh := range r.MultipartForm.File[field] {
		if fh.Filename != "" {
			files = append(files, fh)
		}
	}
	return files, nil
}

// fail logs at a level matching the error class and writes the envelope.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	attrs := append(requestcontext.LogAttrs(ctx), "error", err)
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}
