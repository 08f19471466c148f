package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"saathi/internal/document"
	"saathi/internal/eligibility"
	"saathi/internal/identity"
	"saathi/internal/journey/handler/mocks"
	"saathi/internal/journey/service"
	dErrors "saathi/pkg/domain-errors"
	"saathi/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type JourneyHandlerSuite struct {
	suite.Suite
	svc    *mocks.MockService
	router chi.Router
}

func TestJourneyHandlerSuite(t *testing.T) {
	suite.Run(t, new(JourneyHandlerSuite))
}

func (s *JourneyHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.svc = mocks.NewMockService(ctrl)
	h := New(s.svc, slog.New(slog.NewTextHandler(io.Discard, nil)), WithMaxUploadBytes(1<<20))
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func withSession(req *http.Request) *http.Request {
	return testutil.WithSessionCookie(req, "sess-1")
}

func (s *JourneyHandlerSuite) TestStartSetsCookie() {
	s.svc.EXPECT().Start(gomock.Any()).Return(&service.Step{
		SessionID: "sess-1", Stage: "introduction", Question: "Welcome", VideoURL: "/static/videos/introduction.mp4", Version: 1,
	}, nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodPost, "/journey/start"))

	s.Equal(http.StatusCreated, rr.Code)
	body := testutil.DecodeJSON(s.T(), rr)
	s.Equal("sess-1", body["session_id"])
	s.Equal("introduction", body["stage"])
	s.Equal("/static/videos/introduction.mp4", body["video_url"])
	cookies := rr.Result().Cookies()
	s.Require().Len(cookies, 1)
	s.Equal("saathi_session", cookies[0].Name)
	s.Equal("sess-1", cookies[0].Value)
	s.True(cookies[0].HttpOnly)
}

func (s *JourneyHandlerSuite) TestNextQuestionRecordsResponse() {
	s.svc.EXPECT().Advance(gomock.Any(), "sess-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, req service.AdvanceRequest) (*service.Step, error) {
			s.True(req.HasResponse)
			s.Equal("Asha, 30", req.Response)
			s.Require().NotNil(req.ExpectedVersion)
			s.Equal(uint64(3), *req.ExpectedVersion)
			return &service.Step{Stage: "loan_purpose", Question: "What type of loan?", Version: 4}, nil
		})

	req := withSession(testutil.NewRequestWithBody(s.T(), http.MethodPost, "/api/next-question", `{"response":"Asha, 30","version":3}`))
	rr := testutil.DoRequest(s.router, req)

	s.Equal(http.StatusOK, rr.Code)
	body := testutil.DecodeJSON(s.T(), rr)
	s.Equal("loan_purpose", body["stage"])
	s.Equal(float64(4), body["version"])
}

func (s *JourneyHandlerSuite) TestNextQuestionEmptyBody() {
	s.svc.EXPECT().Advance(gomock.Any(), "sess-1", service.AdvanceRequest{}).
		Return(&service.Step{Stage: "personal_details"}, nil)

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/next-question", nil))
	rr := testutil.DoRequest(s.router, req)
	s.Equal(http.StatusOK, rr.Code)
}

func (s *JourneyHandlerSuite) TestNextQuestionExplicitNullIsRecorded() {
	s.svc.EXPECT().Advance(gomock.Any(), "sess-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, req service.AdvanceRequest) (*service.Step, error) {
			s.True(req.HasResponse)
			s.Nil(req.Response)
			return &service.Step{Stage: "end"}, nil
		})

	req := withSession(testutil.NewRequestWithBody(s.T(), http.MethodPost, "/api/next-question", `{"response":null}`))
	rr := testutil.DoRequest(s.router, req)
	s.Equal(http.StatusOK, rr.Code)
}

func (s *JourneyHandlerSuite) TestNextQuestionMalformedJSON() {
	req := withSession(testutil.NewRequestWithBody(s.T(), http.MethodPost, "/api/next-question", `{"response":`))
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertError(s.T(), rr, http.StatusBadRequest, "bad_request", "")
}

func (s *JourneyHandlerSuite) TestNextQuestionConflict() {
	s.svc.EXPECT().Advance(gomock.Any(), "sess-1", gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeConflict, "session is at version 5, not 3"))

	req := withSession(testutil.NewRequestWithBody(s.T(), http.MethodPost, "/api/next-question", `{"version":3}`))
	rr := testutil.DoRequest(s.router, req)
	s.Equal(http.StatusConflict, rr.Code)
}

func (s *JourneyHandlerSuite) TestSessionRequired() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/result"))
	s.Equal(http.StatusBadRequest, rr.Code)
}

func (s *JourneyHandlerSuite) TestSessionFromHeader() {
	s.svc.EXPECT().Result(gomock.Any(), "hdr-1").Return(&service.ResultView{
		Status: eligibility.StatusMoreInfo, Reason: service.DefaultResultReason, UserData: map[string]any{},
	}, nil)

	req := testutil.WithSessionHeader(testutil.NewRequest(s.T(), http.MethodGet, "/result"), "hdr-1")
	rr := testutil.DoRequest(s.router, req)
	s.Equal(http.StatusOK, rr.Code)
	body := testutil.DecodeJSON(s.T(), rr)
	s.Equal("more_info", body["status"])
	s.Equal(service.DefaultResultReason, body["reason"])
}

func (s *JourneyHandlerSuite) TestCaptureVideo() {
	s.svc.EXPECT().Capture(gomock.Any(), "sess-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, u service.CaptureUpload) (*service.CaptureResult, error) {
			content, err := io.ReadAll(u.Body)
			s.Require().NoError(err)
			s.Equal("webm-bytes", string(content))
			return &service.CaptureResult{Success: true, Message: "Video captured successfully", Version: 2}, nil
		})

	req := withSession(testutil.NewMultipartRequest(s.T(), "/api/capture-video", nil, testutil.FilePart{Field: "video", Filename: "blob.webm", Content: "webm-bytes"}))
	rr := testutil.DoRequest(s.router, req)

	s.Equal(http.StatusOK, rr.Code)
	body := testutil.DecodeJSON(s.T(), rr)
	s.Equal(true, body["success"])
	s.Equal("Video captured successfully", body["message"])
}

func (s *JourneyHandlerSuite) TestCaptureVideoMissingFile() {
	req := withSession(testutil.NewMultipartRequest(s.T(), "/api/capture-video", map[string]string{"note": "x"}))
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertError(s.T(), rr, http.StatusBadRequest, "validation_error", "No video file provided")
}

func (s *JourneyHandlerSuite) TestCaptureVideoMismatch() {
	s.svc.EXPECT().Capture(gomock.Any(), "sess-1", gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeVerificationFailed, identity.MismatchMessage))

	req := withSession(testutil.NewMultipartRequest(s.T(), "/api/capture-video", nil, testutil.FilePart{Field: "video", Filename: "blob.webm", Content: "x"}))
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertError(s.T(), rr, http.StatusBadRequest, "verification_failed", identity.MismatchMessage)
}

func (s *JourneyHandlerSuite) TestUploadDocument() {
	s.svc.EXPECT().UploadDocument(gomock.Any(), "sess-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, u document.Upload) (*service.IngestResult, error) {
			s.Equal("income_proof", u.Type)
			s.Equal("slip.pdf", u.Filename)
			return &service.IngestResult{
				Success:       true,
				Message:       document.SuccessMessage,
				ExtractedData: map[string]any{"income": float64(25000)},
				Version:       3,
			}, nil
		})

	req := withSession(testutil.NewMultipartRequest(s.T(), "/api/upload-document",
		map[string]string{"type": "income_proof"}, testutil.FilePart{Field: "document", Filename: "slip.pdf", Content: "pdf"}))
	rr := testutil.DoRequest(s.router, req)

	s.Equal(http.StatusOK, rr.Code)
	body := testutil.DecodeJSON(s.T(), rr)
	s.Equal(true, body["success"])
	s.Equal(map[string]any{"income": float64(25000)}, body["extracted_data"])
}

func (s *JourneyHandlerSuite) TestUploadDocumentTypeDefaultsDownstream() {
	s.svc.EXPECT().UploadDocument(gomock.Any(), "sess-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, u document.Upload) (*service.IngestResult, error) {
			s.Empty(u.Type)
			return &service.IngestResult{Success: true, ExtractedData: map[string]any{}}, nil
		})

	req := withSession(testutil.NewMultipartRequest(s.T(), "/api/upload-document", nil, testutil.FilePart{Field: "document", Filename: "id.jpg", Content: "img"}))
	rr := testutil.DoRequest(s.router, req)
	s.Equal(http.StatusOK, rr.Code)
}

func (s *JourneyHandlerSuite) TestUploadDocumentMissingFile() {
	req := withSession(testutil.NewMultipartRequest(s.T(), "/api/upload-document", map[string]string{"type": "id_proof"}))
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertError(s.T(), rr, http.StatusBadRequest, "validation_error", "No document file provided")
}

func (s *JourneyHandlerSuite) TestUploadDocumentInternalErrorIsGeneric() {
	s.svc.EXPECT().UploadDocument(gomock.Any(), "sess-1", gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeInternal, "failed to store document: /var/uploads is read-only"))

	req := withSession(testutil.NewMultipartRequest(s.T(), "/api/upload-document", nil, testutil.FilePart{Field: "document", Filename: "id.jpg", Content: "img"}))
	rr := testutil.DoRequest(s.router, req)

	s.Equal(http.StatusInternalServerError, rr.Code)
	s.NotContains(rr.Body.String(), "read-only")
}

func (s *JourneyHandlerSuite) TestUploadDocumentBatch() {
	s.svc.EXPECT().UploadDocuments(gomock.Any(), "sess-1", gomock.Len(2)).
		Return([]service.IngestResult{
			{Success: true, Message: document.SuccessMessage, ExtractedData: map[string]any{"name": "A", "income": float64(1)}},
			{Success: true, Message: document.SuccessMessage, ExtractedData: map[string]any{"income": float64(2)}},
		}, nil)

	req := withSession(testutil.NewMultipartRequest(s.T(), "/api/upload-document", nil,
		testutil.FilePart{Field: "document", Filename: "id.jpg", Content: "a"}, testutil.FilePart{Field: "document", Filename: "slip.pdf", Content: "b"}))
	rr := testutil.DoRequest(s.router, req)

	s.Equal(http.StatusOK, rr.Code)
	body := testutil.DecodeJSON(s.T(), rr)
	s.Equal(map[string]any{"name": "A", "income": float64(2)}, body["extracted_data"])
	s.Len(body["documents"], 2)
}

func TestUploadTooLarge(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	h := New(svc, slog.New(slog.NewTextHandler(io.Discard, nil)), WithMaxUploadBytes(64))
	r := chi.NewRouter()
	h.Register(r)

	req := withSession(testutil.NewMultipartRequest(t, "/api/capture-video", nil, testutil.FilePart{Field: "video", Filename: "big.webm", Content: strings.Repeat("x", 4096)}))
	rr := testutil.DoRequest(r, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
