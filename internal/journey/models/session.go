package models

import (
	"maps"
	"time"

	"saathi/internal/eligibility"
)

// FaceDescriptor is an opaque biometric representation. It is only ever
// handed back to the face collaborator for comparison.
type FaceDescriptor []float64

// Session is the accumulated application record for one applicant.
//
// Invariants:
//   - UserData only grows: keys are added or overwritten, never removed
//   - FaceReference is immutable once set
//   - LoanStatus/LoanReason are set once per journey
//   - Version increases by one on every successful save
type Session struct {
	ID            string             `json:"id"`
	Stage         StageID            `json:"stage"`
	UserData      map[string]any     `json:"user_data"`
	FaceReference FaceDescriptor     `json:"face_reference,omitempty"`
	LoanStatus    eligibility.Status `json:"loan_status,omitempty"`
	LoanReason    string             `json:"loan_reason,omitempty"`
	Version       uint64             `json:"version"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// NewSession starts a journey at the introduction stage with no answers.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Stage:     StageIntroduction,
		UserData:  make(map[string]any),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Record stores a value under key, overwriting any previous value.
func (s *Session) Record(key string, value any) {
	if s.UserData == nil {
		s.UserData = make(map[string]any)
	}
	s.UserData[key] = value
}

// Merge copies fields into UserData; incoming values win on collision.
func (s *Session) Merge(fields map[string]any) {
	if s.UserData == nil {
		s.UserData = make(map[string]any, len(fields))
	}
	maps.Copy(s.UserData, fields)
}

func (s *Session) HasFaceReference() bool {
	return len(s.FaceReference) > 0
}

// SetFaceReference stores the first descriptor seen. Later calls are ignored.
func (s *Session) SetFaceReference(d FaceDescriptor) bool {
	if s.HasFaceReference() || len(d) == 0 {
		return false
	}
	s.FaceReference = append(FaceDescriptor(nil), d...)
	return true
}

func (s *Session) HasVerdict() bool {
	return s.LoanStatus != ""
}

// ApplyVerdict sets the loan outcome unless one is already present.
func (s *Session) ApplyVerdict(v eligibility.Verdict) bool {
	if s.HasVerdict() {
		return false
	}
	s.LoanStatus = v.Status
	s.LoanReason = v.Reason
	return true
}

// Verdict returns the stored outcome.
func (s *Session) Verdict() eligibility.Verdict {
	return eligibility.Verdict{Status: s.LoanStatus, Reason: s.LoanReason}
}

// Clone returns a deep-enough copy for store isolation.
func (s *Session) Clone() *Session {
	c := *s
	c.UserData = maps.Clone(s.UserData)
	if c.UserData == nil {
		c.UserData = make(map[string]any)
	}
	c.FaceReference = append(FaceDescriptor(nil), s.FaceReference...)
	if len(c.FaceReference) == 0 {
		c.FaceReference = nil
	}
	return &c
}

// CaptureKey is the UserData key under which a stage's captured video path is kept.
func CaptureKey(stage StageID) string {
	return string(stage) + "_video"
}

// FaceErrorKey holds the reason a capture at stage could not anchor the
// face reference.
func FaceErrorKey(stage StageID) string {
	return CaptureKey(stage) + "_face_error"
}
