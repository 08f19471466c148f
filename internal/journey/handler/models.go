package handler

import "encoding/json"

// NextQuestionRequest carries the applicant's answer. Response is kept raw so
// an explicit null is distinguishable from an absent field.
type NextQuestionRequest struct {
	Response json.RawMessage `json:"response,omitempty"`
	Version  *uint64         `json:"version,omitempty"`
}

type StepResponse struct {
	Stage    string `json:"stage"`
	Question string `json:"question"`
	VideoURL string `json:"video_url"`
	Version  uint64 `json:"version"`
}

type StartResponse struct {
	SessionID string `json:"session_id"`
	StepResponse
}

type CaptureResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Version uint64 `json:"version"`
}

type DocumentResponse struct {
	Success       bool           `json:"success"`
	ExtractedData map[string]any `json:"extracted_data"`
}

type UploadResponse struct {
	Success       bool               `json:"success"`
	Message       string             `json:"message"`
	ExtractedData map[string]any     `json:"extracted_data"`
	Version       uint64             `json:"version"`
	Documents     []DocumentResponse `json:"documents,omitempty"`
}

type ResultResponse struct {
	Status   string         `json:"status"`
	Reason   string         `json:"reason"`
	UserData map[string]any `json:"user_data"`
}
