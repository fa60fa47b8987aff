package model

import "time"

// AnalyzeRequest is the body of POST /api/analyze-accessibility.
type AnalyzeRequest struct {
	SourceCode string `json:"sourceCode"`
}

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	Status    string    `json:"status"`
	Provider  string    `json:"provider"`
	HasGoogle bool      `json:"hasGoogle"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse is the JSON shape returned on failure.
type ErrorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}
