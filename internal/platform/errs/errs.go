package errs

import (
	"errors"
	"fmt"
)

// Kind categorizes application errors for HTTP status mapping.
type Kind int

const (
	// Unknown represents an unclassified error (HTTP 500).
	Unknown Kind = iota
	// InvalidInput indicates the request was malformed (HTTP 400).
	InvalidInput
	// Unavailable indicates no provider credential is configured (HTTP 503).
	Unavailable
	// ProviderFailed indicates a transport failure or non-2xx vendor status (HTTP 500).
	ProviderFailed
	// ProviderBlocked indicates the vendor answered without any content (HTTP 500).
	ProviderBlocked
	// InvalidJSON indicates the vendor text could not be parsed as JSON (HTTP 500).
	InvalidJSON
	// SchemaMismatch indicates parsed JSON that violates the report contract (HTTP 500).
	SchemaMismatch
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case Unavailable:
		return "unavailable"
	case ProviderFailed:
		return "provider_failed"
	case ProviderBlocked:
		return "provider_blocked"
	case InvalidJSON:
		return "invalid_json"
	case SchemaMismatch:
		return "schema_mismatch"
	}
	return "unknown"
}

// AppError carries a category, user message, and original cause.
type AppError struct {
	Kind           Kind
	UpstreamStatus int // HTTP status code returned by the AI provider
	Message        string
	Cause          error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// KindOf returns the Kind of the first AppError in err's chain, or Unknown.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Unknown
}
