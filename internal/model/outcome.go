package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrSchemaMismatch reports a payload that is neither a valid report nor a
// valid rejection.
var ErrSchemaMismatch = errors.New("payload does not match the report schema")

// RequiredFields are the top-level keys every report must carry.
var RequiredFields = []string{
	"conformanceLevel",
	"score",
	"overallStats",
	"levelStats",
	"levelA",
	"levelAA",
	"levelAAA",
	"suggestions",
}

// SchemaError lists the required report fields missing from a payload.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error {
	return ErrSchemaMismatch
}

// OutcomeKind discriminates the two response shapes.
type OutcomeKind int

const (
	// OutcomeReport carries a full accessibility report.
	OutcomeReport OutcomeKind = iota + 1
	// OutcomeRejection carries an "invalid code" rejection.
	OutcomeRejection
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeReport:
		return "report"
	case OutcomeRejection:
		return "rejection"
	}
	return "unknown"
}

// Outcome is either a Report or a Rejection, never both.
type Outcome struct {
	Kind      OutcomeKind
	Report    *Report
	Rejection *Rejection
}

// NewReportOutcome wraps a report.
func NewReportOutcome(r *Report) Outcome {
	return Outcome{Kind: OutcomeReport, Report: r}
}

// NewRejectionOutcome builds a rejection with the given message.
func NewRejectionOutcome(message string) Outcome {
	return Outcome{Kind: OutcomeRejection, Rejection: &Rejection{IsValidCode: false, Message: message}}
}

// Value returns the variant payload for encoding.
func (o Outcome) Value() any {
	if o.Kind == OutcomeRejection {
		return o.Rejection
	}
	return o.Report
}

// MarshalJSON encodes the outcome as the bare report or rejection object.
func (o Outcome) MarshalJSON() ([]byte, error) {
	switch o.Kind {
	case OutcomeReport:
		return json.Marshal(o.Report)
	case OutcomeRejection:
		return json.Marshal(o.Rejection)
	}
	return nil, errors.New("model: cannot encode empty outcome")
}

// DecodeOutcome classifies and validates a JSON payload. A payload whose
// isValidCode key is false is a rejection; anything else must be a complete
// report, which is normalized before being returned.
func DecodeOutcome(data []byte) (Outcome, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return Outcome{}, fmt.Errorf("%w: not a JSON object", ErrSchemaMismatch)
	}

	if raw, ok := fields["isValidCode"]; ok {
		var valid bool
		if err := json.Unmarshal(raw, &valid); err != nil {
			return Outcome{}, fmt.Errorf("%w: isValidCode: %w", ErrSchemaMismatch, err)
		}
		if !valid {
			var rej Rejection
			if err := json.Unmarshal(data, &rej); err != nil {
				return Outcome{}, fmt.Errorf("%w: rejection: %w", ErrSchemaMismatch, err)
			}
			if strings.TrimSpace(rej.Message) == "" {
				return Outcome{}, fmt.Errorf("%w: rejection without message", ErrSchemaMismatch)
			}
			return Outcome{Kind: OutcomeRejection, Rejection: &rej}, nil
		}
	}

	var missing []string
	for _, f := range RequiredFields {
		if raw, ok := fields[f]; !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return Outcome{}, &SchemaError{Missing: missing}
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ErrSchemaMismatch, err)
	}
	if err := report.Normalize(); err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ErrSchemaMismatch, err)
	}
	return NewReportOutcome(&report), nil
}
