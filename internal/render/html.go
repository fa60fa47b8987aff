package render

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"io"

	"github.com/Bahjat/a11y-insight-tool/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// ErrEmptyOutcome is returned when an outcome carries neither variant.
var ErrEmptyOutcome = errors.New("render: outcome has no report or rejection")

// AlertKind distinguishes informational alerts from failures.
type AlertKind int

const (
	AlertError AlertKind = iota
	AlertInfo
)

func (k AlertKind) String() string {
	if k == AlertInfo {
		return "info"
	}
	return "error"
}

// Alert is a single message shown instead of a report.
type Alert struct {
	Kind    AlertKind
	Message string
}

// RejectionAlert shows the provider's rejection message as is.
func RejectionAlert(r *model.Rejection) Alert {
	return Alert{Kind: AlertInfo, Message: r.Message}
}

// ErrorAlert builds a failure alert.
func ErrorAlert(message string) Alert {
	return Alert{Kind: AlertError, Message: message}
}

// HTML writes the fragment for an outcome: the full report, or an alert
// carrying the rejection message with no gauges or lists.
func HTML(w io.Writer, o model.Outcome) error {
	switch o.Kind {
	case model.OutcomeReport:
		if o.Report == nil {
			return ErrEmptyOutcome
		}
		return execute(w, "report", NewReportView(o.Report))
	case model.OutcomeRejection:
		if o.Rejection == nil {
			return ErrEmptyOutcome
		}
		return AlertHTML(w, RejectionAlert(o.Rejection))
	}
	return ErrEmptyOutcome
}

// AlertHTML writes an alert fragment.
func AlertHTML(w io.Writer, a Alert) error {
	return execute(w, "alert", a)
}

// execute renders into a buffer first so a template failure never leaves a
// partial fragment on w.
func execute(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
