// Package session holds the control state of one interactive client: at most
// one analysis in flight and the result currently on display.
package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/Bahjat/a11y-insight-tool/internal/client"
	"github.com/Bahjat/a11y-insight-tool/internal/model"
	"github.com/Bahjat/a11y-insight-tool/internal/platform/errs"
	"github.com/Bahjat/a11y-insight-tool/internal/render"
)

// ErrBusy is returned when an analysis is requested while one is running.
var ErrBusy = errors.New("session: an analysis is already in progress")

// Analyzer produces an outcome for a source snippet.
type Analyzer interface {
	Analyze(ctx context.Context, source string) (model.Outcome, error)
}

// State is the control state of a session.
type State int

const (
	Idle State = iota
	Analyzing
)

func (s State) String() string {
	if s == Analyzing {
		return "analyzing"
	}
	return "idle"
}

// View is what the session shows: a report, an alert, or nothing.
type View struct {
	Report *model.Report
	Alert  *render.Alert
}

// Empty reports whether nothing is on display.
func (v View) Empty() bool {
	return v.Report == nil && v.Alert == nil
}

// HTML writes the view as an HTML fragment.
func (v View) HTML(w io.Writer) error {
	switch {
	case v.Report != nil:
		return render.HTML(w, model.NewReportOutcome(v.Report))
	case v.Alert != nil:
		return render.AlertHTML(w, *v.Alert)
	}
	return nil
}

// Terminal renders the view for a terminal.
func (v View) Terminal() string {
	switch {
	case v.Report != nil:
		return render.TerminalReport(render.NewReportView(v.Report))
	case v.Alert != nil:
		return render.TerminalAlert(*v.Alert)
	}
	return ""
}

// Session serializes analyses and owns the current result.
type Session struct {
	analyzer Analyzer
	logger   *slog.Logger

	mu      sync.Mutex
	state   State
	current *model.Report
	view    View
}

// New creates an idle Session.
func New(analyzer Analyzer, logger *slog.Logger) *Session {
	return &Session{analyzer: analyzer, logger: logger}
}

// State returns the current control state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the report on display, or nil.
func (s *Session) Current() *model.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// View returns what is on display.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Analyze runs one analysis and returns the resulting view. It fails only
// with ErrBusy; every other problem becomes an alert in the view.
func (s *Session) Analyze(ctx context.Context, source string) (View, error) {
	s.mu.Lock()
	if s.state == Analyzing {
		s.mu.Unlock()
		return View{}, ErrBusy
	}
	if strings.TrimSpace(source) == "" {
		s.current = nil
		s.view = alertView(render.ErrorAlert(render.EmptySourceMessage))
		v := s.view
		s.mu.Unlock()
		return v, nil
	}
	s.state = Analyzing
	s.current = nil
	s.view = View{}
	s.mu.Unlock()

	outcome, err := s.analyzer.Analyze(ctx, source)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Idle

	switch {
	case err != nil:
		s.logger.Error("analysis failed", "error", err)
		s.view = alertView(render.ErrorAlert(failureMessage(err)))
	case outcome.Kind == model.OutcomeReport && outcome.Report != nil:
		s.current = outcome.Report
		s.view = View{Report: outcome.Report}
	case outcome.Kind == model.OutcomeRejection && outcome.Rejection != nil:
		s.view = alertView(render.RejectionAlert(outcome.Rejection))
	default:
		s.view = alertView(render.ErrorAlert(render.InvalidResponseMessage))
	}
	return s.view, nil
}

func alertView(a render.Alert) View {
	return View{Alert: &a}
}

// failureMessage picks the text shown for a failed analysis. The unavailable
// message is the only server text shown as is.
func failureMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable && apiErr.Message != "" {
		return apiErr.Message
	}

	var appErr *errs.AppError
	if errors.As(err, &appErr) && appErr.Kind == errs.Unavailable {
		return appErr.Message
	}

	switch {
	case errors.Is(err, client.ErrInvalidResponse),
		errors.Is(err, model.ErrSchemaMismatch),
		errs.KindOf(err) == errs.SchemaMismatch:
		return render.InvalidResponseMessage
	case errors.Is(err, client.ErrEmptySource), errs.KindOf(err) == errs.InvalidInput:
		return render.EmptySourceMessage
	}
	return render.GenericFailureMessage
}
