package analyzer

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Bahjat/a11y-insight-tool/internal/model"
	"github.com/Bahjat/a11y-insight-tool/internal/platform/errs"
	"github.com/Bahjat/a11y-insight-tool/internal/platform/requestid"
	"github.com/Bahjat/a11y-insight-tool/internal/platform/tracing"
	"github.com/Bahjat/a11y-insight-tool/internal/prompt"
	"github.com/Bahjat/a11y-insight-tool/internal/sourcescan"
)

// MissingSourceMessage is returned when the request carries no source code.
const MissingSourceMessage = "Por favor, forneça o código-fonte para análise"

// Result is one finished analysis.
type Result struct {
	ID      string
	Outcome model.Outcome
}

// Service builds the prompt, calls the provider once and validates the reply.
type Service struct {
	completer Completer
	prompter  Prompter
	recorder  Recorder
	logger    *slog.Logger
}

// NewService creates a Service. recorder may be nil.
func NewService(completer Completer, prompter Prompter, recorder Recorder, logger *slog.Logger) *Service {
	return &Service{
		completer: completer,
		prompter:  prompter,
		recorder:  recorder,
		logger:    logger,
	}
}

// Provider returns the identity of the configured provider.
func (s *Service) Provider() string {
	return s.completer.Name()
}

// Analyze runs one analysis of sourceCode. Failures are *errs.AppError values.
func (s *Service) Analyze(ctx context.Context, sourceCode string) (Result, error) {
	res := Result{ID: newAnalysisID()}
	provider := s.completer.Name()

	ctx, span := tracing.StartSpan(ctx, "analyzer.Analyze",
		attribute.String("analysis.id", res.ID),
		attribute.String("analysis.provider", provider),
	)
	defer span.End()

	logger := s.logger.With(
		"analysis_id", res.ID,
		"provider", provider,
		requestid.Attr(ctx),
	)

	if strings.TrimSpace(sourceCode) == "" {
		return res, &errs.AppError{Kind: errs.InvalidInput, Message: MissingSourceMessage, Cause: prompt.ErrEmptySource}
	}

	if profile, err := sourcescan.Scan(sourceCode); err == nil {
		span.SetAttributes(
			attribute.Int("source.bytes", profile.Bytes),
			attribute.Int("source.elements", profile.Elements),
		)
		logger.Info("analysis started", "source", profile)
	} else {
		logger.Info("analysis started", "source_bytes", len(sourceCode))
	}

	outcome, err := s.run(ctx, sourceCode)
	if err != nil {
		s.record(provider, errs.KindOf(err).String())
		tracing.SetError(ctx, err)

		attrs := []any{"error", err, "kind", errs.KindOf(err).String()}
		var appErr *errs.AppError
		if errors.As(err, &appErr) && appErr.UpstreamStatus != 0 {
			attrs = append(attrs, "upstream_status", appErr.UpstreamStatus)
		}
		if errs.KindOf(err) == errs.SchemaMismatch {
			logger.Error("provider response violates report schema", attrs...)
		} else {
			logger.Error("analysis failed", attrs...)
		}
		return res, err
	}

	res.Outcome = outcome
	s.record(provider, outcome.Kind.String())
	span.SetAttributes(attribute.String("analysis.outcome", outcome.Kind.String()))

	switch outcome.Kind {
	case model.OutcomeRejection:
		logger.Info("source rejected as not front-end code", "message", outcome.Rejection.Message)
	case model.OutcomeReport:
		r := outcome.Report
		logger.Info("analysis complete",
			"conformance_level", r.ConformanceLevel,
			"score", r.Score,
			"passed", r.OverallStats.TotalPassed,
			"failed", r.OverallStats.TotalFailed,
			"suggestions", len(r.Suggestions),
		)
	}
	return res, nil
}

func (s *Service) run(ctx context.Context, sourceCode string) (model.Outcome, error) {
	p, err := s.prompter.Build(sourceCode)
	if err != nil {
		if errors.Is(err, prompt.ErrEmptySource) {
			return model.Outcome{}, &errs.AppError{Kind: errs.InvalidInput, Message: MissingSourceMessage, Cause: err}
		}
		return model.Outcome{}, &errs.AppError{Kind: errs.Unknown, Message: "failed to build prompt", Cause: err}
	}

	payload, err := s.completer.Complete(ctx, p)
	if err != nil {
		if errs.KindOf(err) == errs.Unknown && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = &errs.AppError{Kind: errs.ProviderFailed, Message: "provider call timed out", Cause: err}
		}
		return model.Outcome{}, err
	}

	outcome, err := model.DecodeOutcome(payload)
	if err != nil {
		return model.Outcome{}, &errs.AppError{Kind: errs.SchemaMismatch, Message: "invalid provider response", Cause: err}
	}
	return outcome, nil
}

func (s *Service) record(provider, outcome string) {
	if s.recorder != nil {
		s.recorder.RecordAnalysis(provider, outcome)
	}
}

// entropyPool holds monotonic entropy sources so concurrent requests do not
// contend on one reader.
var entropyPool = sync.Pool{
	New: func() any {
		return ulid.Monotonic(rand.Reader, 0)
	},
}

func newAnalysisID() string {
	e := entropyPool.Get().(*ulid.MonotonicEntropy)
	id := ulid.MustNew(ulid.Timestamp(time.Now()), e)
	entropyPool.Put(e)
	return id.String()
}
