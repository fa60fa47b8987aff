package analyzer

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Bahjat/a11y-insight-tool/internal/model"
	"github.com/Bahjat/a11y-insight-tool/internal/model/modeltest"
	"github.com/Bahjat/a11y-insight-tool/internal/platform/errs"
	"github.com/Bahjat/a11y-insight-tool/internal/prompt"
)

type countingRecorder struct {
	calls []string
}

func (r *countingRecorder) RecordAnalysis(provider, outcome string) {
	r.calls = append(r.calls, provider+"/"+outcome)
}

type stubPrompter struct {
	err error
}

func (p stubPrompter) Build(src string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return "PROMPT:" + src, nil
}

func TestAnalyze_Report(t *testing.T) {
	m := newMockCompleter(t)
	m.EXPECT().Complete(gomock.Any(), "PROMPT:"+sampleSource).Return(modeltest.JSON(modeltest.Report(nil)), nil)
	rec := &countingRecorder{}

	var logs bytes.Buffer
	svc := NewService(m, stubPrompter{}, rec, slog.New(slog.NewJSONHandler(&logs, nil)))

	res, err := svc.Analyze(context.Background(), sampleSource)
	require.NoError(t, err)

	assert.Len(t, res.ID, 26)
	assert.Equal(t, model.OutcomeReport, res.Outcome.Kind)
	assert.Equal(t, model.TotalCriteria, res.Outcome.Report.OverallStats.TotalPassed)
	assert.Equal(t, []string{"groq/report"}, rec.calls)
	assert.Contains(t, logs.String(), `"analysis_id":"`+res.ID+`"`)
	assert.Contains(t, logs.String(), "analysis complete")
}

func TestAnalyze_IDsAreUnique(t *testing.T) {
	m := newMockCompleter(t)
	m.EXPECT().Complete(gomock.Any(), gomock.Any()).
		Return([]byte(`{"isValidCode":false,"message":"no"}`), nil).Times(2)
	svc := NewService(m, stubPrompter{}, nil, slog.New(slog.DiscardHandler))

	first, err := svc.Analyze(context.Background(), "x")
	require.NoError(t, err)
	second, err := svc.Analyze(context.Background(), "x")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestAnalyze_Errors(t *testing.T) {
	providerErr := &errs.AppError{Kind: errs.ProviderFailed, UpstreamStatus: 429, Message: "provider returned an error"}

	tests := []struct {
		name     string
		source   string
		prompter stubPrompter
		setup    func(*testing.T) Completer
		wantKind errs.Kind
		wantLog  string
	}{
		{
			name:   "blank source",
			source: "   ",
			setup: func(t *testing.T) Completer {
				return newMockCompleter(t)
			},
			wantKind: errs.InvalidInput,
		},
		{
			name:     "prompt failure",
			source:   sampleSource,
			prompter: stubPrompter{err: errors.New("template broke")},
			setup: func(t *testing.T) Completer {
				return newMockCompleter(t)
			},
			wantKind: errs.Unknown,
			wantLog:  "analysis failed",
		},
		{
			name:   "provider failure passes through",
			source: sampleSource,
			setup: func(t *testing.T) Completer {
				m := newMockCompleter(t)
				m.EXPECT().Complete(gomock.Any(), gomock.Any()).Return(nil, providerErr)
				return m
			},
			wantKind: errs.ProviderFailed,
			wantLog:  `"upstream_status":429`,
		},
		{
			name:   "schema mismatch",
			source: sampleSource,
			setup: func(t *testing.T) Completer {
				m := newMockCompleter(t)
				m.EXPECT().Complete(gomock.Any(), gomock.Any()).Return([]byte(`{"score": 10}`), nil)
				return m
			},
			wantKind: errs.SchemaMismatch,
			wantLog:  "provider response violates report schema",
		},
		{
			name:   "array payload",
			source: sampleSource,
			setup: func(t *testing.T) Completer {
				m := newMockCompleter(t)
				m.EXPECT().Complete(gomock.Any(), gomock.Any()).Return([]byte(`[]`), nil)
				return m
			},
			wantKind: errs.SchemaMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			rec := &countingRecorder{}
			svc := NewService(tt.setup(t), tt.prompter, rec, slog.New(slog.NewJSONHandler(&logs, nil)))

			_, err := svc.Analyze(context.Background(), tt.source)

			require.Error(t, err)
			assert.Equal(t, tt.wantKind, errs.KindOf(err))
			if tt.wantKind != errs.InvalidInput {
				assert.Equal(t, []string{"groq/" + tt.wantKind.String()}, rec.calls)
			}
			if tt.wantLog != "" {
				assert.Contains(t, logs.String(), tt.wantLog)
			}
		})
	}
}

func TestAnalyze_EmptySourceFromPrompter(t *testing.T) {
	svc := NewService(newMockCompleter(t), stubPrompter{err: prompt.ErrEmptySource}, nil, slog.New(slog.DiscardHandler))

	_, err := svc.Analyze(context.Background(), "<p>")

	assert.Equal(t, errs.InvalidInput, errs.KindOf(err))
	assert.ErrorIs(t, err, prompt.ErrEmptySource)
}

func TestAnalyze_DeadlineIsProviderFailure(t *testing.T) {
	m := newMockCompleter(t)
	m.EXPECT().Complete(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, _ string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	svc := NewService(m, stubPrompter{}, nil, slog.New(slog.DiscardHandler))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := svc.Analyze(ctx, sampleSource)

	assert.Equal(t, errs.ProviderFailed, errs.KindOf(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
