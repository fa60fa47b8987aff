package analyzer

import (
	"context"
)

//go:generate mockgen -destination=mocks/mock_completer.go -package=mocks . Completer

// Completer sends a prompt to the configured AI provider and returns the JSON
// document of its reply.
type Completer interface {
	Name() string
	Complete(ctx context.Context, prompt string) ([]byte, error)
}

// Prompter renders the evaluation prompt for a source snippet.
type Prompter interface {
	Build(sourceCode string) (string, error)
}

// Recorder counts finished analyses.
type Recorder interface {
	RecordAnalysis(provider, outcome string)
}
