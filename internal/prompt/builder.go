// Package prompt builds the fixed WCAG 2.2 evaluation prompt sent to the
// AI provider.
package prompt

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/Bahjat/a11y-insight-tool/internal/model"
)

// ErrEmptySource is returned when the source code is blank after trimming.
var ErrEmptySource = errors.New("prompt: source code is empty")

// DefaultLanguage is the report language used when none is configured.
const DefaultLanguage = "pt-BR"

//go:embed prompt.tmpl
var promptText string

var promptTmpl = template.Must(template.New("prompt").Funcs(template.FuncMap{
	"last": func(i int, levels []levelSection) bool { return i == len(levels)-1 },
}).Parse(promptText))

// Builder renders the evaluation prompt. The zero value is not usable; call
// NewBuilder.
type Builder struct {
	language string
	levels   []levelSection
}

type numberedCriterion struct {
	Criterion
	Number int
}

type levelSection struct {
	Level    model.Level
	Total    int
	Criteria []numberedCriterion
}

type promptData struct {
	Language      string
	NonConformant string
	Total         int
	Levels        []levelSection
	SourceCode    string
}

// NewBuilder loads the criteria catalog and prepares a builder producing
// titles and descriptions in the given language.
func NewBuilder(language string) (*Builder, error) {
	all, err := Catalog()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(language) == "" {
		language = DefaultLanguage
	}

	b := &Builder{language: language}
	n := 0
	for _, l := range model.Levels {
		sec := levelSection{Level: l, Total: l.Total()}
		for _, c := range all {
			if c.Level != l {
				continue
			}
			n++
			sec.Criteria = append(sec.Criteria, numberedCriterion{Criterion: c, Number: n})
		}
		b.levels = append(b.levels, sec)
	}
	return b, nil
}

// Language reports the configured report language.
func (b *Builder) Language() string {
	return b.language
}

// Build returns the prompt for sourceCode. The output depends only on the
// builder's language and the input.
func (b *Builder) Build(sourceCode string) (string, error) {
	if strings.TrimSpace(sourceCode) == "" {
		return "", ErrEmptySource
	}

	var sb strings.Builder
	sb.Grow(len(promptText) + len(sourceCode) + 16<<10)

	err := promptTmpl.Execute(&sb, promptData{
		Language:      b.language,
		NonConformant: model.NonConformant,
		Total:         model.TotalCriteria,
		Levels:        b.levels,
		SourceCode:    sourceCode,
	})
	if err != nil {
		return "", fmt.Errorf("prompt: rendering template: %w", err)
	}
	return sb.String(), nil
}
