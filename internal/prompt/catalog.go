package prompt

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Bahjat/a11y-insight-tool/internal/model"
)

//go:embed criteria.yaml
var criteriaYAML []byte

// Criterion is one WCAG 2.2 success criterion with the code signal the model
// is asked to look for.
type Criterion struct {
	ID     string      `json:"id" yaml:"id"`
	Name   string      `json:"name" yaml:"name"`
	Level  model.Level `json:"level" yaml:"level"`
	Signal string      `json:"signal" yaml:"signal"`
}

var (
	catalogOnce sync.Once
	catalog     []Criterion
	catalogErr  error
)

// Catalog returns the embedded criteria in prompt order. The slice is shared;
// callers must not modify it.
func Catalog() ([]Criterion, error) {
	catalogOnce.Do(func() {
		catalog, catalogErr = parseCatalog(criteriaYAML)
	})
	return catalog, catalogErr
}

// ByLevel returns the criteria of one conformance level.
func ByLevel(l model.Level) ([]Criterion, error) {
	all, err := Catalog()
	if err != nil {
		return nil, err
	}
	var out []Criterion
	for _, c := range all {
		if c.Level == l {
			out = append(out, c)
		}
	}
	return out, nil
}

func parseCatalog(data []byte) ([]Criterion, error) {
	var list []Criterion
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("prompt: parsing criteria: %w", err)
	}
	if err := validateCatalog(list); err != nil {
		return nil, err
	}
	return list, nil
}

var errCatalog = errors.New("prompt: invalid criteria catalog")

func validateCatalog(list []Criterion) error {
	seen := make(map[string]bool, len(list))
	counts := make(map[model.Level]int, len(model.Levels))

	for i, c := range list {
		if c.ID == "" || c.Name == "" || c.Signal == "" {
			return fmt.Errorf("%w: entry %d is incomplete", errCatalog, i)
		}
		if seen[c.ID] {
			return fmt.Errorf("%w: duplicate id %s", errCatalog, c.ID)
		}
		seen[c.ID] = true

		if c.Level.Total() == 0 {
			return fmt.Errorf("%w: %s has unknown level %q", errCatalog, c.ID, c.Level)
		}
		counts[c.Level]++
	}

	for _, l := range model.Levels {
		if counts[l] != l.Total() {
			return fmt.Errorf("%w: level %s has %d criteria, want %d", errCatalog, l, counts[l], l.Total())
		}
	}
	return nil
}
