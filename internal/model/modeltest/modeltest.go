// Package modeltest builds well-formed reports for tests.
package modeltest

import (
	"encoding/json"
	"fmt"

	"github.com/Bahjat/a11y-insight-tool/internal/model"
)

// Report returns a normalized report in which the given criteria failed and
// every other criterion of each level passed as not applicable.
func Report(failed map[model.Level][]model.Criterion) *model.Report {
	r := &model.Report{
		ConformanceLevel: string(model.LevelAAA),
		Score:            100,
		Suggestions:      []model.Suggestion{},
	}
	if len(failed) > 0 {
		r.ConformanceLevel = model.NonConformant
		r.Score = 90
	}

	for _, l := range model.Levels {
		res := model.LevelResult{Failed: append([]model.Criterion{}, failed[l]...)}
		for i := len(res.Failed); i < l.Total(); i++ {
			res.Passed = append(res.Passed, model.Criterion{
				Title:       fmt.Sprintf("%s-%02d - Criterion", l, i+1),
				Description: "Not applicable: no matching content in the source.",
			})
		}
		switch l {
		case model.LevelA:
			r.LevelA = res
		case model.LevelAA:
			r.LevelAA = res
		case model.LevelAAA:
			r.LevelAAA = res
		}
	}

	if err := r.Normalize(); err != nil {
		panic(err)
	}
	return r
}

// JSON encodes v, panicking on failure.
func JSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// MissingAlt is the failing criterion used by end-to-end scenarios.
var MissingAlt = model.Criterion{
	Title:       "1.1.1 - Non-text Content",
	Description: "The <img> element has no alt attribute.",
	CodeSnippet: "<img src='a.png'>",
}
