package model

import (
	"errors"
	"fmt"
)

// Level is a WCAG conformance level.
type Level string

const (
	LevelA   Level = "A"
	LevelAA  Level = "AA"
	LevelAAA Level = "AAA"
)

// NonConformant is the conformance level reported when baseline checks fail.
const NonConformant = "Não Conforme"

// Fixed criterion counts per level for WCAG 2.2.
const (
	TotalA        = 31
	TotalAA       = 24
	TotalAAA      = 31
	TotalCriteria = TotalA + TotalAA + TotalAAA
)

// Levels lists the conformance levels in display order.
var Levels = []Level{LevelA, LevelAA, LevelAAA}

// Total returns the fixed number of criteria for the level.
func (l Level) Total() int {
	switch l {
	case LevelA:
		return TotalA
	case LevelAA:
		return TotalAA
	case LevelAAA:
		return TotalAAA
	}
	return 0
}

// Suggestion priorities and impacts as emitted by the provider.
const (
	PriorityHigh   = "Alta"
	PriorityMedium = "Média"
	PriorityLow    = "Baixa"

	ImpactHigh   = "Alto"
	ImpactMedium = "Médio"
	ImpactLow    = "Baixo"
)

// Report is the accessibility report produced for one analysis request.
type Report struct {
	ConformanceLevel string       `json:"conformanceLevel" yaml:"conformanceLevel"`
	Score            int          `json:"score" yaml:"score"`
	OverallStats     OverallStats `json:"overallStats" yaml:"overallStats"`
	LevelStats       LevelStats   `json:"levelStats" yaml:"levelStats"`
	LevelA           LevelResult  `json:"levelA" yaml:"levelA"`
	LevelAA          LevelResult  `json:"levelAA" yaml:"levelAA"`
	LevelAAA         LevelResult  `json:"levelAAA" yaml:"levelAAA"`
	Suggestions      []Suggestion `json:"suggestions" yaml:"suggestions"`
}

// OverallStats aggregates pass/fail counts across all levels.
type OverallStats struct {
	TotalPassed   int `json:"totalPassed" yaml:"totalPassed"`
	TotalFailed   int `json:"totalFailed" yaml:"totalFailed"`
	TotalCriteria int `json:"totalCriteria" yaml:"totalCriteria"`
}

// LevelStats holds the per-level counters keyed by level name on the wire.
type LevelStats struct {
	A   LevelStat `json:"A" yaml:"A"`
	AA  LevelStat `json:"AA" yaml:"AA"`
	AAA LevelStat `json:"AAA" yaml:"AAA"`
}

// LevelStat counts passed and failed criteria for one level.
type LevelStat struct {
	Passed int `json:"passed" yaml:"passed"`
	Failed int `json:"failed" yaml:"failed"`
	Total  int `json:"total" yaml:"total"`
}

// LevelResult splits a level's criteria into met and not met.
type LevelResult struct {
	Passed []Criterion `json:"passed" yaml:"passed"`
	Failed []Criterion `json:"failed" yaml:"failed"`
}

// Criterion is a single evaluated WCAG rule.
type Criterion struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	CodeSnippet string `json:"codeSnippet,omitempty" yaml:"codeSnippet,omitempty"`
}

// Suggestion is an improvement proposed by the provider.
type Suggestion struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Priority    string `json:"priority" yaml:"priority"`
	Impact      string `json:"impact" yaml:"impact"`
}

// Stat returns the counters for the given level.
func (s LevelStats) Stat(l Level) LevelStat {
	switch l {
	case LevelAA:
		return s.AA
	case LevelAAA:
		return s.AAA
	default:
		return s.A
	}
}

func (s *LevelStats) set(l Level, st LevelStat) {
	switch l {
	case LevelA:
		s.A = st
	case LevelAA:
		s.AA = st
	case LevelAAA:
		s.AAA = st
	}
}

// Result returns the criteria lists for the given level.
func (r *Report) Result(l Level) LevelResult {
	switch l {
	case LevelAA:
		return r.LevelAA
	case LevelAAA:
		return r.LevelAAA
	default:
		return r.LevelA
	}
}

func (r *Report) levelResult(l Level) *LevelResult {
	switch l {
	case LevelAA:
		return &r.LevelAA
	case LevelAAA:
		return &r.LevelAAA
	default:
		return &r.LevelA
	}
}

var (
	errLevelCount       = errors.New("criteria count does not match level total")
	errConformanceLevel = errors.New("unknown conformance level")
	errScoreRange       = errors.New("score out of range 0-100")
)

// Normalize recomputes level and overall counters from the criterion lists,
// so that every counter invariant holds. It fails when a level's lists do not
// add up to the level's fixed total or when scalar fields are out of range.
func (r *Report) Normalize() error {
	switch Level(r.ConformanceLevel) {
	case LevelA, LevelAA, LevelAAA:
	default:
		if r.ConformanceLevel != NonConformant {
			return fmt.Errorf("%w: %q", errConformanceLevel, r.ConformanceLevel)
		}
	}

	if r.Score < 0 || r.Score > 100 {
		return fmt.Errorf("%w: %d", errScoreRange, r.Score)
	}

	var overall OverallStats
	for _, l := range Levels {
		res := r.levelResult(l)
		if res.Passed == nil {
			res.Passed = []Criterion{}
		}
		if res.Failed == nil {
			res.Failed = []Criterion{}
		}
		st := LevelStat{Passed: len(res.Passed), Failed: len(res.Failed), Total: l.Total()}
		if st.Passed+st.Failed != st.Total {
			return fmt.Errorf("%w: level %s has %d, want %d", errLevelCount, l, st.Passed+st.Failed, st.Total)
		}
		r.LevelStats.set(l, st)
		overall.TotalPassed += st.Passed
		overall.TotalFailed += st.Failed
	}
	overall.TotalCriteria = TotalCriteria
	r.OverallStats = overall

	if r.Suggestions == nil {
		r.Suggestions = []Suggestion{}
	}
	return nil
}

// Rejection signals that the submitted text was not recognized as front-end
// web code.
type Rejection struct {
	IsValidCode bool   `json:"isValidCode" yaml:"isValidCode"`
	Message     string `json:"message" yaml:"message"`
}
