// Package render turns analysis outcomes into HTML fragments and terminal
// output. Every renderer is a pure function of its input.
package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/Bahjat/a11y-insight-tool/internal/model"
)

// GaugeCircumference is the stroke length of a gauge ring of radius 58.
const GaugeCircumference = 364.42

// Messages shown in alerts when the outcome cannot be displayed.
const (
	GenericFailureMessage  = "Ocorreu uma falha na comunicação com o serviço de IA."
	InvalidResponseMessage = "Resposta do servidor em formato inválido"
	EmptySourceMessage     = "Por favor, insira o código-fonte para análise."
)

// levelStyle holds the fixed presentation of one conformance level.
type levelStyle struct {
	Color       string
	Description string
}

var levelStyles = map[model.Level]levelStyle{
	model.LevelA:   {Color: "#eab308", Description: "Básico"},
	model.LevelAA:  {Color: "#3b82f6", Description: "Padrão"},
	model.LevelAAA: {Color: "#10b981", Description: "Máximo"},
}

// Gauge is the ring chart of one level.
type Gauge struct {
	Level       model.Level
	Description string
	Color       string
	Passed      int
	Total       int
	Percent     int
	Offset      string
}

// LevelView is the tab content of one level.
type LevelView struct {
	Level       model.Level
	ID          string
	Description string
	Passed      []model.Criterion
	Failed      []model.Criterion
	Total       int
	Percent     int
}

// SuggestionView is a numbered suggestion with its badge classes resolved.
type SuggestionView struct {
	Number        int
	Title         string
	Description   string
	Priority      string
	Impact        string
	PriorityClass string
	ImpactClass   string
}

// ReportView is the display model of a report.
type ReportView struct {
	ConformanceLevel string
	BadgeClass       string
	Score            int
	TotalPassed      int
	TotalFailed      int
	TotalCriteria    int
	Gauges           []Gauge
	Levels           []LevelView
	Suggestions      []SuggestionView
}

// NewReportView derives the display model from a report. Counters are taken
// from levelStats so that gauges and tabs agree with the summary.
func NewReportView(r *model.Report) ReportView {
	v := ReportView{
		ConformanceLevel: r.ConformanceLevel,
		BadgeClass:       badgeClass(r.ConformanceLevel),
		Score:            r.Score,
		TotalPassed:      r.OverallStats.TotalPassed,
		TotalFailed:      r.OverallStats.TotalFailed,
		TotalCriteria:    r.OverallStats.TotalCriteria,
	}

	for _, l := range model.Levels {
		style := levelStyles[l]
		stat := r.LevelStats.Stat(l)
		total := l.Total()
		pct := percent(stat.Passed, total)

		v.Gauges = append(v.Gauges, Gauge{
			Level:       l,
			Description: style.Description,
			Color:       style.Color,
			Passed:      stat.Passed,
			Total:       total,
			Percent:     pct,
			Offset:      gaugeOffset(pct),
		})

		res := r.Result(l)
		v.Levels = append(v.Levels, LevelView{
			Level:       l,
			ID:          "level-" + strings.ToLower(string(l)),
			Description: style.Description,
			Passed:      res.Passed,
			Failed:      res.Failed,
			Total:       total,
			Percent:     pct,
		})
	}

	for i, s := range r.Suggestions {
		v.Suggestions = append(v.Suggestions, SuggestionView{
			Number:        i + 1,
			Title:         s.Title,
			Description:   s.Description,
			Priority:      s.Priority,
			Impact:        s.Impact,
			PriorityClass: priorityClass(s.Priority),
			ImpactClass:   impactClass(s.Impact),
		})
	}
	return v
}

func percent(passed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(passed) / float64(total) * 100))
}

func gaugeOffset(pct int) string {
	return fmt.Sprintf("%.2f", GaugeCircumference-float64(pct)/100*GaugeCircumference)
}

// badgeClass maps "Não Conforme" to badge-não-conforme the same way the
// stylesheet names it: lowercase with the first space replaced by a dash.
func badgeClass(level string) string {
	return "badge-" + strings.Replace(strings.ToLower(level), " ", "-", 1)
}

func priorityClass(p string) string {
	switch p {
	case model.PriorityHigh:
		return "priority-alta"
	case model.PriorityLow:
		return "priority-baixa"
	default:
		return "priority-media"
	}
}

func impactClass(i string) string {
	switch i {
	case model.ImpactHigh:
		return "impact-alto"
	case model.ImpactLow:
		return "impact-baixo"
	default:
		return "impact-medio"
	}
}
