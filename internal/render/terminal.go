package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Bahjat/a11y-insight-tool/internal/model"
)

var (
	accent  = lipgloss.Color("#3B82F6")
	fg      = lipgloss.Color("#E5E7EB")
	dim     = lipgloss.Color("#6B7280")
	faint   = lipgloss.Color("#374151")
	success = lipgloss.Color("#22C55E")
	danger  = lipgloss.Color("#EF4444")
	warning = lipgloss.Color("#F59E0B")
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	alertStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			PaddingLeft(1)

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	snippetStyle  = lipgloss.NewStyle().Foreground(warning)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))

	priorityColors = map[string]lipgloss.Color{
		"priority-alta":  danger,
		"priority-media": warning,
		"priority-baixa": success,
	}
	impactColors = map[string]lipgloss.Color{
		"impact-alto":  accent,
		"impact-medio": fg,
		"impact-baixo": dim,
	}
)

// Terminal renders an outcome for a terminal.
func Terminal(o model.Outcome) (string, error) {
	switch o.Kind {
	case model.OutcomeReport:
		if o.Report == nil {
			return "", ErrEmptyOutcome
		}
		return TerminalReport(NewReportView(o.Report)), nil
	case model.OutcomeRejection:
		if o.Rejection == nil {
			return "", ErrEmptyOutcome
		}
		return TerminalAlert(RejectionAlert(o.Rejection)), nil
	}
	return "", ErrEmptyOutcome
}

// TerminalAlert renders a single alert line.
func TerminalAlert(a Alert) string {
	color := danger
	if a.Kind == AlertInfo {
		color = warning
	}
	return alertStyle.BorderForeground(color).Foreground(color).Render(a.Message) + "\n"
}

// TerminalReport renders the gauges, summary, failed criteria and
// suggestions of a report.
func TerminalReport(v ReportView) string {
	var b strings.Builder

	title := headerStyle.Render("a11y-insight")
	subtitle := dimStyle.Render("WCAG 2.2")
	scoreLine := lipgloss.NewStyle().Bold(true).Foreground(scoreColor(v.Score)).
		Render(fmt.Sprintf("%d / 100", v.Score))
	badge := titleStyle.Render("Nível de Conformidade: " + v.ConformanceLevel)
	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + scoreLine + "\n" + badge))
	b.WriteString("\n\n")

	for _, g := range v.Gauges {
		color := lipgloss.Color(g.Color)
		name := lipgloss.NewStyle().Bold(true).Foreground(color).Render(padRight("Nível "+string(g.Level), 11))
		fmt.Fprintf(&b, "  %s %s  %s %s\n",
			name,
			bar(g.Percent, 24, color),
			titleStyle.Render(fmt.Sprintf("%d/%d", g.Passed, g.Total)),
			dimStyle.Render(fmt.Sprintf("%d%% %s", g.Percent, g.Description)),
		)
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s  %s\n",
		passStyle.Render(fmt.Sprintf("Total Atendidos %d", v.TotalPassed)),
		failStyle.Render(fmt.Sprintf("Total Não Atendidos %d", v.TotalFailed)),
	)
	b.WriteString("\n  " + separatorLine + "\n\n")

	for _, l := range v.Levels {
		fmt.Fprintf(&b, "  %s %s\n",
			titleStyle.Render(fmt.Sprintf("Critérios Não Atendidos - Nível %s", l.Level)),
			dimStyle.Render(fmt.Sprintf("(%d)", len(l.Failed))),
		)
		if len(l.Failed) == 0 {
			b.WriteString("    " + passStyle.Render("✓ nenhum") + "\n\n")
			continue
		}
		for _, c := range l.Failed {
			b.WriteString("    " + failStyle.Render("✗ ") + c.Title + "\n")
			if c.Description != "" {
				b.WriteString("      " + dimStyle.Render(c.Description) + "\n")
			}
			for _, line := range strings.Split(strings.TrimSpace(c.CodeSnippet), "\n") {
				if line != "" {
					b.WriteString("      " + snippetStyle.Render(line) + "\n")
				}
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("  " + separatorLine + "\n\n")
	b.WriteString("  " + titleStyle.Render("Sugestões") + "\n\n")
	if len(v.Suggestions) == 0 {
		b.WriteString("  " + passStyle.Render("Excelente trabalho! 🎉") + "\n")
	}
	for _, s := range v.Suggestions {
		priority := lipgloss.NewStyle().Bold(true).Foreground(priorityColors[s.PriorityClass]).Render(s.Priority)
		impact := lipgloss.NewStyle().Foreground(impactColors[s.ImpactClass]).Render(s.Impact)
		fmt.Fprintf(&b, "  %s %s  %s %s\n",
			dimStyle.Render(fmt.Sprintf("%d.", s.Number)),
			titleStyle.Render(s.Title),
			priority,
			impact,
		)
		if s.Description != "" {
			b.WriteString("     " + dimStyle.Render(s.Description) + "\n")
		}
	}

	b.WriteString("\n")
	return b.String()
}

func bar(pct, width int, color lipgloss.Color) string {
	filled := pct * width / 100
	if filled > width {
		filled = width
	}
	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		faintStyle.Render(strings.Repeat("░", width-filled))
}

func scoreColor(score int) lipgloss.Color {
	switch {
	case score >= 80:
		return success
	case score >= 50:
		return warning
	default:
		return danger
	}
}

func padRight(s string, n int) string {
	if w := lipgloss.Width(s); w < n {
		return s + strings.Repeat(" ", n-w)
	}
	return s
}
