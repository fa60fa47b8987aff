package render_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/Bahjat/a11y-insight-tool/internal/model"
	"github.com/Bahjat/a11y-insight-tool/internal/model/modeltest"
	"github.com/Bahjat/a11y-insight-tool/internal/render"
)

func renderHTML(t *testing.T, o model.Outcome) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, render.HTML(&buf, o))
	return buf.String()
}

// parse returns the fragment's nodes under a synthetic body.
func parse(t *testing.T, fragment string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader("<!DOCTYPE html><html><body>" + fragment + "</body></html>"))
	require.NoError(t, err)
	return doc
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, c := range strings.Fields(a.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	var b strings.Builder
	for _, t := range findAll(n, func(n *html.Node) bool { return n.Type == html.TextNode }) {
		b.WriteString(t.Data)
	}
	return b.String()
}

func TestNewReportView_GaugeForSingleFailure(t *testing.T) {
	r := modeltest.Report(map[model.Level][]model.Criterion{
		model.LevelA: {modeltest.MissingAlt},
	})

	v := render.NewReportView(r)

	require.Len(t, v.Gauges, 3)
	a := v.Gauges[0]
	assert.Equal(t, model.LevelA, a.Level)
	assert.Equal(t, 30, a.Passed)
	assert.Equal(t, 31, a.Total)
	assert.Equal(t, 97, a.Percent)
	assert.Equal(t, "10.93", a.Offset)
	assert.Equal(t, "#eab308", a.Color)

	aaa := v.Gauges[2]
	assert.Equal(t, 100, aaa.Percent)
	assert.Equal(t, "0.00", aaa.Offset)

	assert.Equal(t, "level-aa", v.Levels[1].ID)
	assert.Equal(t, 85, v.TotalPassed)
	assert.Equal(t, 1, v.TotalFailed)
}

func TestNewReportView_BadgeFallbacks(t *testing.T) {
	r := modeltest.Report(nil)
	r.Suggestions = []model.Suggestion{
		{Title: "a", Priority: model.PriorityHigh, Impact: model.ImpactLow},
		{Title: "b", Priority: "Urgente", Impact: "Enorme"},
	}

	v := render.NewReportView(r)

	require.Len(t, v.Suggestions, 2)
	assert.Equal(t, 1, v.Suggestions[0].Number)
	assert.Equal(t, "priority-alta", v.Suggestions[0].PriorityClass)
	assert.Equal(t, "impact-baixo", v.Suggestions[0].ImpactClass)
	assert.Equal(t, "priority-media", v.Suggestions[1].PriorityClass)
	assert.Equal(t, "impact-medio", v.Suggestions[1].ImpactClass)
	assert.Equal(t, "badge-aaa", v.BadgeClass)
}

func TestHTML_Report(t *testing.T) {
	r := modeltest.Report(map[model.Level][]model.Criterion{
		model.LevelA: {modeltest.MissingAlt},
	})
	doc := parse(t, renderHTML(t, model.NewReportOutcome(r)))

	progress := findAll(doc, func(n *html.Node) bool { return hasClass(n, "gauge-progress") })
	require.Len(t, progress, 3)
	assert.Equal(t, "#eab308", attr(progress[0], "stroke"))
	assert.Equal(t, "10.93", attr(progress[0], "stroke-dashoffset"))
	assert.Equal(t, "364.42", attr(progress[0], "stroke-dasharray"))

	values := findAll(doc, func(n *html.Node) bool { return hasClass(n, "gauge-value") })
	require.Len(t, values, 3)
	assert.Equal(t, "30/31", text(values[0]))

	badge := findAll(doc, func(n *html.Node) bool { return hasClass(n, "conformance-badge") })
	require.Len(t, badge, 1)
	assert.Equal(t, "Nível de Conformidade: Não Conforme", text(badge[0]))

	snippets := findAll(doc, func(n *html.Node) bool { return hasClass(n, "code-snippet") })
	require.Len(t, snippets, 1, "only failed criteria show a snippet")
	assert.Equal(t, "<img src='a.png'>", text(snippets[0]))

	tabs := findAll(doc, func(n *html.Node) bool { return hasClass(n, "tab-content") })
	require.Len(t, tabs, 3)
	assert.Equal(t, "level-a", attr(tabs[0], "id"))

	empty := findAll(doc, func(n *html.Node) bool { return hasClass(n, "suggestions-empty") })
	assert.Len(t, empty, 1)
}

func TestHTML_EscapesProviderText(t *testing.T) {
	payload := "<script>alert('x')</script>"
	r := modeltest.Report(map[model.Level][]model.Criterion{
		model.LevelAA: {{Title: payload, Description: payload, CodeSnippet: payload}},
	})
	r.Suggestions = []model.Suggestion{{Title: payload, Description: payload, Priority: payload, Impact: payload}}

	out := renderHTML(t, model.NewReportOutcome(r))
	doc := parse(t, out)

	scripts := findAll(doc, func(n *html.Node) bool { return n.Type == html.ElementNode && n.Data == "script" })
	assert.Empty(t, scripts)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, text(doc), payload)
}

func TestHTML_Idempotent(t *testing.T) {
	r := modeltest.Report(map[model.Level][]model.Criterion{
		model.LevelA:   {modeltest.MissingAlt},
		model.LevelAAA: {{Title: "2.4.9 - Link Purpose (Link Only)", Description: "Generic link text."}},
	})
	r.Suggestions = []model.Suggestion{{Title: "Add alt", Description: "d", Priority: model.PriorityHigh, Impact: model.ImpactHigh}}
	o := model.NewReportOutcome(r)

	first := renderHTML(t, o)
	second := renderHTML(t, o)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, strings.Count(second, "suggestion-card"))
}

func TestHTML_Rejection(t *testing.T) {
	msg := "O texto enviado não parece ser código front-end."
	out := renderHTML(t, model.NewRejectionOutcome(msg))
	doc := parse(t, out)

	alerts := findAll(doc, func(n *html.Node) bool { return hasClass(n, "alert") })
	require.Len(t, alerts, 1)
	assert.Equal(t, msg, text(alerts[0]))
	assert.True(t, hasClass(alerts[0], "alert-info"))
	assert.NotContains(t, out, "gauge")
	assert.NotContains(t, out, "criterion")
}

func TestHTML_EmptyOutcome(t *testing.T) {
	var buf bytes.Buffer
	err := render.HTML(&buf, model.Outcome{})
	assert.ErrorIs(t, err, render.ErrEmptyOutcome)
	assert.Zero(t, buf.Len())
}

func TestAlertHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.AlertHTML(&buf, render.ErrorAlert(render.GenericFailureMessage)))

	doc := parse(t, buf.String())
	alerts := findAll(doc, func(n *html.Node) bool { return hasClass(n, "alert-error") })
	require.Len(t, alerts, 1)
	assert.Equal(t, "alert", attr(alerts[0], "role"))
	assert.Equal(t, render.GenericFailureMessage, text(alerts[0]))
}

func TestTerminal(t *testing.T) {
	r := modeltest.Report(map[model.Level][]model.Criterion{
		model.LevelA: {modeltest.MissingAlt},
	})
	r.Suggestions = []model.Suggestion{{Title: "Add alt text", Priority: "?", Impact: model.ImpactHigh}}

	out, err := render.Terminal(model.NewReportOutcome(r))
	require.NoError(t, err)

	assert.Contains(t, out, "30/31")
	assert.Contains(t, out, "97%")
	assert.Contains(t, out, "1.1.1 - Non-text Content")
	assert.Contains(t, out, "<img src='a.png'>")
	assert.Contains(t, out, "1. ")
	assert.Contains(t, out, "Add alt text")

	rej, err := render.Terminal(model.NewRejectionOutcome("não é código"))
	require.NoError(t, err)
	assert.Contains(t, rej, "não é código")
	assert.NotContains(t, rej, "/31")
}
