package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Bahjat/a11y-insight-tool/internal/model"
	"github.com/Bahjat/a11y-insight-tool/internal/model/modeltest"
	"github.com/Bahjat/a11y-insight-tool/internal/prompt"
	"github.com/Bahjat/a11y-insight-tool/internal/provider"
	"github.com/Bahjat/a11y-insight-tool/internal/render"
	"github.com/Bahjat/a11y-insight-tool/internal/sourcefetch"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmdForTest()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// fakeServer answers analyses with body and status. The returned func lists
// the sources it received.
func fakeServer(t *testing.T, status int, body []byte) (*httptest.Server, func() []string) {
	t.Helper()
	var (
		mu       sync.Mutex
		received []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := body
		switch r.URL.Path {
		case "/api/analyze-accessibility":
			var req model.AnalyzeRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			mu.Lock()
			received = append(received, req.SourceCode)
			mu.Unlock()
		case "/api/status":
			resp = []byte(`{"status":"online","provider":"groq","hasGoogle":false,"timestamp":"2025-03-01T12:00:00Z"}`)
		case "/api/criteria":
			list, _ := localCriteria(r.URL.Query().Get("level"))
			resp = modeltest.JSON(list)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(resp)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), received...)
	}
}

func failedReport() []byte {
	return modeltest.JSON(modeltest.Report(map[model.Level][]model.Criterion{
		model.LevelA: {modeltest.MissingAlt},
	}))
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "a11y dev"))
}

func TestAnalyzeCommand_RemoteJSON(t *testing.T) {
	srv, received := fakeServer(t, http.StatusOK, failedReport())

	out, _, err := run(t, "  <img src='a.png'>\n", "analyze", "--server", srv.URL, "-o", "json")

	require.NoError(t, err)
	assert.Equal(t, []string{"<img src='a.png'>"}, received())
	var report model.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 30, report.LevelStats.A.Passed)
	assert.Contains(t, out, `"conformanceLevel"`)
}

func TestAnalyzeCommand_RemoteHumanFromFile(t *testing.T) {
	srv, received := fakeServer(t, http.StatusOK, failedReport())
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte("<img src='a.png'>"), 0o600))

	out, _, err := run(t, "", "analyze", path, "--server", srv.URL)

	require.NoError(t, err)
	assert.Len(t, received(), 1)
	assert.Contains(t, out, "30/31")
	assert.Contains(t, out, modeltest.MissingAlt.Title)
}

func TestAnalyzeCommand_RemoteYAMLAndHTML(t *testing.T) {
	srv, _ := fakeServer(t, http.StatusOK, failedReport())

	out, _, err := run(t, "<img>", "analyze", "--server", srv.URL, "-o", "yaml")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Contains(t, doc, "levelStats")

	out, _, err = run(t, "<img>", "analyze", "--server", srv.URL, "-o", "html")
	require.NoError(t, err)
	assert.Contains(t, out, `stroke-dashoffset="10.93"`)
}

func TestAnalyzeCommand_Rejection(t *testing.T) {
	srv, _ := fakeServer(t, http.StatusOK, []byte(`{"isValidCode":false,"message":"Isto não é código front-end."}`))

	out, _, err := run(t, "bom dia", "analyze", "--server", srv.URL, "-o", "json")

	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"info","message":"Isto não é código front-end."}`, out)
}

func TestAnalyzeCommand_Failures(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		stdin       string
		wantMessage string
		wantCalls   int
	}{
		{
			name:        "unavailable message is shown as is",
			status:      http.StatusServiceUnavailable,
			body:        `{"error":"Serviço Indisponível","status_code":503,"message":"Nenhum provedor configurado."}`,
			stdin:       "<img>",
			wantMessage: "Nenhum provedor configurado.",
			wantCalls:   1,
		},
		{
			name:        "server error is generic",
			status:      http.StatusInternalServerError,
			body:        `{"error":"Erro ao Processar a Análise","status_code":500,"message":"upstream said no"}`,
			stdin:       "<img>",
			wantMessage: render.GenericFailureMessage,
			wantCalls:   1,
		},
		{
			name:        "malformed success body",
			status:      http.StatusOK,
			body:        `{"score": 10}`,
			stdin:       "<img>",
			wantMessage: render.InvalidResponseMessage,
			wantCalls:   1,
		},
		{
			name:        "blank source never reaches the server",
			status:      http.StatusOK,
			body:        `{}`,
			stdin:       " \n\t",
			wantMessage: render.EmptySourceMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, received := fakeServer(t, tt.status, []byte(tt.body))

			out, _, err := run(t, tt.stdin, "analyze", "--server", srv.URL, "-o", "json")

			require.ErrorIs(t, err, errAnalysisFailed)
			assert.JSONEq(t, `{"kind":"error","message":`+string(modeltest.JSON(tt.wantMessage))+`}`, out)
			assert.Len(t, received(), tt.wantCalls)
		})
	}
}

func TestAnalyzeCommand_LocalWithoutKey(t *testing.T) {
	t.Setenv("A11Y_CONFIG", "")
	t.Setenv("AI_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")

	out, _, err := run(t, "<img>", "analyze")

	require.ErrorIs(t, err, errAnalysisFailed)
	assert.Contains(t, out, provider.UnavailableMessage)
}

func TestAnalyzeCommand_FromURL(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, "<img src='from-url.png'>")
	}))
	defer page.Close()

	orig := newFetcher
	newFetcher = func() *sourcefetch.Fetcher { return sourcefetch.New(sourcefetch.WithClient(page.Client())) }
	t.Cleanup(func() { newFetcher = orig })

	srv, received := fakeServer(t, http.StatusOK, failedReport())

	_, _, err := run(t, "", "analyze", "--url", page.URL, "--server", srv.URL, "-o", "json")

	require.NoError(t, err)
	assert.Equal(t, []string{"<img src='from-url.png'>"}, received())
}

func TestAnalyzeCommand_BadFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown output", args: []string{"analyze", "-o", "xml", "--server", "http://127.0.0.1:1"}},
		{name: "file and url", args: []string{"analyze", "-f", "a.html", "--url", "https://example.com"}},
		{name: "file twice", args: []string{"analyze", "a.html", "-f", "b.html"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, "<img>", tt.args...)
			require.Error(t, err)
			assert.NotErrorIs(t, err, errAnalysisFailed)
		})
	}
}

func TestCriteriaCommand(t *testing.T) {
	out, _, err := run(t, "", "criteria", "-o", "json")
	require.NoError(t, err)
	var all []prompt.Criterion
	require.NoError(t, json.Unmarshal([]byte(out), &all))
	assert.Len(t, all, model.TotalCriteria)

	out, _, err = run(t, "", "criteria", "--level", "aa")
	require.NoError(t, err)
	assert.Contains(t, out, "24 criteria")

	_, _, err = run(t, "", "criteria", "--level", "B")
	assert.Error(t, err)
}

func TestCriteriaCommand_Remote(t *testing.T) {
	srv, _ := fakeServer(t, http.StatusOK, nil)

	out, _, err := run(t, "", "criteria", "--server", srv.URL, "--level", "AAA", "-o", "yaml")

	require.NoError(t, err)
	var list []prompt.Criterion
	require.NoError(t, yaml.Unmarshal([]byte(out), &list))
	assert.Len(t, list, model.TotalAAA)
}

func TestStatusCommand(t *testing.T) {
	srv, _ := fakeServer(t, http.StatusOK, nil)

	out, _, err := run(t, "", "status", "--server", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "is online")
	assert.Contains(t, out, "provider:   groq")

	out, _, err = run(t, "", "status", "--server", srv.URL, "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"hasGoogle": false`)
}

func TestStatusCommand_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, _, err := run(t, "", "status", "--server", url)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status check failed")
}
