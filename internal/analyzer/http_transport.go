package analyzer

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yousuf64/shift"

	"github.com/Bahjat/a11y-insight-tool/internal/model"
	"github.com/Bahjat/a11y-insight-tool/internal/platform/errs"
	"github.com/Bahjat/a11y-insight-tool/internal/prompt"
	"github.com/Bahjat/a11y-insight-tool/internal/render"
)

// AnalysisIDHeader carries the ID of a finished analysis.
const AnalysisIDHeader = "X-Analysis-ID"

// Error labels returned in the "error" field of failure responses.
const (
	errorMissingSource = "Código-fonte é obrigatório"
	errorUnavailable   = "Serviço Indisponível"
	errorProcessing    = "Erro ao Processar a Análise"
	errorTooLarge      = "Código-fonte muito grande"
)

const invalidBodyMessage = `Corpo da requisição inválido. Envie um objeto JSON com o campo "sourceCode".`

// InvalidProviderJSONMessage is the JSON failure message when the provider
// answered with text that is not JSON. The text itself stays in the log.
const InvalidProviderJSONMessage = "A IA retornou um JSON com sintaxe inválida."

// TransportConfig holds the request-level settings of the transport.
type TransportConfig struct {
	MaxRequestBytes int64
	HasGoogle       bool
}

// Transport handles HTTP requests for accessibility analysis.
type Transport struct {
	service *Service
	cfg     TransportConfig
	logger  *slog.Logger
	now     func() time.Time
}

// NewTransport creates an HTTP transport backed by the given service.
func NewTransport(service *Service, cfg TransportConfig, logger *slog.Logger) *Transport {
	return &Transport{service: service, cfg: cfg, logger: logger, now: time.Now}
}

// RegisterRoutes attaches the transport's handlers to the given router.
func (t *Transport) RegisterRoutes(router *shift.Router) {
	router.POST("/api/analyze-accessibility", t.handleAnalyze)
	router.GET("/api/status", t.handleStatus)
	router.GET("/api/criteria", t.handleCriteria)
}

func (t *Transport) handleAnalyze(w http.ResponseWriter, r *http.Request, _ shift.Route) error {
	if t.cfg.MaxRequestBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, t.cfg.MaxRequestBytes)
	}
	asHTML := wantsHTML(r)

	var req model.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return t.renderError(w, asHTML, http.StatusRequestEntityTooLarge, errorTooLarge, invalidBodyMessage)
		}
		return t.renderError(w, asHTML, http.StatusBadRequest, errorMissingSource, invalidBodyMessage)
	}

	if strings.TrimSpace(req.SourceCode) == "" {
		return t.renderError(w, asHTML, http.StatusBadRequest, errorMissingSource, MissingSourceMessage)
	}

	result, err := t.service.Analyze(r.Context(), req.SourceCode)
	if err != nil {
		return t.handleServiceError(w, asHTML, err)
	}

	w.Header().Set(AnalysisIDHeader, result.ID)
	if asHTML {
		return t.renderHTML(w, http.StatusOK, func(buf *bytes.Buffer) error {
			return render.HTML(buf, result.Outcome)
		})
	}
	return t.renderJSON(w, http.StatusOK, result.Outcome)
}

func (t *Transport) handleStatus(w http.ResponseWriter, _ *http.Request, _ shift.Route) error {
	return t.renderJSON(w, http.StatusOK, model.StatusResponse{
		Status:    "online",
		Provider:  t.service.Provider(),
		HasGoogle: t.cfg.HasGoogle,
		Timestamp: t.now().UTC(),
	})
}

func (t *Transport) handleCriteria(w http.ResponseWriter, r *http.Request, _ shift.Route) error {
	if q := r.URL.Query().Get("level"); q != "" {
		lvl := model.Level(strings.ToUpper(q))
		if lvl.Total() == 0 {
			return t.renderError(w, false, http.StatusBadRequest, http.StatusText(http.StatusBadRequest),
				`level must be one of "A", "AA", "AAA"`)
		}
		list, err := prompt.ByLevel(lvl)
		if err != nil {
			return err
		}
		return t.renderJSON(w, http.StatusOK, list)
	}

	list, err := prompt.Catalog()
	if err != nil {
		return err
	}
	return t.renderJSON(w, http.StatusOK, list)
}

// handleServiceError maps error kinds to status codes. Input errors and the
// unavailable message reach the client as is. A provider reply that is not
// JSON gets its own message in JSON responses. Every other failure gets a
// generic message and the details stay in the server log.
func (t *Transport) handleServiceError(w http.ResponseWriter, asHTML bool, err error) error {
	var appErr *errs.AppError
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case errs.InvalidInput:
			return t.renderError(w, asHTML, http.StatusBadRequest, errorMissingSource, appErr.Message)
		case errs.Unavailable:
			return t.renderError(w, asHTML, http.StatusServiceUnavailable, errorUnavailable, appErr.Message)
		case errs.InvalidJSON:
			if !asHTML {
				return t.renderError(w, false, http.StatusInternalServerError, errorProcessing, InvalidProviderJSONMessage)
			}
		}
	}
	return t.renderError(w, asHTML, http.StatusInternalServerError, errorProcessing, render.GenericFailureMessage)
}

func (t *Transport) renderJSON(w http.ResponseWriter, status int, data any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		t.logger.Error("failed to encode response", "error", err)
		http.Error(w, `{"error":"Internal Server Error"}`, http.StatusInternalServerError)
		return nil
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}

func (t *Transport) renderHTML(w http.ResponseWriter, status int, fill func(*bytes.Buffer) error) error {
	var buf bytes.Buffer
	if err := fill(&buf); err != nil {
		t.logger.Error("failed to render response", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return nil
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}

func (t *Transport) renderError(w http.ResponseWriter, asHTML bool, status int, label, message string) error {
	if asHTML {
		return t.renderHTML(w, status, func(buf *bytes.Buffer) error {
			return render.AlertHTML(buf, render.ErrorAlert(message))
		})
	}
	return t.renderJSON(w, status, model.ErrorResponse{
		Error:      label,
		StatusCode: status,
		Message:    message,
	})
}

// wantsHTML reports whether the client asked for a rendered fragment rather
// than JSON.
func wantsHTML(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		switch strings.TrimSpace(mt) {
		case "text/html":
			return true
		case "application/json":
			return false
		}
	}
	return false
}
