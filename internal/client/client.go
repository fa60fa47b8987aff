// Package client calls the analysis API over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Bahjat/a11y-insight-tool/internal/model"
	"github.com/Bahjat/a11y-insight-tool/internal/platform/requestid"
	"github.com/Bahjat/a11y-insight-tool/internal/platform/tracing"
)

const maxResponseBytes = 16 << 20

// ErrInvalidResponse reports a 2xx body that is neither a report nor a
// rejection.
var ErrInvalidResponse = errors.New("client: invalid server response")

// ErrEmptySource is returned before any request when the source is blank.
var ErrEmptySource = errors.New("client: source code is empty")

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Label      string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}

// Client talks to a running a11y-insight server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client for baseURL. A nil httpClient uses a traced default
// client without timeout, since analyses can take minutes.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Transport: tracing.Transport(nil)}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Analyze submits source and returns the validated outcome. A rejection is a
// successful outcome, not an error.
func (c *Client) Analyze(ctx context.Context, source string) (model.Outcome, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return model.Outcome{}, ErrEmptySource
	}

	body, err := json.Marshal(model.AnalyzeRequest{SourceCode: source})
	if err != nil {
		return model.Outcome{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/analyze-accessibility", bytes.NewReader(body))
	if err != nil {
		return model.Outcome{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	data, status, err := c.do(req)
	if err != nil {
		return model.Outcome{}, err
	}

	// A rejection is honoured whatever the status.
	if out, derr := model.DecodeOutcome(data); derr == nil && out.Kind == model.OutcomeRejection {
		return out, nil
	}
	if status < 200 || status > 299 {
		return model.Outcome{}, apiError(status, data)
	}

	out, err := model.DecodeOutcome(data)
	if err != nil {
		return model.Outcome{}, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return out, nil
}

// Status fetches the server's health and provider identity.
func (c *Client) Status(ctx context.Context) (model.StatusResponse, error) {
	var st model.StatusResponse
	if err := c.getJSON(ctx, "/api/status", &st); err != nil {
		return model.StatusResponse{}, err
	}
	return st, nil
}

// Criteria fetches the criteria catalog, optionally filtered by level.
func (c *Client) Criteria(ctx context.Context, level string) ([]json.RawMessage, error) {
	path := "/api/criteria"
	if level != "" {
		path += "?level=" + level
	}
	var list []json.RawMessage
	if err := c.getJSON(ctx, path, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	data, status, err := c.do(req)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return apiError(status, data)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return nil
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	requestid.Propagate(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("client: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("client: reading response: %w", err)
	}
	return data, resp.StatusCode, nil
}

func apiError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status}
	var resp model.ErrorResponse
	if json.Unmarshal(body, &resp) == nil {
		e.Label = resp.Error
		e.Message = resp.Message
	}
	return e
}
