// Package mcp exposes the analyzer to MCP clients over stdio.
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Bahjat/a11y-insight-tool/internal/analyzer"
	"github.com/Bahjat/a11y-insight-tool/internal/model"
	"github.com/Bahjat/a11y-insight-tool/internal/platform/errs"
	"github.com/Bahjat/a11y-insight-tool/internal/prompt"
	"github.com/Bahjat/a11y-insight-tool/internal/render"
)

const (
	ToolAnalyze      = "analyze_accessibility"
	CriteriaURI      = "wcag://criteria"
	criteriaTemplate = "wcag://criteria/{level}"
)

// Analyzer runs one analysis.
type Analyzer interface {
	Analyze(ctx context.Context, sourceCode string) (analyzer.Result, error)
}

// NewServer creates an MCP server with the analysis tool and the criteria
// resources registered.
func NewServer(a Analyzer, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"a11y-insight",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	s.AddTool(
		mcplib.NewTool(ToolAnalyze,
			mcplib.WithDescription("Evaluate HTML, CSS or JavaScript source against the 86 WCAG 2.2 success criteria and return a conformance report"),
			mcplib.WithString("source_code",
				mcplib.Required(),
				mcplib.Description("Front-end source code to analyse"),
			),
			mcplib.WithString("format",
				mcplib.Description("Output format: json or html (default: json)"),
				mcplib.Enum("json", "html"),
			),
		),
		handleAnalyze(a),
	)

	s.AddResource(
		mcplib.NewResource(CriteriaURI, "WCAG 2.2 criteria",
			mcplib.WithResourceDescription("The success criteria every analysis is evaluated against"),
			mcplib.WithMIMEType("application/json"),
		),
		handleCriteria,
	)

	s.AddResourceTemplate(
		mcplib.NewResourceTemplate(criteriaTemplate, "WCAG 2.2 criteria by level",
			mcplib.WithTemplateDescription("Success criteria of one conformance level: A, AA or AAA"),
			mcplib.WithTemplateMIMEType("application/json"),
		),
		handleCriteria,
	)

	return s
}

func handleAnalyze(a Analyzer) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		src, err := request.RequireString("source_code")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		res, err := a.Analyze(ctx, src)
		if err != nil {
			return errorResult(toolMessage(err)), nil
		}

		if request.GetString("format", "json") == "html" {
			var buf bytes.Buffer
			if err := render.HTML(&buf, res.Outcome); err != nil {
				return nil, fmt.Errorf("rendering outcome: %w", err)
			}
			return textResult(buf.String()), nil
		}
		return jsonResult(res.Outcome)
	}
}

// toolMessage keeps vendor details out of tool output, like the HTTP API.
func toolMessage(err error) string {
	var appErr *errs.AppError
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case errs.InvalidInput, errs.Unavailable:
			return appErr.Message
		case errs.SchemaMismatch:
			return render.InvalidResponseMessage
		}
	}
	return render.GenericFailureMessage
}

func handleCriteria(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	uri := request.Params.URI

	var (
		list []prompt.Criterion
		err  error
	)
	if lvl, ok := strings.CutPrefix(uri, CriteriaURI+"/"); ok {
		level := model.Level(strings.ToUpper(lvl))
		if level.Total() == 0 {
			return nil, fmt.Errorf("unknown conformance level %q", lvl)
		}
		list, err = prompt.ByLevel(level)
	} else {
		list, err = prompt.Catalog()
	}
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling criteria: %w", err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return textResult(string(data)), nil
}

func textResult(text string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(text)},
	}
}

func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
