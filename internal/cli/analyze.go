package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Bahjat/a11y-insight-tool/internal/analyzer"
	"github.com/Bahjat/a11y-insight-tool/internal/client"
	"github.com/Bahjat/a11y-insight-tool/internal/model"
	"github.com/Bahjat/a11y-insight-tool/internal/platform/config"
	"github.com/Bahjat/a11y-insight-tool/internal/render"
	"github.com/Bahjat/a11y-insight-tool/internal/server"
	"github.com/Bahjat/a11y-insight-tool/internal/session"
	"github.com/Bahjat/a11y-insight-tool/internal/sourcefetch"
)

const maxSourceBytes = 10 << 20

// newFetcher is replaced in tests to reach loopback servers.
var newFetcher = func() *sourcefetch.Fetcher {
	return sourcefetch.New(sourcefetch.WithMaxBytes(maxSourceBytes))
}

// localAnalyzer runs analyses in-process.
type localAnalyzer struct {
	service *analyzer.Service
}

func (a localAnalyzer) Analyze(ctx context.Context, source string) (model.Outcome, error) {
	res, err := a.service.Analyze(ctx, source)
	return res.Outcome, err
}

// alertOutput is the machine-readable form of an alert.
type alertOutput struct {
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
}

func newAnalyzeCmd() *cobra.Command {
	var (
		file      string
		rawURL    string
		serverURL string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Analyse front-end source against WCAG 2.2",
		Long: "Analyse HTML, CSS or JavaScript read from a file, a URL or stdin.\n" +
			"Without --server the analysis runs in-process with the provider configured in the environment.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				if file != "" {
					return errors.New("give the file either as an argument or with --file")
				}
				file = args[0]
			}
			format, err := parseFormat(output, formatHuman, formatJSON, formatYAML, formatHTML)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			src, err := readSource(ctx, cmd.InOrStdin(), file, rawURL)
			if err != nil {
				return err
			}

			a, log, err := newSessionAnalyzer(cmd, serverURL)
			if err != nil {
				return err
			}
			sess := session.New(a, log)

			stop := startSpinner(cmd.ErrOrStderr(), "Analisando...")
			view, err := sess.Analyze(ctx, src)
			stop()
			if err != nil {
				return err
			}

			if err := writeView(cmd.OutOrStdout(), view, format); err != nil {
				return err
			}
			if view.Alert != nil && view.Alert.Kind == render.AlertError {
				return errAnalysisFailed
			}
			if format == formatHuman && view.Report != nil {
				printSuccess(cmd.ErrOrStderr(), "Análise concluída")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read source from this file (- for stdin)")
	cmd.Flags().StringVar(&rawURL, "url", "", "Fetch source from this public URL")
	cmd.Flags().StringVar(&serverURL, "server", "", "Analyse through a running server at this base URL")
	cmd.Flags().StringVarP(&output, "output", "o", string(formatHuman), "Output format: human, json, yaml or html")
	return cmd
}

func readSource(ctx context.Context, stdin io.Reader, file, rawURL string) (string, error) {
	switch {
	case file != "" && rawURL != "":
		return "", errors.New("--file and --url cannot be used together")
	case rawURL != "":
		return newFetcher().Fetch(ctx, rawURL)
	case file != "" && file != "-":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading source: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(io.LimitReader(stdin, maxSourceBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	if len(data) > maxSourceBytes {
		return "", fmt.Errorf("source exceeds %d bytes", maxSourceBytes)
	}
	return string(data), nil
}

func newSessionAnalyzer(cmd *cobra.Command, serverURL string) (session.Analyzer, *slog.Logger, error) {
	if serverURL != "" {
		log := commandLogger(cmd, "a11y", "")
		return client.New(serverURL, nil), log, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log := commandLogger(cmd, cfg.ServiceName, "")
	svc, err := server.NewService(cfg, log, nil)
	if err != nil {
		return nil, nil, err
	}
	return localAnalyzer{service: svc}, log, nil
}

func writeView(w io.Writer, v session.View, format outputFormat) error {
	switch format {
	case formatHTML:
		return v.HTML(w)
	case formatJSON, formatYAML:
		var out any
		switch {
		case v.Report != nil:
			out = v.Report
		case v.Alert != nil:
			out = alertOutput{Kind: v.Alert.Kind.String(), Message: v.Alert.Message}
		default:
			return nil
		}
		if format == formatJSON {
			return writeJSON(w, out)
		}
		return writeYAML(w, out)
	}

	_, err := fmt.Fprintln(w, v.Terminal())
	return err
}
