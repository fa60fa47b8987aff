package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Bahjat/a11y-insight-tool/internal/platform/logger"
)

// errAnalysisFailed marks a failure whose alert was already written.
var errAnalysisFailed = errors.New("analysis failed")

type outputFormat string

const (
	formatHuman outputFormat = "human"
	formatJSON  outputFormat = "json"
	formatYAML  outputFormat = "yaml"
	formatHTML  outputFormat = "html"
)

func parseFormat(s string, allowed ...outputFormat) (outputFormat, error) {
	for _, f := range allowed {
		if outputFormat(s) == f {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported output %q, want one of %v", s, allowed)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// startSpinner shows msg on w while work runs, when w is a terminal. The
// returned func stops it.
func startSpinner(w io.Writer, msg string) func() {
	f, ok := w.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + msg
	s.Start()
	return s.Stop
}

func printSuccess(w io.Writer, msg string) {
	green := color.New(color.FgGreen)
	green.Fprintf(w, "✓ %s\n", msg)
}

func printError(w io.Writer, msg string) {
	red := color.New(color.FgRed)
	red.Fprintf(w, "✗ %s\n", msg)
}

// commandLogger returns a logger on stderr at the --log-level flag, or
// fallback when the flag is unset. An empty result discards everything.
func commandLogger(cmd *cobra.Command, service, fallback string) *slog.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	if level == "" {
		level = fallback
	}
	if level == "" {
		return slog.New(slog.DiscardHandler)
	}
	return logger.NewWithWriter(cmd.ErrOrStderr(), service, level)
}
