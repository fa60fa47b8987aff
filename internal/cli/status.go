package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Bahjat/a11y-insight-tool/internal/client"
	"github.com/Bahjat/a11y-insight-tool/internal/model"
	"github.com/Bahjat/a11y-insight-tool/internal/platform/tracing"
	"github.com/Bahjat/a11y-insight-tool/internal/prompt"
)

const (
	defaultServerURL = "http://localhost:3001"
	apiTimeout       = 10 * time.Second
)

func newAPIClient(baseURL string) *client.Client {
	return client.New(baseURL, &http.Client{Timeout: apiTimeout, Transport: tracing.Transport(nil)})
}

func newStatusCmd() *cobra.Command {
	var (
		serverURL  string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check that a server is online and which provider it uses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := newAPIClient(serverURL).Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("status check failed: %w", err)
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), st)
			}

			w := cmd.OutOrStdout()
			printSuccess(w, fmt.Sprintf("%s is %s", serverURL, st.Status))
			fmt.Fprintf(w, "  provider:   %s\n", st.Provider)
			fmt.Fprintf(w, "  google key: %t\n", st.HasGoogle)
			fmt.Fprintf(w, "  checked at: %s\n", st.Timestamp.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", defaultServerURL, "Base URL of the server")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newCriteriaCmd() *cobra.Command {
	var (
		level     string
		serverURL string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "criteria",
		Short: "List the WCAG 2.2 success criteria every analysis covers",
		Long:  "List the embedded criteria catalog, or the one served by --server, optionally filtered by conformance level.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseFormat(output, formatHuman, formatJSON, formatYAML)
			if err != nil {
				return err
			}

			var list []prompt.Criterion
			if serverURL != "" {
				list, err = remoteCriteria(cmd, serverURL, level)
			} else {
				list, err = localCriteria(level)
			}
			if err != nil {
				return err
			}

			switch format {
			case formatJSON:
				return writeJSON(cmd.OutOrStdout(), list)
			case formatYAML:
				return writeYAML(cmd.OutOrStdout(), list)
			}
			printCriteria(cmd, list)
			return nil
		},
	}

	cmd.Flags().StringVarP(&level, "level", "l", "", "Only list criteria of this level: A, AA or AAA")
	cmd.Flags().StringVar(&serverURL, "server", "", "Read the catalog from a running server")
	cmd.Flags().StringVarP(&output, "output", "o", string(formatHuman), "Output format: human, json or yaml")
	return cmd
}

func localCriteria(level string) ([]prompt.Criterion, error) {
	if level == "" {
		return prompt.Catalog()
	}
	lvl := model.Level(strings.ToUpper(level))
	if lvl.Total() == 0 {
		return nil, fmt.Errorf("unknown level %q, want A, AA or AAA", level)
	}
	return prompt.ByLevel(lvl)
}

func remoteCriteria(cmd *cobra.Command, serverURL, level string) ([]prompt.Criterion, error) {
	raw, err := newAPIClient(serverURL).Criteria(cmd.Context(), level)
	if err != nil {
		return nil, err
	}
	list := make([]prompt.Criterion, 0, len(raw))
	for _, r := range raw {
		var c prompt.Criterion
		if err := json.Unmarshal(r, &c); err != nil {
			return nil, fmt.Errorf("decoding criterion: %w", err)
		}
		list = append(list, c)
	}
	return list, nil
}

var levelColors = map[model.Level]*color.Color{
	model.LevelA:   color.New(color.FgYellow, color.Bold),
	model.LevelAA:  color.New(color.FgBlue, color.Bold),
	model.LevelAAA: color.New(color.FgGreen, color.Bold),
}

func printCriteria(cmd *cobra.Command, list []prompt.Criterion) {
	w := cmd.OutOrStdout()
	for _, c := range list {
		lvl := fmt.Sprintf("%-3s", c.Level)
		if col, ok := levelColors[c.Level]; ok {
			lvl = col.Sprint(lvl)
		}
		fmt.Fprintf(w, "%-7s %s  %s\n", c.ID, lvl, c.Name)
	}
	fmt.Fprintf(w, "\n%d criteria\n", len(list))
}
