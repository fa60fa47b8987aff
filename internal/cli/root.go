// Package cli implements the a11y command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "a11y",
		Short:         "WCAG 2.2 accessibility reports for front-end source",
		Long:          "a11y sends HTML, CSS or JavaScript to an AI provider and turns its answer into a validated WCAG 2.2 conformance report.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().String("log-level", "", "Log level (DEBUG, INFO, WARN, ERROR); logs are discarded when unset, except for serve")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newAnalyzeCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newCriteriaCmd())
	cmd.AddCommand(newMCPCmd())
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

// Execute runs the root command with ctx and prints any error to stderr.
func Execute(ctx context.Context) error {
	cmd := newRootCmd()
	err := cmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errAnalysisFailed) {
		printError(cmd.ErrOrStderr(), err.Error())
	}
	return err
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "a11y %s (commit %s, %s)\n", version, commit, runtime.Version())
		},
	}
}
