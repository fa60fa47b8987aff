package cli

import (
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/Bahjat/a11y-insight-tool/internal/mcp"
	"github.com/Bahjat/a11y-insight-tool/internal/platform/config"
	"github.com/Bahjat/a11y-insight-tool/internal/server"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the a11y MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd())
	return cmd
}

func newMCPServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the a11y MCP server (stdio)",
		Long:  "Start the MCP server on stdio. Assistants can run analyses with the analyze_accessibility tool and read the criteria catalog as resources. Logs go to stderr.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := commandLogger(cmd, cfg.ServiceName, "")
			svc, err := server.NewService(cfg, log, nil)
			if err != nil {
				return err
			}
			return mcpserver.ServeStdio(mcp.NewServer(svc, version))
		},
	}
}
