package cli

import (
	"github.com/spf13/cobra"

	"github.com/Bahjat/a11y-insight-tool/internal/platform/config"
	"github.com/Bahjat/a11y-insight-tool/internal/server"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and web client",
		Long:  "Serve the analysis API, the bundled web client and, when METRICS_ENABLED is set, Prometheus metrics. Configuration comes from the environment and the optional A11Y_CONFIG file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}

			log := commandLogger(cmd, cfg.ServiceName, cfg.LogLevel)
			return server.ListenAndServe(cmd.Context(), cfg, log, version)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Port to listen on (overrides PORT)")
	return cmd
}
