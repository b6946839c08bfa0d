package main

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio transport)",
		Long: `Start the MCP server on stdin/stdout.

Add it to your AI tool's MCP config:

  {
    "mcpServers": {
      "hostline": {
        "command": "hostline",
        "args": ["serve"]
      }
    }
  }`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := setup(opts, false)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			app.StartJanitor(ctx)

			// ServeStdio handles its own signals and returns on EOF.
			return server.ServeStdio(app.MCP)
		},
	}
}

func newHTTPCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "http",
		Short: "Serve the HTTP API",
		Long: `Serve the HTTP API for voice gateways and webhooks.

Routes:
  POST /api/agent/message            {"text": "...", "customerPhone": "..."}
  GET  /api/agent/sessions/{caller}
  GET  /api/agent/calls/{caller}
  GET  /health
  GET  /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := setup(opts, false)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			app.StartJanitor(ctx)

			cfg := app.Config()
			if addr == "" {
				addr = cfg.HTTP.Addr
			}
			return app.HTTP().Run(ctx, addr, cfg.HTTP.ShutdownTimeout)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: http.addr from config)")
	return cmd
}
