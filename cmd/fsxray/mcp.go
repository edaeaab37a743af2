package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dmitriimaksimovdevelop/fsxray/internal/mcp"
)

// mcpCmd starts the Model Context Protocol server.
func mcpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start Model Context Protocol (MCP) server",
		Long: `Starts a JSON-RPC server implementing the Model Context Protocol (MCP).
This allows AI agents (e.g., Claude Desktop, Cursor) to query the FSx
fleet interactively: run analyses, estimate costs.

Communication happens over standard input/output (stdio).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg := configFromFlags(cmd)
			srv := mcp.NewServer(version, cfg, newEngine)
			return srv.Start(ctx)
		},
	}
	addConfigFlags(cmd)
	return cmd
}
