// Package mcp exposes the analysis engine over the Model Context Protocol
// so AI operator assistants can query the storage fleet interactively.
package mcp

import (
	"context"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dmitriimaksimovdevelop/fsxray/internal/analyzer"
	"github.com/dmitriimaksimovdevelop/fsxray/internal/config"
)

// EngineFactory builds a fresh engine for one invocation. Each tool call
// gets its own engine so per-call overrides never leak between calls.
type EngineFactory func(cfg config.Config) (*analyzer.Engine, error)

// Server wraps the MCP server instance.
type Server struct {
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server with registered tools.
func NewServer(version string, baseCfg config.Config, factory EngineFactory) *Server {
	s := server.NewMCPServer("fsxray", version, server.WithLogging())

	h := &handlers{baseCfg: baseCfg, factory: factory}
	registerTools(s, h)

	return &Server{mcpServer: s}
}

// Start runs the server in stdio mode (blocking).
func (s *Server) Start(ctx context.Context) error {
	stdioServer := server.NewStdioServer(s.mcpServer)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

func registerTools(s *server.MCPServer, h *handlers) {
	analyzeTool := mcp.NewTool("analyze_fleet",
		mcp.WithDescription("Analyze the FSx for NetApp ONTAP fleet: per-filesystem and per-volume capacity, slack, p95 throughput, efficiency, cost, and typed recommendations. Returns the full JSON report."),
		mcp.WithString("fsid",
			mcp.Description("Limit analysis to one filesystem id (e.g. 'fs-0123456789abcdef0'). Omit for the whole fleet."),
		),
		mcp.WithNumber("percentile",
			mcp.Description("Throughput percentile (0-100, default 95)."),
		),
		mcp.WithNumber("lookback_days",
			mcp.Description("Percentile window in days (default 3)."),
		),
		mcp.WithNumber("top_vols",
			mcp.Description("Analyze only the N largest volumes per filesystem. 0 (default) analyzes all."),
		),
	)
	s.AddTool(analyzeTool, h.handleAnalyzeFleet)

	costTool := mcp.NewTool("estimate_cost",
		mcp.WithDescription("Estimate the monthly storage cost in USD for a given capacity at the region's FSx SSD rate."),
		mcp.WithNumber("size_gib",
			mcp.Required(),
			mcp.Description("Storage capacity in GiB."),
		),
	)
	s.AddTool(costTool, h.handleEstimateCost)
}
