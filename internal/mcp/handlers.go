package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dmitriimaksimovdevelop/fsxray/internal/config"
)

// analyzeTimeout bounds a full fleet analysis; wide fleets mean many
// monitoring-API round trips.
const analyzeTimeout = 5 * time.Minute

type handlers struct {
	baseCfg config.Config
	factory EngineFactory
}

// handleAnalyzeFleet runs a full analysis invocation with per-call
// configuration overrides.
func (h *handlers) handleAnalyzeFleet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cancel := context.WithTimeout(ctx, analyzeTimeout)
	defer cancel()

	args := getArgs(request)

	cfg := h.baseCfg
	if fsid := stringArg(args, "fsid", ""); fsid != "" {
		cfg.FSID = fsid
	}
	if pctl, ok := numberArg(args, "percentile"); ok && pctl >= 0 && pctl <= 100 {
		cfg.Percentile = pctl
	}
	if days, ok := numberArg(args, "lookback_days"); ok && days > 0 {
		cfg.LookbackDays = int(days)
	}
	if topVols, ok := numberArg(args, "top_vols"); ok && topVols >= 0 {
		cfg.TopVolumes = int(topVols)
	}

	engine, err := h.factory(cfg)
	if err != nil {
		return errResult(fmt.Sprintf("engine setup failed: %v", err)), nil
	}

	report, err := engine.Run(ctx)
	if err != nil {
		return errResult(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	jsonData, err := json.Marshal(report)
	if err != nil {
		return errResult(fmt.Sprintf("json marshal failed: %v", err)), nil
	}
	return newTextResult(string(jsonData)), nil
}

// handleEstimateCost looks up the region's storage rate and prices a
// capacity.
func (h *handlers) handleEstimateCost(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := getArgs(request)

	sizeGiB, ok := numberArg(args, "size_gib")
	if !ok || sizeGiB < 0 {
		return errResult("size_gib is required and must be non-negative"), nil
	}

	engine, err := h.factory(h.baseCfg)
	if err != nil {
		return errResult(fmt.Sprintf("engine setup failed: %v", err)), nil
	}

	cost := engine.EstimateMonthlyCost(ctx, int64(sizeGiB))

	summary := map[string]interface{}{
		"region":                h.baseCfg.Region,
		"size_gib":              int64(sizeGiB),
		"monthly_cost_estimate": cost,
	}
	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return errResult(fmt.Sprintf("json marshal failed: %v", err)), nil
	}
	return newTextResult(string(jsonData)), nil
}

// getArgs safely extracts the arguments map from a CallToolRequest.
// Returns an empty map if Arguments is nil or not a map.
func getArgs(request mcp.CallToolRequest) map[string]interface{} {
	if request.Params.Arguments == nil {
		return map[string]interface{}{}
	}
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return args
}

// stringArg extracts a string argument with a default value.
func stringArg(args map[string]interface{}, key, defaultVal string) string {
	val, ok := args[key]
	if !ok || val == nil {
		return defaultVal
	}
	s, ok := val.(string)
	if !ok || s == "" {
		return defaultVal
	}
	return s
}

// numberArg extracts a numeric argument. JSON numbers arrive as float64.
func numberArg(args map[string]interface{}, key string) (float64, bool) {
	val, ok := args[key]
	if !ok || val == nil {
		return 0, false
	}
	f, ok := val.(float64)
	return f, ok
}

// newTextResult creates a successful MCP tool result with text content.
func newTextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: text,
			},
		},
	}
}

// errResult creates an MCP tool error result (IsError=true).
// This is returned as a tool-level error, not a transport-level JSON-RPC error.
func errResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: msg,
			},
		},
	}
}
