package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/huangsam/doxycov/core"
	"github.com/huangsam/doxycov/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.HistoryManager
}

// configFor applies the shared xml_dir argument to a copy of the base config.
func (h *toolHandler) configFor(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if d := request.GetString("xml_dir", ""); d != "" {
		cfg.InputDir = d
	}
	if cfg.InputDir == "" {
		return nil, fmt.Errorf("xml_dir is required")
	}
	return cfg, nil
}

func (h *toolHandler) handleGetCoverage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if th := request.GetInt("threshold", -1); th != -1 {
		if th < contract.MinThreshold || th > contract.MaxThreshold {
			return mcp.NewToolResultError(fmt.Sprintf("threshold must be between %d and %d", contract.MinThreshold, contract.MaxThreshold)), nil
		}
		cfg.Threshold = th
	}
	for _, ex := range strings.Split(request.GetString("exclude", ""), ",") {
		if ex = strings.TrimSpace(ex); ex != "" {
			cfg.ExcludeDirs = append(cfg.ExcludeDirs, ex)
		}
	}

	report, err := core.GetCoverageResults(ctx, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("coverage failed: %v", err)), nil
	}
	if l := request.GetInt("limit", 0); l > 0 && l < len(report.Files) {
		report.Files = report.Files[:l]
	}

	jsonData, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetFileCoverage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("path", "")
	if path == "" {
		return mcp.NewToolResultError("path is required"), nil
	}
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Exclusions are ignored here; the caller named the file explicitly
	table, err := core.CollectFiles(ctx, cfg.InputDir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("coverage failed: %v", err)), nil
	}
	contributions := table.Get(path)
	if len(contributions) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("no documentable symbols recorded for %s", path)), nil
	}

	jsonData, _ := json.MarshalIndent(core.FileCoverageOf(path, contributions), "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetHistory(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.mgr == nil || h.mgr.GetHistoryStore() == nil {
		return mcp.NewToolResultError("history is disabled; start the server with --history-backend"), nil
	}
	runs, err := h.mgr.GetHistoryStore().GetAllRuns()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("history lookup failed: %v", err)), nil
	}
	if l := request.GetInt("limit", 0); l > 0 && l < len(runs) {
		runs = runs[len(runs)-l:]
	}

	jsonData, _ := json.MarshalIndent(runs, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
