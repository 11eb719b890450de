// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/doxycov/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the doxycov MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.HistoryManager, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"Doxygen Coverage Server",
		version,
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	s.AddTool(mcp.NewTool("get_coverage",
		mcp.WithDescription("Compute API documentation coverage from a Doxygen XML directory. Files are returned least documented first."),
		mcp.WithString("xml_dir", mcp.Description("Directory containing Doxygen's index.xml (defaults to the server's configured directory).")),
		mcp.WithNumber("threshold", mcp.Description("Minimum acceptable total coverage, 0 to 100. Defaults to the configured threshold.")),
		mcp.WithString("exclude", mcp.Description("Comma-separated path substrings to exclude.")),
		mcp.WithNumber("limit", mcp.Description("Only return the first N (least documented) files.")),
	), h.handleGetCoverage)

	s.AddTool(mcp.NewTool("get_file_coverage",
		mcp.WithDescription("Coverage and undocumented symbols of a single source file."),
		mcp.WithString("path", mcp.Description("Source path exactly as Doxygen reports it."), mcp.Required()),
		mcp.WithString("xml_dir", mcp.Description("Directory containing Doxygen's index.xml.")),
	), h.handleGetFileCoverage)

	s.AddTool(mcp.NewTool("get_history",
		mcp.WithDescription("List recorded coverage runs, oldest first. Requires a history backend."),
		mcp.WithNumber("limit", mcp.Description("Only return the most recent N runs.")),
	), h.handleGetHistory)

	return s
}

// StartMCPServer starts the doxycov MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.HistoryManager, version string) error {
	s := NewMCPServer(baseCfg, mgr, version)
	return server.ServeStdio(s)
}
