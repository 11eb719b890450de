package cmd

import (
	"github.com/huangsam/doxycov/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [dir]",
	Short: "Start the doxycov MCP server",
	Long: `Launch an MCP server on stdio so that AI agents can query documentation
coverage through standard tools.

Tools:
  get_coverage       - per-file coverage and the aggregate verdict
  get_file_coverage  - one file's counts and undocumented symbols
  get_history        - recorded runs (requires --history-backend)

The optional [dir] is the default Doxygen XML directory for tool calls.`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Diagnostics go to the log file, so stdio stays free for the protocol.
		if len(args) == 0 {
			args = []string{"."}
		}
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, historyManager, version)
	},
}
