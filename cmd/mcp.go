package cmd

import (
	"github.com/huangsam/reposcope/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the reposcope MCP server",
	Long: `Launch an MCP server over stdio so AI agents can analyze repositories and
query the index with standard tools.`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager, version)
	},
}
