package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
)

// versionCmd shows the verbose version for diagnostic purposes.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of reposcope.",
	Long: `Display the release version, commit, build time and Go runtime.

Include this output when reporting bugs. The MCP server reports the same
version to its clients.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("reposcope CLI\n")
		cmd.Printf("  Version:  %s\n", version)
		cmd.Printf("  Commit:   %s\n", commit)
		cmd.Printf("  Built:    %s\n", date)
		cmd.Printf("  Runtime:  %s\n", runtime.Version())
		cmd.Printf("  Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}
