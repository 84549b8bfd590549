package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/reposcope/core"
	"github.com/huangsam/reposcope/internal/outwriter"
	"github.com/spf13/cobra"
)

// analyzeCmd performs a full analysis of one repository.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [repo-path]",
	Short: "Analyze a repository for quality, security and architecture.",
	Long: `Discover a repository's languages, frameworks and key files, then run the
advanced analyzers over it.

Reports:
- Code quality scores, complexity hotspots and technical debt
- Security findings with severity, location and recommendations
- Architectural patterns and maintainability
- Development activity from Git history (with --trends)

Use --fail-on to turn the run into a CI gate that exits non-zero when any
vulnerability meets the given severity.

Examples:
  # Analyze the current directory
  reposcope analyze

  # Analyze and add the repository to the index
  reposcope analyze ~/src/shop --index

  # Include six months of commit activity
  reposcope analyze --trends --trend-months 6

  # Fail a CI job on high or critical findings
  reposcope analyze --fail-on high --output json --output-file report.json`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{"."}
		}
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		out, err := core.RunAnalysis(rootCtx, cfg, storeManager)
		if err != nil {
			return err
		}
		if err := outwriter.NewOutWriter(cfg).WriteAnalysis(out.Analysis, out.Result, out.Duration); err != nil {
			return err
		}
		if out.Indexed != nil {
			fmt.Fprintf(os.Stderr, "📚 Indexed %s as %s\n", out.Indexed.Name, out.Indexed.ID)
		}
		gateErr := core.CheckFailOn(cfg, out.Result)
		core.PrintGateResult(os.Stderr, cfg, gateErr)
		return gateErr
	},
}
