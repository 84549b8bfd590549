package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/reposcope/core"
	"github.com/huangsam/reposcope/internal/contract"
	"github.com/huangsam/reposcope/internal/outwriter"
	"github.com/huangsam/reposcope/schema"
	"github.com/spf13/cobra"
)

// indexCmd groups the repository index operations.
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build and query the repository index",
	Long: `Maintain an index of analyzed repositories and query it.

Each entry keeps the languages, frameworks, patterns, tags and top-level
structure of a repository. Relationships between entries are recomputed
whenever one is added or refreshed.

Supported backends: file (default), SQLite, MySQL, PostgreSQL, or None (in-memory)

Subcommands:
  add           - Analyze paths and add them to the index
  refresh       - Re-analyze an indexed repository
  list          - List indexed repositories
  search        - Filter by keywords, languages, frameworks and tags
  similar       - Rank repositories similar to one entry
  combine       - Suggest repositories that work well together
  relationships - Show the relationships of one entry
  remove        - Delete an entry
  status        - Summarize the index

Examples:
  # Index two repositories
  reposcope index add ~/src/web ~/src/api

  # Find Go repositories using Gin
  reposcope index search --languages go --frameworks gin

  # Suggest stacks of up to three repositories
  reposcope index combine --max-size 3`,
}

var indexAddCmd = &cobra.Command{
	Use:     "add <path>...",
	Short:   "Analyze repositories and add them to the index",
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		engine := core.OpenEngine(storeManager)
		for _, path := range args {
			repo, err := core.IndexPath(rootCtx, cfg, engine, path)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "📚 Indexed %s as %s\n", repo.Name, repo.ID)
		}
		return nil
	},
}

var indexRefreshCmd = &cobra.Command{
	Use:     "refresh <id>",
	Short:   "Re-analyze an indexed repository at its stored path",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		repo, err := core.RefreshRepository(rootCtx, cfg, core.OpenEngine(storeManager), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "🔄 Refreshed %s (%s)\n", repo.Name, repo.ID)
		return nil
	},
}

var indexListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List indexed repositories",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		repos := core.OpenEngine(storeManager).ListRepositories()
		return outwriter.NewOutWriter(cfg).WriteRepositories(repos)
	},
}

var indexSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the index",
	Long: `Filter indexed repositories. Flags are ANDed together and the
comma-separated values of one flag are ORed. Keywords match names,
descriptions, frameworks and top-level directories, with stemming.

Examples:
  reposcope index search --keywords "payment,checkout"
  reposcope index search --languages typescript --tags frontend`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		flags := cmd.Flags()
		get := func(name string) []string {
			v, _ := flags.GetString(name)
			return contract.SplitList(v)
		}
		results := core.OpenEngine(storeManager).SearchRepositories(schema.SearchQuery{
			Keywords:   get("keywords"),
			Languages:  get("languages"),
			Frameworks: get("frameworks"),
			Tags:       get("tags"),
		})
		return outwriter.NewOutWriter(cfg).WriteSearch(results)
	},
}

var indexSimilarCmd = &cobra.Command{
	Use:     "similar <id>",
	Short:   "Rank repositories by similarity to one entry",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := core.OpenEngine(storeManager)
		source, err := engine.GetRepository(args[0])
		if err != nil {
			return err
		}
		results, err := engine.FindSimilarRepositories(source.ID)
		if err != nil {
			return err
		}
		if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 && limit < len(results) {
			results = results[:limit]
		}
		return outwriter.NewOutWriter(cfg).WriteSimilar(source, results)
	},
}

var indexCombineCmd = &cobra.Command{
	Use:   "combine [id...]",
	Short: "Suggest combinations of indexed repositories",
	Long: `Score every combination of the given repositories (all of them when
none are given) by architecture, tech stack, functional and workflow fit.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := core.OpenEngine(storeManager)
		ids := args
		if len(ids) == 0 {
			for _, r := range engine.ListRepositories() {
				ids = append(ids, r.ID)
			}
		}
		maxSize, _ := cmd.Flags().GetInt("max-size")
		results, err := engine.SuggestCombinations(ids, maxSize)
		if err != nil {
			return err
		}
		return outwriter.NewOutWriter(cfg).WriteCombinations(results)
	},
}

var indexRelationshipsCmd = &cobra.Command{
	Use:     "relationships <id>",
	Short:   "Show the relationships of one entry",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		engine := core.OpenEngine(storeManager)
		rels, err := engine.Relationships(args[0])
		if err != nil {
			return err
		}
		names := make(map[string]string)
		for _, r := range engine.ListRepositories() {
			names[r.ID] = r.Name
		}
		return outwriter.NewOutWriter(cfg).WriteRelationships(rels, names)
	},
}

var indexRemoveCmd = &cobra.Command{
	Use:     "remove <id>",
	Short:   "Delete an entry and its relationships",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		if err := core.OpenEngine(storeManager).RemoveRepository(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "🗑️  Removed %s\n", args[0])
		return nil
	},
}

var indexStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Summarize the index",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return outwriter.NewOutWriter(cfg).WriteStats(core.OpenEngine(storeManager).Stats())
	},
}
