package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/reposcope/core"
	"github.com/huangsam/reposcope/internal/outwriter"
	"github.com/spf13/cobra"
)

// tagCmd groups tag operations on the index.
var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage repository tags",
	Long: `Attach tags to indexed repositories and manage the global tag catalog.

Tags take part in search and similarity. Attaching a name that is not in the
catalog registers it there.

Examples:
  reposcope tag add 3f2a... payments --category domain --tag-color "#ff8800"
  reposcope tag remove 3f2a... payments
  reposcope tag list`,
}

var tagAddCmd = &cobra.Command{
	Use:     "add <repo-id> <name>",
	Short:   "Attach a tag to a repository",
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		tagColor, _ := cmd.Flags().GetString("tag-color")
		tag, err := core.OpenEngine(storeManager).AddRepositoryTag(args[0], args[1], category, tagColor)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "🏷️  Tagged %s with %s (%s)\n", args[0], tag.Name, tag.ID)
		return nil
	},
}

var tagRemoveCmd = &cobra.Command{
	Use:     "remove <repo-id> <name>",
	Short:   "Detach a tag from a repository",
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		return core.OpenEngine(storeManager).RemoveRepositoryTag(args[0], args[1])
	},
}

var tagCreateCmd = &cobra.Command{
	Use:     "create <name>",
	Short:   "Register a tag in the global catalog",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		tagColor, _ := cmd.Flags().GetString("tag-color")
		tag, err := core.OpenEngine(storeManager).AddTag(args[0], category, tagColor)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "🏷️  Created %s (%s)\n", tag.Name, tag.ID)
		return nil
	},
}

var tagDeleteCmd = &cobra.Command{
	Use:     "delete <tag-id>",
	Short:   "Delete a catalog tag and strip it from every repository",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		return core.OpenEngine(storeManager).RemoveTag(args[0])
	},
}

var tagListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List the global tag catalog",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return outwriter.NewOutWriter(cfg).WriteTags(core.OpenEngine(storeManager).ListTags())
	},
}
