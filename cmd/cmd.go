// Package cmd defines the command-line interface for reposcope.
package cmd

import (
	"github.com/huangsam/reposcope/core/tokens"
	"github.com/huangsam/reposcope/internal/contract"
	"github.com/huangsam/reposcope/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	indexCmd.AddCommand(indexAddCmd)
	indexCmd.AddCommand(indexRefreshCmd)
	indexCmd.AddCommand(indexListCmd)
	indexCmd.AddCommand(indexSearchCmd)
	indexCmd.AddCommand(indexSimilarCmd)
	indexCmd.AddCommand(indexCombineCmd)
	indexCmd.AddCommand(indexRelationshipsCmd)
	indexCmd.AddCommand(indexRemoveCmd)
	indexCmd.AddCommand(indexStatusCmd)

	tagCmd.AddCommand(tagAddCmd)
	tagCmd.AddCommand(tagRemoveCmd)
	tagCmd.AddCommand(tagCreateCmd)
	tagCmd.AddCommand(tagDeleteCmd)
	tagCmd.AddCommand(tagListCmd)

	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeMigrateCmd)
	storeCmd.AddCommand(storeClearCmd)

	// Bind all persistent flags of rootCmd to Viper
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to config file")
	pf.String("exclude", "", "Comma-separated list of extra glob patterns to ignore")
	pf.String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	pf.String("output-file", "", "Optional path to write output to")
	pf.Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	pf.String("profile", "", "Enable profiling and write profiles to files with this prefix")
	pf.Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	pf.Int("width", 0, "Terminal width override (0 = auto-detect)")
	pf.String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	pf.String("log-level", contract.DefaultLogLevel, "Log level: debug or info or warn or error")
	pf.Int("max-key-files", contract.DefaultMaxKeyFiles, "Maximum number of key files read during discovery")
	pf.Int("sample-tokens", contract.DefaultSampleTokens, "Token budget for sampled text")
	pf.String("sample-strategy", string(tokens.StrategySmart), "Sampling strategy: start or end or middle or smart")
	pf.String("index-backend", string(schema.FileBackend), "Index backend: file or sqlite or mysql or postgresql or none")
	pf.String("index-db-connect", "", "Database connection string for the index (mysql/postgresql)")
	pf.String("index-file", "", "Path of the JSON document used by the file index backend")
	pf.String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	pf.String("cache-db-connect", "", "Database connection string for the metrics cache (e.g., user:pass@tcp(host:port)/dbname)")
	pf.String("result-backend", string(schema.NoneBackend), "Result tracking backend: sqlite or mysql or postgresql or none")
	pf.String("result-db-connect", "", "Database connection string for result tracking (mysql/postgresql)")
	if err := viper.BindPFlags(pf); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of analyzeCmd to Viper
	analyzeCmd.Flags().Bool("trends", false, "Include commit activity from Git history")
	analyzeCmd.Flags().Int("trend-months", contract.DefaultTrendMonths, "Months of history used for trends")
	analyzeCmd.Flags().String("fail-on", "", "Exit non-zero when a vulnerability meets this severity: low or medium or high or critical")
	analyzeCmd.Flags().Bool("index", false, "Add the analyzed repository to the index")
	if err := viper.BindPFlags(analyzeCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analyze flags", err)
	}

	// Query flags are read from the command directly
	indexSearchCmd.Flags().String("keywords", "", "Comma-separated keywords")
	indexSearchCmd.Flags().String("languages", "", "Comma-separated languages")
	indexSearchCmd.Flags().String("frameworks", "", "Comma-separated frameworks")
	indexSearchCmd.Flags().String("tags", "", "Comma-separated tags")
	indexSimilarCmd.Flags().Int("limit", 10, "Number of results to display")
	indexCombineCmd.Flags().Int("max-size", 2, "Largest combination size (2-4)")

	for _, c := range []*cobra.Command{tagAddCmd, tagCreateCmd} {
		c.Flags().String("category", "", "Tag category")
		c.Flags().String("tag-color", "", "Tag display color")
	}

	storeClearCmd.Flags().String("target", "all", "Store to clear: index or results or cache or all")

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}
