package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/reposcope/internal/contract"
	"github.com/huangsam/reposcope/internal/iocache"
	"github.com/huangsam/reposcope/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheStatusReporter is implemented by metrics caches that can describe themselves.
type cacheStatusReporter interface {
	GetStatus() (schema.CacheStatus, error)
}

// storeCmd focused on persistence management.
//
// Note: migrate and clear skip opening the stores so they can run against a
// fresh or locked database.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the index, result and cache stores",
	Long: `Inspect and maintain the three stores reposcope persists to.

- index:   the repository index (file, sqlite, mysql, postgresql, none)
- results: analysis runs and their findings (sqlite, mysql, postgresql, none)
- cache:   per-file metrics keyed by content hash (sqlite, mysql, postgresql, none)

Subcommands:
  status  - Show connection and size details for each store
  export  - Export runs, findings and the index catalog to Parquet
  migrate - Run result store schema migrations
  clear   - Remove stored data

Examples:
  # Track runs in SQLite and export them
  REPOSCOPE_RESULT_BACKEND=sqlite reposcope analyze
  REPOSCOPE_RESULT_BACKEND=sqlite reposcope store export --output-file reposcope

  # Start over with an empty index
  reposcope store clear --target index`,
}

var storeStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display store statistics and connection details",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		w := cmd.OutOrStdout()
		if store := storeManager.GetIndexStore(); store != nil {
			status, err := store.GetStatus()
			if err != nil {
				return fmt.Errorf("failed to get index status: %w", err)
			}
			iocache.PrintIndexStatus(w, status)
		}
		if store := storeManager.GetResultStore(); store != nil {
			status, err := store.GetStatus()
			if err != nil {
				return fmt.Errorf("failed to get result status: %w", err)
			}
			_, _ = fmt.Fprintln(w)
			iocache.PrintResultStatus(w, status)
		}
		if store, ok := storeManager.GetMetricsCache().(cacheStatusReporter); ok {
			status, err := store.GetStatus()
			if err != nil {
				return fmt.Errorf("failed to get cache status: %w", err)
			}
			_, _ = fmt.Fprintln(w)
			iocache.PrintCacheStatus(w, status)
		}
		return nil
	},
}

var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export runs, findings and the index catalog to Parquet",
	Long: `Write the stored analysis runs, findings and repository catalog to Parquet
files prefixed by --output-file, for DuckDB, pandas or Spark.

Examples:
  reposcope store export --output-file reposcope
  duckdb -c "SELECT severity, count(*) FROM read_parquet('reposcope.findings.parquet') GROUP BY 1"`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return iocache.ExecuteExport(storeManager, cfg.OutputFile, cmd.OutOrStdout())
	},
}

var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run result store schema migrations (upgrades/downgrades)",
	Long: `Manage schema versions of the result store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  reposcope store migrate --result-backend sqlite

  # Rollback to initial state
  reposcope store migrate --result-backend sqlite --target-version 0`,
	Args:    cobra.NoArgs,
	PreRunE: configSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return iocache.MigrateResults(cfg.ResultBackend, cfg.ResultDBConnect, viper.GetInt("target-version"))
	},
}

var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove stored data",
	Long: `Delete stored data from the configured backends.

For the file index: deletes the JSON document
For SQLite: deletes the database file
For MySQL/PostgreSQL: drops the tables

WARNING: This action cannot be undone. Consider exporting data first.`,
	Args:    cobra.NoArgs,
	PreRunE: configSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		target, _ := cmd.Flags().GetString("target")
		clearers := map[string]func() error{
			"index": func() error {
				conn := cfg.IndexDBConnect
				if cfg.IndexBackend == schema.FileBackend {
					conn = cfg.IndexFile
				}
				return iocache.ClearIndex(cfg.IndexBackend, conn)
			},
			"results": func() error { return iocache.ClearResults(cfg.ResultBackend, cfg.ResultDBConnect) },
			"cache":   func() error { return iocache.ClearCache(cfg.CacheBackend, cfg.CacheDBConnect) },
		}
		names := []string{"index", "results", "cache"}
		if target != "all" {
			if _, ok := clearers[target]; !ok {
				return fmt.Errorf("invalid --target '%s'. must be index, results, cache, all", target)
			}
			names = []string{target}
		}
		for _, name := range names {
			if err := clearers[name](); err != nil {
				return fmt.Errorf("failed to clear %s: %w", name, err)
			}
			contract.LogInfo("Cleared %s store", name)
			fmt.Fprintf(os.Stderr, "Cleared %s successfully.\n", name)
		}
		return nil
	},
}
