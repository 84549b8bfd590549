package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/reposcope/internal/contract"
	"github.com/huangsam/reposcope/internal/parquet"
)

// ExecuteExport writes analysis runs, findings and the repository catalog
// held by mgr to Parquet files prefixed by outputFile.
func ExecuteExport(mgr contract.StoreManager, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	exported := 0
	if store := mgr.GetResultStore(); store != nil {
		n, err := exportResults(store, outputFile, w)
		if err != nil {
			return err
		}
		exported += n
	}
	if store := mgr.GetIndexStore(); store != nil {
		n, err := exportCatalog(store, outputFile, w)
		if err != nil {
			return err
		}
		exported += n
	}
	if exported == 0 {
		return errors.New("no analysis or index data found to export")
	}

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be used with:")
	_, _ = fmt.Fprintln(w, "  - Apache Spark")
	_, _ = fmt.Fprintln(w, "  - Pandas (via pyarrow)")
	_, _ = fmt.Fprintln(w, "  - DuckDB")
	return nil
}

func exportResults(store contract.ResultStore, outputFile string, w io.Writer) (int, error) {
	status, err := store.GetStatus()
	if err != nil {
		return 0, fmt.Errorf("failed to get result status: %w", err)
	}
	if status.TotalRuns == 0 {
		return 0, nil
	}
	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)

	runs, err := store.GetAllRuns()
	if err != nil {
		return 0, fmt.Errorf("failed to retrieve analysis runs: %w", err)
	}
	findings, err := store.GetAllFindings()
	if err != nil {
		return 0, fmt.Errorf("failed to retrieve findings: %w", err)
	}

	runsFile := outputFile + ".analysis_runs.parquet"
	if err := parquet.WriteAnalysisRunsParquet(parquet.ConvertAnalysisRunRecords(runs), runsFile); err != nil {
		return 0, fmt.Errorf("failed to write analysis runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d analysis runs to: %s\n", len(runs), runsFile)

	findingsFile := outputFile + ".findings.parquet"
	if err := parquet.WriteFindingsParquet(parquet.ConvertFindingRecords(findings), findingsFile); err != nil {
		return 0, fmt.Errorf("failed to write findings: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d findings to: %s\n", len(findings), findingsFile)
	return len(runs), nil
}

func exportCatalog(store contract.IndexStore, outputFile string, w io.Writer) (int, error) {
	index, err := store.Load()
	if err != nil {
		return 0, fmt.Errorf("failed to load index: %w", err)
	}
	if index == nil || len(index.Repositories) == 0 {
		return 0, nil
	}
	reposFile := outputFile + ".repositories.parquet"
	if err := parquet.WriteRepositoriesParquet(parquet.ConvertRepositories(index.Repositories), reposFile); err != nil {
		return 0, fmt.Errorf("failed to write repositories: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d repositories to: %s\n", len(index.Repositories), reposFile)
	return len(index.Repositories), nil
}
