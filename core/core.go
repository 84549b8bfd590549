// Package core wires discovery, analysis, run tracking and the repository
// index together for the commands and the MCP server.
package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/huangsam/reposcope/core/analyzer"
	"github.com/huangsam/reposcope/core/discovery"
	"github.com/huangsam/reposcope/core/index"
	"github.com/huangsam/reposcope/internal/contract"
	"github.com/huangsam/reposcope/internal/gitclient"
	"github.com/huangsam/reposcope/schema"
)

// AnalysisOutput is everything produced by one analyze run.
type AnalysisOutput struct {
	Analysis *schema.RepositoryAnalysis
	Result   *schema.AdvancedAnalysisResult
	Indexed  *schema.IndexedRepository // Set when the run added the repository to the index
	Duration time.Duration
}

// logAnalysisHeader prints a concise, 2-line header to stderr so stdout stays parseable.
func logAnalysisHeader(cfg *contract.Config) {
	repoName := filepath.Base(cfg.RepoPath)
	if repoName == "" || repoName == "." {
		repoName = "current"
	}
	fmt.Fprintf(os.Stderr, "🔎 Repo: %s (Key files: %d, Workers: %d)\n", repoName, cfg.MaxKeyFiles, cfg.Workers)
	if cfg.Trends {
		fmt.Fprintf(os.Stderr, "📅 Trends: last %d months\n", cfg.TrendMonths)
	}
}

// Discover walks cfg.RepoPath into a RepositoryAnalysis.
func Discover(ctx context.Context, cfg *contract.Config) (*schema.RepositoryAnalysis, error) {
	analysis, err := discovery.Discover(ctx, cfg.RepoPath, discovery.Options{
		Excludes:    cfg.Excludes,
		MaxKeyFiles: cfg.MaxKeyFiles,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover repository %s: %w", cfg.RepoPath, err)
	}
	return analysis, nil
}

// newAnalyzer builds an analyzer for root with the optional history and cache backends.
func newAnalyzer(cfg *contract.Config, root string, mgr contract.StoreManager) *analyzer.Analyzer {
	opts := []analyzer.Option{analyzer.WithWorkers(cfg.Workers)}
	if cfg.Trends {
		if gitclient.IsRepository(root) {
			opts = append(opts,
				analyzer.WithHistoryClient(gitclient.NewGoGitClient()),
				analyzer.WithTrendMonths(cfg.TrendMonths),
			)
		} else {
			contract.LogInfo("Trends disabled: %s is not a git repository", root)
		}
	}
	if mgr != nil {
		if cache := mgr.GetMetricsCache(); cache != nil {
			opts = append(opts, analyzer.WithMetricsCache(cache))
		}
	}
	return analyzer.New(contract.NewLocalFileReader(root), opts...)
}

// RunAnalysis discovers and analyzes cfg.RepoPath. The run is tracked in the
// result store when one is configured, and the repository is added to the
// index when cfg.Index is set. Tracking failures only warn.
func RunAnalysis(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (*AnalysisOutput, error) {
	start := time.Now()
	if !shouldSuppressHeader(ctx) {
		logAnalysisHeader(cfg)
	}

	analysis, err := Discover(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var results contract.ResultStore
	if mgr != nil {
		results = mgr.GetResultStore()
	}
	if results != nil {
		runID, err := results.BeginRun(start, analysis.Path, analysis.Name)
		if err != nil {
			contract.LogWarn("Analysis tracking initialization failed", err)
		} else if runID > 0 {
			ctx = withRunID(ctx, runID)
		}
	}

	result := newAnalyzer(cfg, analysis.Path, mgr).AnalyzeRepository(ctx, analysis)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if results != nil {
		recordRun(ctx, results, analysis, result)
	}

	out := &AnalysisOutput{Analysis: analysis, Result: result}
	if cfg.Index {
		repo, err := OpenEngine(mgr).AddRepository(analysis)
		if err != nil {
			return nil, fmt.Errorf("failed to index repository: %w", err)
		}
		out.Indexed = &repo
	}
	out.Duration = time.Since(start)
	return out, nil
}

// recordRun stores the findings and closes the run opened by RunAnalysis.
func recordRun(ctx context.Context, results contract.ResultStore, analysis *schema.RepositoryAnalysis, result *schema.AdvancedAnalysisResult) {
	runID, ok := getRunID(ctx)
	if !ok {
		return
	}
	for _, f := range result.Findings(runID) {
		if err := results.RecordFinding(runID, f); err != nil {
			contract.LogWarn("Failed to record finding", err)
		}
	}
	if err := results.EndRun(runID, time.Now(), result.Summary(analysis)); err != nil {
		contract.LogWarn("Failed to finalize analysis tracking", err)
	}
}

// OpenEngine returns an index engine over the manager's index store.
// A nil manager or store keeps the index in memory.
func OpenEngine(mgr contract.StoreManager) *index.Engine {
	if mgr == nil {
		return index.New(nil)
	}
	return index.New(mgr.GetIndexStore())
}

// IndexPath discovers and analyzes path, then adds it to engine.
func IndexPath(ctx context.Context, cfg *contract.Config, engine *index.Engine, path string) (schema.IndexedRepository, error) {
	analysis, err := analyzeForIndex(ctx, cfg, path)
	if err != nil {
		return schema.IndexedRepository{}, err
	}
	return engine.AddRepository(analysis)
}

// RefreshRepository re-analyzes an indexed repository at its stored path.
func RefreshRepository(ctx context.Context, cfg *contract.Config, engine *index.Engine, id string) (schema.IndexedRepository, error) {
	repo, err := engine.GetRepository(id)
	if err != nil {
		return schema.IndexedRepository{}, err
	}
	analysis, err := analyzeForIndex(ctx, cfg, repo.Path)
	if err != nil {
		return schema.IndexedRepository{}, err
	}
	return engine.UpdateRepository(id, analysis)
}

// analyzeForIndex fills in what an index entry needs: the discovery data plus
// the patterns and quality label set by the analyzer.
func analyzeForIndex(ctx context.Context, cfg *contract.Config, path string) (*schema.RepositoryAnalysis, error) {
	local := cfg.Clone()
	local.RepoPath = path
	analysis, err := Discover(ctx, local)
	if err != nil {
		return nil, err
	}
	_ = newAnalyzer(local, analysis.Path, nil).AnalyzeRepository(ctx, analysis)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return analysis, nil
}
