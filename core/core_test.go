package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/reposcope/internal/contract"
	"github.com/huangsam/reposcope/internal/iocache"
	"github.com/huangsam/reposcope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func writeRepo(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "shop")
	files := map[string]string{
		"package.json":              `{"name":"shop","description":"Online shop","dependencies":{"react":"^18.2.0"}}`,
		"src/index.js":              "// TODO: split this file\nconst a = 1;\n",
		"src/components/Button.jsx": "export const Button = () => null;\n",
	}
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func testConfig(root string) *contract.Config {
	return &contract.Config{RepoPath: root, Workers: 2, MaxKeyFiles: 10, TrendMonths: 6}
}

func TestRunAnalysisTracksRun(t *testing.T) {
	root := writeRepo(t)
	ctx := WithSuppressHeader(context.Background())

	results := &iocache.MockResultStore{}
	results.On("BeginRun", mock.Anything, mock.Anything, "shop").Return(int64(7), nil)
	results.On("RecordFinding", int64(7), mock.Anything).Return(nil).Maybe()
	results.On("EndRun", int64(7), mock.Anything, mock.MatchedBy(func(s schema.RunSummary) bool {
		return s.RepoName == "shop" && s.FilesAnalyzed > 0
	})).Return(nil)

	mgr := &iocache.MockStoreManager{}
	mgr.On("GetResultStore").Return(results)
	mgr.On("GetMetricsCache").Return(nil)
	mgr.On("GetIndexStore").Return(nil)

	cfg := testConfig(root)
	cfg.Index = true
	out, err := RunAnalysis(ctx, cfg, mgr)
	require.NoError(t, err)

	assert.Equal(t, "shop", out.Analysis.Name)
	assert.Contains(t, out.Analysis.Frameworks, "React")
	assert.NotNil(t, out.Result)
	require.NotNil(t, out.Indexed)
	assert.Equal(t, "shop", out.Indexed.Name)
	assert.Positive(t, out.Duration)
	results.AssertExpectations(t)
	mgr.AssertExpectations(t)
}

func TestRunAnalysisTrackingFailureOnlyWarns(t *testing.T) {
	root := writeRepo(t)
	results := &iocache.MockResultStore{}
	results.On("BeginRun", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))

	mgr := &iocache.MockStoreManager{}
	mgr.On("GetResultStore").Return(results)
	mgr.On("GetMetricsCache").Return(nil)

	out, err := RunAnalysis(WithSuppressHeader(context.Background()), testConfig(root), mgr)
	require.NoError(t, err)
	assert.Nil(t, out.Indexed)
	results.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunAnalysisWithRealStores(t *testing.T) {
	root := writeRepo(t)
	store, err := iocache.NewResultStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	mgr := &iocache.MockStoreManager{}
	mgr.On("GetResultStore").Return(store)
	mgr.On("GetMetricsCache").Return(nil)

	out, err := RunAnalysis(WithSuppressHeader(context.Background()), testConfig(root), mgr)
	require.NoError(t, err)

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "shop", runs[0].RepoName)
	assert.NotNil(t, runs[0].EndTime)
	assert.Equal(t, int32(out.Result.CodeQuality.OverallScore), runs[0].QualityScore)

	findings, err := store.GetAllFindings()
	require.NoError(t, err)
	assert.Len(t, findings, len(out.Result.Findings(runs[0].RunID)))
}

func TestRunAnalysisErrors(t *testing.T) {
	_, err := RunAnalysis(WithSuppressHeader(context.Background()), testConfig(filepath.Join(t.TempDir(), "missing")), nil)
	assert.ErrorContains(t, err, "failed to discover repository")

	ctx, cancel := context.WithCancel(WithSuppressHeader(context.Background()))
	cancel()
	_, err = RunAnalysis(ctx, testConfig(writeRepo(t)), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIndexPath(t *testing.T) {
	engine := OpenEngine(nil)
	root := writeRepo(t)

	repo, err := IndexPath(context.Background(), testConfig("."), engine, root)
	require.NoError(t, err)
	assert.Equal(t, "shop", repo.Name)
	assert.NotEmpty(t, repo.Quality)

	again, err := IndexPath(context.Background(), testConfig("."), engine, root)
	require.NoError(t, err)
	assert.Equal(t, repo.ID, again.ID, "re-indexing keeps the id")
	assert.Len(t, engine.ListRepositories(), 1)
	assert.True(t, again.AddedAt.Equal(repo.AddedAt))
}

func TestRefreshRepository(t *testing.T) {
	engine := OpenEngine(nil)
	root := writeRepo(t)
	repo, err := IndexPath(context.Background(), testConfig("."), engine, root)
	require.NoError(t, err)

	manifest := `{"name":"shop","description":"Online shop","dependencies":{"react":"^18.2.0","express":"^4.18.0"}}`
	require.NoError(t, os.WriteFile(filepath.Join(root, "package.json"), []byte(manifest), 0o644))

	refreshed, err := RefreshRepository(context.Background(), testConfig("."), engine, repo.ID)
	require.NoError(t, err)
	assert.Equal(t, repo.ID, refreshed.ID)
	assert.Contains(t, refreshed.Frameworks, "Express")

	_, err = RefreshRepository(context.Background(), testConfig("."), engine, "missing")
	var nf *schema.NotFoundError
	assert.ErrorAs(t, err, &nf)
}
