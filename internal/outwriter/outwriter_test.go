package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/reposcope/internal/contract"
	"github.com/huangsam/reposcope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAnalysis() (*schema.RepositoryAnalysis, *schema.AdvancedAnalysisResult) {
	analysis := &schema.RepositoryAnalysis{
		Path:       "/repos/web",
		Name:       "web",
		Languages:  []string{"TypeScript", "Go"},
		Frameworks: []string{"React"},
		FileCount:  42,
	}
	result := &schema.AdvancedAnalysisResult{
		CodeQuality: schema.CodeQuality{
			OverallScore: 85,
			TechnicalDebt: []schema.TechnicalDebt{
				{Type: schema.DebtCodeSmell, Severity: schema.SeverityLow, File: "src/app.ts", Line: 12, Description: "TODO comment"},
			},
		},
		Security: schema.SecurityReport{
			SecurityScore: 60,
			Vulnerabilities: []schema.SecurityVulnerability{
				{Type: "hardcoded_secret", Severity: schema.SeverityCritical, File: "config.go", Line: 3, Description: "hardcoded password"},
			},
		},
		Architecture: schema.ArchitectureReport{
			MaintainabilityScore: 70,
			Patterns:             []schema.ArchitecturalPattern{{Name: "Component-Based", Confidence: 0.8, Description: "components directory"}},
		},
		Trends:  &schema.TrendData{Period: "6 months", Contributors: 2, ActivityTrend: schema.TrendStable},
		Skipped: []schema.SkipRecord{{File: "big.js", Phase: "quality", Reason: "too large"}},
	}
	return analysis, result
}

func sampleRepos() []schema.IndexedRepository {
	return []schema.IndexedRepository{
		{ID: "a1", Name: "web", Path: "/repos/web", Languages: []string{"TypeScript"}, Tags: []string{"frontend"}, Quality: schema.QualityGood},
		{ID: "b2", Name: "api", Path: "/repos/api", Languages: []string{"Go"}, Frameworks: []string{"Gin"}, Tags: []string{}},
	}
}

// render writes through fn into a temp file configured on cfg and returns its content.
func render(t *testing.T, mode schema.OutputMode, fn func(cfg *contract.Config) error) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out")
	cfg := &contract.Config{Output: mode, OutputFile: path, Precision: 2, Width: 200, Workers: 4, ResultBackend: schema.SQLiteBackend}
	require.NoError(t, fn(cfg))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func readCSV(t *testing.T, content string) [][]string {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(content)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteAnalysisResults(t *testing.T) {
	analysis, result := sampleAnalysis()

	t.Run("json", func(t *testing.T) {
		out := render(t, schema.JSONOut, func(cfg *contract.Config) error {
			return WriteAnalysisResults(analysis, result, cfg, time.Second)
		})
		var report map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.Equal(t, "web", report["repository"])
		assert.Equal(t, "1s", report["duration"])
		inner := report["result"].(map[string]any)
		assert.Equal(t, float64(85), inner["codeQuality"].(map[string]any)["overallScore"])
	})

	t.Run("csv", func(t *testing.T) {
		records := readCSV(t, render(t, schema.CSVOut, func(cfg *contract.Config) error {
			return WriteAnalysisResults(analysis, result, cfg, time.Second)
		}))
		require.Len(t, records, 4)
		assert.Equal(t, []string{"kind", "category", "severity", "file", "line", "description"}, records[0])
		assert.Equal(t, []string{"debt", "code_smell", "low", "src/app.ts", "12", "TODO comment"}, records[1])
		assert.Equal(t, "pattern", records[3][0])
		assert.Equal(t, "", records[3][3])
	})

	t.Run("text", func(t *testing.T) {
		out := render(t, schema.TextOut, func(cfg *contract.Config) error {
			return NewOutWriter(cfg).WriteAnalysis(analysis, result, 2*time.Second)
		})
		assert.Contains(t, out, "Repository: web (/repos/web)")
		assert.Contains(t, out, "Languages: Go, TypeScript")
		assert.Contains(t, out, "Quality: 85/100")
		assert.Contains(t, out, "Healthy")
		assert.Contains(t, out, "config.go:3")
		assert.Contains(t, out, "Component-Based")
		assert.Contains(t, out, "Activity (6 months): stable, 2 contributors")
		assert.Contains(t, out, "Skipped 1 file phases")
		assert.Less(t, strings.Index(out, "config.go"), strings.Index(out, "src/app.ts"), "critical findings come first")
	})
}

func TestWriteSearchResults(t *testing.T) {
	repos := sampleRepos()
	results := []schema.SearchResult{
		{Repository: repos[1], MatchReason: "Languages: Go"},
		{Repository: repos[0], MatchReason: "Keyword \"web\" in name"},
	}

	records := readCSV(t, render(t, schema.CSVOut, func(cfg *contract.Config) error {
		return WriteSearchResults(results, cfg)
	}))
	require.Len(t, records, 3)
	assert.Equal(t, []string{"1", "b2", "api", "/repos/api", "Go", "Gin", "", "Languages: Go"}, records[1])

	out := render(t, schema.TextOut, func(cfg *contract.Config) error {
		return NewOutWriter(cfg).WriteSearch(results)
	})
	assert.Contains(t, out, "api")
	assert.Contains(t, out, "Found 2 matching repositories")

	out = render(t, schema.JSONOut, func(cfg *contract.Config) error {
		return WriteSearchResults(nil, cfg)
	})
	assert.Equal(t, "null\n", out)
}

func TestWriteRepositories(t *testing.T) {
	out := render(t, schema.TextOut, func(cfg *contract.Config) error {
		return NewOutWriter(cfg).WriteRepositories(sampleRepos())
	})
	assert.Contains(t, out, "/repos/web")
	assert.Contains(t, out, "2 repositories indexed")

	records := readCSV(t, render(t, schema.CSVOut, func(cfg *contract.Config) error {
		return WriteRepositories(sampleRepos(), cfg)
	}))
	require.Len(t, records, 3)
	assert.Equal(t, "good", records[1][8])
	assert.Equal(t, "frontend", records[1][5])

	var decoded []schema.IndexedRepository
	require.NoError(t, json.Unmarshal([]byte(render(t, schema.JSONOut, func(cfg *contract.Config) error {
		return WriteRepositories(sampleRepos(), cfg)
	})), &decoded))
	assert.Equal(t, sampleRepos()[1].Frameworks, decoded[1].Frameworks)
}

func TestWriteSimilarResults(t *testing.T) {
	repos := sampleRepos()
	results := []schema.SimilarityResult{
		{Repository: repos[1], Similarity: 0.8, Reason: "Shared languages: Go", Breakdown: schema.SimilarityBreakdown{Languages: 1}},
		{Repository: repos[0], Similarity: 0.3, Reason: "Similar structure"},
	}

	var ranked []schema.RankedSimilarity
	require.NoError(t, json.Unmarshal([]byte(render(t, schema.JSONOut, func(cfg *contract.Config) error {
		return WriteSimilarResults(repos[0], results, cfg)
	})), &ranked))
	require.Len(t, ranked, 2)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, "Strong", ranked[0].Label)
	assert.Equal(t, "Partial", ranked[1].Label)

	records := readCSV(t, render(t, schema.CSVOut, func(cfg *contract.Config) error {
		return WriteSimilarResults(repos[0], results, cfg)
	}))
	assert.Equal(t, []string{"1", "b2", "api", "0.80", "Strong", "1.00", "0.00", "0.00", "0.00", "0.00", "0.00", "Shared languages: Go"}, records[1])

	out := render(t, schema.TextOut, func(cfg *contract.Config) error {
		return NewOutWriter(cfg).WriteSimilar(repos[0], results)
	})
	assert.Contains(t, out, "Repositories similar to web")
	assert.Contains(t, out, "Similar structure")
}

func TestWriteCombinations(t *testing.T) {
	results := []schema.CombinationSuggestion{{
		RepositoryIDs: []string{"a1", "b2"},
		Names:         []string{"web", "api"},
		Roles:         []schema.Role{schema.RoleFrontend, schema.RoleBackend},
		Score:         0.72,
		Rationale:     "web (frontend) pairs with api (backend)",
	}}

	out := render(t, schema.TextOut, func(cfg *contract.Config) error {
		return NewOutWriter(cfg).WriteCombinations(results)
	})
	assert.Contains(t, out, "web + api")
	assert.Contains(t, out, "1. web (frontend) pairs with api (backend)")

	records := readCSV(t, render(t, schema.CSVOut, func(cfg *contract.Config) error {
		return WriteCombinations(results, cfg)
	}))
	assert.Equal(t, "web|api", records[1][1])
	assert.Equal(t, "frontend|backend", records[1][2])
	assert.Equal(t, "Good", records[1][4])
}

func TestWriteCatalog(t *testing.T) {
	tags := []schema.Tag{{ID: "t1", Name: "frontend", Category: "role"}, {ID: "t2", Name: "internal"}}
	out := render(t, schema.TextOut, func(cfg *contract.Config) error {
		return NewOutWriter(cfg).WriteTags(tags)
	})
	assert.Contains(t, out, "frontend")
	assert.Contains(t, out, "internal")

	records := readCSV(t, render(t, schema.CSVOut, func(cfg *contract.Config) error {
		return WriteTags(tags, cfg)
	}))
	assert.Equal(t, []string{"t2", "internal", "", ""}, records[2])

	rels := []schema.RepositoryRelationship{
		{SourceID: "a1", TargetID: "b2", Type: schema.RelationSameStack, Strength: 0.4},
		{SourceID: "a1", TargetID: "c3", Type: schema.RelationSimilar, Strength: 0.9, Reason: "Shared languages"},
	}
	out = render(t, schema.TextOut, func(cfg *contract.Config) error {
		return NewOutWriter(cfg).WriteRelationships(rels, map[string]string{"a1": "web", "b2": "api"})
	})
	assert.Contains(t, out, "api")
	assert.Contains(t, out, "c3", "unknown ids fall back to the id")
	assert.Less(t, strings.Index(out, "c3"), strings.Index(out, "api"), "strongest first")

	stats := schema.IndexStats{Repositories: 2, Tags: 1, Languages: map[string]int{"Go": 1, "TypeScript": 1}, LastUpdated: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)}
	out = render(t, schema.TextOut, func(cfg *contract.Config) error {
		return NewOutWriter(cfg).WriteStats(stats)
	})
	assert.Contains(t, out, "Repositories: 2")
	assert.Contains(t, out, "Last Updated: 2026-05-01T00:00:00Z")
	assert.Contains(t, out, "TypeScript")

	records = readCSV(t, render(t, schema.CSVOut, func(cfg *contract.Config) error {
		return WriteIndexStats(stats, cfg)
	}))
	assert.Equal(t, [][]string{{"language", "repositories"}, {"Go", "1"}, {"TypeScript", "1"}}, records)
}
