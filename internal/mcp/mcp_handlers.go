package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/reposcope/core"
	"github.com/huangsam/reposcope/core/tokens"
	"github.com/huangsam/reposcope/internal/contract"
	"github.com/huangsam/reposcope/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// findingSummary is a compact finding with its description sampled to the token budget.
type findingSummary struct {
	Kind        string `json:"kind"`
	Category    string `json:"category"`
	Severity    string `json:"severity"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description"`
}

// analyzeResponse is the analyze_repository payload. Free text is sampled so
// large repositories stay within the caller's context window.
type analyzeResponse struct {
	Repository           string                        `json:"repository"`
	Path                 string                        `json:"path"`
	Description          string                        `json:"description,omitempty"`
	Languages            []string                      `json:"languages"`
	Frameworks           []string                      `json:"frameworks"`
	Quality              schema.Quality                `json:"quality,omitempty"`
	QualityScore         int                           `json:"qualityScore"`
	SecurityScore        int                           `json:"securityScore"`
	MaintainabilityScore int                           `json:"maintainabilityScore"`
	Findings             []findingSummary              `json:"findings"`
	Patterns             []schema.ArchitecturalPattern `json:"patterns"`
	Recommendations      []string                      `json:"recommendations"`
	Trends               *schema.TrendData             `json:"trends,omitempty"`
	IndexedID            string                        `json:"indexedId,omitempty"`
}

// jsonResult marshals v into a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func buildAnalyzeResponse(out *core.AnalysisOutput, budget int, strategy tokens.Strategy) analyzeResponse {
	sample := func(text string) string { return tokens.SampleText(text, budget, strategy) }
	a, r := out.Analysis, out.Result

	resp := analyzeResponse{
		Repository:           a.Name,
		Path:                 a.Path,
		Description:          sample(a.Description),
		Languages:            a.Languages,
		Frameworks:           a.Frameworks,
		QualityScore:         r.CodeQuality.OverallScore,
		SecurityScore:        r.Security.SecurityScore,
		MaintainabilityScore: r.Architecture.MaintainabilityScore,
		Findings:             []findingSummary{},
		Patterns:             r.Architecture.Patterns,
		Trends:               r.Trends,
	}
	if a.CodeAnalysis.Complexity != nil {
		resp.Quality = a.CodeAnalysis.Complexity.OverallQuality
	}
	for _, f := range r.Findings(0) {
		if f.Kind == schema.FindingPattern {
			continue
		}
		summary := findingSummary{Kind: f.Kind, Category: f.Category, Severity: f.Severity, Description: sample(f.Description)}
		if f.FilePath != nil {
			summary.Location = *f.FilePath
			if f.Line != nil {
				summary.Location = fmt.Sprintf("%s:%d", *f.FilePath, *f.Line)
			}
		}
		resp.Findings = append(resp.Findings, summary)
	}
	for _, rec := range append(r.Security.Recommendations, r.Architecture.Recommendations...) {
		resp.Recommendations = append(resp.Recommendations, sample(rec))
	}
	if out.Indexed != nil {
		resp.IndexedID = out.Indexed.ID
	}
	return resp
}

func (h *toolHandler) handleAnalyzeRepository(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("repo_path", ""); p != "" {
		cfg.RepoPath = p
	}
	if cfg.RepoPath == "" {
		return mcp.NewToolResultError("repo_path is required"), nil
	}
	cfg.Index = request.GetBool("index", false)

	budget := cfg.SampleTokens
	if n := request.GetInt("max_tokens", 0); n > 0 {
		budget = n
	}
	if budget <= 0 {
		budget = contract.DefaultSampleTokens
	}
	strategy := cfg.SampleStrategy
	if s := request.GetString("strategy", ""); s != "" {
		strategy = tokens.Strategy(s)
	}
	if _, ok := tokens.ValidStrategies[strategy]; !ok {
		strategy = tokens.StrategySmart
	}

	out, err := core.RunAnalysis(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}
	return jsonResult(buildAnalyzeResponse(out, budget, strategy))
}

func (h *toolHandler) handleSearchRepositories(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := schema.SearchQuery{
		Keywords:   contract.SplitList(request.GetString("keywords", "")),
		Languages:  contract.SplitList(request.GetString("languages", "")),
		Frameworks: contract.SplitList(request.GetString("frameworks", "")),
		Tags:       contract.SplitList(request.GetString("tags", "")),
	}
	results := core.OpenEngine(h.mgr).SearchRepositories(query)
	return jsonResult(results)
}

func (h *toolHandler) handleFindSimilar(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("repository_id", "")
	if id == "" {
		return mcp.NewToolResultError("repository_id is required"), nil
	}
	results, err := core.OpenEngine(h.mgr).FindSimilarRepositories(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("similarity lookup failed: %v", err)), nil
	}
	if l := request.GetInt("limit", 0); l > 0 && l < len(results) {
		results = results[:l]
	}
	return jsonResult(schema.RankSimilar(results))
}

func (h *toolHandler) handleSuggestCombinations(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	engine := core.OpenEngine(h.mgr)
	ids := contract.SplitList(request.GetString("repository_ids", ""))
	if len(ids) == 0 {
		for _, r := range engine.ListRepositories() {
			ids = append(ids, r.ID)
		}
	}
	results, err := engine.SuggestCombinations(ids, request.GetInt("max_size", 0))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("combination lookup failed: %v", err)), nil
	}
	return jsonResult(schema.RankCombinations(results))
}

func (h *toolHandler) handleListRepositories(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(core.OpenEngine(h.mgr).ListRepositories())
}
