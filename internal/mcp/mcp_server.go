// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/reposcope/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the reposcope MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"Reposcope Server",
		version,
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: analyze_repository ---
	s.AddTool(mcp.NewTool("analyze_repository",
		mcp.WithDescription("Analyze a local repository for code quality, security and architecture."),
		mcp.WithString("repo_path", mcp.Description("Path to the repository (defaults to the configured path).")),
		mcp.WithBoolean("index", mcp.Description("Also add the repository to the index.")),
		mcp.WithNumber("max_tokens", mcp.Description("Token budget for each free-text field in the response.")),
		mcp.WithString("strategy", mcp.Description("Sampling strategy for oversized text."), mcp.Enum("start", "end", "middle", "smart")),
	), h.handleAnalyzeRepository)

	// --- 2. Tool: search_repositories ---
	s.AddTool(mcp.NewTool("search_repositories",
		mcp.WithDescription("Search indexed repositories. Fields are ANDed, comma-separated values within a field are ORed."),
		mcp.WithString("keywords", mcp.Description("Comma-separated keywords matched against names, descriptions and directories.")),
		mcp.WithString("languages", mcp.Description("Comma-separated languages.")),
		mcp.WithString("frameworks", mcp.Description("Comma-separated frameworks.")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags.")),
	), h.handleSearchRepositories)

	// --- 3. Tool: find_similar_repositories ---
	s.AddTool(mcp.NewTool("find_similar_repositories",
		mcp.WithDescription("Rank indexed repositories by similarity to one repository."),
		mcp.WithString("repository_id", mcp.Description("Id of an indexed repository."), mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleFindSimilar)

	// --- 4. Tool: suggest_combinations ---
	s.AddTool(mcp.NewTool("suggest_combinations",
		mcp.WithDescription("Suggest combinations of indexed repositories that work well together."),
		mcp.WithString("repository_ids", mcp.Description("Comma-separated ids to consider (defaults to all).")),
		mcp.WithNumber("max_size", mcp.Description("Largest combination size (2-4).")),
	), h.handleSuggestCombinations)

	// --- 5. Tool: list_repositories ---
	s.AddTool(mcp.NewTool("list_repositories",
		mcp.WithDescription("List every indexed repository."),
	), h.handleListRepositories)

	return s
}

// StartMCPServer starts the reposcope MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager, version string) error {
	s := NewMCPServer(baseCfg, mgr, version)
	return server.ServeStdio(s)
}
