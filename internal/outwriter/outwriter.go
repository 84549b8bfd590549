// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/reposcope/internal/contract"
	"github.com/huangsam/reposcope/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the commands.
type OutWriter struct {
	cfg *contract.Config
}

// NewOutWriter creates a new instance of the output writer bound to cfg.
func NewOutWriter(cfg *contract.Config) *OutWriter {
	return &OutWriter{cfg: cfg}
}

// WriteAnalysis prints one analyzer run using the configured output format.
func (ow *OutWriter) WriteAnalysis(analysis *schema.RepositoryAnalysis, result *schema.AdvancedAnalysisResult, duration time.Duration) error {
	return WriteAnalysisResults(analysis, result, ow.cfg, duration)
}

// WriteSearch prints index search matches using the configured output format.
func (ow *OutWriter) WriteSearch(results []schema.SearchResult) error {
	return WriteSearchResults(results, ow.cfg)
}

// WriteRepositories prints the indexed repositories using the configured output format.
func (ow *OutWriter) WriteRepositories(repos []schema.IndexedRepository) error {
	return WriteRepositories(repos, ow.cfg)
}

// WriteSimilar prints similar repositories using the configured output format.
func (ow *OutWriter) WriteSimilar(source schema.IndexedRepository, results []schema.SimilarityResult) error {
	return WriteSimilarResults(source, results, ow.cfg)
}

// WriteCombinations prints combination suggestions using the configured output format.
func (ow *OutWriter) WriteCombinations(results []schema.CombinationSuggestion) error {
	return WriteCombinations(results, ow.cfg)
}

// WriteTags prints the tag catalog using the configured output format.
func (ow *OutWriter) WriteTags(tags []schema.Tag) error {
	return WriteTags(tags, ow.cfg)
}

// WriteRelationships prints repository relationships using the configured output format.
func (ow *OutWriter) WriteRelationships(rels []schema.RepositoryRelationship, names map[string]string) error {
	return WriteRelationships(rels, names, ow.cfg)
}

// WriteStats prints index statistics using the configured output format.
func (ow *OutWriter) WriteStats(stats schema.IndexStats) error {
	return WriteIndexStats(stats, ow.cfg)
}
