package schema

import "time"

// RepositoryIndex is the persisted catalog of analyzed repositories.
type RepositoryIndex struct {
	Repositories  []IndexedRepository      `json:"repositories"`
	Relationships []RepositoryRelationship `json:"relationships"`
	Tags          []Tag                    `json:"tags"`
	LastUpdated   time.Time                `json:"lastUpdated"`
}

// IndexedRepository is the lightweight projection of a RepositoryAnalysis.
type IndexedRepository struct {
	ID             string                 `json:"id"`
	Path           string                 `json:"path"`
	Name           string                 `json:"name"`
	Description    string                 `json:"description,omitempty"`
	Languages      []string               `json:"languages"`
	Frameworks     []string               `json:"frameworks"`
	FileCount      int                    `json:"fileCount"`
	DirectoryCount int                    `json:"directoryCount"`
	TotalSize      int64                  `json:"totalSize"`
	Tags           []string               `json:"tags"`
	Patterns       []ArchitecturalPattern `json:"patterns,omitempty"`
	Directories    []string               `json:"directories,omitempty"` // Top-level directory names
	Quality        Quality                `json:"quality,omitempty"`
	AddedAt        time.Time              `json:"addedAt"`
	UpdatedAt      time.Time              `json:"updatedAt"`
	LastAnalyzed   time.Time              `json:"lastAnalyzed"`
}

// RepositoryRelationship links two indexed repositories.
type RepositoryRelationship struct {
	SourceID string           `json:"sourceId"`
	TargetID string           `json:"targetId"`
	Type     RelationshipType `json:"type"`
	Strength float64          `json:"strength"` // 0.0 - 1.0
	Reason   string           `json:"reason,omitempty"`
}

// Tag is an entry of the global tag catalog.
type Tag struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Color    string `json:"color,omitempty"`
}

// SearchQuery filters the index. Fields are ANDed, values within a field are ORed.
type SearchQuery struct {
	Keywords   []string `json:"keywords,omitempty"`
	Languages  []string `json:"languages,omitempty"`
	Frameworks []string `json:"frameworks,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// IsEmpty reports whether the query has no constraints.
func (q SearchQuery) IsEmpty() bool {
	return len(q.Keywords) == 0 && len(q.Languages) == 0 && len(q.Frameworks) == 0 && len(q.Tags) == 0
}

// SearchResult is one search match.
type SearchResult struct {
	Repository  IndexedRepository `json:"repository"`
	MatchReason string            `json:"matchReason"`
}

// SimilarityBreakdown holds the per-axis similarity scores.
type SimilarityBreakdown struct {
	Languages  float64 `json:"languages"`
	Frameworks float64 `json:"frameworks"`
	Patterns   float64 `json:"patterns"`
	TechStack  float64 `json:"techStack"`
	Structure  float64 `json:"structure"`
	Semantic   float64 `json:"semantic"`
}

// SimilarityResult is one entry of a similar-repositories lookup.
type SimilarityResult struct {
	Repository IndexedRepository   `json:"repository"`
	Similarity float64             `json:"similarity"`
	Reason     string              `json:"reason"`
	Breakdown  SimilarityBreakdown `json:"breakdown"`
}

// CombinationBreakdown holds the per-axis compatibility scores.
type CombinationBreakdown struct {
	Architecture  float64 `json:"architecture"`
	TechStack     float64 `json:"techStack"`
	Functionality float64 `json:"functionality"`
	Workflow      float64 `json:"workflow"`
}

// CombinationSuggestion is one scored combination of repositories.
type CombinationSuggestion struct {
	RepositoryIDs []string             `json:"repositoryIds"`
	Names         []string             `json:"names"`
	Roles         []Role               `json:"roles"`
	Score         float64              `json:"score"`
	Breakdown     CombinationBreakdown `json:"breakdown"`
	Rationale     string               `json:"rationale"`
}

// IndexStats summarizes an index for status output.
type IndexStats struct {
	Repositories  int            `json:"repositories"`
	Relationships int            `json:"relationships"`
	Tags          int            `json:"tags"`
	Languages     map[string]int `json:"languages"`
	LastUpdated   time.Time      `json:"lastUpdated"`
}
