package index

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/huangsam/reposcope/schema"
)

// RepositoryID returns the deterministic id of a repository path.
func RepositoryID(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return strconv.FormatUint(xxhash.Sum64String(filepath.Clean(path)), 16)
}

func validateAnalysis(analysis *schema.RepositoryAnalysis) error {
	if analysis == nil {
		return &schema.ValidationError{Message: "analysis is required"}
	}
	if strings.TrimSpace(analysis.Path) == "" {
		return &schema.ValidationError{Field: "path", Message: "must not be empty"}
	}
	if strings.TrimSpace(analysis.Name) == "" {
		return &schema.ValidationError{Field: "name", Message: "must not be empty"}
	}
	if analysis.FileCount < 0 || analysis.DirectoryCount < 0 || analysis.TotalSize < 0 {
		return &schema.ValidationError{Field: "counts", Message: "must not be negative"}
	}
	return nil
}

// extract projects a full analysis onto an index entry.
func extract(analysis *schema.RepositoryAnalysis, now time.Time) schema.IndexedRepository {
	repo := schema.IndexedRepository{
		ID:             RepositoryID(analysis.Path),
		Path:           analysis.Path,
		Name:           analysis.Name,
		Description:    analysis.Description,
		Languages:      nonNil(analysis.Languages),
		Frameworks:     nonNil(analysis.Frameworks),
		FileCount:      analysis.FileCount,
		DirectoryCount: analysis.DirectoryCount,
		TotalSize:      analysis.TotalSize,
		Patterns:       append([]schema.ArchitecturalPattern(nil), analysis.CodeAnalysis.Patterns...),
		Directories:    topLevelDirectories(analysis.Structure.Directories),
		AddedAt:        now,
		UpdatedAt:      now,
		LastAnalyzed:   analysis.AnalyzedAt,
	}
	if repo.LastAnalyzed.IsZero() {
		repo.LastAnalyzed = now
	}
	if analysis.CodeAnalysis.Complexity != nil {
		repo.Quality = analysis.CodeAnalysis.Complexity.OverallQuality
	}
	repo.Tags = autoTags(repo)
	return repo
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return append([]string{}, values...)
}

// topLevelDirectories returns the sorted, distinct first path segments.
func topLevelDirectories(dirs []schema.DirectoryInfo) []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range dirs {
		p := strings.Trim(filepath.ToSlash(d.Path), "/")
		if p == "" || p == "." {
			continue
		}
		first, _, _ := strings.Cut(p, "/")
		if !seen[first] {
			seen[first] = true
			out = append(out, first)
		}
	}
	sort.Strings(out)
	return out
}

func slug(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}

// autoTags derives the primary language, frameworks and role as tags.
func autoTags(repo schema.IndexedRepository) []string {
	var tags []string
	add := func(t string) {
		if t == "" {
			return
		}
		for _, existing := range tags {
			if existing == t {
				return
			}
		}
		tags = append(tags, t)
	}
	add(slug(repo.PrimaryLanguage()))
	for _, fw := range repo.Frameworks {
		add(slug(fw))
	}
	add(string(inferRole(repo)))
	if tags == nil {
		return []string{}
	}
	return tags
}

// mergeTags appends tags missing from base.
func mergeTags(base, extra []string) []string {
	out := append([]string{}, base...)
	for _, t := range extra {
		found := false
		for _, existing := range out {
			if existing == t {
				found = true
				break
			}
		}
		if !found {
			out = append(out, t)
		}
	}
	return out
}
