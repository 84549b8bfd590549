package schema

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// VulnerabilityID builds the deterministic id of a code vulnerability.
func VulnerabilityID(file string, line int, vulnType string) string {
	return fmt.Sprintf("%s:%d:%s", file, line, vulnType)
}

// DependencyVulnerabilityID builds the deterministic id of a vulnerable dependency.
func DependencyVulnerabilityID(name, version string) string {
	return fmt.Sprintf("dependency:%s:%s", name, version)
}

// NewRepositoryIndex returns an empty index stamped with the given time.
func NewRepositoryIndex(now time.Time) *RepositoryIndex {
	return &RepositoryIndex{
		Repositories:  []IndexedRepository{},
		Relationships: []RepositoryRelationship{},
		Tags:          []Tag{},
		LastUpdated:   now,
	}
}

// Normalize defaults missing collections to empty ones and a zero LastUpdated to now.
func (idx *RepositoryIndex) Normalize(now time.Time) {
	if idx.Repositories == nil {
		idx.Repositories = []IndexedRepository{}
	}
	if idx.Relationships == nil {
		idx.Relationships = []RepositoryRelationship{}
	}
	if idx.Tags == nil {
		idx.Tags = []Tag{}
	}
	for i := range idx.Repositories {
		r := &idx.Repositories[i]
		if r.Languages == nil {
			r.Languages = []string{}
		}
		if r.Frameworks == nil {
			r.Frameworks = []string{}
		}
		if r.Tags == nil {
			r.Tags = []string{}
		}
	}
	if idx.LastUpdated.IsZero() {
		idx.LastUpdated = now
	}
}

// Clone returns a deep copy of the index.
func (idx *RepositoryIndex) Clone() *RepositoryIndex {
	clone := &RepositoryIndex{
		Repositories:  make([]IndexedRepository, len(idx.Repositories)),
		Relationships: make([]RepositoryRelationship, len(idx.Relationships)),
		Tags:          make([]Tag, len(idx.Tags)),
		LastUpdated:   idx.LastUpdated,
	}
	for i, r := range idx.Repositories {
		clone.Repositories[i] = r.Clone()
	}
	copy(clone.Relationships, idx.Relationships)
	copy(clone.Tags, idx.Tags)
	return clone
}

// Clone returns a deep copy of the repository entry.
func (r IndexedRepository) Clone() IndexedRepository {
	c := r
	c.Languages = append([]string{}, r.Languages...)
	c.Frameworks = append([]string{}, r.Frameworks...)
	c.Tags = append([]string{}, r.Tags...)
	c.Directories = append([]string(nil), r.Directories...)
	c.Patterns = append([]ArchitecturalPattern(nil), r.Patterns...)
	return c
}

// HasTag reports whether the repository carries the tag name.
func (r IndexedRepository) HasTag(name string) bool {
	for _, t := range r.Tags {
		if t == name {
			return true
		}
	}
	return false
}

// PrimaryLanguage returns the first language or an empty string.
func (r IndexedRepository) PrimaryLanguage() string {
	if len(r.Languages) == 0 {
		return ""
	}
	return r.Languages[0]
}

// Stats computes summary statistics for the index.
func (idx *RepositoryIndex) Stats() IndexStats {
	stats := IndexStats{
		Repositories:  len(idx.Repositories),
		Relationships: len(idx.Relationships),
		Tags:          len(idx.Tags),
		Languages:     make(map[string]int),
		LastUpdated:   idx.LastUpdated,
	}
	for _, r := range idx.Repositories {
		if lang := r.PrimaryLanguage(); lang != "" {
			stats.Languages[lang]++
		}
	}
	return stats
}

// DebtSummary formats the debt counts as "{high} high, {medium} medium, {low} low priority items".
func DebtSummary(items []TechnicalDebt) string {
	var high, medium, low int
	for _, d := range items {
		switch d.Severity {
		case SeverityHigh, SeverityCritical:
			high++
		case SeverityMedium:
			medium++
		default:
			low++
		}
	}
	return fmt.Sprintf("%d high, %d medium, %d low priority items", high, medium, low)
}

// FormatList joins values with ", " after sorting a copy, or returns "-" when empty.
func FormatList(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	sorted := append([]string{}, values...)
	sort.Strings(sorted)
	return strings.Join(sorted, ", ")
}
