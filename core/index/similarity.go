package index

import (
	"fmt"
	"math"
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/huangsam/reposcope/schema"
)

// ecosystems groups languages that share tooling and packages.
var ecosystems = map[string]string{
	"javascript":  "javascript",
	"typescript":  "javascript",
	"python":      "python",
	"go":          "go",
	"java":        "jvm",
	"kotlin":      "jvm",
	"scala":       "jvm",
	"groovy":      "jvm",
	"c#":          "dotnet",
	"f#":          "dotnet",
	"rust":        "rust",
	"ruby":        "ruby",
	"php":         "php",
	"swift":       "apple",
	"objective-c": "apple",
	"dart":        "dart",
	"c":           "native",
	"c++":         "native",
}

func foldSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}

func jaccardSets(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shared := 0
	for k := range a {
		if _, ok := b[k]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(a)+len(b)-shared)
}

// jaccard compares two string lists case-insensitively. Empty lists score 0.
func jaccard(a, b []string) float64 {
	return jaccardSets(foldSet(a), foldSet(b))
}

func shared(a, b []string) []string {
	bs := foldSet(b)
	var out []string
	seen := make(map[string]bool)
	for _, v := range a {
		k := strings.ToLower(strings.TrimSpace(v))
		if _, ok := bs[k]; ok && !seen[k] {
			seen[k] = true
			out = append(out, v)
		}
	}
	return out
}

func ecosystemSet(languages []string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, l := range languages {
		if e, ok := ecosystems[strings.ToLower(strings.TrimSpace(l))]; ok {
			set[e] = struct{}{}
		}
	}
	return set
}

func patternNames(patterns []schema.ArchitecturalPattern) []string {
	out := make([]string, len(patterns))
	for i, p := range patterns {
		out[i] = p.Name
	}
	return out
}

// techStackScore is the overlap of language ecosystems.
func techStackScore(a, b schema.IndexedRepository) float64 {
	return jaccardSets(ecosystemSet(a.Languages), ecosystemSet(b.Languages))
}

// structureScore mixes the file count ratio with top-level directory overlap.
func structureScore(a, b schema.IndexedRepository) float64 {
	var ratio float64
	lo, hi := min(a.FileCount, b.FileCount), max(a.FileCount, b.FileCount)
	if hi > 0 {
		ratio = float64(lo) / float64(hi)
	}
	return 0.5*ratio + 0.5*jaccard(a.Directories, b.Directories)
}

// nameSimilarity is the Jaro-Winkler similarity of the lowercased names.
func nameSimilarity(a, b string) float64 {
	a, b = strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	score, err := edlib.StringsSimilarity(a, b, edlib.JaroWinkler)
	if err != nil {
		return 0
	}
	return float64(score)
}

// semanticScore is the larger of stemmed word overlap and name similarity.
func semanticScore(a, b schema.IndexedRepository) float64 {
	words := jaccardSets(stemSet(a.Name+" "+a.Description), stemSet(b.Name+" "+b.Description))
	return math.Max(words, nameSimilarity(a.Name, b.Name))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(math.Max(v, 0), 1)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// similarity scores two repositories. It is total: any pair yields a value in [0, 1].
func similarity(a, b schema.IndexedRepository) (float64, schema.SimilarityBreakdown) {
	bd := schema.SimilarityBreakdown{
		Languages:  round3(jaccard(a.Languages, b.Languages)),
		Frameworks: round3(jaccard(a.Frameworks, b.Frameworks)),
		Patterns:   round3(jaccard(patternNames(a.Patterns), patternNames(b.Patterns))),
		TechStack:  round3(techStackScore(a, b)),
		Structure:  round3(clamp01(structureScore(a, b))),
		Semantic:   round3(clamp01(semanticScore(a, b))),
	}
	total := LanguageWeight*bd.Languages +
		FrameworkWeight*bd.Frameworks +
		PatternWeight*bd.Patterns +
		TechStackWeight*bd.TechStack +
		StructureWeight*bd.Structure +
		SemanticWeight*bd.Semantic
	return round3(clamp01(total)), bd
}

// similarityReason names the axes that contributed most.
func similarityReason(a, b schema.IndexedRepository, bd schema.SimilarityBreakdown) string {
	var parts []string
	if langs := shared(a.Languages, b.Languages); len(langs) > 0 {
		parts = append(parts, "shared languages: "+strings.Join(langs, ", "))
	}
	if fws := shared(a.Frameworks, b.Frameworks); len(fws) > 0 {
		parts = append(parts, "shared frameworks: "+strings.Join(fws, ", "))
	}
	if pats := shared(patternNames(a.Patterns), patternNames(b.Patterns)); len(pats) > 0 {
		parts = append(parts, "shared patterns: "+strings.Join(pats, ", "))
	}
	if bd.TechStack >= ReasonAxisThreshold && len(parts) == 0 {
		parts = append(parts, "compatible tech stack")
	}
	if bd.Structure >= ReasonAxisThreshold {
		parts = append(parts, "similar structure")
	}
	if bd.Semantic >= ReasonAxisThreshold {
		parts = append(parts, fmt.Sprintf("related naming (%.2f)", bd.Semantic))
	}
	if len(parts) == 0 {
		return "low overall similarity"
	}
	return strings.Join(parts, "; ")
}
