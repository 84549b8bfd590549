package index

import (
	"testing"

	"github.com/huangsam/reposcope/schema"
	"github.com/stretchr/testify/assert"
)

func indexed(name string, languages, frameworks []string) schema.IndexedRepository {
	return schema.IndexedRepository{
		ID:         RepositoryID("/repos/" + name),
		Path:       "/repos/" + name,
		Name:       name,
		Languages:  languages,
		Frameworks: frameworks,
	}
}

func TestJaccard(t *testing.T) {
	assert.Equal(t, 0.0, jaccard(nil, nil))
	assert.Equal(t, 0.0, jaccard([]string{"Go"}, nil))
	assert.Equal(t, 1.0, jaccard([]string{"Go"}, []string{"go"}))
	assert.InDelta(t, 1.0/3, jaccard([]string{"a", "b"}, []string{"b", "c"}), 1e-9)
}

func TestSimilarityIdentical(t *testing.T) {
	a := indexed("shop", []string{"TypeScript"}, []string{"React"})
	a.Patterns = []schema.ArchitecturalPattern{{Name: "Component-Based"}}
	a.Directories = []string{"src"}
	a.FileCount = 12

	score, bd := similarity(a, a)
	assert.Equal(t, 1.0, score)
	assert.Equal(t, schema.SimilarityBreakdown{
		Languages:  1,
		Frameworks: 1,
		Patterns:   1,
		TechStack:  1,
		Structure:  1,
		Semantic:   1,
	}, bd)
}

func TestSimilarityEmpty(t *testing.T) {
	score, bd := similarity(schema.IndexedRepository{}, schema.IndexedRepository{})
	assert.Equal(t, 0.0, score)
	assert.Equal(t, schema.SimilarityBreakdown{}, bd)
	assert.Equal(t, "low overall similarity", similarityReason(schema.IndexedRepository{}, schema.IndexedRepository{}, bd))
}

func TestSimilarityTechStack(t *testing.T) {
	ts := indexed("alpha", []string{"TypeScript"}, nil)
	js := indexed("omega", []string{"JavaScript"}, nil)
	py := indexed("omega", []string{"Python"}, nil)

	_, same := similarity(ts, js)
	assert.Equal(t, 0.0, same.Languages)
	assert.Equal(t, 1.0, same.TechStack)

	_, other := similarity(ts, py)
	assert.Equal(t, 0.0, other.TechStack)
}

func TestSimilarityReason(t *testing.T) {
	a := indexed("web-shop", []string{"TypeScript"}, []string{"React"})
	b := indexed("web-store", []string{"TypeScript", "CSS"}, []string{"React", "Redux"})
	_, bd := similarity(a, b)
	reason := similarityReason(a, b, bd)
	assert.Contains(t, reason, "shared languages: TypeScript")
	assert.Contains(t, reason, "shared frameworks: React")
}

func TestSimilaritySymmetricRange(t *testing.T) {
	repos := []schema.IndexedRepository{
		indexed("web-app", []string{"TypeScript", "JavaScript"}, []string{"React"}),
		indexed("api-server", []string{"TypeScript"}, []string{"Express"}),
		indexed("data-utils", []string{"Python"}, nil),
		indexed("", nil, nil),
	}
	for _, a := range repos {
		for _, b := range repos {
			s, _ := similarity(a, b)
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 1.0)
		}
	}
}

func FuzzSimilarity(f *testing.F) {
	f.Add("web-app", "TypeScript", "React", 10, "api", "Go", "Gin", 3)
	f.Add("", "", "", 0, "", "", "", 0)
	f.Add("你好", "C#", "ASP.NET", -5, "\xff", "c#", "", 1<<30)
	f.Fuzz(func(t *testing.T, n1, l1, fw1 string, c1 int, n2, l2, fw2 string, c2 int) {
		a := indexed(n1, []string{l1}, []string{fw1})
		a.FileCount = c1
		b := indexed(n2, []string{l2}, []string{fw2})
		b.FileCount = c2

		s, bd := similarity(a, b)
		if s < 0 || s > 1 {
			t.Fatalf("similarity %v out of range", s)
		}
		for _, axis := range []float64{bd.Languages, bd.Frameworks, bd.Patterns, bd.TechStack, bd.Structure, bd.Semantic} {
			if axis < 0 || axis > 1 {
				t.Fatalf("axis %v out of range in %+v", axis, bd)
			}
		}
		if similarityReason(a, b, bd) == "" {
			t.Fatal("empty reason")
		}
	})
}
