package analyzer

import (
	"testing"

	"github.com/huangsam/reposcope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func patternNames(patterns []schema.ArchitecturalPattern) []string {
	var out []string
	for _, p := range patterns {
		out = append(out, p.Name)
	}
	return out
}

func dirs(paths ...string) []schema.DirectoryInfo {
	out := make([]schema.DirectoryInfo, len(paths))
	for i, p := range paths {
		out[i] = schema.DirectoryInfo{Path: p}
	}
	return out
}

func TestStructuralPatterns(t *testing.T) {
	analysis := &schema.RepositoryAnalysis{
		Structure: schema.Structure{
			Directories: dirs("src/models", "src/views", "src/controllers", "src/services", "src/repositories", "plugins"),
			KeyFiles:    []schema.KeyFile{{Path: "web/app.component.ts"}, {Path: "Dockerfile"}},
		},
	}
	assert.Equal(t, []string{
		PatternMVC,
		PatternLayered,
		PatternMicroservices,
		PatternComponent,
		PatternPlugin,
	}, patternNames(structuralPatterns(analysis)))

	assert.Empty(t, structuralPatterns(&schema.RepositoryAnalysis{}))
}

func TestMicroservicesByServiceDirs(t *testing.T) {
	analysis := &schema.RepositoryAnalysis{
		Structure: schema.Structure{
			Directories: dirs("billing-service", "auth-service", "user-service", "mail-service"),
		},
	}
	assert.Equal(t, []string{PatternMicroservices}, patternNames(structuralPatterns(analysis)))

	analysis.Structure.Directories = analysis.Structure.Directories[:3]
	assert.Empty(t, structuralPatterns(analysis))
}

func TestFrameworkPatterns(t *testing.T) {
	patterns := frameworkPatterns([]string{"Express", "Next.js", "React", "Apollo"})
	assert.Equal(t, []string{PatternREST, PatternSPA, PatternSSR, PatternGraphQL}, patternNames(patterns))
	assert.Equal(t, RESTConfidence, patterns[0].Confidence)
	assert.Empty(t, frameworkPatterns([]string{"Cobra"}))
}

func TestScanIdioms(t *testing.T) {
	java := `public class Config {
    private static Config instance;
    public static Config getInstance() {
        return instance;
    }
}
`
	c := scanIdioms(newSourceFile("Config.java", java, JavaLike))
	assert.Equal(t, idiomCounts{Singleton: 1}, c)

	js := "emitter.subscribe(a);\nemitter.subscribe(b);\nnotify();\nfunction createUser() { return new User(); }\n"
	c = scanIdioms(newSourceFile("src/userFactory.js", js, CLike))
	assert.Equal(t, idiomCounts{Factory: 2, Observer: 3}, c)

	patterns := idiomPatterns(idiomCounts{Singleton: 1, Factory: 2, Observer: 3})
	require.Len(t, patterns, 3)
	assert.Equal(t, 0.7, patterns[0].Confidence)
	assert.Equal(t, 0.7, patterns[1].Confidence)
	assert.Equal(t, 0.55, patterns[2].Confidence)

	capped := idiomPatterns(idiomCounts{Singleton: 10, Factory: 10, Observer: 2})
	require.Len(t, capped, 2)
	assert.Equal(t, SingletonCap, capped[0].Confidence)
	assert.Equal(t, FactoryCap, capped[1].Confidence)
}

func TestMaintainabilityScore(t *testing.T) {
	spa := []schema.ArchitecturalPattern{{Name: PatternSPA, Confidence: SPAConfidence}}
	// 50 + 5 confident - 20 sparse + 10 modern
	assert.Equal(t, 45, maintainabilityScore(spa, []string{"React"}, 150))
	assert.Equal(t, 50, maintainabilityScore(nil, nil, 10))
	assert.Equal(t, 30, maintainabilityScore(nil, nil, 500))

	good := []schema.ArchitecturalPattern{
		{Name: PatternMVC, Confidence: MVCConfidence},
		{Name: PatternLayered, Confidence: LayeredConfidence},
		{Name: PatternREST, Confidence: RESTConfidence},
	}
	assert.Equal(t, 100, maintainabilityScore(good, []string{"Express"}, 10))
}

func TestArchitectureRecommendations(t *testing.T) {
	spa := []schema.ArchitecturalPattern{{Name: PatternSPA, Confidence: SPAConfidence}}
	recs := architectureRecommendations(spa, []string{"React", "Express"}, 150)
	assert.Equal(t, []string{
		"Organize the codebase into layers or components to manage its size",
		"Structure React code as reusable components",
		"Follow REST conventions for Express routes",
		"Apply SOLID principles to keep modules focused",
		"Keep a clear separation of concerns between modules",
		"Use dependency injection to decouple components",
	}, recs)

	assert.Len(t, architectureRecommendations(nil, nil, 10), 3)
}

func TestAnalyzeArchitectureEmpty(t *testing.T) {
	report := analyzeArchitecture(&schema.RepositoryAnalysis{}, idiomCounts{})
	assert.NotNil(t, report.Patterns)
	assert.Empty(t, report.Patterns)
	assert.Equal(t, MaintainabilityBase, report.MaintainabilityScore)
	assert.Len(t, report.Recommendations, 3)
}
