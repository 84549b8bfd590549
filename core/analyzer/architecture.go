package analyzer

import (
	"math"
	"path"
	"regexp"
	"strings"

	"github.com/huangsam/reposcope/schema"
)

// Pattern names.
const (
	PatternMVC           = "MVC"
	PatternLayered       = "Layered Architecture"
	PatternMicroservices = "Microservices"
	PatternComponent     = "Component-Based"
	PatternPlugin        = "Plugin Architecture"
	PatternREST          = "REST API"
	PatternSPA           = "Single Page Application"
	PatternSSR           = "Server-Side Rendering"
	PatternGraphQL       = "GraphQL API"
	PatternSingleton     = "Singleton"
	PatternFactory       = "Factory"
	PatternObserver      = "Observer"
)

var (
	restFrameworks    = []string{"express", "fastify", "koa", "hapi", "nest", "flask", "fastapi", "gin", "echo", "fiber", "spring"}
	spaFrameworks     = []string{"react", "vue", "angular", "svelte"}
	ssrFrameworks     = []string{"next", "nuxt", "gatsby", "remix", "sveltekit"}
	graphqlFrameworks = []string{"graphql", "apollo"}
	modernFrameworks  = []string{"react", "vue", "angular", "next", "express"}

	goodPatterns  = []string{"layered", "component", "mvc", "rest api"}
	containerDirs = []string{"k8s", "kubernetes", "helm", "charts"}

	singletonField   = regexp.MustCompile(`(?i)(private\s+static\s+\w*\s*_?instance|static\s+_?instance\b|_instance\s*=\s*None)`)
	singletonAccess  = regexp.MustCompile(`\b(getInstance|get_instance|GetInstance)\s*\(`)
	factoryMethod    = regexp.MustCompile(`\bcreate[A-Z_]\w*\s*\(`)
	newExpression    = regexp.MustCompile(`\bnew\s+[A-Z]\w*`)
	observerKeywords = regexp.MustCompile(`(?i)\b(addEventListener|subscribe|notify|observer)\b`)
)

// idiomCounts holds code idiom occurrences found in one file.
type idiomCounts struct {
	Singleton int `json:"singleton"`
	Factory   int `json:"factory"`
	Observer  int `json:"observer"`
}

func (c *idiomCounts) add(o idiomCounts) {
	c.Singleton += o.Singleton
	c.Factory += o.Factory
	c.Observer += o.Observer
}

// scanIdioms counts singleton, factory and observer idioms in one file.
func scanIdioms(sf *sourceFile) idiomCounts {
	var c idiomCounts
	if singletonField.MatchString(sf.content) {
		c.Singleton = len(singletonAccess.FindAllStringIndex(sf.content, -1))
	}
	if newExpression.MatchString(sf.content) {
		c.Factory = len(factoryMethod.FindAllStringIndex(sf.content, -1))
	}
	if strings.Contains(strings.ToLower(path.Base(filepathSlash(sf.path))), "factory") {
		c.Factory++
	}
	c.Observer = len(observerKeywords.FindAllStringIndex(sf.content, -1))
	return c
}

func filepathSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func scaled(base, step, limit float64, count int) float64 {
	return math.Round(math.Min(base+step*float64(count), limit)*100) / 100
}

// structuralPatterns infers patterns from directory and key file names.
func structuralPatterns(analysis *schema.RepositoryAnalysis) []schema.ArchitecturalPattern {
	var segments []string
	for _, d := range analysis.Structure.Directories {
		segments = append(segments, strings.ToLower(path.Base(filepathSlash(d.Path))))
	}
	var files []string
	for _, kf := range analysis.Structure.KeyFiles {
		files = append(files, strings.ToLower(path.Base(filepathSlash(kf.Path))))
	}
	anyDir := func(needle string) bool {
		for _, s := range segments {
			if strings.Contains(s, needle) {
				return true
			}
		}
		return false
	}
	anyFile := func(needle string) bool {
		for _, f := range files {
			if strings.Contains(f, needle) {
				return true
			}
		}
		return false
	}

	var out []schema.ArchitecturalPattern
	if anyDir("model") && anyDir("view") && anyDir("controller") {
		out = append(out, schema.ArchitecturalPattern{
			Name:        PatternMVC,
			Confidence:  MVCConfidence,
			Description: "Model, view and controller directories are present",
		})
	}
	if anyDir("service") && anyDir("repositor") && anyDir("controller") {
		out = append(out, schema.ArchitecturalPattern{
			Name:        PatternLayered,
			Confidence:  LayeredConfidence,
			Description: "Service, repository and controller layers are separated",
		})
	}
	services := 0
	containers := false
	for _, s := range segments {
		if strings.Contains(s, "service") {
			services++
		}
		for _, c := range containerDirs {
			if s == c {
				containers = true
			}
		}
	}
	if anyFile("dockerfile") || anyFile("docker-compose") {
		containers = true
	}
	if services > MicroserviceDirCount || containers {
		out = append(out, schema.ArchitecturalPattern{
			Name:        PatternMicroservices,
			Confidence:  MicroservicesConfidence,
			Description: "Multiple services or container deployment artifacts",
		})
	}
	if anyDir("component") || anyFile(".component.") {
		out = append(out, schema.ArchitecturalPattern{
			Name:        PatternComponent,
			Confidence:  ComponentConfidence,
			Description: "Code is organized into components",
		})
	}
	if anyDir("plugin") || anyDir("extension") || anyFile("plugin") {
		out = append(out, schema.ArchitecturalPattern{
			Name:        PatternPlugin,
			Confidence:  PluginConfidence,
			Description: "Functionality is extended through plugins",
		})
	}
	return out
}

// frameworkPatterns infers patterns from the detected frameworks.
func frameworkPatterns(frameworks []string) []schema.ArchitecturalPattern {
	var out []schema.ArchitecturalPattern
	if hasFramework(frameworks, restFrameworks) {
		out = append(out, schema.ArchitecturalPattern{
			Name:        PatternREST,
			Confidence:  RESTConfidence,
			Description: "Uses a REST API framework",
		})
	}
	if hasFramework(frameworks, spaFrameworks) {
		out = append(out, schema.ArchitecturalPattern{
			Name:        PatternSPA,
			Confidence:  SPAConfidence,
			Description: "Uses a single page application framework",
		})
	}
	if hasFramework(frameworks, ssrFrameworks) {
		out = append(out, schema.ArchitecturalPattern{
			Name:        PatternSSR,
			Confidence:  SSRConfidence,
			Description: "Uses a server-side rendering framework",
		})
	}
	if hasFramework(frameworks, graphqlFrameworks) {
		out = append(out, schema.ArchitecturalPattern{
			Name:        PatternGraphQL,
			Confidence:  GraphQLConfidence,
			Description: "Exposes or consumes a GraphQL API",
		})
	}
	return out
}

// idiomPatterns turns aggregated idiom counts into patterns.
func idiomPatterns(c idiomCounts) []schema.ArchitecturalPattern {
	var out []schema.ArchitecturalPattern
	if c.Singleton > 0 {
		out = append(out, schema.ArchitecturalPattern{
			Name:        PatternSingleton,
			Confidence:  scaled(SingletonBase, SingletonStep, SingletonCap, c.Singleton),
			Description: "Static instance with an accessor method",
		})
	}
	if c.Factory > 0 {
		out = append(out, schema.ArchitecturalPattern{
			Name:        PatternFactory,
			Confidence:  scaled(FactoryBase, FactoryStep, FactoryCap, c.Factory),
			Description: "Creation methods that construct objects",
		})
	}
	if c.Observer >= ObserverMinTokens {
		out = append(out, schema.ArchitecturalPattern{
			Name:        PatternObserver,
			Confidence:  scaled(ObserverBase, ObserverStep, ObserverCap, c.Observer),
			Description: "Event subscription and notification",
		})
	}
	return out
}

func hasPattern(patterns []schema.ArchitecturalPattern, needles ...string) bool {
	for _, p := range patterns {
		if containsAny(strings.ToLower(p.Name), needles) {
			return true
		}
	}
	return false
}

// maintainabilityScore rewards good and confident patterns and modern frameworks.
func maintainabilityScore(patterns []schema.ArchitecturalPattern, frameworks []string, fileCount int) int {
	score := MaintainabilityBase
	for _, p := range patterns {
		if containsAny(strings.ToLower(p.Name), goodPatterns) {
			score += GoodPatternBonus
		}
		if p.Confidence > ConfidentPatternThreshold {
			score += ConfidentPatternBonus
		}
	}
	if fileCount > SparsePatternFileCount && len(patterns) < SparsePatternMinPatterns {
		score -= SparsePatternPenalty
	}
	if hasFramework(frameworks, modernFrameworks) {
		score += ModernFrameworkBonus
	}
	return min(max(score, 0), 100)
}

func architectureRecommendations(patterns []schema.ArchitecturalPattern, frameworks []string, fileCount int) []string {
	var recs []string
	if fileCount > LargeRepoRecommendationFiles && !hasPattern(patterns, "layered", "component") {
		recs = append(recs, "Organize the codebase into layers or components to manage its size")
	}
	if hasFramework(frameworks, []string{"react"}) && !hasPattern(patterns, "component") {
		recs = append(recs, "Structure React code as reusable components")
	}
	if hasFramework(frameworks, []string{"express"}) && !hasPattern(patterns, "rest api") {
		recs = append(recs, "Follow REST conventions for Express routes")
	}
	return append(recs,
		"Apply SOLID principles to keep modules focused",
		"Keep a clear separation of concerns between modules",
		"Use dependency injection to decouple components",
	)
}

// analyzeArchitecture combines structural, framework and idiom patterns.
func analyzeArchitecture(analysis *schema.RepositoryAnalysis, idioms idiomCounts) schema.ArchitectureReport {
	patterns := structuralPatterns(analysis)
	patterns = append(patterns, frameworkPatterns(analysis.Frameworks)...)
	patterns = append(patterns, idiomPatterns(idioms)...)
	if patterns == nil {
		patterns = []schema.ArchitecturalPattern{}
	}
	return schema.ArchitectureReport{
		Patterns:             patterns,
		Recommendations:      architectureRecommendations(patterns, analysis.Frameworks, analysis.FileCount),
		MaintainabilityScore: maintainabilityScore(patterns, analysis.Frameworks, analysis.FileCount),
	}
}
