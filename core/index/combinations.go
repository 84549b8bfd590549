package index

import (
	"fmt"
	"sort"
	"strings"

	"github.com/huangsam/reposcope/schema"
)

var (
	mobileHints   = []string{"react native", "flutter", "ionic", "swiftui", "jetpack compose", "expo"}
	frontendHints = []string{"react", "vue", "angular", "svelte", "next", "nuxt", "gatsby", "remix"}
	backendHints  = []string{"express", "fastify", "koa", "hapi", "nest", "flask", "django", "fastapi", "gin", "echo", "fiber", "chi", "spring", "rails", "actix", "axum", "rocket"}
	toolHints     = []string{"cobra", "click", "commander", "clap", "typer", "yargs", "urfave"}

	frontendNames = []string{"frontend", "web", "ui", "client", "dashboard"}
	backendNames  = []string{"backend", "api", "server", "service"}
	toolNames     = []string{"cli", "tool"}
	libraryNames  = []string{"lib", "sdk", "utils", "pkg", "kit"}
)

func anyHint(values []string, hints []string) bool {
	for _, v := range values {
		lv := strings.ToLower(v)
		for _, h := range hints {
			if strings.Contains(lv, h) {
				return true
			}
		}
	}
	return false
}

// inferRole classifies a repository by framework first, then by name and path.
func inferRole(repo schema.IndexedRepository) schema.Role {
	names := append(words(repo.Name), words(repoBase(repo.Path))...)
	nameHas := func(hints []string) bool {
		for _, w := range names {
			for _, h := range hints {
				if w == h {
					return true
				}
			}
		}
		return false
	}
	switch {
	case anyHint(repo.Frameworks, mobileHints):
		return schema.RoleMobile
	case anyHint(repo.Frameworks, frontendHints):
		return schema.RoleFrontend
	case anyHint(repo.Frameworks, backendHints):
		return schema.RoleBackend
	case anyHint(repo.Frameworks, toolHints):
		return schema.RoleTool
	case nameHas(frontendNames):
		return schema.RoleFrontend
	case nameHas(backendNames):
		return schema.RoleBackend
	case nameHas(toolNames):
		return schema.RoleTool
	case nameHas(libraryNames):
		return schema.RoleLibrary
	default:
		return schema.RoleApplication
	}
}

func repoBase(path string) string {
	path = strings.TrimRight(strings.ReplaceAll(path, "\\", "/"), "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

func isPair(a, b, x, y schema.Role) bool {
	return (a == x && b == y) || (a == y && b == x)
}

// roleFit scores how well two roles work together architecturally.
func roleFit(a, b schema.Role) float64 {
	switch {
	case isPair(a, b, schema.RoleFrontend, schema.RoleBackend):
		return FrontendBackendFit
	case isPair(a, b, schema.RoleMobile, schema.RoleBackend):
		return MobileBackendFit
	case a == b:
		return SameRoleFit
	case a == schema.RoleLibrary || b == schema.RoleLibrary || a == schema.RoleTool || b == schema.RoleTool:
		return SupportingRoleFit
	default:
		return DefaultRoleFit
	}
}

// stackFit scores how well two tech stacks combine.
func stackFit(a, b schema.IndexedRepository) float64 {
	if eco := techStackScore(a, b); eco > 0 {
		return SharedEcosystemBase + (1-SharedEcosystemBase)*eco
	}
	if len(ecosystemSet(a.Languages)) > 0 && len(ecosystemSet(b.Languages)) > 0 {
		return MixedEcosystemFit
	}
	return UnknownEcosystemFit
}

// workflowFit rewards shared languages and tags, which ease shared tooling.
func workflowFit(a, b schema.IndexedRepository) float64 {
	return 0.5*jaccard(a.Languages, b.Languages) + 0.5*jaccard(a.Tags, b.Tags)
}

// combinations returns every k-subset of n indexes in lexicographic order.
func combinations(n, k int) [][]int {
	var out [][]int
	combo := make([]int, k)
	var walk func(start, depth int)
	walk = func(start, depth int) {
		if depth == k {
			out = append(out, append([]int(nil), combo...))
			return
		}
		for i := start; i <= n-(k-depth); i++ {
			combo[depth] = i
			walk(i+1, depth+1)
		}
	}
	if k > 0 && k <= n {
		walk(0, 0)
	}
	return out
}

// scoreCombination scores one set of repositories on four axes.
func scoreCombination(repos []schema.IndexedRepository) schema.CombinationSuggestion {
	roles := make([]schema.Role, len(repos))
	for i, r := range repos {
		roles[i] = inferRole(r)
	}

	var arch, tech, flow float64
	pairs := 0
	for i := range repos {
		for j := i + 1; j < len(repos); j++ {
			arch += roleFit(roles[i], roles[j])
			tech += stackFit(repos[i], repos[j])
			flow += workflowFit(repos[i], repos[j])
			pairs++
		}
	}
	arch, tech, flow = arch/float64(pairs), tech/float64(pairs), flow/float64(pairs)

	distinct := make(map[schema.Role]bool)
	for _, r := range roles {
		distinct[r] = true
	}
	function := float64(len(distinct)) / float64(len(roles))

	bd := schema.CombinationBreakdown{
		Architecture:  round3(arch),
		TechStack:     round3(tech),
		Functionality: round3(function),
		Workflow:      round3(flow),
	}
	score := ArchitectureAxisWeight*bd.Architecture +
		TechStackAxisWeight*bd.TechStack +
		FunctionAxisWeight*bd.Functionality +
		WorkflowAxisWeight*bd.Workflow

	s := schema.CombinationSuggestion{
		Roles:     roles,
		Score:     round3(clamp01(score)),
		Breakdown: bd,
	}
	for _, r := range repos {
		s.RepositoryIDs = append(s.RepositoryIDs, r.ID)
		s.Names = append(s.Names, r.Name)
	}
	s.Rationale = combinationRationale(repos, roles, bd)
	return s
}

func combinationRationale(repos []schema.IndexedRepository, roles []schema.Role, bd schema.CombinationBreakdown) string {
	parts := make([]string, len(repos))
	for i, r := range repos {
		parts[i] = fmt.Sprintf("%s (%s)", r.Name, roles[i])
	}
	rationale := strings.Join(parts, " + ")

	var notes []string
	for i := range roles {
		for j := i + 1; j < len(roles); j++ {
			if isPair(roles[i], roles[j], schema.RoleFrontend, schema.RoleBackend) {
				notes = append(notes, "frontend pairs with backend")
			} else if isPair(roles[i], roles[j], schema.RoleMobile, schema.RoleBackend) {
				notes = append(notes, "mobile client pairs with backend")
			}
		}
	}
	if bd.TechStack > SharedEcosystemBase {
		notes = append(notes, "shared ecosystem")
	}
	if bd.Functionality == 1 {
		notes = append(notes, "complementary roles")
	} else {
		notes = append(notes, "overlapping roles")
	}
	seen := make(map[string]bool)
	var uniq []string
	for _, n := range notes {
		if !seen[n] {
			seen[n] = true
			uniq = append(uniq, n)
		}
	}
	return rationale + ": " + strings.Join(uniq, ", ")
}

// suggest scores every combination of 2 to maxSize repositories, best first.
func suggest(repos []schema.IndexedRepository, maxSize int) []schema.CombinationSuggestion {
	if maxSize < DefaultCombinationSize {
		maxSize = DefaultCombinationSize
	}
	maxSize = min(maxSize, MaxCombinationSize, len(repos))

	out := []schema.CombinationSuggestion{}
	for k := DefaultCombinationSize; k <= maxSize; k++ {
		for _, combo := range combinations(len(repos), k) {
			set := make([]schema.IndexedRepository, k)
			for i, idx := range combo {
				set[i] = repos[idx]
			}
			out = append(out, scoreCombination(set))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return strings.Join(out[i].RepositoryIDs, ",") < strings.Join(out[j].RepositoryIDs, ",")
	})
	return out
}
