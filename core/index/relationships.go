package index

import (
	"fmt"
	"strings"

	"github.com/huangsam/reposcope/schema"
)

// relate returns every relationship from source to target.
func relate(source, target schema.IndexedRepository) []schema.RepositoryRelationship {
	var out []schema.RepositoryRelationship

	score, bd := similarity(source, target)
	if score >= SimilarThreshold {
		out = append(out, schema.RepositoryRelationship{
			SourceID: source.ID,
			TargetID: target.ID,
			Type:     schema.RelationSimilar,
			Strength: score,
			Reason:   similarityReason(source, target, bd),
		})
	}

	sr, tr := inferRole(source), inferRole(target)
	if isPair(sr, tr, schema.RoleFrontend, schema.RoleBackend) {
		out = append(out, schema.RepositoryRelationship{
			SourceID: source.ID,
			TargetID: target.ID,
			Type:     schema.RelationComplementary,
			Strength: ComplementaryStrength,
			Reason:   fmt.Sprintf("%s and %s complement each other", sr, tr),
		})
	}

	sp, tp := source.PrimaryLanguage(), target.PrimaryLanguage()
	if sp != "" && strings.EqualFold(sp, tp) {
		if fws := shared(source.Frameworks, target.Frameworks); len(fws) > 0 {
			out = append(out, schema.RepositoryRelationship{
				SourceID: source.ID,
				TargetID: target.ID,
				Type:     schema.RelationSameStack,
				Strength: round3(jaccard(source.Frameworks, target.Frameworks)),
				Reason:   fmt.Sprintf("%s with %s", sp, strings.Join(fws, ", ")),
			})
		}
	}
	return out
}

func involves(rel schema.RepositoryRelationship, id string) bool {
	return rel.SourceID == id || rel.TargetID == id
}

// dropRelationships removes every relationship touching id.
func dropRelationships(rels []schema.RepositoryRelationship, id string) []schema.RepositoryRelationship {
	out := rels[:0]
	for _, rel := range rels {
		if !involves(rel, id) {
			out = append(out, rel)
		}
	}
	return out
}

// recomputeRelationships replaces the relationships of the repository at position i.
func recomputeRelationships(idx *schema.RepositoryIndex, i int) {
	repo := idx.Repositories[i]
	idx.Relationships = dropRelationships(idx.Relationships, repo.ID)
	for j, other := range idx.Repositories {
		if j == i {
			continue
		}
		idx.Relationships = append(idx.Relationships, relate(repo, other)...)
	}
}
