package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/reposcope/internal/contract"
	"github.com/huangsam/reposcope/schema"
)

// WriteSearchResults outputs index search matches in their relevance order.
func WriteSearchResults(results []schema.SearchResult, cfg *contract.Config) error {
	return dispatch(cfg, "search results",
		func(w io.Writer) error { return writeJSON(w, results) },
		func(w io.Writer) error {
			header := []string{"rank", "id", "name", "path", "languages", "frameworks", "tags", "match_reason"}
			return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
				for i, r := range results {
					repo := r.Repository
					rec := []string{strconv.Itoa(i + 1), repo.ID, repo.Name, repo.Path, joinList(repo.Languages), joinList(repo.Frameworks), joinList(repo.Tags), r.MatchReason}
					if err := cw.Write(rec); err != nil {
						return err
					}
				}
				return nil
			})
		},
		func(w io.Writer) error {
			maxWidth := GetMaxTablePathWidth(cfg, searchFixedWidth)
			data := make([][]string, 0, len(results))
			for i, r := range results {
				data = append(data, []string{
					strconv.Itoa(i + 1),
					r.Repository.Name,
					schema.FormatList(r.Repository.Languages),
					contract.TruncatePath(r.MatchReason, maxWidth),
				})
			}
			if err := writeTable(w, []string{"Rank", "Name", "Languages", "Match"}, data); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, "Found %d matching repositories\n", len(results))
			return err
		},
	)
}

// WriteRepositories outputs the indexed repositories in insertion order.
func WriteRepositories(repos []schema.IndexedRepository, cfg *contract.Config) error {
	return dispatch(cfg, "repositories",
		func(w io.Writer) error { return writeJSON(w, repos) },
		func(w io.Writer) error {
			header := []string{"id", "name", "path", "languages", "frameworks", "tags", "file_count", "total_size", "quality", "last_analyzed"}
			return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
				for _, r := range repos {
					rec := []string{
						r.ID, r.Name, r.Path,
						joinList(r.Languages), joinList(r.Frameworks), joinList(r.Tags),
						strconv.Itoa(r.FileCount),
						strconv.FormatInt(r.TotalSize, 10),
						string(r.Quality),
						r.LastAnalyzed.Format(contract.DateTimeFormat),
					}
					if err := cw.Write(rec); err != nil {
						return err
					}
				}
				return nil
			})
		},
		func(w io.Writer) error {
			maxWidth := GetMaxTablePathWidth(cfg, searchFixedWidth)
			data := make([][]string, 0, len(repos))
			for _, r := range repos {
				data = append(data, []string{
					r.ID,
					r.Name,
					contract.TruncatePath(r.Path, maxWidth),
					schema.FormatList(r.Languages),
					schema.FormatList(r.Tags),
				})
			}
			if err := writeTable(w, []string{"ID", "Name", "Path", "Languages", "Tags"}, data); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, "%d repositories indexed\n", len(repos))
			return err
		},
	)
}

// WriteSimilarResults outputs the repositories most similar to source.
func WriteSimilarResults(source schema.IndexedRepository, results []schema.SimilarityResult, cfg *contract.Config) error {
	ranked := schema.RankSimilar(results)
	fmtFloat, _ := createFormatters(cfg.Precision)
	return dispatch(cfg, "similar repositories",
		func(w io.Writer) error { return writeJSON(w, ranked) },
		func(w io.Writer) error {
			header := []string{"rank", "id", "name", "similarity", "label", "languages", "frameworks", "patterns", "tech_stack", "structure", "semantic", "reason"}
			return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
				for _, r := range ranked {
					bd := r.Breakdown
					rec := []string{
						strconv.Itoa(r.Rank), r.Repository.ID, r.Repository.Name,
						fmtFloat(r.Similarity), r.Label,
						fmtFloat(bd.Languages), fmtFloat(bd.Frameworks), fmtFloat(bd.Patterns),
						fmtFloat(bd.TechStack), fmtFloat(bd.Structure), fmtFloat(bd.Semantic),
						r.Reason,
					}
					if err := cw.Write(rec); err != nil {
						return err
					}
				}
				return nil
			})
		},
		func(w io.Writer) error {
			if _, err := fmt.Fprintf(w, "Repositories similar to %s\n", source.Name); err != nil {
				return err
			}
			maxWidth := GetMaxTablePathWidth(cfg, similarFixedWidth)
			data := make([][]string, 0, len(ranked))
			for _, r := range ranked {
				data = append(data, []string{
					strconv.Itoa(r.Rank),
					r.Repository.Name,
					fmtFloat(r.Similarity),
					contract.GetMatchColorLabel(r.Similarity),
					contract.TruncatePath(r.Reason, maxWidth),
				})
			}
			return writeTable(w, []string{"Rank", "Name", "Similarity", "Label", "Reason"}, data)
		},
	)
}

// WriteCombinations outputs scored combination suggestions, best first.
func WriteCombinations(results []schema.CombinationSuggestion, cfg *contract.Config) error {
	ranked := schema.RankCombinations(results)
	fmtFloat, _ := createFormatters(cfg.Precision)
	return dispatch(cfg, "combinations",
		func(w io.Writer) error { return writeJSON(w, ranked) },
		func(w io.Writer) error {
			header := []string{"rank", "names", "roles", "score", "label", "architecture", "tech_stack", "functionality", "workflow", "rationale"}
			return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
				for _, r := range ranked {
					bd := r.Breakdown
					rec := []string{
						strconv.Itoa(r.Rank), joinList(r.Names), joinList(roleNames(r.Roles)),
						fmtFloat(r.Score), r.Label,
						fmtFloat(bd.Architecture), fmtFloat(bd.TechStack), fmtFloat(bd.Functionality), fmtFloat(bd.Workflow),
						r.Rationale,
					}
					if err := cw.Write(rec); err != nil {
						return err
					}
				}
				return nil
			})
		},
		func(w io.Writer) error {
			data := make([][]string, 0, len(ranked))
			for _, r := range ranked {
				data = append(data, []string{
					strconv.Itoa(r.Rank),
					strings.Join(r.Names, " + "),
					strings.Join(roleNames(r.Roles), " + "),
					fmtFloat(r.Score),
					contract.GetMatchColorLabel(r.Score),
				})
			}
			if err := writeTable(w, []string{"Rank", "Repositories", "Roles", "Score", "Label"}, data); err != nil {
				return err
			}
			for _, r := range ranked {
				if _, err := fmt.Fprintf(w, "%d. %s\n", r.Rank, r.Rationale); err != nil {
					return err
				}
			}
			return nil
		},
	)
}

func roleNames(roles []schema.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
