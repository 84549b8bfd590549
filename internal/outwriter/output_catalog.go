package outwriter

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/huangsam/reposcope/internal/contract"
	"github.com/huangsam/reposcope/schema"
)

// WriteTags outputs the global tag catalog.
func WriteTags(tags []schema.Tag, cfg *contract.Config) error {
	return dispatch(cfg, "tags",
		func(w io.Writer) error { return writeJSON(w, tags) },
		func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"id", "name", "category", "color"}, func(cw *csv.Writer) error {
				for _, t := range tags {
					if err := cw.Write([]string{t.ID, t.Name, t.Category, t.Color}); err != nil {
						return err
					}
				}
				return nil
			})
		},
		func(w io.Writer) error {
			data := make([][]string, 0, len(tags))
			for _, t := range tags {
				data = append(data, []string{t.Name, orDash(t.Category), orDash(t.Color), t.ID})
			}
			return writeTable(w, []string{"Name", "Category", "Color", "ID"}, data)
		},
	)
}

// WriteRelationships outputs the relationships of one repository, strongest first.
// names maps repository ids to display names.
func WriteRelationships(rels []schema.RepositoryRelationship, names map[string]string, cfg *contract.Config) error {
	sorted := slices.Clone(rels)
	slices.SortStableFunc(sorted, func(a, b schema.RepositoryRelationship) int {
		return cmp.Compare(b.Strength, a.Strength)
	})
	fmtFloat, _ := createFormatters(cfg.Precision)
	name := func(id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		return id
	}
	return dispatch(cfg, "relationships",
		func(w io.Writer) error { return writeJSON(w, sorted) },
		func(w io.Writer) error {
			header := []string{"source_id", "target_id", "type", "strength", "reason"}
			return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
				for _, r := range sorted {
					if err := cw.Write([]string{r.SourceID, r.TargetID, string(r.Type), fmtFloat(r.Strength), r.Reason}); err != nil {
						return err
					}
				}
				return nil
			})
		},
		func(w io.Writer) error {
			data := make([][]string, 0, len(sorted))
			for _, r := range sorted {
				data = append(data, []string{name(r.SourceID), name(r.TargetID), string(r.Type), fmtFloat(r.Strength), orDash(r.Reason)})
			}
			return writeTable(w, []string{"Source", "Target", "Type", "Strength", "Reason"}, data)
		},
	)
}

// WriteIndexStats outputs summary statistics for the index.
func WriteIndexStats(stats schema.IndexStats, cfg *contract.Config) error {
	languages := slices.Sorted(maps.Keys(stats.Languages))
	return dispatch(cfg, "index stats",
		func(w io.Writer) error { return writeJSON(w, stats) },
		func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"language", "repositories"}, func(cw *csv.Writer) error {
				for _, lang := range languages {
					if err := cw.Write([]string{lang, strconv.Itoa(stats.Languages[lang])}); err != nil {
						return err
					}
				}
				return nil
			})
		},
		func(w io.Writer) error {
			lines := []string{
				fmt.Sprintf("Repositories: %d", stats.Repositories),
				fmt.Sprintf("Relationships: %d", stats.Relationships),
				fmt.Sprintf("Tags: %d", stats.Tags),
				fmt.Sprintf("Last Updated: %s", stats.LastUpdated.Format(contract.DateTimeFormat)),
			}
			for _, line := range lines {
				if _, err := fmt.Fprintln(w, line); err != nil {
					return err
				}
			}
			if len(languages) == 0 {
				return nil
			}
			data := make([][]string, 0, len(languages))
			for _, lang := range languages {
				data = append(data, []string{lang, strconv.Itoa(stats.Languages[lang])})
			}
			return writeTable(w, []string{"Primary Language", "Repositories"}, data)
		},
	)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
