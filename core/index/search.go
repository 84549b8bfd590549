package index

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/huangsam/reposcope/schema"
	"github.com/surgebase/porter2"
)

// words splits text into lowercased runs of letters and digits.
func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func isASCIILetters(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}

// stem reduces lowercase ASCII words to their porter2 stem and leaves other
// words untouched.
func stem(word string) string {
	if len(word) < MinStemLength || !isASCIILetters(word) {
		return word
	}
	return porter2.Stem(word)
}

func stemSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range words(text) {
		set[stem(w)] = struct{}{}
	}
	return set
}

func normalizeTerms(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// stemmable reports whether a keyword may fall back to stem matching.
// Keywords carrying symbols such as "C#" or "C++" only qualify when every
// word left after splitting is long enough to stem.
func stemmable(keyword string) bool {
	plain := true
	for _, r := range keyword {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			plain = false
			break
		}
	}
	if plain {
		return true
	}
	for _, w := range words(keyword) {
		if len(w) < MinStemLength {
			return false
		}
	}
	return true
}

// matchKeyword returns where a keyword matched the repository, or "".
// Matching is case-folded substring search, then stem equality on words.
func matchKeyword(repo schema.IndexedRepository, keyword string) string {
	k := strings.ToLower(keyword)
	fields := []struct {
		name   string
		values []string
	}{
		{"name", []string{repo.Name}},
		{"description", []string{repo.Description}},
		{"language", repo.Languages},
		{"framework", repo.Frameworks},
		{"tag", repo.Tags},
	}
	for _, f := range fields {
		for _, v := range f.values {
			if v != "" && strings.Contains(strings.ToLower(v), k) {
				return f.name
			}
		}
	}

	if !stemmable(keyword) {
		return ""
	}
	keyStems := stemSet(keyword)
	if len(keyStems) == 0 {
		return ""
	}
	text := stemSet(repo.Name + " " + repo.Description)
	for s := range keyStems {
		if _, ok := text[s]; !ok {
			return ""
		}
	}
	return "stem"
}

func matchFold(values []string, wanted []string, contains bool) string {
	for _, w := range wanted {
		lw := strings.ToLower(w)
		for _, v := range values {
			lv := strings.ToLower(v)
			if lv == lw || (contains && strings.Contains(lv, lw)) {
				return v
			}
		}
	}
	return ""
}

// matchQuery applies the query to one repository. Fields are ANDed and values
// within a field are ORed.
func matchQuery(repo schema.IndexedRepository, q schema.SearchQuery) (string, bool) {
	var reasons []string

	if langs := normalizeTerms(q.Languages); len(langs) > 0 {
		m := matchFold(repo.Languages, langs, false)
		if m == "" {
			return "", false
		}
		reasons = append(reasons, "language "+m)
	}
	if fws := normalizeTerms(q.Frameworks); len(fws) > 0 {
		m := matchFold(repo.Frameworks, fws, true)
		if m == "" {
			return "", false
		}
		reasons = append(reasons, "framework "+m)
	}
	if tags := normalizeTerms(q.Tags); len(tags) > 0 {
		m := matchFold(repo.Tags, tags, false)
		if m == "" {
			return "", false
		}
		reasons = append(reasons, "tag "+m)
	}
	if keywords := normalizeTerms(q.Keywords); len(keywords) > 0 {
		matched := false
		for _, k := range keywords {
			if where := matchKeyword(repo, k); where != "" {
				reasons = append(reasons, fmt.Sprintf("keyword %q in %s", k, where))
				matched = true
				break
			}
		}
		if !matched {
			return "", false
		}
	}

	if len(reasons) == 0 {
		return "matches empty query", true
	}
	return strings.Join(reasons, "; "), true
}

func search(repos []schema.IndexedRepository, q schema.SearchQuery) []schema.SearchResult {
	results := []schema.SearchResult{}
	for _, r := range repos {
		if reason, ok := matchQuery(r, q); ok {
			results = append(results, schema.SearchResult{Repository: r.Clone(), MatchReason: reason})
		}
	}
	return results
}
