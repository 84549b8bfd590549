// Package tokens approximates token counts and samples large text to a token budget.
package tokens

import (
	"regexp"
	"strings"
	"unicode"
)

// Strategy selects which part of an oversized text SampleText keeps.
type Strategy string

// All sampling strategies supported.
const (
	StrategyStart  Strategy = "start"
	StrategyEnd    Strategy = "end"
	StrategyMiddle Strategy = "middle"
	StrategySmart  Strategy = "smart" // default
)

// TruncationMarker is appended (or prepended) wherever SampleText dropped content.
const TruncationMarker = "... (truncated)"

// ValidStrategies lists all valid sampling strategies.
var ValidStrategies = map[Strategy]struct{}{
	StrategyStart:  {},
	StrategyEnd:    {},
	StrategyMiddle: {},
	StrategySmart:  {},
}

// significantLine matches headings, declarations and work markers kept first by the smart strategy.
var significantLine = regexp.MustCompile(`^\s*(#{1,6}\s|(export\s+)?(async\s+)?(func|function|def|class|interface|type|struct|module|impl|trait|fn|public|private|protected)\b)|\b(TODO|FIXME|HACK|XXX)\b`)

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// CountTokens returns an approximate token count: every maximal run of letters,
// digits and underscores counts once, and every other non-space rune counts once.
func CountTokens(text string) int {
	count := 0
	inWord := false
	for _, r := range text {
		switch {
		case isWordRune(r):
			if !inWord {
				count++
				inWord = true
			}
		case unicode.IsSpace(r):
			inWord = false
		default:
			count++
			inWord = false
		}
	}
	return count
}

// tokenStarts returns the byte offsets at which each token of text begins.
func tokenStarts(text string) []int {
	var starts []int
	inWord := false
	for i, r := range text {
		switch {
		case isWordRune(r):
			if !inWord {
				starts = append(starts, i)
				inWord = true
			}
		case unicode.IsSpace(r):
			inWord = false
		default:
			starts = append(starts, i)
			inWord = false
		}
	}
	return starts
}

// truncateTokens returns the longest prefix of text holding at most budget tokens.
func truncateTokens(text string, budget int) string {
	starts := tokenStarts(text)
	if len(starts) <= budget {
		return text
	}
	return strings.TrimRightFunc(text[:starts[budget]], unicode.IsSpace)
}

// lastTokens returns the suffix of text holding its last budget tokens.
func lastTokens(text string, budget int) string {
	starts := tokenStarts(text)
	if len(starts) <= budget {
		return text
	}
	return text[starts[len(starts)-budget]:]
}

// SampleText returns text unchanged when it fits in maxTokens, otherwise a
// line-based sample chosen by strategy and marked with TruncationMarker.
// Unknown strategies fall back to StrategySmart. Non-empty input always yields
// non-empty output: when not even one full line fits, the first kept line is
// cut down to the budget.
func SampleText(text string, maxTokens int, strategy Strategy) string {
	if text == "" {
		return ""
	}
	if CountTokens(text) <= maxTokens {
		return text
	}
	if maxTokens < 1 {
		maxTokens = 1
	}

	lines := strings.Split(text, "\n")
	costs := make([]int, len(lines))
	for i, l := range lines {
		costs[i] = CountTokens(l)
	}

	switch strategy {
	case StrategyStart:
		return sampleStart(lines, costs, maxTokens)
	case StrategyEnd:
		return sampleEnd(lines, costs, maxTokens)
	case StrategyMiddle:
		return sampleMiddle(lines, costs, maxTokens)
	default:
		return sampleSmart(lines, costs, maxTokens)
	}
}

func sampleStart(lines []string, costs []int, budget int) string {
	var kept []string
	used := 0
	for i, l := range lines {
		if used+costs[i] > budget {
			break
		}
		kept = append(kept, l)
		used += costs[i]
	}
	if len(kept) == 0 {
		kept = []string{truncateTokens(lines[0], budget)}
	}
	return strings.Join(kept, "\n") + "\n" + TruncationMarker
}

func sampleEnd(lines []string, costs []int, budget int) string {
	first := len(lines)
	used := 0
	for i := len(lines) - 1; i >= 0; i-- {
		if used+costs[i] > budget {
			break
		}
		first = i
		used += costs[i]
	}
	if first == len(lines) {
		return TruncationMarker + "\n" + lastTokens(lines[len(lines)-1], budget)
	}
	return TruncationMarker + "\n" + strings.Join(lines[first:], "\n")
}

// sampleMiddle grows a window outward from the center line while it fits.
func sampleMiddle(lines []string, costs []int, budget int) string {
	center := len(lines) / 2
	if costs[center] > budget {
		return TruncationMarker + "\n" + truncateTokens(lines[center], budget) + "\n" + TruncationMarker
	}
	lo, hi := center, center
	used := costs[center]
	for {
		grew := false
		if lo > 0 && used+costs[lo-1] <= budget {
			lo--
			used += costs[lo]
			grew = true
		}
		if hi < len(lines)-1 && used+costs[hi+1] <= budget {
			hi++
			used += costs[hi]
			grew = true
		}
		if !grew {
			break
		}
	}

	var b strings.Builder
	if lo > 0 {
		b.WriteString(TruncationMarker + "\n")
	}
	b.WriteString(strings.Join(lines[lo:hi+1], "\n"))
	if hi < len(lines)-1 {
		b.WriteString("\n" + TruncationMarker)
	}
	return b.String()
}

// sampleSmart keeps significant lines first, then fills the remaining budget
// with other lines, and emits the kept lines in document order.
func sampleSmart(lines []string, costs []int, budget int) string {
	keep := make([]bool, len(lines))
	used := 0
	pick := func(significant bool) {
		for i, l := range lines {
			if keep[i] || significantLine.MatchString(l) != significant {
				continue
			}
			if used+costs[i] <= budget {
				keep[i] = true
				used += costs[i]
			}
		}
	}
	pick(true)
	pick(false)

	var out []string
	for i, l := range lines {
		if keep[i] {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		out = []string{truncateTokens(lines[0], budget)}
	}
	return strings.Join(out, "\n") + "\n" + TruncationMarker
}
