package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountTokens(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{"empty", "", 0},
		{"whitespace only", " \t\n ", 0},
		{"two words", "hello world", 2},
		{"punctuation counts per rune", "foo(bar, baz);", 7},
		{"underscores and digits join words", "snake_case v2", 2},
		{"non-ascii words", "你好 世界", 2},
		{"dotted access", "a.b", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CountTokens(tt.input))
		})
	}
}

func TestSampleTextFitsUnchanged(t *testing.T) {
	for s := range ValidStrategies {
		assert.Equal(t, "one two", SampleText("one two", 5, s))
		assert.Equal(t, "", SampleText("", 5, s))
	}
}

func TestSampleTextStrategies(t *testing.T) {
	text := "alpha beta\ngamma delta\nepsilon zeta"

	assert.Equal(t, "alpha beta\ngamma delta\n"+TruncationMarker, SampleText(text, 4, StrategyStart))
	assert.Equal(t, TruncationMarker+"\ngamma delta\nepsilon zeta", SampleText(text, 4, StrategyEnd))

	five := "l1 a\nl2 b\nl3 c\nl4 d\nl5 e"
	assert.Equal(t, TruncationMarker+"\nl3 c\n"+TruncationMarker, SampleText(five, 2, StrategyMiddle))
}

func TestSampleTextSmartPrefersSignificantLines(t *testing.T) {
	text := strings.Join([]string{
		"filler one two",
		"func Important() {",
		"filler three four",
		"// TODO fix",
		"}",
	}, "\n")

	got := SampleText(text, 10, StrategySmart)
	assert.Equal(t, "func Important() {\n// TODO fix\n}\n"+TruncationMarker, got)
	assert.NotContains(t, got, "filler")
}

func TestSampleTextLongSingleLine(t *testing.T) {
	assert.Equal(t, "a b c\n"+TruncationMarker, SampleText("a b c d e f", 3, StrategyStart))
	assert.Equal(t, TruncationMarker+"\nd e f", SampleText("a b c d e f", 3, StrategyEnd))
	assert.Equal(t, "a b c\n"+TruncationMarker, SampleText("a b c d e f", 3, Strategy("unknown")))
}

func TestSampleTextBudget(t *testing.T) {
	markerCost := CountTokens(TruncationMarker)
	text := strings.Repeat("word another(thing);\n// TODO: handle\n\nclass Foo:\n", 40)

	for s := range ValidStrategies {
		for _, n := range []int{1, 5, 17, 64} {
			got := SampleText(text, n, s)
			assert.NotEmpty(t, got, "strategy %s budget %d", s, n)
			assert.Contains(t, got, TruncationMarker)
			assert.LessOrEqual(t, CountTokens(got), n+2*markerCost, "strategy %s budget %d", s, n)
		}
	}
}

// FuzzSampleText checks the budget and non-empty guarantees over random input.
func FuzzSampleText(f *testing.F) {
	f.Add("hello world", 1, "start")
	f.Add("line one\nline two\nline three", 2, "middle")
	f.Add("# Heading\nbody text here\nfunc main() {}", 3, "smart")
	f.Add("你好\n世界 C# x++", 1, "end")

	markerCost := CountTokens(TruncationMarker)
	f.Fuzz(func(t *testing.T, text string, n int, strategy string) {
		if n < 1 {
			n = 1
		}
		got := SampleText(text, n, Strategy(strategy))
		if text == "" {
			assert.Empty(t, got)
			return
		}
		assert.NotEmpty(t, got)
		assert.LessOrEqual(t, CountTokens(got), n+2*markerCost)
	})
}
