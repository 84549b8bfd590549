package analyzer

import (
	"path/filepath"
	"regexp"
	"strings"
)

// LanguageFamily groups languages that share decision-point syntax and
// method-boundary rules.
type LanguageFamily int

// All language families supported. CLike is the fallback.
const (
	CLike LanguageFamily = iota
	PythonLike
	JavaLike
	GoLike
	RubyLike
)

// methodMode says how the end of a method is found.
type methodMode int

const (
	braceMode  methodMode = iota // Balanced { }
	indentMode                   // Dedent back to the declaration
	endMode                      // Matching "end" at the declaration indent
)

// familyRules is the pattern set of one language family.
type familyRules struct {
	decisions     []*regexp.Regexp
	methodStart   *regexp.Regexp
	mode          methodMode
	commentPrefix []string
	blockComment  [2]string // Empty when the family has no block comments
}

var (
	cDecisions = []*regexp.Regexp{
		regexp.MustCompile(`\bif\b`),
		regexp.MustCompile(`\bwhile\b`),
		regexp.MustCompile(`\bfor\b`),
		regexp.MustCompile(`\bswitch\b`),
		regexp.MustCompile(`\bcase\b`),
		regexp.MustCompile(`\bcatch\b`),
		regexp.MustCompile(`\?[^?:;.]+:`),
		regexp.MustCompile(`&&`),
		regexp.MustCompile(`\|\|`),
	}

	familyTable = map[LanguageFamily]familyRules{
		CLike: {
			decisions:     cDecisions,
			methodStart:   regexp.MustCompile(`^\s*(export\s+)?(async\s+)?(function\s*\*?\s*\w+\s*\(|(static\s+|public\s+|private\s+|protected\s+)*[\w<>\[\]:*&]+\s+[*&]?\w+\s*\([^;]*\)\s*(const\s*)?\{?\s*$|(const|let|var)\s+\w+\s*=\s*(async\s*)?\([^)]*\)\s*=>\s*\{)`),
			mode:          braceMode,
			commentPrefix: []string{"//", "/*", "*", "*/"},
			blockComment:  [2]string{"/*", "*/"},
		},
		JavaLike: {
			decisions:     cDecisions,
			methodStart:   regexp.MustCompile(`^\s*((public|private|protected|internal|static|final|abstract|synchronized|override|open|suspend)\s+)*(fun\s+\w+|[\w<>\[\],?]+\s+\w+)\s*\([^;]*\)\s*(:\s*[\w<>?]+\s*)?(throws\s+[\w.,\s]+)?\{?\s*$`),
			mode:          braceMode,
			commentPrefix: []string{"//", "/*", "*", "*/"},
			blockComment:  [2]string{"/*", "*/"},
		},
		GoLike: {
			decisions: []*regexp.Regexp{
				regexp.MustCompile(`\bif\b`),
				regexp.MustCompile(`\bfor\b`),
				regexp.MustCompile(`\bswitch\b`),
				regexp.MustCompile(`\bselect\b`),
				regexp.MustCompile(`\bcase\b`),
				regexp.MustCompile(`&&`),
				regexp.MustCompile(`\|\|`),
			},
			methodStart:   regexp.MustCompile(`^func\b`),
			mode:          braceMode,
			commentPrefix: []string{"//", "/*", "*", "*/"},
			blockComment:  [2]string{"/*", "*/"},
		},
		PythonLike: {
			decisions: []*regexp.Regexp{
				regexp.MustCompile(`\bif\b`),
				regexp.MustCompile(`\belif\b`),
				regexp.MustCompile(`\bwhile\b`),
				regexp.MustCompile(`\bfor\b`),
				regexp.MustCompile(`\bexcept\b`),
				regexp.MustCompile(`\band\b`),
				regexp.MustCompile(`\bor\b`),
			},
			methodStart:   regexp.MustCompile(`^\s*(async\s+)?def\s+\w+`),
			mode:          indentMode,
			commentPrefix: []string{"#"},
		},
		RubyLike: {
			decisions: []*regexp.Regexp{
				regexp.MustCompile(`\bif\b`),
				regexp.MustCompile(`\belsif\b`),
				regexp.MustCompile(`\bunless\b`),
				regexp.MustCompile(`\bwhile\b`),
				regexp.MustCompile(`\buntil\b`),
				regexp.MustCompile(`\bfor\b`),
				regexp.MustCompile(`\bwhen\b`),
				regexp.MustCompile(`\brescue\b`),
				regexp.MustCompile(`&&`),
				regexp.MustCompile(`\|\|`),
			},
			methodStart:   regexp.MustCompile(`^\s*def\s+[\w.?!]+`),
			mode:          endMode,
			commentPrefix: []string{"#"},
		},
	}

	languageFamilies = map[string]LanguageFamily{
		"python":     PythonLike,
		"java":       JavaLike,
		"kotlin":     JavaLike,
		"scala":      JavaLike,
		"c#":         JavaLike,
		"csharp":     JavaLike,
		"go":         GoLike,
		"golang":     GoLike,
		"ruby":       RubyLike,
		"javascript": CLike,
		"typescript": CLike,
		"c":          CLike,
		"c++":        CLike,
		"cpp":        CLike,
		"rust":       CLike,
		"php":        CLike,
		"swift":      CLike,
		"dart":       CLike,
	}

	extensionFamilies = map[string]LanguageFamily{
		".py":    PythonLike,
		".pyi":   PythonLike,
		".java":  JavaLike,
		".kt":    JavaLike,
		".kts":   JavaLike,
		".scala": JavaLike,
		".cs":    JavaLike,
		".go":    GoLike,
		".rb":    RubyLike,
	}
)

// String returns the name of the family.
func (f LanguageFamily) String() string {
	switch f {
	case PythonLike:
		return "python-like"
	case JavaLike:
		return "java-like"
	case GoLike:
		return "go-like"
	case RubyLike:
		return "ruby-like"
	default:
		return "c-like"
	}
}

// FamilyFor returns the family of a language name, falling back to the file
// extension and then to CLike.
func FamilyFor(language, path string) LanguageFamily {
	if f, ok := languageFamilies[strings.ToLower(strings.TrimSpace(language))]; ok {
		return f
	}
	if f, ok := extensionFamilies[strings.ToLower(filepath.Ext(path))]; ok {
		return f
	}
	return CLike
}

func (f LanguageFamily) rules() familyRules {
	if r, ok := familyTable[f]; ok {
		return r
	}
	return familyTable[CLike]
}
