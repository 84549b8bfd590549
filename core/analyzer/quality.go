package analyzer

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/huangsam/reposcope/core/tokens"
	"github.com/huangsam/reposcope/schema"
)

var (
	markerPattern      = regexp.MustCompile(`\b(TODO|FIXME|HACK|XXX)\b`)
	magicNumberPattern = regexp.MustCompile(`\b\d{2,}\b`)
	wordPattern        = regexp.MustCompile(`[A-Za-z]{3,}`)
	paramListPattern   = regexp.MustCompile(`\(([^()]*)\)`)
	callNamePattern    = regexp.MustCompile(`([A-Za-z_$][\w$]*)\s*\(`)
	arrowNamePattern   = regexp.MustCompile(`\b(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*=`)
	declNamePattern    = regexp.MustCompile(`\b(?:def|fn|func|function)\s+(?:\([^)]*\)\s*)?([A-Za-z_$][\w$.?!]*)`)
	controlLine        = regexp.MustCompile(`^\s*(\}\s*)?(if|else|for|foreach|while|switch|catch|return|new|throw|do|try|elif|when)\b`)
)

// notNames are words that precede "(" without naming a method.
var notNames = map[string]bool{
	"func": true, "function": true, "async": true, "if": true, "for": true,
	"while": true, "switch": true, "catch": true, "return": true, "def": true,
}

// sourceFile is one key file split into lines and classified.
type sourceFile struct {
	path     string
	content  string
	family   LanguageFamily
	lines    []string // All lines, without a trailing empty line
	code     []int    // Indexes of non-blank, non-comment lines
	comments []int    // Indexes of comment lines
}

// method is one extracted method body.
type method struct {
	name  string
	start int // 1-based line of the declaration
	lines int
}

// fileQuality is the cacheable quality outcome of one file.
type fileQuality struct {
	Metrics schema.FileQualityMetrics `json:"metrics"`
	ValidMI bool                      `json:"validMI"`
	Debt    []schema.TechnicalDebt    `json:"debt"`
}

func newSourceFile(path, content string, family LanguageFamily) *sourceFile {
	lines := strings.Split(content, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	sf := &sourceFile{path: path, content: content, family: family, lines: lines}

	rules := family.rules()
	inBlock := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
		case inBlock:
			sf.comments = append(sf.comments, i)
			if strings.Contains(trimmed, rules.blockComment[1]) {
				inBlock = false
			}
		case isComment(trimmed, rules.commentPrefix):
			sf.comments = append(sf.comments, i)
			open, closing := rules.blockComment[0], rules.blockComment[1]
			if open != "" && strings.HasPrefix(trimmed, open) && !strings.Contains(trimmed[len(open):], closing) {
				inBlock = true
			}
		default:
			sf.code = append(sf.code, i)
		}
	}
	return sf
}

func isComment(trimmed string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}

func (sf *sourceFile) codeText() string {
	var b strings.Builder
	for _, i := range sf.code {
		b.WriteString(sf.lines[i])
		b.WriteByte('\n')
	}
	return b.String()
}

// cyclomaticComplexity is 1 plus one per decision-point match in code lines.
func (sf *sourceFile) cyclomaticComplexity() int {
	text := sf.codeText()
	complexity := 1
	for _, p := range sf.family.rules().decisions {
		complexity += len(p.FindAllStringIndex(text, -1))
	}
	return complexity
}

// maintainabilityIndex returns the 0-100 index and false when it is undefined
// because the file has no code lines or too few tokens.
func maintainabilityIndex(content string, complexity, loc int) (float64, bool) {
	t := tokens.CountTokens(content)
	if loc == 0 || t <= 1 {
		return 0, false
	}
	volume := math.Log2(float64(t)) * float64(t)
	raw := (MIBase - MIVolumeCoef*math.Log(volume) - MIComplexityCoef*float64(complexity) - MILinesCoef*math.Log(float64(loc))) * 100 / MIBase
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0, false
	}
	return math.Round(math.Min(math.Max(raw, 0), 100)), true
}

// duplicatedLines counts every repeat beyond the first of trimmed lines longer
// than DuplicateMinLineLength.
func (sf *sourceFile) duplicatedLines() int {
	seen := make(map[string]int)
	dup := 0
	for _, line := range sf.lines {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) <= DuplicateMinLineLength {
			continue
		}
		if seen[trimmed] > 0 {
			dup++
		}
		seen[trimmed]++
	}
	return dup
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

func methodName(line string) string {
	if m := arrowNamePattern.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	if m := declNamePattern.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	for _, m := range callNamePattern.FindAllStringSubmatch(line, -1) {
		if !notNames[m[1]] {
			return m[1]
		}
	}
	return "anonymous"
}

// methods extracts method bodies using the family's boundary mode.
func (sf *sourceFile) methods() []method {
	rules := sf.family.rules()
	var out []method
	for _, i := range sf.code {
		line := sf.lines[i]
		if !rules.methodStart.MatchString(line) || controlLine.MatchString(line) {
			continue
		}
		var end int
		var ok bool
		switch rules.mode {
		case indentMode:
			end, ok = sf.indentEnd(i)
		case endMode:
			end, ok = sf.keywordEnd(i)
		default:
			end, ok = sf.braceEnd(i)
		}
		if ok {
			out = append(out, method{name: methodName(line), start: i + 1, lines: end - i + 1})
		}
	}
	return out
}

// braceEnd finds the line closing the first brace opened within two lines of start.
func (sf *sourceFile) braceEnd(start int) (int, bool) {
	depth := 0
	opened := false
	for j := start; j < len(sf.lines); j++ {
		if !opened && j > start+2 {
			return 0, false
		}
		for _, r := range sf.lines[j] {
			switch r {
			case '{':
				depth++
				opened = true
			case '}':
				depth--
			}
		}
		if opened && depth <= 0 {
			return j, true
		}
	}
	return len(sf.lines) - 1, opened
}

// indentEnd finds the last line indented deeper than the declaration.
func (sf *sourceFile) indentEnd(start int) (int, bool) {
	base := indentOf(sf.lines[start])
	end := start
	for j := start + 1; j < len(sf.lines); j++ {
		if strings.TrimSpace(sf.lines[j]) == "" {
			continue
		}
		if indentOf(sf.lines[j]) <= base {
			break
		}
		end = j
	}
	return end, true
}

// keywordEnd finds the "end" line at the declaration indent.
func (sf *sourceFile) keywordEnd(start int) (int, bool) {
	base := indentOf(sf.lines[start])
	for j := start + 1; j < len(sf.lines); j++ {
		line := sf.lines[j]
		if strings.TrimSpace(line) == "end" && indentOf(line) == base {
			return j, true
		}
	}
	return len(sf.lines) - 1, true
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}

// analyzeQuality computes metrics, smells and technical debt for one file.
func analyzeQuality(sf *sourceFile) fileQuality {
	complexity := sf.cyclomaticComplexity()
	loc := len(sf.code)
	mi, valid := maintainabilityIndex(sf.content, complexity, loc)
	dup := sf.duplicatedLines()
	methods := sf.methods()

	var smells []string
	var debt []schema.TechnicalDebt

	for _, m := range methods {
		if m.lines <= LongMethodLines {
			continue
		}
		smells = append(smells, fmt.Sprintf("Long method: %s (%d lines)", m.name, m.lines))
		debt = append(debt, schema.TechnicalDebt{
			Type:            schema.DebtComplexity,
			Severity:        schema.SeverityHigh,
			Description:     fmt.Sprintf("Method %s is %d lines long", m.name, m.lines),
			File:            sf.path,
			Line:            m.start,
			EstimatedEffort: ceilDiv(m.lines, LongMethodEffortDiv),
			Recommendation:  "Break the method into smaller, focused functions",
		})
	}

	total := len(sf.lines)
	if total > LargeFileSmellLines {
		smells = append(smells, fmt.Sprintf("Large file (%d lines)", total))
	}
	if total > LargeFileDebtLines {
		debt = append(debt, schema.TechnicalDebt{
			Type:            schema.DebtComplexity,
			Severity:        schema.SeverityMedium,
			Description:     fmt.Sprintf("File has %d lines", total),
			File:            sf.path,
			EstimatedEffort: ceilDiv(total, LargeFileEffortDiv),
			Recommendation:  "Split the file into smaller modules",
		})
	}
	if dup > DuplicationDebtLines {
		debt = append(debt, schema.TechnicalDebt{
			Type:            schema.DebtDuplication,
			Severity:        schema.SeverityMedium,
			Description:     fmt.Sprintf("%d duplicated lines", dup),
			File:            sf.path,
			EstimatedEffort: ceilDiv(dup, DuplicationEffortDiv),
			Recommendation:  "Extract repeated code into shared functions",
		})
	}

	code := sf.codeText()
	if n := len(magicNumberPattern.FindAllStringIndex(code, -1)); n >= MagicNumberSmellCount {
		smells = append(smells, fmt.Sprintf("Multiple magic numbers (%d)", n))
	}
	if n := sf.longParamLists(); n > 0 {
		smells = append(smells, fmt.Sprintf("Long parameter list (%d)", n))
	}
	wordy := 0
	for _, i := range sf.comments {
		if wordPattern.MatchString(sf.lines[i]) {
			wordy++
		}
	}
	if wordy > CommentedCodeLines {
		smells = append(smells, fmt.Sprintf("Commented-out code (%d comment lines)", wordy))
	}

	markers := 0
	for i, line := range sf.lines {
		found := markerPattern.FindAllString(line, -1)
		if len(found) == 0 {
			continue
		}
		markers++
		severity, effort := schema.SeverityLow, TodoEffortHours
		for _, f := range found {
			if f == "FIXME" || f == "HACK" {
				severity, effort = schema.SeverityMedium, FixmeEffortHours
			}
		}
		debt = append(debt, schema.TechnicalDebt{
			Type:            schema.DebtCodeSmell,
			Severity:        severity,
			Description:     fmt.Sprintf("%s marker: %s", found[0], strings.TrimSpace(line)),
			File:            sf.path,
			Line:            i + 1,
			EstimatedEffort: effort,
			Recommendation:  fmt.Sprintf("Resolve the %s comment or track it in an issue", found[0]),
		})
	}
	if markers > 0 {
		smells = append(smells, fmt.Sprintf("%d TODO/FIXME markers", markers))
	}

	if smells == nil {
		smells = []string{}
	}
	return fileQuality{
		Metrics: schema.FileQualityMetrics{
			File:                 sf.path,
			CyclomaticComplexity: complexity,
			MaintainabilityIndex: mi,
			LinesOfCode:          loc,
			DuplicatedLines:      dup,
			CodeSmells:           smells,
		},
		ValidMI: valid,
		Debt:    debt,
	}
}

// longParamLists counts method declarations whose parameter list spans at
// least LongParamListChars characters.
func (sf *sourceFile) longParamLists() int {
	rules := sf.family.rules()
	n := 0
	for _, i := range sf.code {
		line := sf.lines[i]
		if !rules.methodStart.MatchString(line) || controlLine.MatchString(line) {
			continue
		}
		if m := paramListPattern.FindStringSubmatch(line); m != nil && len(m[1]) >= LongParamListChars {
			n++
		}
	}
	return n
}

// qualityScore is the average valid maintainability index minus the complexity
// and debt penalties, floored at zero.
func qualityScore(files []fileQuality, debt []schema.TechnicalDebt) int {
	if len(files) == 0 {
		return 0
	}
	avgMI, avgComplexity := averages(files)
	score := avgMI - math.Min(avgComplexity/ComplexityPenaltyDiv, ComplexityPenaltyCap)
	for _, d := range debt {
		score -= float64(d.Severity.DebtWeight())
	}
	return int(math.Round(math.Max(score, 0)))
}

// averages returns the mean maintainability over valid files and the mean
// complexity over all files.
func averages(files []fileQuality) (float64, float64) {
	var miSum, cSum float64
	valid := 0
	for _, f := range files {
		cSum += float64(f.Metrics.CyclomaticComplexity)
		if f.ValidMI {
			miSum += f.Metrics.MaintainabilityIndex
			valid++
		}
	}
	var avgMI, avgC float64
	if valid > 0 {
		avgMI = miSum / float64(valid)
	}
	if len(files) > 0 {
		avgC = cSum / float64(len(files))
	}
	return avgMI, avgC
}

// complexitySummary builds the repository-level summary written back onto the analysis.
func complexitySummary(files []fileQuality, debt []schema.TechnicalDebt) *schema.ComplexitySummary {
	avgMI, avgC := averages(files)
	high := 0
	for _, d := range debt {
		if d.Severity == schema.SeverityHigh || d.Severity == schema.SeverityCritical {
			high++
		}
	}
	return &schema.ComplexitySummary{
		AverageComplexity:      math.Round(avgC*100) / 100,
		AverageMaintainability: math.Round(avgMI*100) / 100,
		TechnicalDebt:          schema.DebtSummary(debt),
		OverallQuality:         qualityLabel(avgMI, avgC, high),
	}
}

func qualityLabel(mi, complexity float64, highDebt int) schema.Quality {
	switch {
	case mi >= ExcellentMaintainability && complexity <= ExcellentComplexity && highDebt <= ExcellentHighDebt:
		return schema.QualityExcellent
	case mi >= GoodMaintainability && complexity <= GoodComplexity && highDebt <= GoodHighDebt:
		return schema.QualityGood
	case mi >= FairMaintainability && complexity <= FairComplexity:
		return schema.QualityFair
	default:
		return schema.QualityPoor
	}
}
