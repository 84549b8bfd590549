package outwriter

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/huangsam/reposcope/internal/contract"
	"github.com/huangsam/reposcope/schema"
)

// AnalysisReport is the JSON document written for one analyzed repository.
type AnalysisReport struct {
	Repository string                         `json:"repository"`
	Path       string                         `json:"path"`
	Languages  []string                       `json:"languages"`
	Frameworks []string                       `json:"frameworks"`
	FileCount  int                            `json:"fileCount"`
	TotalSize  int64                          `json:"totalSize"`
	Complexity *schema.ComplexitySummary      `json:"complexity,omitempty"`
	Result     *schema.AdvancedAnalysisResult `json:"result"`
	Duration   string                         `json:"duration"`
}

// WriteAnalysisResults outputs one analyzer run, dispatching based on the output format configured.
func WriteAnalysisResults(analysis *schema.RepositoryAnalysis, result *schema.AdvancedAnalysisResult, cfg *contract.Config, duration time.Duration) error {
	return dispatch(cfg, "analysis",
		func(w io.Writer) error {
			return writeJSON(w, AnalysisReport{
				Repository: analysis.Name,
				Path:       analysis.Path,
				Languages:  analysis.Languages,
				Frameworks: analysis.Frameworks,
				FileCount:  analysis.FileCount,
				TotalSize:  analysis.TotalSize,
				Complexity: analysis.CodeAnalysis.Complexity,
				Result:     result,
				Duration:   duration.String(),
			})
		},
		func(w io.Writer) error {
			return writeAnalysisCSV(w, result)
		},
		func(w io.Writer) error {
			return writeAnalysisText(w, analysis, result, cfg, duration)
		},
	)
}

// sortedFindings orders findings by severity (most severe first), then by kind and file.
func sortedFindings(result *schema.AdvancedAnalysisResult) []schema.FindingRecord {
	findings := slices.DeleteFunc(result.Findings(0), func(f schema.FindingRecord) bool {
		return f.Kind == schema.FindingPattern
	})
	slices.SortStableFunc(findings, func(a, b schema.FindingRecord) int {
		if c := cmp.Compare(schema.Severity(b.Severity).Rank(), schema.Severity(a.Severity).Rank()); c != 0 {
			return c
		}
		return cmp.Compare(a.Kind, b.Kind)
	})
	return findings
}

func location(f schema.FindingRecord) string {
	if f.FilePath == nil {
		return "-"
	}
	if f.Line == nil {
		return *f.FilePath
	}
	return fmt.Sprintf("%s:%d", *f.FilePath, *f.Line)
}

// writeAnalysisCSV writes one row per finding, patterns included.
func writeAnalysisCSV(w io.Writer, result *schema.AdvancedAnalysisResult) error {
	header := []string{"kind", "category", "severity", "file", "line", "description"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, f := range result.Findings(0) {
			file, line := "", ""
			if f.FilePath != nil {
				file = *f.FilePath
			}
			if f.Line != nil {
				line = strconv.Itoa(int(*f.Line))
			}
			if err := cw.Write([]string{f.Kind, f.Category, f.Severity, file, line, f.Description}); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeAnalysisText prints the score summary followed by the findings and pattern tables.
func writeAnalysisText(w io.Writer, analysis *schema.RepositoryAnalysis, result *schema.AdvancedAnalysisResult, cfg *contract.Config, duration time.Duration) error {
	quality := float64(result.CodeQuality.OverallScore)
	security := float64(result.Security.SecurityScore)
	maintainability := float64(result.Architecture.MaintainabilityScore)

	lines := []string{
		fmt.Sprintf("Repository: %s (%s)", analysis.Name, analysis.Path),
		fmt.Sprintf("Languages: %s", schema.FormatList(analysis.Languages)),
		fmt.Sprintf("Frameworks: %s", schema.FormatList(analysis.Frameworks)),
		fmt.Sprintf("Quality: %d/100 %s", result.CodeQuality.OverallScore, contract.GetColorLabel(quality)),
		fmt.Sprintf("Security: %d/100 %s", result.Security.SecurityScore, contract.GetColorLabel(security)),
		fmt.Sprintf("Maintainability: %d/100 %s", result.Architecture.MaintainabilityScore, contract.GetColorLabel(maintainability)),
		fmt.Sprintf("Technical Debt: %s", schema.DebtSummary(result.CodeQuality.TechnicalDebt)),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	if findings := sortedFindings(result); len(findings) > 0 {
		maxWidth := GetMaxTablePathWidth(cfg, findingsFixedWidth)
		data := make([][]string, 0, len(findings))
		for _, f := range findings {
			data = append(data, []string{
				contract.GetSeverityLabel(schema.Severity(f.Severity)),
				f.Kind,
				f.Category,
				contract.TruncatePath(location(f), maxWidth),
			})
		}
		if err := writeTable(w, []string{"Severity", "Kind", "Category", "Location"}, data); err != nil {
			return err
		}
	}

	if len(result.Architecture.Patterns) > 0 {
		fmtFloat, _ := createFormatters(cfg.Precision)
		data := make([][]string, 0, len(result.Architecture.Patterns))
		for _, p := range result.Architecture.Patterns {
			data = append(data, []string{p.Name, fmtFloat(p.Confidence), p.Description})
		}
		if err := writeTable(w, []string{"Pattern", "Confidence", "Description"}, data); err != nil {
			return err
		}
	}

	if t := result.Trends; t != nil {
		if _, err := fmt.Fprintf(w, "Activity (%s): %s, %d contributors\n", t.Period, t.ActivityTrend, t.Contributors); err != nil {
			return err
		}
	}
	if len(result.Skipped) > 0 {
		if _, err := fmt.Fprintf(w, "Skipped %d file phases, see warnings for details\n", len(result.Skipped)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Analysis completed in %v with %d workers. Result backend: %s\n", duration, cfg.Workers, cfg.ResultBackend)
	return err
}
