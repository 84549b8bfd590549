package schema

import "time"

// Finding kinds recorded by the result store.
const (
	FindingDebt          = "debt"
	FindingVulnerability = "vulnerability"
	FindingPattern       = "pattern"
)

// RunSummary is what the result store keeps for one analyzer run.
type RunSummary struct {
	RepoPath             string
	RepoName             string
	QualityScore         int
	SecurityScore        int
	MaintainabilityScore int
	FilesAnalyzed        int
	FilesSkipped         int
}

// AnalysisRunRecord represents a row from the reposcope_analysis_runs table.
type AnalysisRunRecord struct {
	RunID                int64
	RepoPath             string
	RepoName             string
	StartTime            time.Time
	EndTime              *time.Time
	RunDurationMs        *int32
	QualityScore         int32
	SecurityScore        int32
	MaintainabilityScore int32
	FilesAnalyzed        int32
	FilesSkipped         int32
}

// FindingRecord represents a row from the reposcope_findings table.
type FindingRecord struct {
	RunID       int64
	Kind        string // debt, vulnerability or pattern
	Category    string // debt kind, vulnerability type or pattern name
	Severity    string
	FilePath    *string
	Line        *int32
	Description string
}

// Findings flattens the debt, vulnerability and pattern sections of a result
// into result store rows for the given run.
func (r *AdvancedAnalysisResult) Findings(runID int64) []FindingRecord {
	var out []FindingRecord
	for _, d := range r.CodeQuality.TechnicalDebt {
		out = append(out, FindingRecord{
			RunID:       runID,
			Kind:        FindingDebt,
			Category:    string(d.Type),
			Severity:    string(d.Severity),
			FilePath:    optionalString(d.File),
			Line:        optionalLine(d.Line),
			Description: d.Description,
		})
	}
	for _, v := range r.Security.Vulnerabilities {
		out = append(out, FindingRecord{
			RunID:       runID,
			Kind:        FindingVulnerability,
			Category:    v.Type,
			Severity:    string(v.Severity),
			FilePath:    optionalString(v.File),
			Line:        optionalLine(v.Line),
			Description: v.Description,
		})
	}
	for _, p := range r.Architecture.Patterns {
		out = append(out, FindingRecord{
			RunID:       runID,
			Kind:        FindingPattern,
			Category:    p.Name,
			Description: p.Description,
		})
	}
	return out
}

// Summary builds the run summary stored alongside the findings.
func (r *AdvancedAnalysisResult) Summary(analysis *RepositoryAnalysis) RunSummary {
	skipped := make(map[string]struct{}, len(r.Skipped))
	for _, s := range r.Skipped {
		skipped[s.File] = struct{}{}
	}
	return RunSummary{
		RepoPath:             analysis.Path,
		RepoName:             analysis.Name,
		QualityScore:         r.CodeQuality.OverallScore,
		SecurityScore:        r.Security.SecurityScore,
		MaintainabilityScore: r.Architecture.MaintainabilityScore,
		FilesAnalyzed:        len(r.CodeQuality.FileMetrics),
		FilesSkipped:         len(skipped),
	}
}

// VulnerabilitiesAtOrAbove counts vulnerabilities whose severity ranks at or above floor.
func (r *AdvancedAnalysisResult) VulnerabilitiesAtOrAbove(floor Severity) int {
	count := 0
	for _, v := range r.Security.Vulnerabilities {
		if v.Severity.Rank() >= floor.Rank() {
			count++
		}
	}
	return count
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalLine(line int) *int32 {
	if line <= 0 {
		return nil
	}
	v := int32(line)
	return &v
}
