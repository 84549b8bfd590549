package schema

// FileQualityMetrics holds the per-file quality signals of one key file.
type FileQualityMetrics struct {
	File                 string   `json:"file"`
	CyclomaticComplexity int      `json:"cyclomaticComplexity"`
	MaintainabilityIndex float64  `json:"maintainabilityIndex"`
	LinesOfCode          int      `json:"linesOfCode"`
	DuplicatedLines      int      `json:"duplicatedLines"`
	CodeSmells           []string `json:"codeSmells"`
}

// TechnicalDebt is one remediation suggestion tied to a file.
type TechnicalDebt struct {
	Type            DebtKind `json:"type"`
	Severity        Severity `json:"severity"`
	Description     string   `json:"description"`
	File            string   `json:"file"`
	Line            int      `json:"line,omitempty"` // 1-based, 0 when unknown
	EstimatedEffort int      `json:"estimatedEffort"` // Hours
	Recommendation  string   `json:"recommendation"`
}

// SecurityVulnerability is one security finding.
type SecurityVulnerability struct {
	ID             string   `json:"id"` // Deterministic, see VulnerabilityID
	Severity       Severity `json:"severity"`
	Type           string   `json:"type"`
	Description    string   `json:"description"`
	File           string   `json:"file"`
	Line           int      `json:"line,omitempty"`
	Recommendation string   `json:"recommendation"`
}

// ArchitecturalPattern is a named, confidence-scored structural signature.
type ArchitecturalPattern struct {
	Name        string  `json:"name"`
	Confidence  float64 `json:"confidence"` // 0.0 - 1.0
	Description string  `json:"description"`
}

// CodeQuality groups the quality phase output.
type CodeQuality struct {
	OverallScore  int                  `json:"overallScore"`
	FileMetrics   []FileQualityMetrics `json:"fileMetrics"`
	TechnicalDebt []TechnicalDebt      `json:"technicalDebt"`
}

// SecurityReport groups the security phase output.
type SecurityReport struct {
	Vulnerabilities []SecurityVulnerability `json:"vulnerabilities"`
	SecurityScore   int                     `json:"securityScore"`
	Recommendations []string                `json:"recommendations"`
}

// ArchitectureReport groups the architecture phase output.
type ArchitectureReport struct {
	Patterns             []ArchitecturalPattern `json:"patterns"`
	Recommendations      []string               `json:"recommendations"`
	MaintainabilityScore int                    `json:"maintainabilityScore"`
}

// MonthlyCommits is one bucket of the commit history.
type MonthlyCommits struct {
	Month   string `json:"month"` // YYYY-MM
	Commits int    `json:"commits"`
}

// TrendData is the optional history-derived trend section.
type TrendData struct {
	Period         string           `json:"period"`
	CommitsByMonth []MonthlyCommits `json:"commitsByMonth"`
	Contributors   int              `json:"contributors"`
	ActivityTrend  ActivityTrend    `json:"activityTrend"`
}

// SkipRecord explains why a file was excluded from one analysis phase.
type SkipRecord struct {
	File   string `json:"file"`
	Phase  string `json:"phase"`
	Reason string `json:"reason"`
}

// AdvancedAnalysisResult is the output of one analyzer run.
type AdvancedAnalysisResult struct {
	CodeQuality  CodeQuality        `json:"codeQuality"`
	Security     SecurityReport     `json:"security"`
	Architecture ArchitectureReport `json:"architecture"`
	Trends       *TrendData         `json:"trends,omitempty"`
	Skipped      []SkipRecord       `json:"skipped,omitempty"`
}
