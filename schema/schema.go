// Package schema has configs, models and shared enumerations for all parts of reposcope.
package schema

import "time"

// RepositoryAnalysis is the full description of one repository as produced by discovery.
// The analyzer reads most fields and overwrites CodeAnalysis as part of its contract.
type RepositoryAnalysis struct {
	Path           string            `json:"path"`
	Name           string            `json:"name"`
	Description    string            `json:"description,omitempty"`
	Languages      []string          `json:"languages"`  // Ordered, first entry is the primary language
	Frameworks     []string          `json:"frameworks"` // Detected frameworks and libraries
	FileCount      int               `json:"fileCount"`
	DirectoryCount int               `json:"directoryCount"`
	TotalSize      int64             `json:"totalSize"` // Bytes
	Structure      Structure         `json:"structure"`
	CodeAnalysis   CodeAnalysis      `json:"codeAnalysis"`
	Dependencies   map[string]string `json:"dependencies,omitempty"` // Manifest name -> declared version
	AnalyzedAt     time.Time         `json:"analyzedAt"`
}

// Structure holds the directory and key file layout of a repository.
type Structure struct {
	Directories []DirectoryInfo `json:"directories"`
	KeyFiles    []KeyFile       `json:"keyFiles"`
}

// DirectoryInfo describes one directory in the repository.
type DirectoryInfo struct {
	Path              string `json:"path"`
	FileCount         int    `json:"fileCount"`
	SubdirectoryCount int    `json:"subdirectoryCount"`
}

// KeyFile is a file selected as representative for deep analysis.
type KeyFile struct {
	Path       string  `json:"path"` // Relative to the repository root
	Language   string  `json:"language"`
	Size       int64   `json:"size"`
	LineCount  int     `json:"lineCount"`
	Importance float64 `json:"importance"`
}

// CodeAnalysis holds the fields the analyzer overwrites on the input record.
type CodeAnalysis struct {
	Complexity *ComplexitySummary     `json:"complexity,omitempty"`
	Patterns   []ArchitecturalPattern `json:"patterns"`
}

// ComplexitySummary is the repository-level quality summary.
type ComplexitySummary struct {
	AverageComplexity      float64 `json:"averageComplexity"`
	AverageMaintainability float64 `json:"averageMaintainability"`
	TechnicalDebt          string  `json:"technicalDebt"`
	OverallQuality         Quality `json:"overallQuality"`
}
