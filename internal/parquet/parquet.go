// Package parquet exports analysis runs, findings and the repository catalog
// to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/reposcope/schema"
	"github.com/parquet-go/parquet-go"
)

// AnalysisRun maps to the reposcope_analysis_runs table.
type AnalysisRun struct {
	RunID     int64      `parquet:"run_id,snappy"`
	RepoPath  string     `parquet:"repo_path,snappy"`
	RepoName  string     `parquet:"repo_name,snappy"`
	StartTime time.Time  `parquet:"start_time,snappy"`
	EndTime   *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is nil while a run has not finished
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	QualityScore         int32 `parquet:"quality_score,snappy"`
	SecurityScore        int32 `parquet:"security_score,snappy"`
	MaintainabilityScore int32 `parquet:"maintainability_score,snappy"`
	FilesAnalyzed        int32 `parquet:"files_analyzed,snappy"`
	FilesSkipped         int32 `parquet:"files_skipped,snappy"`
}

// Finding maps to the reposcope_findings table.
type Finding struct {
	RunID       int64   `parquet:"run_id,snappy"`
	Kind        string  `parquet:"kind,dict,snappy"`
	Category    string  `parquet:"category,dict,snappy"`
	Severity    string  `parquet:"severity,dict,snappy"`
	FilePath    *string `parquet:"file_path,optional,snappy"`
	Line        *int32  `parquet:"line_number,optional,snappy"`
	Description string  `parquet:"description,snappy"`
}

// Repository is one row of the exported repository catalog.
type Repository struct {
	ID             string    `parquet:"id,snappy"`
	Path           string    `parquet:"path,snappy"`
	Name           string    `parquet:"name,snappy"`
	Description    string    `parquet:"description,snappy"`
	Languages      []string  `parquet:"languages"`
	Frameworks     []string  `parquet:"frameworks"`
	Tags           []string  `parquet:"tags"`
	FileCount      int64     `parquet:"file_count,snappy"`
	TotalSize      int64     `parquet:"total_size,snappy"`
	Quality        string    `parquet:"quality,dict,snappy"`
	AddedAt        time.Time `parquet:"added_at,snappy"`
	LastAnalyzedAt time.Time `parquet:"last_analyzed,snappy"`
}

// write encodes rows into a new Parquet file at outputPath. The schema is
// derived from the struct tags of T.
func write[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteAnalysisRunsParquet writes analysis runs to a Parquet file.
func WriteAnalysisRunsParquet(data []AnalysisRun, outputPath string) error {
	return write(data, outputPath)
}

// WriteFindingsParquet writes findings to a Parquet file.
func WriteFindingsParquet(data []Finding, outputPath string) error {
	return write(data, outputPath)
}

// WriteRepositoriesParquet writes the repository catalog to a Parquet file.
func WriteRepositoriesParquet(data []Repository, outputPath string) error {
	return write(data, outputPath)
}

// ConvertAnalysisRunRecords converts schema.AnalysisRunRecord to AnalysisRun for Parquet export.
func ConvertAnalysisRunRecords(records []schema.AnalysisRunRecord) []AnalysisRun {
	result := make([]AnalysisRun, len(records))
	for i, record := range records {
		result[i] = AnalysisRun{
			RunID:                record.RunID,
			RepoPath:             record.RepoPath,
			RepoName:             record.RepoName,
			StartTime:            record.StartTime,
			EndTime:              record.EndTime,
			RunDurationMs:        record.RunDurationMs,
			QualityScore:         record.QualityScore,
			SecurityScore:        record.SecurityScore,
			MaintainabilityScore: record.MaintainabilityScore,
			FilesAnalyzed:        record.FilesAnalyzed,
			FilesSkipped:         record.FilesSkipped,
		}
	}
	return result
}

// ConvertFindingRecords converts schema.FindingRecord to Finding for Parquet export.
func ConvertFindingRecords(records []schema.FindingRecord) []Finding {
	result := make([]Finding, len(records))
	for i, record := range records {
		result[i] = Finding{
			RunID:       record.RunID,
			Kind:        record.Kind,
			Category:    record.Category,
			Severity:    record.Severity,
			FilePath:    record.FilePath,
			Line:        record.Line,
			Description: record.Description,
		}
	}
	return result
}

// ConvertRepositories flattens indexed repositories for Parquet export.
func ConvertRepositories(repos []schema.IndexedRepository) []Repository {
	result := make([]Repository, len(repos))
	for i, repo := range repos {
		result[i] = Repository{
			ID:             repo.ID,
			Path:           repo.Path,
			Name:           repo.Name,
			Description:    repo.Description,
			Languages:      repo.Languages,
			Frameworks:     repo.Frameworks,
			Tags:           repo.Tags,
			FileCount:      int64(repo.FileCount),
			TotalSize:      repo.TotalSize,
			Quality:        string(repo.Quality),
			AddedAt:        repo.AddedAt,
			LastAnalyzedAt: repo.LastAnalyzed,
		}
	}
	return result
}
