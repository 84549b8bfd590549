package iocache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/huangsam/reposcope/internal/contract"
	"github.com/huangsam/reposcope/schema"
)

// Table names for analysis tracking.
const (
	analysisRunsTable = "reposcope_analysis_runs"
	findingsTable     = "reposcope_findings"
)

// ResultStoreImpl implements the ResultStore interface.
type ResultStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.ResultStore = &ResultStoreImpl{} // Compile-time check

// NewResultStore creates a new ResultStore with the specified backend.
func NewResultStore(backend schema.DatabaseBackend, connStr string) (*ResultStoreImpl, error) {
	if backend == schema.NoneBackend {
		// No-op store for disabled tracking
		return &ResultStoreImpl{backend: backend}, nil
	}
	db, err := openDB(backend, connStr, contract.GetResultDBFilePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize result store: %w", err)
	}
	if err := createAnalysisTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create analysis tables: %w", err)
	}
	return &ResultStoreImpl{db: db, backend: backend}, nil
}

// createAnalysisTables creates the analysis tracking tables.
func createAnalysisTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{analysisRunsTable, getCreateAnalysisRunsQuery(backend)},
		{findingsTable, getCreateFindingsQuery(backend)},
	}
	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateAnalysisRunsQuery returns the CREATE TABLE query for reposcope_analysis_runs.
func getCreateAnalysisRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(analysisRunsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				repo_path VARCHAR(1024) NOT NULL,
				repo_name VARCHAR(255) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				quality_score INT NOT NULL DEFAULT 0,
				security_score INT NOT NULL DEFAULT 0,
				maintainability_score INT NOT NULL DEFAULT 0,
				files_analyzed INT NOT NULL DEFAULT 0,
				files_skipped INT NOT NULL DEFAULT 0
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				repo_path TEXT NOT NULL,
				repo_name TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				quality_score INT NOT NULL DEFAULT 0,
				security_score INT NOT NULL DEFAULT 0,
				maintainability_score INT NOT NULL DEFAULT 0,
				files_analyzed INT NOT NULL DEFAULT 0,
				files_skipped INT NOT NULL DEFAULT 0
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				repo_path TEXT NOT NULL,
				repo_name TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				quality_score INTEGER NOT NULL DEFAULT 0,
				security_score INTEGER NOT NULL DEFAULT 0,
				maintainability_score INTEGER NOT NULL DEFAULT 0,
				files_analyzed INTEGER NOT NULL DEFAULT 0,
				files_skipped INTEGER NOT NULL DEFAULT 0
			);
		`, quotedTableName)
	}
}

// getCreateFindingsQuery returns the CREATE TABLE query for reposcope_findings.
func getCreateFindingsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(findingsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				finding_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_id BIGINT NOT NULL,
				kind VARCHAR(32) NOT NULL,
				category VARCHAR(100) NOT NULL,
				severity VARCHAR(16) NOT NULL,
				file_path VARCHAR(1024),
				line_number INT,
				description TEXT NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				finding_id BIGSERIAL PRIMARY KEY,
				run_id BIGINT NOT NULL,
				kind TEXT NOT NULL,
				category TEXT NOT NULL,
				severity TEXT NOT NULL,
				file_path TEXT,
				line_number INT,
				description TEXT NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				finding_id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_id INTEGER NOT NULL,
				kind TEXT NOT NULL,
				category TEXT NOT NULL,
				severity TEXT NOT NULL,
				file_path TEXT,
				line_number INTEGER,
				description TEXT NOT NULL
			);
		`, quotedTableName)
	}
}

// BeginRun creates a new analysis run and returns its unique ID.
func (rs *ResultStoreImpl) BeginRun(startTime time.Time, repoPath, repoName string) (int64, error) {
	if rs.db == nil {
		return 0, nil
	}

	quotedTableName := quoteTableName(analysisRunsTable, rs.backend)
	var runID int64
	var err error
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (repo_path, repo_name, start_time) VALUES ($1, $2, $3) RETURNING run_id`, quotedTableName)
		err = rs.db.QueryRow(query, repoPath, repoName, startTime).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (repo_path, repo_name, start_time) VALUES (?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = rs.db.Exec(query, repoPath, repoName, formatTime(startTime, rs.backend))
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis run: %w", err)
	}
	return runID, nil
}

// RecordFinding stores one finding of a run. The record's RunID is ignored
// in favor of runID.
func (rs *ResultStoreImpl) RecordFinding(runID int64, finding schema.FindingRecord) error {
	if rs.db == nil {
		return nil
	}
	query := fmt.Sprintf(`INSERT INTO %s (run_id, kind, category, severity, file_path, line_number, description) VALUES (%s)`,
		quoteTableName(findingsTable, rs.backend), placeholderList(rs.backend, 7))
	_, err := rs.db.Exec(query, runID, finding.Kind, finding.Category, finding.Severity,
		finding.FilePath, finding.Line, finding.Description)
	if err != nil {
		return fmt.Errorf("failed to insert finding: %w", err)
	}
	return nil
}

// EndRun updates the analysis run with completion data.
func (rs *ResultStoreImpl) EndRun(runID int64, endTime time.Time, summary schema.RunSummary) error {
	if rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(analysisRunsTable, rs.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, placeholders(rs.backend, 1)[0])
	st := scanTime{backend: rs.backend}
	if err := rs.db.QueryRow(query, runID).Scan(st.dest()); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	startTime, err := st.value()
	if err != nil {
		return err
	}
	var durationMs int64
	if startTime != nil {
		durationMs = endTime.Sub(*startTime).Milliseconds()
	}

	ph := placeholders(rs.backend, 8)
	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, quality_score = %s, security_score = %s,
		maintainability_score = %s, files_analyzed = %s, files_skipped = %s WHERE run_id = %s`,
		quotedTableName, ph[0], ph[1], ph[2], ph[3], ph[4], ph[5], ph[6], ph[7])
	_, err = rs.db.Exec(updateQuery, formatTime(endTime, rs.backend), durationMs,
		summary.QualityScore, summary.SecurityScore, summary.MaintainabilityScore,
		summary.FilesAnalyzed, summary.FilesSkipped, runID)
	if err != nil {
		return fmt.Errorf("failed to update analysis run: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (rs *ResultStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the result store.
func (rs *ResultStoreImpl) GetStatus() (schema.ResultStatus, error) {
	status := schema.ResultStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if rs.db == nil {
		return status, nil
	}

	runsTable := quoteTableName(analysisRunsTable, rs.backend)
	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runsTable)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		last := scanTime{backend: rs.backend}
		lastRunQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", runsTable)
		if err := rs.db.QueryRow(lastRunQuery).Scan(&status.LastRunID, last.dest()); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		lastTime, err := last.value()
		if err != nil {
			return status, err
		}
		if lastTime != nil {
			status.LastRunTime = *lastTime
		}

		oldest := scanTime{backend: rs.backend}
		oldestRunQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runsTable)
		if err := rs.db.QueryRow(oldestRunQuery).Scan(oldest.dest()); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		oldestTime, err := oldest.value()
		if err != nil {
			return status, err
		}
		if oldestTime != nil {
			status.OldestRunTime = *oldestTime
		}
	}

	for _, table := range []string{analysisRunsTable, findingsTable} {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend))
		if err := rs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalFindings = int(status.TableSizes[findingsTable])
	return status, nil
}

// GetAllRuns retrieves all analysis runs ordered by ID.
func (rs *ResultStoreImpl) GetAllRuns() ([]schema.AnalysisRunRecord, error) {
	if rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, repo_path, repo_name, start_time, end_time, run_duration_ms,
		quality_score, security_score, maintainability_score, files_analyzed, files_skipped
		FROM %s ORDER BY run_id`, quoteTableName(analysisRunsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AnalysisRunRecord
	for rows.Next() {
		var record schema.AnalysisRunRecord
		var duration sql.NullInt32
		start := scanTime{backend: rs.backend}
		end := scanTime{backend: rs.backend}
		if err := rows.Scan(&record.RunID, &record.RepoPath, &record.RepoName, start.dest(), end.dest(), &duration,
			&record.QualityScore, &record.SecurityScore, &record.MaintainabilityScore,
			&record.FilesAnalyzed, &record.FilesSkipped); err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		startTime, err := start.value()
		if err != nil {
			return nil, err
		}
		if startTime != nil {
			record.StartTime = *startTime
		}
		if record.EndTime, err = end.value(); err != nil {
			return nil, err
		}
		if duration.Valid {
			d := duration.Int32
			record.RunDurationMs = &d
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis runs: %w", err)
	}
	return results, nil
}

// GetAllFindings retrieves all findings ordered by run and insertion.
func (rs *ResultStoreImpl) GetAllFindings() ([]schema.FindingRecord, error) {
	if rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, kind, category, severity, file_path, line_number, description
		FROM %s ORDER BY run_id, finding_id`, quoteTableName(findingsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query findings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.FindingRecord
	for rows.Next() {
		var record schema.FindingRecord
		var filePath sql.NullString
		var line sql.NullInt32
		if err := rows.Scan(&record.RunID, &record.Kind, &record.Category, &record.Severity,
			&filePath, &line, &record.Description); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		if filePath.Valid {
			p := filePath.String
			record.FilePath = &p
		}
		if line.Valid {
			l := line.Int32
			record.Line = &l
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating findings: %w", err)
	}
	return results, nil
}

// clear deletes every run and finding.
func (rs *ResultStoreImpl) clear() error {
	if rs.db == nil {
		return nil
	}
	for _, table := range []string{findingsTable, analysisRunsTable} {
		if err := clearSQLTable(rs.db, rs.backend, table); err != nil {
			return err
		}
	}
	return nil
}
