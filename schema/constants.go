package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for durable storage.
	DatabaseBackend string

	// Severity represents how urgent a finding is.
	Severity string

	// DebtKind represents the category of a technical debt item.
	DebtKind string

	// Quality represents the overall quality label of a repository.
	Quality string

	// RelationshipType represents how two indexed repositories relate.
	RelationshipType string

	// Role represents the inferred purpose of a repository.
	Role string

	// ActivityTrend represents the direction of commit activity over time.
	ActivityTrend string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
	FileBackend       DatabaseBackend = "file" // index only
)

// Severity levels. Debt items use low to high, vulnerabilities use low to critical.
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Technical debt kinds.
const (
	DebtCodeSmell     DebtKind = "code_smell"
	DebtBug           DebtKind = "bug"
	DebtVulnerability DebtKind = "vulnerability"
	DebtDuplication   DebtKind = "duplication"
	DebtComplexity    DebtKind = "complexity"
)

// Quality labels.
const (
	QualityExcellent Quality = "excellent"
	QualityGood      Quality = "good"
	QualityFair      Quality = "fair"
	QualityPoor      Quality = "poor"
)

// Relationship types between indexed repositories.
const (
	RelationSimilar       RelationshipType = "similar"
	RelationComplementary RelationshipType = "complementary"
	RelationSameStack     RelationshipType = "same-stack"
)

// Repository roles.
const (
	RoleFrontend    Role = "frontend"
	RoleBackend     Role = "backend"
	RoleLibrary     Role = "library"
	RoleMobile      Role = "mobile"
	RoleTool        Role = "tool"
	RoleApplication Role = "application"
)

// Activity trends.
const (
	TrendIncreasing ActivityTrend = "increasing"
	TrendStable     ActivityTrend = "stable"
	TrendDecreasing ActivityTrend = "decreasing"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid SQL-capable backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidIndexBackends lists all valid backends for the repository index.
var ValidIndexBackends = map[DatabaseBackend]struct{}{
	FileBackend:       {},
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidSeverities lists all severities in ascending order.
var ValidSeverities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Rank returns the ordinal position of the severity, or -1 if unknown.
func (s Severity) Rank() int {
	for i, v := range ValidSeverities {
		if v == s {
			return i
		}
	}
	return -1
}

// DebtWeight is the penalty weight of a debt item with this severity.
func (s Severity) DebtWeight() int {
	switch s {
	case SeverityHigh, SeverityCritical:
		return 5
	case SeverityMedium:
		return 3
	default:
		return 1
	}
}

// SecurityWeight is the penalty weight of a vulnerability with this severity.
func (s Severity) SecurityWeight() int {
	switch s {
	case SeverityCritical:
		return 15
	case SeverityHigh:
		return 7
	case SeverityMedium:
		return 3
	default:
		return 1
	}
}
