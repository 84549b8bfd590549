package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/huangsam/reposcope/core/tokens"
	"github.com/huangsam/reposcope/schema"
)

// Default values for configuration.
const (
	DefaultPrecision    = 1
	DefaultMaxKeyFiles  = 50
	MaxKeyFilesLimit    = 1000
	DefaultTrendMonths  = 6
	MaxTrendMonths      = 60
	DefaultSampleTokens = 200
	DefaultLogLevel     = "warn"
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// DefaultExcludes are the doublestar patterns skipped during discovery.
var DefaultExcludes = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/vendor/**",
	"**/dist/**",
	"**/build/**",
	"**/target/**",
	"**/__pycache__/**",
	"**/.venv/**",
	"**/*.min.js",
	"**/*.lock",
}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration.
// This struct remains the "final, validated" config.
type Config struct {
	RepoPath    string
	Workers     int
	Excludes    []string
	MaxKeyFiles int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool

	Trends      bool
	TrendMonths int

	SampleTokens   int
	SampleStrategy tokens.Strategy
	FailOn         schema.Severity // Empty disables the gate
	Index          bool            // Add the analyzed repository to the index
	LogLevel       string

	IndexBackend   schema.DatabaseBackend
	IndexDBConnect string // Please use env var as this is plaintext
	IndexFile      string

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	ResultBackend   schema.DatabaseBackend
	ResultDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	OutputFile      string `mapstructure:"output-file"`
	Workers         int    `mapstructure:"workers"`
	Exclude         string `mapstructure:"exclude"`
	Precision       int    `mapstructure:"precision"`
	Output          string `mapstructure:"output"`
	Width           int    `mapstructure:"width"`
	Color           string `mapstructure:"color"`
	LogLevel        string `mapstructure:"log-level"`
	IndexBackend    string `mapstructure:"index-backend"`
	IndexDBConnect  string `mapstructure:"index-db-connect"`
	IndexFile       string `mapstructure:"index-file"`
	CacheBackend    string `mapstructure:"cache-backend"`
	CacheDBConnect  string `mapstructure:"cache-db-connect"`
	ResultBackend   string `mapstructure:"result-backend"`
	ResultDBConnect string `mapstructure:"result-db-connect"`

	// --- Fields from analyzeCmd.Flags() ---
	MaxKeyFiles    int    `mapstructure:"max-key-files"`
	Trends         bool   `mapstructure:"trends"`
	TrendMonths    int    `mapstructure:"trend-months"`
	SampleTokens   int    `mapstructure:"sample-tokens"`
	SampleStrategy string `mapstructure:"sample-strategy"`
	FailOn         string `mapstructure:"fail-on"`
	Index          bool   `mapstructure:"index"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Excludes != nil {
		clone.Excludes = make([]string, len(c.Excludes))
		copy(clone.Excludes, c.Excludes)
	}
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateAnalyzeInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return resolveRepoPath(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend, schema.FileBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the output and worker fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(input.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if err := SetLogLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid --log-level value: %w", err)
	}

	cfg.Excludes = append([]string{}, DefaultExcludes...)
	cfg.Excludes = append(cfg.Excludes, SplitList(input.Exclude)...)
	return nil
}

// validateAnalyzeInputs processes the analyzer and sampling fields.
func validateAnalyzeInputs(cfg *Config, input *ConfigRawInput) error {
	if input.MaxKeyFiles <= 0 || input.MaxKeyFiles > MaxKeyFilesLimit {
		return fmt.Errorf("max-key-files must be greater than 0 and cannot exceed %d (received %d)", MaxKeyFilesLimit, input.MaxKeyFiles)
	}
	cfg.MaxKeyFiles = input.MaxKeyFiles

	cfg.Trends = input.Trends
	if input.TrendMonths <= 0 || input.TrendMonths > MaxTrendMonths {
		return fmt.Errorf("trend-months must be between 1 and %d (received %d)", MaxTrendMonths, input.TrendMonths)
	}
	cfg.TrendMonths = input.TrendMonths

	if input.SampleTokens <= 0 {
		return fmt.Errorf("sample-tokens must be greater than 0 (received %d)", input.SampleTokens)
	}
	cfg.SampleTokens = input.SampleTokens

	cfg.SampleStrategy = tokens.Strategy(strings.ToLower(input.SampleStrategy))
	if cfg.SampleStrategy == "" {
		cfg.SampleStrategy = tokens.StrategySmart
	}
	if _, ok := tokens.ValidStrategies[cfg.SampleStrategy]; !ok {
		return fmt.Errorf("invalid sample strategy '%s'. must be start, end, middle, smart", input.SampleStrategy)
	}

	cfg.FailOn = schema.Severity(strings.ToLower(strings.TrimSpace(input.FailOn)))
	if cfg.FailOn != "" && cfg.FailOn.Rank() < 0 {
		return fmt.Errorf("invalid --fail-on value '%s'. must be low, medium, high, critical", input.FailOn)
	}

	cfg.Index = input.Index
	return nil
}

// validateBackendConfigs validates index, cache and result backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Index Backend Validation ---
	cfg.IndexBackend = schema.DatabaseBackend(strings.ToLower(input.IndexBackend))
	if cfg.IndexBackend == "" {
		cfg.IndexBackend = schema.FileBackend
	}
	if _, ok := schema.ValidIndexBackends[cfg.IndexBackend]; !ok {
		return fmt.Errorf("invalid index backend '%s'. must be file, sqlite, mysql, postgresql, none", input.IndexBackend)
	}
	cfg.IndexDBConnect = input.IndexDBConnect
	if err := ValidateDatabaseConnectionString(cfg.IndexBackend, cfg.IndexDBConnect); err != nil {
		return err
	}
	cfg.IndexFile = input.IndexFile
	if cfg.IndexFile == "" {
		cfg.IndexFile = GetIndexFilePath()
	}

	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- Result Backend Validation ---
	cfg.ResultBackend = schema.DatabaseBackend(strings.ToLower(input.ResultBackend))
	if cfg.ResultBackend == "" {
		cfg.ResultBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.ResultBackend]; !ok {
		return fmt.Errorf("invalid result backend '%s'. must be sqlite, mysql, postgresql, none", input.ResultBackend)
	}
	cfg.ResultDBConnect = input.ResultDBConnect
	if err := ValidateDatabaseConnectionString(cfg.ResultBackend, cfg.ResultDBConnect); err != nil {
		return err
	}

	return validateDistinctSQLiteFiles(cfg)
}

// validateDistinctSQLiteFiles rejects configs where two stores resolve to the same SQLite file.
func validateDistinctSQLiteFiles(cfg *Config) error {
	seen := make(map[string]string)
	check := func(name string, backend schema.DatabaseBackend, conn, fallback string) error {
		if backend != schema.SQLiteBackend {
			return nil
		}
		path := conn
		if path == "" {
			path = fallback
		}
		if other, ok := seen[path]; ok {
			return fmt.Errorf("%s and %s storage must use different SQLite database files. Both resolve to %q", other, name, path)
		}
		seen[path] = name
		return nil
	}
	if err := check("index", cfg.IndexBackend, cfg.IndexDBConnect, GetIndexDBFilePath()); err != nil {
		return err
	}
	if err := check("cache", cfg.CacheBackend, cfg.CacheDBConnect, GetCacheDBFilePath()); err != nil {
		return err
	}
	return check("result", cfg.ResultBackend, cfg.ResultDBConnect, GetResultDBFilePath())
}

// resolveRepoPath resolves the positional path to an absolute directory.
// Commands without a positional path leave RepoPath empty.
func resolveRepoPath(cfg *Config, input *ConfigRawInput) error {
	if input.RepoPathStr == "" {
		return nil
	}
	absPath, err := filepath.Abs(input.RepoPathStr)
	if err != nil {
		return err
	}
	absPath = filepath.Clean(absPath)

	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("cannot access repository path %q: %w", input.RepoPathStr, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("repository path %q is not a directory", input.RepoPathStr)
	}
	cfg.RepoPath = absPath
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
