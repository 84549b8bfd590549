package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/color"
	"github.com/huangsam/reposcope/schema"
)

// Color variables for console output.
var (
	CriticalColor = color.New(color.FgRed, color.Bold)     // CriticalColor represents standard danger.
	HighColor     = color.New(color.FgMagenta, color.Bold) // HighColor represents strong, distinct warning.
	ModerateColor = color.New(color.FgYellow)              // ModerateColor represents standard caution, not bold.
	LowColor      = color.New(color.FgCyan)                // LowColor represents informational / low-priority signal.
	GoodColor     = color.New(color.FgGreen)               // GoodColor represents a healthy signal.
)

// GetColorLabel returns a colored health label for a 0-100 score.
// It uses schema.GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(score float64) string {
	text := schema.GetPlainLabel(score)

	switch text {
	case "Critical":
		return CriticalColor.Sprint(text)
	case "Weak":
		return HighColor.Sprint(text)
	case "Fair":
		return ModerateColor.Sprint(text)
	default:
		return GoodColor.Sprint(text)
	}
}

// GetSeverityLabel returns a colored severity label for console output.
func GetSeverityLabel(s schema.Severity) string {
	text := string(s)
	switch s {
	case schema.SeverityCritical:
		return CriticalColor.Sprint(text)
	case schema.SeverityHigh:
		return HighColor.Sprint(text)
	case schema.SeverityMedium:
		return ModerateColor.Sprint(text)
	default:
		return LowColor.Sprint(text)
	}
}

// GetMatchColorLabel returns a colored label for a 0-1 match strength.
func GetMatchColorLabel(strength float64) string {
	text := schema.GetMatchLabel(strength)
	switch text {
	case "Strong":
		return GoodColor.Sprint(text)
	case "Good":
		return LowColor.Sprint(text)
	case "Partial":
		return ModerateColor.Sprint(text)
	default:
		return HighColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// ShouldIgnore returns true if the slash-separated relative path matches any
// of the doublestar exclude patterns. Patterns without a slash also match
// against the base name, so "*.min.js" works at any depth.
func ShouldIgnore(path string, excludes []string) bool {
	path = filepath.ToSlash(path)
	base := filepath.Base(path)
	for _, ex := range excludes {
		ex = strings.TrimSpace(ex)
		if ex == "" {
			continue
		}
		if ok, err := doublestar.Match(ex, path); err == nil && ok {
			return true
		}
		if !strings.Contains(ex, "/") {
			if ok, err := doublestar.Match(ex, base); err == nil && ok {
				return true
			}
		}
		// "dir/**" patterns also exclude the directory itself
		if trimmed, found := strings.CutSuffix(ex, "/**"); found {
			if ok, err := doublestar.Match(trimmed, path); err == nil && ok {
				return true
			}
		}
	}
	return false
}

func homeFile(name string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(homeDir, name)
}

// GetIndexFilePath returns the path to the JSON document of the file index backend.
func GetIndexFilePath() string {
	return homeFile(".reposcope_index.json")
}

// GetIndexDBFilePath returns the path to the SQLite DB file for index storage.
func GetIndexDBFilePath() string {
	return homeFile(".reposcope_index.db")
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the metrics cache.
func GetCacheDBFilePath() string {
	return homeFile(".reposcope_cache.db")
}

// GetResultDBFilePath returns the path to the SQLite DB file for analysis results.
func GetResultDBFilePath() string {
	return homeFile(".reposcope_results.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and at least one character of content.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// SplitList splits a comma-separated flag value, trimming blanks.
func SplitList(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
