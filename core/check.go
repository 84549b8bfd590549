package core

import (
	"fmt"
	"io"

	"github.com/huangsam/reposcope/internal/contract"
	"github.com/huangsam/reposcope/schema"
)

// GateError reports that an analysis found vulnerabilities at or above the
// configured --fail-on severity.
type GateError struct {
	Threshold schema.Severity
	Count     int
}

func (e *GateError) Error() string {
	return fmt.Sprintf("%d vulnerabilit%s at or above %s severity", e.Count, plural(e.Count, "y", "ies"), e.Threshold)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// CheckFailOn applies the --fail-on gate to a result. An empty threshold always passes.
func CheckFailOn(cfg *contract.Config, result *schema.AdvancedAnalysisResult) error {
	if cfg.FailOn == "" {
		return nil
	}
	if n := result.VulnerabilitiesAtOrAbove(cfg.FailOn); n > 0 {
		return &GateError{Threshold: cfg.FailOn, Count: n}
	}
	return nil
}

// PrintGateResult prints a concise pass or fail line suitable for CI logs.
func PrintGateResult(w io.Writer, cfg *contract.Config, err error) {
	if cfg.FailOn == "" {
		return
	}
	if err != nil {
		fmt.Fprintf(w, "❌ Security gate failed: %v\n", err)
		return
	}
	fmt.Fprintf(w, "✅ No vulnerabilities at or above %s severity\n", cfg.FailOn)
}
