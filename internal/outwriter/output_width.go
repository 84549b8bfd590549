package outwriter

import (
	"os"

	"github.com/huangsam/reposcope/internal/contract"
	"golang.org/x/term"
)

// Fixed column widths (with borders and padding) reserved for each table kind.
const (
	findingsFixedWidth = 45 // Severity + Kind + Line
	searchFixedWidth   = 50 // Rank + Name + Languages
	similarFixedWidth  = 55 // Rank + Name + Score + Label
)

// GetMaxTablePathWidth calculates the maximum width for a free-text column
// based on terminal width and the fixed columns of the table.
func GetMaxTablePathWidth(cfg *contract.Config, fixedWidth int) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve generous space for table borders, separators, and padding
	available := termWidth - fixedWidth - 20
	if available < 15 {
		return 15
	}
	if available > 70 {
		return 70
	}
	return available
}
