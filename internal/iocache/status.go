package iocache

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/huangsam/reposcope/schema"
)

const statusTimeFormat = "2006-01-02 15:04:05"

// PrintIndexStatus prints index store status information.
func PrintIndexStatus(w io.Writer, status schema.StoreStatus) {
	_, _ = fmt.Fprintf(w, "Index Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	if status.Location != "" {
		_, _ = fmt.Fprintf(w, "Location: %s\n", status.Location)
	}
	_, _ = fmt.Fprintf(w, "Documents: %d\n", status.Documents)
	if status.Documents > 0 {
		_, _ = fmt.Fprintf(w, "Last Write: %s\n", status.LastWriteTime.Format(statusTimeFormat))
		_, _ = fmt.Fprintf(w, "Size: %d bytes\n", status.TableSizeBytes)
	}
}

// PrintResultStatus prints result store status information.
func PrintResultStatus(w io.Writer, status schema.ResultStatus) {
	_, _ = fmt.Fprintf(w, "Result Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		_, _ = fmt.Fprintf(w, "Last Run ID: %d\n", status.LastRunID)
		_, _ = fmt.Fprintf(w, "Last Run: %s\n", status.LastRunTime.Format(statusTimeFormat))
		_, _ = fmt.Fprintf(w, "Oldest Run: %s\n", status.OldestRunTime.Format(statusTimeFormat))
		_, _ = fmt.Fprintf(w, "Total Findings: %d\n", status.TotalFindings)
	}
	_, _ = fmt.Fprintln(w, "Table Sizes:")
	for _, table := range slices.Sorted(maps.Keys(status.TableSizes)) {
		_, _ = fmt.Fprintf(w, "  %s: %d rows\n", table, status.TableSizes[table])
	}
}

// PrintCacheStatus prints metrics cache status information.
func PrintCacheStatus(w io.Writer, status schema.CacheStatus) {
	_, _ = fmt.Fprintf(w, "Cache Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Entries: %d\n", status.TotalEntries)
	if status.TotalEntries > 0 {
		_, _ = fmt.Fprintf(w, "Last Entry: %s\n", status.LastEntryTime.Format(statusTimeFormat))
		_, _ = fmt.Fprintf(w, "Oldest Entry: %s\n", status.OldestEntryTime.Format(statusTimeFormat))
	}
	_, _ = fmt.Fprintf(w, "Table Size: %d bytes\n", status.TableSizeBytes)
}
