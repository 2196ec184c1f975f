package output

import (
	"fmt"
	"io"
	"time"

	"github.com/sverlaine/mediadup/pkg/models"
)

// HumanFormatter formats the report in human-readable format
type HumanFormatter struct {
	writer io.Writer
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter(w io.Writer) *HumanFormatter {
	return &HumanFormatter{writer: w}
}

// Render writes the run summary. Under the print command each
// duplicate and unique file gets its own line before the summary.
func (f *HumanFormatter) Render(report *models.Report) error {
	w := f.writer
	if w == nil {
		w = io.Discard
	}

	if report.Command == models.CommandPrint {
		for _, action := range report.Actions {
			switch {
			case action.Unique:
				fmt.Fprintf(w, "unique:    %s\n", action.Source.Path)
			case action.Ambiguous:
				fmt.Fprintf(w, "duplicate: %s == %s (ambiguous)\n", action.Source.Path, action.MatchedDest)
			default:
				fmt.Fprintf(w, "duplicate: %s == %s\n", action.Source.Path, action.MatchedDest)
			}
		}
		fmt.Fprintf(w, "\n")
	}

	fmt.Fprintf(w, "Scan completed in %s\n", report.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Scanned:\n")
	fmt.Fprintf(w, "    Source:        %d files\n", report.Stats.SourceFilesScanned)
	fmt.Fprintf(w, "    Destination:   %d files\n", report.Stats.DestFilesScanned)
	fmt.Fprintf(w, "    Excluded:      %d files\n", report.Stats.FilesExcluded)
	if report.Stats.VideosSkipped > 0 {
		fmt.Fprintf(w, "    Videos skipped: %d files\n", report.Stats.VideosSkipped)
	}
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Matching (%s):\n", report.Mode)
	fmt.Fprintf(w, "    Fingerprinted:   %d\n", report.Stats.Fingerprinted)
	fmt.Fprintf(w, "    Duplicates:      %d in %d group(s)\n", report.Stats.MatchedSources, report.Stats.DuplicateGroups)
	fmt.Fprintf(w, "    Ambiguous groups: %d\n", report.Stats.AmbiguousGroups)
	fmt.Fprintf(w, "    Unique sources:  %d\n", report.Stats.UniqueSources)
	if report.Stats.ExtractionFailures > 0 || report.Stats.InsufficientMetadata > 0 {
		fmt.Fprintf(w, "    Unreadable:      %d (no metadata: %d)\n",
			report.Stats.ExtractionFailures, report.Stats.InsufficientMetadata)
	}
	if report.Stats.CacheHits > 0 {
		fmt.Fprintf(w, "    Cache hits:      %d\n", report.Stats.CacheHits)
	}
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Plan (%s):\n", report.Command)
	fmt.Fprintf(w, "    Actions:       %d\n", report.Stats.ActionsPlanned)
	if report.Stats.ActionsSkipped > 0 {
		fmt.Fprintf(w, "    Skipped:       %d\n", report.Stats.ActionsSkipped)
	}
	fmt.Fprintf(w, "    Reclaimable:   %s\n", formatSpace(report.Stats.BytesReclaimable))

	if len(report.NearMisses) > 0 {
		fmt.Fprintf(w, "\nSame name, different metadata:\n")
		for _, miss := range report.NearMisses {
			fmt.Fprintf(w, "  %s ~ %s\n", miss.SourcePath, miss.DestPath)
		}
	}

	if len(report.Errors) > 0 {
		fmt.Fprintf(w, "\nErrors:\n")
		for _, err := range report.Errors {
			fmt.Fprintf(w, "  %s [%s]: %s\n", err.Path, err.Stage, err.Error)
		}
	}

	fmt.Fprintf(w, "\nStatus: %s\n", report.Status)
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

// formatSpace reports reclaimable space in MB below a gigabyte, GB above
func formatSpace(bytes int64) string {
	const mb = 1000 * 1000
	const gb = 1000 * mb
	if bytes >= gb {
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(gb))
	}
	return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
}
