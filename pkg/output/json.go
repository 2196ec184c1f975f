package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/sverlaine/mediadup/pkg/models"
)

// JSONFormatter formats the report as JSON for automation and scripting
type JSONFormatter struct {
	writer io.Writer
}

// JSONReportData is the top-level JSON report shape
type JSONReportData struct {
	PlanID     string             `json:"plan_id"`
	Status     string             `json:"status"`
	Mode       string             `json:"mode"`
	Command    string             `json:"command"`
	Duration   string             `json:"duration"`
	DurationMs int64              `json:"duration_ms"`
	Stats      JSONStatsData      `json:"stats"`
	Groups     []JSONGroupData    `json:"groups,omitempty"`
	Actions    []JSONActionData   `json:"actions,omitempty"`
	NearMisses []JSONNearMissData `json:"near_misses,omitempty"`
	Errors     []JSONErrorData    `json:"errors,omitempty"`
}

// JSONStatsData mirrors the run statistics
type JSONStatsData struct {
	SourceFilesScanned   int   `json:"source_files_scanned"`
	DestFilesScanned     int   `json:"dest_files_scanned"`
	FilesExcluded        int   `json:"files_excluded"`
	VideosSkipped        int   `json:"videos_skipped"`
	ExtractionFailures   int   `json:"extraction_failures"`
	InsufficientMetadata int   `json:"insufficient_metadata"`
	CacheHits            int   `json:"cache_hits"`
	Fingerprinted        int   `json:"fingerprinted"`
	MatchedSources       int   `json:"matched_sources"`
	DuplicateGroups      int   `json:"duplicate_groups"`
	AmbiguousGroups      int   `json:"ambiguous_groups"`
	UniqueSources        int   `json:"unique_sources"`
	ActionsPlanned       int   `json:"actions_planned"`
	ActionsSkipped       int   `json:"actions_skipped"`
	BytesReclaimable     int64 `json:"bytes_reclaimable"`
}

// JSONGroupData represents one duplicate group
type JSONGroupData struct {
	Dest           string   `json:"dest"`
	Sources        []string `json:"sources"`
	Ambiguous      bool     `json:"ambiguous,omitempty"`
	CandidateCount int      `json:"candidate_count"`
}

// JSONActionData represents one planned action
type JSONActionData struct {
	Type        string `json:"type"`
	Source      string `json:"source"`
	MatchedDest string `json:"matched_dest,omitempty"`
	ArchivePath string `json:"archive_path,omitempty"`
	Ambiguous   bool   `json:"ambiguous,omitempty"`
	Unique      bool   `json:"unique,omitempty"`
}

// JSONNearMissData represents a base-name collision diagnostic
type JSONNearMissData struct {
	Source string `json:"source"`
	Dest   string `json:"dest"`
}

// JSONErrorData represents a per-file error entry
type JSONErrorData struct {
	Path  string `json:"path"`
	Stage string `json:"stage"`
	Error string `json:"error"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// Render writes the report as indented JSON
func (f *JSONFormatter) Render(report *models.Report) error {
	w := f.writer
	if w == nil {
		w = os.Stdout
	}

	data := JSONReportData{
		PlanID:     report.PlanID,
		Status:     string(report.Status),
		Mode:       string(report.Mode),
		Command:    string(report.Command),
		Duration:   report.Duration.Round(time.Millisecond).String(),
		DurationMs: report.Duration.Milliseconds(),
		Stats: JSONStatsData{
			SourceFilesScanned:   report.Stats.SourceFilesScanned,
			DestFilesScanned:     report.Stats.DestFilesScanned,
			FilesExcluded:        report.Stats.FilesExcluded,
			VideosSkipped:        report.Stats.VideosSkipped,
			ExtractionFailures:   report.Stats.ExtractionFailures,
			InsufficientMetadata: report.Stats.InsufficientMetadata,
			CacheHits:            report.Stats.CacheHits,
			Fingerprinted:        report.Stats.Fingerprinted,
			MatchedSources:       report.Stats.MatchedSources,
			DuplicateGroups:      report.Stats.DuplicateGroups,
			AmbiguousGroups:      report.Stats.AmbiguousGroups,
			UniqueSources:        report.Stats.UniqueSources,
			ActionsPlanned:       report.Stats.ActionsPlanned,
			ActionsSkipped:       report.Stats.ActionsSkipped,
			BytesReclaimable:     report.Stats.BytesReclaimable,
		},
	}

	for _, group := range report.Groups {
		groupData := JSONGroupData{
			Dest:           group.Dest.Path,
			Ambiguous:      group.Ambiguous,
			CandidateCount: group.CandidateCount,
		}
		for _, src := range group.Sources {
			groupData.Sources = append(groupData.Sources, src.Path)
		}
		data.Groups = append(data.Groups, groupData)
	}

	for _, action := range report.Actions {
		data.Actions = append(data.Actions, JSONActionData{
			Type:        string(action.Type),
			Source:      action.Source.Path,
			MatchedDest: action.MatchedDest,
			ArchivePath: action.ArchivePath,
			Ambiguous:   action.Ambiguous,
			Unique:      action.Unique,
		})
	}

	for _, miss := range report.NearMisses {
		data.NearMisses = append(data.NearMisses, JSONNearMissData{
			Source: miss.SourcePath,
			Dest:   miss.DestPath,
		})
	}

	for _, err := range report.Errors {
		data.Errors = append(data.Errors, JSONErrorData{
			Path:  err.Path,
			Stage: err.Stage,
			Error: err.Error,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}
