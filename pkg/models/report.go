package models

import (
	"time"
)

// Report represents the results of one duplicate-detection run
type Report struct {
	// Plan details
	PlanID      string
	SourceRoots []string
	DestRoot    string
	Mode        Mode
	Command     Command

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Statistics
	Stats Statistics

	// Groups are the duplicate groups found, in destination scan order
	Groups []*DuplicateGroup

	// Actions are the planned operations, in source scan order
	Actions []Action

	// Unmatched lists source files that matched no destination file
	Unmatched []*MediaFile

	// NearMisses lists unmatched source files whose base name collides
	// with a destination file (diagnostic only)
	NearMisses []NearMiss

	// Errors encountered per file
	Errors []FileError

	// Overall status
	Status RunStatus
}

// Statistics holds run metrics
type Statistics struct {
	// Scanning
	SourceFilesScanned int
	DestFilesScanned   int
	FilesExcluded      int
	VideosSkipped      int

	// Extraction
	ExtractionFailures   int
	InsufficientMetadata int
	CacheHits            int

	// Matching
	Fingerprinted   int
	MatchedSources  int
	DuplicateGroups int
	AmbiguousGroups int
	UniqueSources   int

	// Planning / emission
	ActionsPlanned   int
	ActionsSkipped   int
	BytesReclaimable int64
}

// RunStatus represents the overall result
type RunStatus string

const (
	// StatusSuccess indicates the run completed with no per-file errors
	StatusSuccess RunStatus = "success"
	// StatusPartial indicates some files could not be processed
	StatusPartial RunStatus = "partial"
	// StatusFailed indicates the run failed
	StatusFailed RunStatus = "failed"
)

// ExitCode returns the process exit code for the run status
func (s RunStatus) ExitCode() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusPartial:
		return 1
	case StatusFailed:
		return 2
	default:
		return 2
	}
}

// FileError records a non-fatal per-file failure
type FileError struct {
	Path      string
	Stage     string // "scan", "extract", "fingerprint", "script"
	Error     string
	Timestamp time.Time
}

// NearMiss records a source file that shares a base name with a
// destination file but did not fingerprint-match it
type NearMiss struct {
	SourcePath string
	DestPath   string
}
