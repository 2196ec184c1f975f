package models

import (
	"time"
)

// Mode defines the matching strictness level
type Mode string

const (
	// ModeLoose matches on file size and capture time rounded to the
	// minute. Tolerant to common metadata edits (rating changes, GPS
	// stripping) while still discriminating on content size.
	ModeLoose Mode = "loose"
	// ModeParanoid additionally requires exact-second capture time,
	// pixel dimensions, camera make/model and, for videos, duration.
	// Minimizes false positives at the cost of missed matches.
	ModeParanoid Mode = "paranoid"
)

// Command defines what is done with each duplicate source file
type Command string

const (
	// CommandMove relocates the duplicate source file into the archive directory
	CommandMove Command = "move"
	// CommandCopy copies the duplicate source file into the archive directory
	CommandCopy Command = "copy"
	// CommandDelete removes the duplicate source file
	CommandDelete Command = "delete"
	// CommandPrint reports duplicates without producing a script
	CommandPrint Command = "print"
)

// ActionType mirrors Command for the per-file actions produced by the planner
type ActionType string

const (
	ActionMove   ActionType = "move"
	ActionCopy   ActionType = "copy"
	ActionDelete ActionType = "delete"
	ActionPrint  ActionType = "print"
)

// Action is one planned operation, bound to exactly one source file.
// The planner creates actions; the script emitter consumes them read-only.
type Action struct {
	// Type is the operation kind
	Type ActionType

	// Source is the duplicate source file the action targets.
	// Destination files are never the object of an action.
	Source *MediaFile

	// MatchedDest is the path of the destination file the source
	// duplicates. Carried as documentation; move/copy never write to it.
	MatchedDest string

	// ArchivePath is the relocation target for move/copy actions
	ArchivePath string

	// Ambiguous is set when the match behind this action was resolved
	// by tie-break between several candidates
	Ambiguous bool

	// Unique is set on print entries for sources that matched nothing
	Unique bool
}

// Plan describes one duplicate-detection run
type Plan struct {
	ID            string
	SourceRoots   []string
	DestRoot      string
	Mode          Mode
	Command       Command
	IncludeVideos bool
	Exclude       []string
	FlipExclusion bool
	ScriptPath    string
	ArchiveDir    string
	Shell         string
	MaxWorkers    int
	CreatedAt     time.Time
}

// Validate checks if the plan configuration is valid
func (p *Plan) Validate() error {
	if len(p.SourceRoots) == 0 {
		return &ValidationError{Field: "SourceRoots", Message: "at least one source path is required"}
	}
	if p.DestRoot == "" {
		return &ValidationError{Field: "DestRoot", Message: "destination path is required"}
	}
	if p.Mode != ModeLoose && p.Mode != ModeParanoid {
		return &ValidationError{Field: "Mode", Message: "mode must be 'loose' or 'paranoid'"}
	}
	switch p.Command {
	case CommandMove, CommandCopy, CommandDelete, CommandPrint:
	default:
		return &ValidationError{Field: "Command", Message: "command must be 'move', 'copy', 'delete' or 'print'"}
	}
	if p.MaxWorkers < 1 {
		return &ValidationError{Field: "MaxWorkers", Message: "max workers must be at least 1"}
	}
	if (p.Command == CommandMove || p.Command == CommandCopy) && p.ArchiveDir == "" {
		return &ValidationError{Field: "ArchiveDir", Message: "archive directory is required for move and copy"}
	}
	return nil
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
